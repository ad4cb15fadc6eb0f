// Fwbuild runs the firmware build hooks of a PlatformIO project.
//
// The pre-build hook advances the build counter and rewrites the
// metadata header compiled into the firmware. The post-build hook posts
// the compiled binary to an upload server, tagged with the version and
// branch from that header.
//
// Usage:
//
//	fwbuild prebuild            # before compilation
//	fwbuild postbuild           # after the firmware binary is linked
//
// See 'fwbuild --help' for all commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/fwbuild/internal/logging"
	"github.com/muurk/fwbuild/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fwbuild",
	Short: "Firmware build metadata and upload hooks",
	Long: `Build hooks for PlatformIO firmware projects.

prebuild increments the build counter and regenerates the metadata header
(version, date, time, build type, git hash, branch and machine name).
postbuild uploads the compiled firmware to the configured endpoint.

Settings are read from fwbuild.yaml in the project directory. Every
setting has a default; run 'fwbuild init' to write them out.`,
	Version:       version.Version,
	SilenceErrors: true,
	Example: `  # Regenerate the metadata header before compiling
  fwbuild prebuild --environment nodemcu-32s2

  # Upload the firmware after linking
  fwbuild postbuild --endpoint http://firmware.local/satellite_firmware_upload

  # Show the last build
  fwbuild show --format compact`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Line("fwbuild"))
	},
}
