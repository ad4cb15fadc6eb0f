// Fwtrace resolves an ESP32 panic backtrace to source files and lines.
//
// The addresses of a "Backtrace:" line are passed to addr2line together
// with the firmware ELF image of the build environment, and every line
// the tool prints is written out as soon as it arrives.
//
// Usage:
//
//	fwtrace 'Backtrace: 0x400d1234:0x3ffb1230 0x400d5678:0x3ffb1250'
//	fwtrace --input panic.log
//	pio device monitor | grep Backtrace | fwtrace
//	fwtrace                     # prompts for the backtrace
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
	Use:   "fwtrace [backtrace...]",
	Short: "Resolve a firmware backtrace to source lines",
	Long: `Resolve the addresses of a firmware backtrace with addr2line.

The backtrace is taken from the arguments, from --input, from piped
standard input, or asked for interactively. Tokens of the form
0x<address>:0x<stack> are resolved in order; every other token is
ignored.

The resolver command, an optional wrapper (for example wsl on Windows)
and the firmware image are read from fwbuild.yaml and can be overridden
with flags.`,
	Version:       version.Version,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	Example: `  # Resolve a backtrace copied from the serial monitor
  fwtrace 'Backtrace: 0x400d1234:0x3ffb1230 0x400d5678:0x3ffb1250'

  # Run addr2line through WSL with function names
  fwtrace --wrapper wsl --extra-arg -f --extra-arg -C --input panic.log`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	RunE: runTrace,
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
		fmt.Fprintln(cmd.OutOrStdout(), version.Line("fwtrace"))
	},
}
