package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fwbuild/internal/backtrace"
	"github.com/muurk/fwbuild/internal/config"
	"github.com/muurk/fwbuild/internal/logging"
	"github.com/muurk/fwbuild/internal/ui"
)

// Command flags
var (
	configPath  string
	projectDir  string
	logLevel    string
	environment string
	imagePath   string
	command     string
	wrapper     []string
	extraArgs   []string
	timeout     time.Duration
	inputFile   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <project-dir>/fwbuild.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "C", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: $"+logging.LogLevelEnvVar+")")

	rootCmd.Flags().StringVarP(&environment, "environment", "e", "", "Build environment name (overrides config)")
	rootCmd.Flags().StringVar(&imagePath, "image", "", "Firmware ELF image (default: <build_dir>/<environment>/firmware.elf)")
	rootCmd.Flags().StringVar(&command, "addr2line", "", "Address resolver command (overrides config)")
	rootCmd.Flags().StringArrayVar(&wrapper, "wrapper", nil, "Command prepended to the resolver, repeatable (overrides config)")
	rootCmd.Flags().StringArrayVar(&extraArgs, "extra-arg", nil, "Argument passed to the resolver before -e, repeatable (overrides config)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "Resolver timeout, e.g. 10s (overrides config)")
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read the backtrace from a file, - for stdin")
}

// resolverConfig builds the resolver configuration from fwbuild.yaml and flags.
func resolverConfig() (backtrace.Config, error) {
	root := projectDir
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return backtrace.Config{}, fmt.Errorf("invalid project directory: %w", err)
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFile)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return backtrace.Config{}, err
	}
	if environment != "" {
		cfg.Environment = environment
	}
	if command != "" {
		cfg.Resolver.Command = command
	}
	if len(wrapper) > 0 {
		cfg.Resolver.Wrapper = wrapper
	}
	if len(extraArgs) > 0 {
		cfg.Resolver.ExtraArgs = extraArgs
	}
	if timeout > 0 {
		cfg.Resolver.Timeout = timeout
	}

	cfg.Resolve(root)
	if err := cfg.Validate(); err != nil {
		return backtrace.Config{}, fmt.Errorf("invalid configuration %s: %w", cfgPath, err)
	}

	rc := backtrace.DefaultConfig()
	rc.Command = cfg.Resolver.Command
	rc.Wrapper = cfg.Resolver.Wrapper
	rc.ExtraArgs = cfg.Resolver.ExtraArgs
	rc.Timeout = cfg.Resolver.Timeout
	rc.Image = cfg.ImagePath()

	if imagePath != "" {
		rc.Image, err = filepath.Abs(imagePath)
		if err != nil {
			return backtrace.Config{}, fmt.Errorf("invalid image path: %w", err)
		}
	}

	logging.Debug("resolver configured",
		zap.String("config", cfgPath),
		zap.Strings("command", append(append([]string{}, rc.Wrapper...), rc.Command)),
		zap.String("image", rc.Image),
	)
	return rc, nil
}

// readBacktrace returns the backtrace text from args, --input, piped
// stdin or the interactive prompt, in that order.
func readBacktrace(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if inputFile != "" && inputFile != "-" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read backtrace: %w", err)
		}
		return string(data), nil
	}

	if f, ok := in.(*os.File); ok && inputFile == "" && ui.IsTerminal(f) {
		return ui.PromptBacktrace(f, cmd.OutOrStdout())
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read backtrace: %w", err)
	}
	return string(data), nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	rc, err := resolverConfig()
	if err != nil {
		return err
	}

	text, err := readBacktrace(cmd, args)
	if err != nil {
		if errors.Is(err, ui.ErrPromptCancelled) {
			return nil
		}
		return err
	}

	resolver := backtrace.NewResolver(rc, logging.GetLogger())
	err = resolver.Resolve(cmd.Context(), text, cmd.OutOrStdout())
	if errors.Is(err, backtrace.ErrNoAddresses) {
		return fmt.Errorf("%w: expected tokens like 0x400d1234:0x3ffb1230", err)
	}
	return err
}
