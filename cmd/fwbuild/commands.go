package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fwbuild/internal/buildinfo"
	"github.com/muurk/fwbuild/internal/config"
	"github.com/muurk/fwbuild/internal/generator"
	"github.com/muurk/fwbuild/internal/logging"
	"github.com/muurk/fwbuild/internal/probe"
	"github.com/muurk/fwbuild/internal/ui"
	"github.com/muurk/fwbuild/internal/upload"
)

// Command flags
var (
	configPath    string
	projectDir    string
	logLevel      string
	environment   string
	metadataFile  string
	iniFile       string
	dryRun        bool
	endpoint      string
	artifactPath  string
	uploadTimeout time.Duration
	showFormat    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <project-dir>/fwbuild.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "C", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: $"+logging.LogLevelEnvVar+")")
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Build environment name (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metadataFile, "metadata", "", "Metadata header path (overrides config)")

	prebuildCmd.Flags().StringVar(&iniFile, "ini", "", "platformio.ini path (overrides config)")
	prebuildCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the next build without writing the header")

	postbuildCmd.Flags().StringVar(&endpoint, "endpoint", "", "Upload URL (overrides config)")
	postbuildCmd.Flags().StringVar(&artifactPath, "artifact", "", "Firmware binary to upload (default: <build_dir>/<environment>/firmware.bin)")
	postbuildCmd.Flags().DurationVar(&uploadTimeout, "timeout", 0, "Upload timeout, e.g. 30s (overrides config; 0 keeps the config value)")

	showCmd.Flags().StringVarP(&showFormat, "format", "f", "detailed", "Output format: detailed, compact or json")

	rootCmd.AddCommand(prebuildCmd)
	rootCmd.AddCommand(postbuildCmd)
	rootCmd.AddCommand(showCmd)
}

// resolveProject returns the absolute project directory and config path.
func resolveProject() (root, cfgPath string, err error) {
	root = projectDir
	if root == "" {
		root = "."
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("invalid project directory: %w", err)
	}

	cfgPath = configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFile)
	}
	return root, cfgPath, nil
}

// loadConfig reads the project configuration, applies command-line
// overrides and resolves relative paths against the project directory.
func loadConfig() (*config.Config, error) {
	root, cfgPath, err := resolveProject()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if environment != "" {
		cfg.Environment = environment
	}
	if metadataFile != "" {
		cfg.MetadataFile = metadataFile
	}
	if iniFile != "" {
		cfg.PlatformIOINI = iniFile
	}
	if endpoint != "" {
		cfg.Upload.Endpoint = endpoint
	}
	if uploadTimeout > 0 {
		cfg.Upload.Timeout = uploadTimeout
	}

	cfg.Resolve(root)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", cfgPath, err)
	}

	logging.Debug("configuration loaded",
		zap.String("config", cfgPath),
		zap.String("project_dir", root),
		zap.String("environment", cfg.Environment),
	)
	return cfg, nil
}

func summaryParams(rec buildinfo.Record) []ui.Param {
	fields := rec.Summary()
	params := make([]ui.Param, len(fields))
	for i, f := range fields {
		params[i] = ui.Param{Key: f.Label, Value: f.Value}
	}
	return params
}

// prebuildCmd implements the 'prebuild' command
var prebuildCmd = &cobra.Command{
	Use:   "prebuild",
	Short: "Increment the build number and regenerate the metadata header",
	Long: `Increment the build number and regenerate the metadata header.

This command will:
  1. Create the metadata header if it does not exist
  2. Read the previous build counters (a missing or empty header starts at v0.0.001)
  3. Increment the minor counter
  4. Record the current date and time
  5. Detect the build type from the -g flag in platformio.ini build_flags
  6. Record the git commit, branch and machine name
  7. Rewrite the header

If git or the host name lookup fails, the build type, commit, branch and
machine name are all recorded as UNKNOWN and the build continues.`,
	Example: `  # Run from the PlatformIO pre-build script
  fwbuild prebuild --environment nodemcu-32s2

  # Preview the next build without writing
  fwbuild prebuild --dry-run`,
	Args: cobra.NoArgs,
	RunE: runPrebuild,
}

func runPrebuild(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	p := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		p.PrintFailure("Configuration error", err, []string{
			"Check fwbuild.yaml syntax",
			"Regenerate defaults: fwbuild init --force",
		})
		return err
	}

	logger := logging.GetLogger()
	prober := probe.NewProber(cfg.VCS.Command, filepath.Dir(cfg.PlatformIOINI), cfg.PlatformIOINI, cfg.Environment, logger)
	gen := generator.New(buildinfo.NewStore(cfg.MetadataFile), prober, logger)

	title := "Build Metadata"
	if dryRun {
		title = "Build Metadata (dry run)"
	}

	runner := ui.NewRunner(p, ui.RunnerConfig{
		Title:   title,
		Command: "fwbuild prebuild",
		Params: []ui.Param{
			{Key: "Metadata", Value: cfg.MetadataFile},
			{Key: "Environment", Value: cfg.Environment},
		},
		Troubleshooting: []string{
			"Check the metadata directory exists and is writable",
			"A corrupt header can be deleted; numbering restarts at v0.0.001",
		},
	})

	var result *generator.Result
	_, err = runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) (*ui.Result, error) {
		var err error
		if dryRun {
			result, err = gen.Plan(ctx)
		} else {
			result, err = gen.Run(ctx)
		}
		if err != nil {
			return nil, err
		}

		resultTitle := "Build " + result.Record.Version()
		if !result.Written {
			resultTitle += " (not written)"
		}
		return ui.NewSuccessResult(resultTitle, summaryParams(result.Record)), nil
	})
	if err != nil {
		return fmt.Errorf("failed to generate build metadata: %w", err)
	}

	if result.FactsErr != nil && p.Styled() {
		p.PrintWarning("Environment facts recorded as "+buildinfo.Unknown, []ui.Param{
			{Key: "Reason", Value: result.FactsErr.Error()},
		})
	}
	return nil
}

// postbuildCmd implements the 'postbuild' command
var postbuildCmd = &cobra.Command{
	Use:   "postbuild",
	Short: "Upload the compiled firmware",
	Long: `Upload the compiled firmware binary to the configured endpoint.

The version and branch are read from the metadata header and sent as
query parameters; the binary is sent as a multipart form field.

A response other than 200 is reported but does not fail the build.
A missing header, a missing firmware binary or a connection failure
exits with an error.`,
	Example: `  # Run from the PlatformIO post-build script
  fwbuild postbuild --environment nodemcu-32s2

  # Upload an explicit file to another server
  fwbuild postbuild --artifact build/app.bin --endpoint http://10.0.0.5/satellite_firmware_upload`,
	Args: cobra.NoArgs,
	RunE: runPostbuild,
}

func runPostbuild(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	p := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		p.PrintFailure("Configuration error", err, []string{
			"Check fwbuild.yaml syntax",
		})
		return err
	}

	artifact := cfg.ArtifactPath()
	if artifactPath != "" {
		artifact, err = filepath.Abs(artifactPath)
		if err != nil {
			return fmt.Errorf("invalid artifact path: %w", err)
		}
	}

	client := upload.NewClient(cfg.Upload.Endpoint, cfg.Upload.Timeout)
	client.FieldName = cfg.Upload.FieldName
	uploader := upload.NewUploader(buildinfo.NewStore(cfg.MetadataFile), artifact, client, logging.GetLogger())

	runner := ui.NewRunner(p, ui.RunnerConfig{
		Title:   "Firmware Upload",
		Command: "fwbuild postbuild",
		Params: []ui.Param{
			{Key: "Endpoint", Value: cfg.Upload.Endpoint},
			{Key: "Artifact", Value: artifact},
		},
		StepNames: []string{"Read build metadata", "Locate firmware", "Upload firmware"},
		Troubleshooting: []string{
			"Run fwbuild prebuild before the build so the header exists",
			"Check the firmware was linked: " + artifact,
			"Check the endpoint is reachable: fwbuild verify-setup",
		},
	})

	if !p.Styled() {
		p.Printf("Uploading firmware to %s\n", cfg.Upload.Endpoint)
	}

	_, err = runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) (*ui.Result, error) {
		uploader.OnState = uploadProgress(onStep)

		outcome, err := uploader.Upload(ctx)
		if err != nil {
			return nil, err
		}
		return outcomeResult(outcome), nil
	})
	if err != nil {
		return fmt.Errorf("firmware upload failed: %w", err)
	}
	return nil
}

// uploadProgress maps uploader state transitions onto the runner steps.
func uploadProgress(onStep ui.StepCallback) func(upload.State) {
	return func(s upload.State) {
		switch s {
		case upload.StateStart:
			onStep(1, ui.StepRunning, "")
		case upload.StateMetadataRead:
			onStep(1, ui.StepComplete, "")
			onStep(2, ui.StepRunning, "")
		case upload.StateArtifactLocated:
			onStep(2, ui.StepComplete, "")
		case upload.StateUploading:
			onStep(3, ui.StepRunning, "")
		case upload.StateSuccess:
			onStep(3, ui.StepComplete, "HTTP 200")
		case upload.StateFailed:
			onStep(3, ui.StepFailed, "")
		}
	}
}

func outcomeResult(o *upload.Outcome) *ui.Result {
	details := []ui.Param{
		{Key: "Version", Value: o.Version},
		{Key: "Branch", Value: o.Branch},
		{Key: "Status", Value: fmt.Sprintf("%d", o.StatusCode)},
		{Key: "Response", Value: o.Body},
	}

	if o.State == upload.StateSuccess {
		return ui.NewSuccessResult("Firmware uploaded", details).SetPlain(o.Message())
	}

	r := ui.NewWarningResult("Server rejected the firmware", details)
	return r.SetPlain(o.Message())
}

// showCmd implements the 'show' command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the last recorded build",
	Long: `Show the build recorded in the metadata header.

Formats:
  detailed  one "Label: value" line per field (default)
  compact   a single line
  json      the record as a JSON object`,
	Example: `  fwbuild show
  fwbuild show --format json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	switch showFormat {
	case "detailed", "compact", "json":
	default:
		return fmt.Errorf("unknown format %q (expected detailed, compact or json)", showFormat)
	}

	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rec, empty, err := buildinfo.NewStore(cfg.MetadataFile).Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no build recorded yet (%s does not exist); run fwbuild prebuild", cfg.MetadataFile)
		}
		return err
	}
	if empty {
		return fmt.Errorf("no build recorded yet (%s is empty)", cfg.MetadataFile)
	}

	out := cmd.OutOrStdout()
	switch showFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			buildinfo.Record
			Version string `json:"build_version"`
		}{rec, rec.Version()})
	case "compact":
		_, err = fmt.Fprintln(out, rec.FormatCompact())
		return err
	}

	p := ui.NewPrinter(out)
	p.PrintSuccess("Build "+rec.Version(), summaryParams(rec))
	return nil
}
