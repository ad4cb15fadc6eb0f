package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/fwbuild/internal/config"
	"github.com/muurk/fwbuild/internal/setup"
	"github.com/muurk/fwbuild/internal/ui"
)

var forceInit bool

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file without asking")
	initCmd.Flags().StringVar(&endpoint, "endpoint", "", "Upload URL to write into the config")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(verifySetupCmd)
}

// initCmd implements the 'init' command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default fwbuild.yaml",
	Long: `Write fwbuild.yaml with every setting at its default value.

--environment and --endpoint are written into the file when given.
An existing file is only replaced after confirmation or with --force.`,
	Example: `  fwbuild init --environment nodemcu-32s2 --endpoint http://firmware.local/satellite_firmware_upload`,
	Args:    cobra.NoArgs,
	RunE:    runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	p := ui.NewPrinter(cmd.OutOrStdout())

	_, cfgPath, err := resolveProject()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil && !forceInit {
		if !ui.ConfirmOverwrite(cmd.InOrStdin(), p, cfgPath) {
			return nil
		}
	}

	cfg := config.Default()
	if environment != "" {
		cfg.Environment = environment
	}
	if endpoint != "" {
		cfg.Upload.Endpoint = endpoint
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(cfgPath); err != nil {
		p.PrintFailure("Config not written", err, []string{
			"Check the project directory is writable",
		})
		return err
	}

	result := ui.NewSuccessResult("Config written", []ui.Param{
		{Key: "Path", Value: cfgPath},
		{Key: "Environment", Value: cfg.Environment},
		{Key: "Endpoint", Value: cfg.Upload.Endpoint},
	})
	p.PrintResult(result.SetPlain("Wrote " + cfgPath))
	return nil
}

// verifySetupCmd implements the 'verify-setup' command
var verifySetupCmd = &cobra.Command{
	Use:   "verify-setup",
	Short: "Check the tools and files the build hooks need",
	Long: `Check that all prerequisites of the build hooks are met.

Required:
  - the revision-control tool (git)

Reported but not required:
  - the address resolver used by fwtrace (addr2line)
  - platformio.ini and the build type it selects
  - the metadata header
  - the firmware image of the environment
  - a TCP connection to the upload endpoint`,
	Args: cobra.NoArgs,
	RunE: runVerifySetup,
}

func runVerifySetup(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	p := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		p.PrintFailure("Configuration error", err, nil)
		return err
	}

	p.PrintHeader("Setup Verification", "fwbuild verify-setup", []ui.Param{
		{Key: "Environment", Value: cfg.Environment},
		{Key: "Endpoint", Value: cfg.Upload.Endpoint},
	})

	report := setup.Verify(cmd.Context(), cfg)
	printReport(p, report)

	if !report.Ready() {
		var troubleshooting []string
		for _, c := range report.Failed() {
			if c.Required {
				troubleshooting = append(troubleshooting, fmt.Sprintf("%s: %s", c.Name, c.Message))
			}
		}
		troubleshooting = append(troubleshooting, "Install git and make sure it is in PATH")

		err := fmt.Errorf("setup verification failed")
		p.PrintFailure("Setup verification failed", err, troubleshooting)
		return err
	}

	if p.Styled() {
		p.PrintSuccess("Setup verification complete", []ui.Param{
			{Key: "Status", Value: "Ready for prebuild and postbuild"},
		})
	}
	return nil
}

func printReport(p *ui.Printer, report *setup.Report) {
	names := make([]string, len(report.Checks))
	for i, c := range report.Checks {
		names[i] = c.Name
	}
	progress := ui.NewProgress("Prerequisites", names).SetWidth(p.Width())

	for i, c := range report.Checks {
		status, mark := ui.StepComplete, "ok"
		if !c.Available {
			status, mark = ui.StepFailed, "missing"
			if !c.Required {
				status, mark = ui.StepSkipped, "optional"
			}
		}
		progress.UpdateStep(i+1, status, c.Message)

		if !p.Styled() {
			p.Printf("%s: %s (%s)\n", c.Name, mark, c.Message)
		}
	}

	if p.Styled() {
		p.Println(progress.Render())
		p.Newline()
	}
}
