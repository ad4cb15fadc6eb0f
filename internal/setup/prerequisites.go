package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/muurk/fwbuild/internal/buildinfo"
	"github.com/muurk/fwbuild/internal/config"
	"github.com/muurk/fwbuild/internal/probe"
)

// probeTimeout bounds every tool invocation and network dial.
const probeTimeout = 2 * time.Second

// Check is the result of checking a single prerequisite.
type Check struct {
	Name      string
	Required  bool // The build hooks cannot run without it
	Available bool
	Path      string // Resolved path, for binaries and files
	Version   string // First line of --version output, when known
	Message   string
	Err       error
}

// Report contains the results of all checks.
type Report struct {
	Checks []Check
}

// Ready reports whether every required check passed.
func (r *Report) Ready() bool {
	for _, c := range r.Checks {
		if c.Required && !c.Available {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Available {
			failed = append(failed, c)
		}
	}
	return failed
}

// Verify runs all checks against cfg. Paths in cfg should already be
// resolved against the project directory.
func Verify(ctx context.Context, cfg *config.Config) *Report {
	return &Report{
		Checks: []Check{
			CheckBinary(ctx, "Revision control", cfg.VCS.Command, true),
			checkResolver(ctx, cfg.Resolver),
			checkBuildConfig(cfg.PlatformIOINI, cfg.Environment),
			checkMetadata(cfg.MetadataFile),
			checkImage(cfg.ImagePath()),
			CheckEndpoint(ctx, cfg.Upload.Endpoint),
		},
	}
}

// CheckBinary verifies that command is on PATH and answers --version.
func CheckBinary(ctx context.Context, name, command string, required bool) Check {
	check := Check{Name: name, Required: required}

	if command == "" {
		check.Err = &PrerequisiteError{Prerequisite: name, Details: "command is empty"}
		check.Message = "No command configured"
		return check
	}

	path, err := exec.LookPath(command)
	if err != nil {
		check.Err = &PrerequisiteError{Prerequisite: name, Details: command + " not found in PATH", Err: err}
		check.Message = fmt.Sprintf("%s not found in PATH", command)
		return check
	}
	check.Path = path

	versionCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, path, "--version").Output()
	if err != nil {
		check.Err = &PrerequisiteError{Prerequisite: name, Details: "failed to execute " + path, Err: err}
		check.Message = fmt.Sprintf("%s found at %s but failed to execute", command, path)
		return check
	}

	if first, _, _ := strings.Cut(string(output), "\n"); first != "" {
		check.Version = strings.TrimSpace(first)
	}
	check.Available = true
	check.Message = fmt.Sprintf("Found at %s", path)
	return check
}

// checkResolver checks the address resolver. With a wrapper only the
// wrapper itself can be checked; the tool runs on the other side of it.
func checkResolver(ctx context.Context, rc config.ResolverConfig) Check {
	if len(rc.Wrapper) > 0 {
		check := CheckBinary(ctx, "Address resolver", rc.Wrapper[0], false)
		if check.Available {
			check.Message = fmt.Sprintf("%s runs through %s", rc.Command, check.Path)
		}
		return check
	}
	return CheckBinary(ctx, "Address resolver", rc.Command, false)
}

func checkBuildConfig(path, environment string) Check {
	check := Check{Name: "Build configuration", Path: path}

	buildType, err := probe.DetectBuildType(path, environment)
	if err != nil {
		check.Err = err
		check.Message = "Build type will be recorded as " + buildinfo.Unknown
		return check
	}

	check.Available = true
	check.Message = fmt.Sprintf("Build type %s", buildType)
	return check
}

func checkMetadata(path string) Check {
	check := Check{Name: "Build metadata", Path: path}

	rec, empty, err := buildinfo.NewStore(path).Load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		check.Err = err
		check.Message = "Not generated yet; run fwbuild prebuild"
	case err != nil:
		check.Err = err
		check.Message = "Metadata header cannot be parsed"
	case empty:
		check.Available = true
		check.Message = "Empty; the next build starts at " + buildinfo.Initial().Version()
	default:
		check.Available = true
		check.Version = rec.Version()
		check.Message = "Last build " + rec.FormatCompact()
	}
	return check
}

func checkImage(path string) Check {
	check := Check{Name: "Firmware image", Path: path}

	info, err := os.Stat(path)
	if err != nil {
		check.Err = err
		check.Message = "Not built yet; fwtrace needs it to resolve addresses"
		return check
	}
	if info.IsDir() {
		check.Err = &PrerequisiteError{Prerequisite: check.Name, Details: path + " is a directory"}
		check.Message = "Path is a directory"
		return check
	}

	check.Available = true
	check.Message = fmt.Sprintf("%d bytes", info.Size())
	return check
}

// CheckEndpoint dials the upload endpoint's host. An unreachable endpoint
// is not fatal for the build; the upload will report the failure.
func CheckEndpoint(ctx context.Context, endpoint string) Check {
	check := Check{Name: "Upload endpoint", Path: endpoint}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		check.Err = &PrerequisiteError{Prerequisite: check.Name, Details: "invalid URL " + endpoint, Err: err}
		check.Message = "Invalid URL"
		return check
	}

	address := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		address = net.JoinHostPort(u.Hostname(), port)
	}

	dialer := net.Dialer{Timeout: probeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		check.Err = err
		check.Message = fmt.Sprintf("Cannot connect to %s", address)
		return check
	}
	defer conn.Close()

	check.Available = true
	check.Message = fmt.Sprintf("Connected to %s", address)
	return check
}
