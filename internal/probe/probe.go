// Package probe gathers the environment facts recorded in the build
// metadata: build type, revision-control hash and branch, and host name.
package probe

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/muurk/fwbuild/internal/buildinfo"
)

// Facts are the environment values stamped into the metadata header.
type Facts struct {
	Type        buildinfo.BuildType
	GitHash     string
	GitBranch   string
	MachineName string
}

// UnknownFacts returns Facts with every value set to UNKNOWN.
func UnknownFacts() Facts {
	return Facts{
		Type:        buildinfo.BuildUnknown,
		GitHash:     buildinfo.Unknown,
		GitBranch:   buildinfo.Unknown,
		MachineName: buildinfo.Unknown,
	}
}

// Apply copies the facts into r.
func (f Facts) Apply(r *buildinfo.Record) {
	r.Type = f.Type
	r.GitHash = f.GitHash
	r.GitBranch = f.GitBranch
	r.MachineName = f.MachineName
}

// Prober collects Facts.
type Prober struct {
	// VCS is the revision-control executable. Default: "git"
	VCS string
	// INIPath is the PlatformIO project file inspected for the debug flag
	INIPath string
	// Environment selects the [env:<name>] section of INIPath
	Environment string
	// Runner executes the revision-control commands
	Runner Runner
	// Hostname resolves the machine name. Default: os.Hostname
	Hostname func() (string, error)

	logger *zap.Logger
}

// NewProber creates a prober that runs vcs in dir and reads the
// environment's section of iniPath.
func NewProber(vcs, dir, iniPath, environment string, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		VCS:         vcs,
		INIPath:     iniPath,
		Environment: environment,
		Runner:      ExecRunner{Dir: dir},
		Hostname:    os.Hostname,
		logger:      logger,
	}
}

// Gather collects all facts as one unit. If any revision-control command
// or the host name lookup fails, every fact (including the build type) is
// UNKNOWN and the error is returned for reporting. A build type that
// cannot be detected on its own only blanks the build type.
func (p *Prober) Gather(ctx context.Context) (Facts, error) {
	buildType, err := DetectBuildType(p.INIPath, p.Environment)
	if err != nil {
		p.log().Warn("build type detection failed",
			zap.String("file", p.INIPath),
			zap.Error(err),
		)
	}

	hash, err := p.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return UnknownFacts(), err
	}

	branch, err := p.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return UnknownFacts(), err
	}

	hostname := p.Hostname
	if hostname == nil {
		hostname = os.Hostname
	}
	machine, err := hostname()
	if err != nil {
		return UnknownFacts(), fmt.Errorf("failed to resolve host name: %w", err)
	}

	facts := Facts{
		Type:        buildType,
		GitHash:     hash,
		GitBranch:   branch,
		MachineName: machine,
	}

	p.log().Debug("environment facts gathered",
		zap.String("build_type", string(facts.Type)),
		zap.String("git_hash", facts.GitHash),
		zap.String("git_branch", facts.GitBranch),
		zap.String("machine", facts.MachineName),
	)

	return facts, nil
}

func (p *Prober) log() *zap.Logger {
	if p.logger == nil {
		return zap.NewNop()
	}
	return p.logger
}

func (p *Prober) git(ctx context.Context, args ...string) (string, error) {
	vcs := p.VCS
	if vcs == "" {
		vcs = "git"
	}
	out, err := p.Runner.Output(ctx, vcs, args...)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", &CommandError{Command: vcs, Args: args, Err: fmt.Errorf("empty output")}
	}
	return out, nil
}
