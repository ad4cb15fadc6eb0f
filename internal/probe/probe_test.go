package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/muurk/fwbuild/internal/buildinfo"
)

// fakeRunner answers commands from a table keyed by the joined argument list.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.outputs[key], nil
}

func writeINI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "platformio.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write ini: %v", err)
	}
	return path
}

const debugINI = `[env:nodemcu-32s2]
platform = espressif32
board = nodemcu-32s2
framework = arduino
build_flags =
    -g
    -DCORE_DEBUG_LEVEL=5
`

func newTestProber(runner Runner, iniPath string) *Prober {
	return &Prober{
		VCS:         "git",
		INIPath:     iniPath,
		Environment: "nodemcu-32s2",
		Runner:      runner,
		Hostname:    func() (string, error) { return "buildbox", nil },
		logger:      zap.NewNop(),
	}
}

func TestGather(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"git rev-parse HEAD":              "9f1c2d3e",
		"git rev-parse --abbrev-ref HEAD": "main",
	}}

	facts, err := newTestProber(runner, writeINI(t, debugINI)).Gather(context.Background())
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := Facts{
		Type:        buildinfo.BuildDebug,
		GitHash:     "9f1c2d3e",
		GitBranch:   "main",
		MachineName: "buildbox",
	}
	if facts != want {
		t.Errorf("Gather() = %+v, want %+v", facts, want)
	}

	if len(runner.calls) != 2 {
		t.Errorf("expected 2 git invocations, got %v", runner.calls)
	}
}

func TestGatherVCSFailureBlanksAllFacts(t *testing.T) {
	vcsErr := &CommandError{Command: "git", Args: []string{"rev-parse", "HEAD"}, ExitCode: 128, Stderr: "fatal: not a git repository"}

	tests := []struct {
		name string
		errs map[string]error
	}{
		{"hash fails", map[string]error{"git rev-parse HEAD": vcsErr}},
		{"branch fails", map[string]error{"git rev-parse --abbrev-ref HEAD": vcsErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{
				outputs: map[string]string{
					"git rev-parse HEAD":              "9f1c2d3e",
					"git rev-parse --abbrev-ref HEAD": "main",
				},
				errs: tt.errs,
			}

			facts, err := newTestProber(runner, writeINI(t, debugINI)).Gather(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var cmdErr *CommandError
			if !errors.As(err, &cmdErr) {
				t.Errorf("expected *CommandError, got %T", err)
			}

			if facts != UnknownFacts() {
				t.Errorf("Gather() = %+v, want all UNKNOWN", facts)
			}
			if facts.Type != "UNKNOWN" || facts.GitHash != "UNKNOWN" || facts.GitBranch != "UNKNOWN" || facts.MachineName != "UNKNOWN" {
				t.Errorf("facts must be the literal UNKNOWN: %+v", facts)
			}
		})
	}
}

func TestGatherHostnameFailure(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"git rev-parse HEAD":              "9f1c2d3e",
		"git rev-parse --abbrev-ref HEAD": "main",
	}}
	prober := newTestProber(runner, writeINI(t, debugINI))
	prober.Hostname = func() (string, error) { return "", errors.New("uname failed") }

	facts, err := prober.Gather(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if facts != UnknownFacts() {
		t.Errorf("Gather() = %+v, want all UNKNOWN", facts)
	}
}

func TestGatherMissingINIOnlyBlanksBuildType(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"git rev-parse HEAD":              "9f1c2d3e",
		"git rev-parse --abbrev-ref HEAD": "main",
	}}
	prober := newTestProber(runner, filepath.Join(t.TempDir(), "platformio.ini"))

	facts, err := prober.Gather(context.Background())
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if facts.Type != buildinfo.BuildUnknown {
		t.Errorf("Type = %q, want UNKNOWN", facts.Type)
	}
	if facts.GitBranch != "main" || facts.MachineName != "buildbox" {
		t.Errorf("other facts should survive: %+v", facts)
	}
}

func TestGatherEmptyVCSOutput(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"git rev-parse HEAD": "",
	}}

	facts, err := newTestProber(runner, writeINI(t, debugINI)).Gather(context.Background())
	if err == nil {
		t.Fatal("expected error for empty output, got nil")
	}
	if facts != UnknownFacts() {
		t.Errorf("Gather() = %+v, want all UNKNOWN", facts)
	}
}

func TestFactsApply(t *testing.T) {
	rec := buildinfo.Initial()
	Facts{Type: buildinfo.BuildRelease, GitHash: "h", GitBranch: "b", MachineName: "m"}.Apply(&rec)

	if rec.Type != buildinfo.BuildRelease || rec.GitHash != "h" || rec.GitBranch != "b" || rec.MachineName != "m" {
		t.Errorf("Apply() result = %+v", rec)
	}
	if rec.Minor != 1 {
		t.Error("Apply() must not touch counters")
	}
}

func TestExecRunner(t *testing.T) {
	dir := t.TempDir()
	mockGit := filepath.Join(dir, "mock-git")

	script := `#!/bin/sh
if [ "$1" = "rev-parse" ] && [ "$2" = "HEAD" ]; then
  echo "  abc123  "
  exit 0
fi
echo "fatal: bad revision" >&2
exit 128
`
	if err := os.WriteFile(mockGit, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to create mock git: %v", err)
	}

	runner := ExecRunner{Dir: dir}

	out, err := runner.Output(context.Background(), mockGit, "rev-parse", "HEAD")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if out != "abc123" {
		t.Errorf("Output() = %q, want trimmed abc123", out)
	}

	_, err = runner.Output(context.Background(), mockGit, "rev-parse", "nope")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T: %v", err, err)
	}
	if cmdErr.ExitCode != 128 {
		t.Errorf("ExitCode = %d, want 128", cmdErr.ExitCode)
	}
	if cmdErr.Stderr != "fatal: bad revision" {
		t.Errorf("Stderr = %q", cmdErr.Stderr)
	}
	if !strings.Contains(cmdErr.Error(), "exit code 128") {
		t.Errorf("Error() = %q", cmdErr.Error())
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Output(context.Background(), filepath.Join(t.TempDir(), "no-such-vcs"))

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T: %v", err, err)
	}
	if cmdErr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", cmdErr.ExitCode)
	}
}
