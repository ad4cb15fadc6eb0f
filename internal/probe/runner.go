package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/muurk/fwbuild/internal/logging"
)

// Runner runs an external command and returns its trimmed stdout.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Dir is the working directory for commands. Empty means the current directory.
	Dir string
}

// Output runs name with args and returns trimmed stdout.
// A non-zero exit is reported as *CommandError.
func (r ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}
	logging.LogCommand(name, args, exitCode, time.Since(start))

	if err != nil {
		return "", &CommandError{
			Command:  name,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// CommandError represents a failed external command.
type CommandError struct {
	// Command is the executable that was run
	Command string
	// Args are the arguments passed to it
	Args []string
	// ExitCode is the process exit code, -1 if it never started
	ExitCode int
	// Stderr is the trimmed stderr output
	Stderr string
	// Underlying error
	Err error
}

func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	if e.Stderr != "" {
		return fmt.Sprintf("command %q failed (exit code %d): %s", cmdline, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("command %q failed (exit code %d): %v", cmdline, e.ExitCode, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
