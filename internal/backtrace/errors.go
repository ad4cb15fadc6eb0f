package backtrace

import (
	"errors"
	"fmt"
)

// ErrNoAddresses is returned when the input holds no PC:SP frames.
var ErrNoAddresses = errors.New("no addresses found in backtrace")

// ResolverError represents a failed run of the address resolution tool.
type ResolverError struct {
	// Command is the full command line that was run
	Command []string
	// ExitCode is the process exit code, -1 if it never started
	ExitCode int
	// Stderr is the tool's error output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *ResolverError) Error() string {
	if e.Err != nil && e.Stderr == "" {
		return fmt.Sprintf("address resolver %q failed (exit code %d): %v", e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("address resolver %q failed (exit code %d)\nstderr: %s", e.Command, e.ExitCode, e.Stderr)
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the resolver ran longer than allowed.
type TimeoutError struct {
	// Timeout is the duration that was exceeded
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("address resolver timed out after %s\n"+
		"Hint: Increase resolver.timeout or check that the image path is correct",
		e.Timeout)
}
