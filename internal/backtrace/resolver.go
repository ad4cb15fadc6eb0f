package backtrace

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Config holds the configuration for address resolution.
type Config struct {
	// Command is the addr2line-compatible binary.
	// Default: "addr2line" (searches PATH)
	Command string

	// Wrapper is prepended to the command line, e.g. ["wsl"].
	Wrapper []string

	// ExtraArgs are passed to the tool before -e <image>, e.g. ["-f", "-C"].
	ExtraArgs []string

	// Image is the firmware ELF file the addresses belong to.
	Image string

	// Timeout is the maximum time to wait for the tool. 0 means no limit.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Command: "addr2line",
	}
}

// Resolver runs the address resolution tool.
type Resolver struct {
	config Config
	logger *zap.Logger
}

// NewResolver creates a resolver with the given configuration.
func NewResolver(config Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		config: config,
		logger: logger,
	}
}

// CommandLine returns the full argument vector for resolving addrs.
func (r *Resolver) CommandLine(addrs []string) []string {
	argv := make([]string, 0, len(r.config.Wrapper)+len(r.config.ExtraArgs)+len(addrs)+3)
	argv = append(argv, r.config.Wrapper...)
	argv = append(argv, r.config.Command)
	argv = append(argv, r.config.ExtraArgs...)
	argv = append(argv, "-e", r.config.Image)
	argv = append(argv, addrs...)
	return argv
}

// Resolve extracts the addresses from backtrace and writes the tool's
// output to w line by line as it arrives. It returns ErrNoAddresses
// without starting the tool when the backtrace holds no frames.
func (r *Resolver) Resolve(ctx context.Context, backtrace string, w io.Writer) error {
	addrs := ParseAddresses(backtrace)
	if len(addrs) == 0 {
		return ErrNoAddresses
	}
	return r.ResolveAddresses(ctx, addrs, w)
}

// ResolveAddresses runs the tool for addrs, in order, streaming its
// stdout to w.
func (r *Resolver) ResolveAddresses(ctx context.Context, addrs []string, w io.Writer) error {
	if len(addrs) == 0 {
		return ErrNoAddresses
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	argv := r.CommandLine(addrs)
	startTime := time.Now()

	r.logger.Info("resolving backtrace",
		zap.Strings("command", argv),
		zap.Int("addresses", len(addrs)),
	)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// Children of a wrapper may hold the pipes open after the wrapper is killed.
	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return &ResolverError{Command: argv, ExitCode: -1, Err: err}
	}

	lines, copyErr := streamLines(stdout, w)
	waitErr := cmd.Wait()

	r.logger.Debug("resolver finished",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("lines", lines),
		zap.String("stderr", stderr.String()),
	)

	if ctx.Err() == context.DeadlineExceeded {
		return &TimeoutError{Timeout: r.config.Timeout.String()}
	}

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &ResolverError{
			Command:  argv,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      waitErr,
		}
	}

	if copyErr != nil {
		return fmt.Errorf("failed to write resolver output: %w", copyErr)
	}

	return nil
}

// streamLines copies src to dst one line at a time so each resolved
// location is visible as soon as the tool prints it. After a write error
// the rest of src is drained so the tool can exit.
func streamLines(src io.Reader, dst io.Writer) (int, error) {
	reader := bufio.NewReader(src)
	lines := 0
	var writeErr error

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 && writeErr == nil {
			if _, werr := io.WriteString(dst, line); werr != nil {
				writeErr = werr
			} else {
				lines++
			}
		}
		if err != nil {
			if err == io.EOF {
				return lines, writeErr
			}
			if writeErr != nil {
				return lines, writeErr
			}
			return lines, err
		}
	}
}
