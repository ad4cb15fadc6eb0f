package ui

import (
	"context"
	"time"
)

// RunnerConfig describes an operation shown with a header, a step list
// and a result box.
type RunnerConfig struct {
	Title           string  // e.g., "Firmware Upload"
	Command         string  // e.g., "fwbuild postbuild"
	Params          []Param // Shown in the header
	StepNames       []string
	Troubleshooting []string // Shown when the operation returns an error
}

// Operation is the work a Runner drives. It reports progress through
// onStep and may return its own result box; nil means a plain success.
type Operation func(ctx context.Context, onStep StepCallback) (*Result, error)

// Runner orchestrates the header → steps → result flow of an operation.
type Runner struct {
	config   RunnerConfig
	printer  *Printer
	progress *Progress
}

// NewRunner creates a runner printing through p.
func NewRunner(p *Printer, config RunnerConfig) *Runner {
	var progress *Progress
	if len(config.StepNames) > 0 {
		progress = NewProgress("", config.StepNames).SetWidth(p.Width())
	}
	return &Runner{
		config:   config,
		printer:  p,
		progress: progress,
	}
}

// Run executes op, printing the header first and the result last.
// The error returned by op is returned unchanged.
func (r *Runner) Run(ctx context.Context, op Operation) (*Result, error) {
	start := time.Now()
	r.printer.PrintHeader(r.config.Title, r.config.Command, r.config.Params)

	result, err := op(ctx, r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	if err != nil {
		r.failRunning()
		r.printBar()
		r.printer.PrintFailure(r.config.Title+" failed", err, r.config.Troubleshooting)
		return nil, err
	}

	if result == nil {
		result = NewSuccessResult(r.config.Title+" complete", nil)
	}
	r.printBar()
	if r.printer.Styled() {
		result.AddDetail("Duration", duration.String())
	}
	r.printer.PrintResult(result)
	return result, nil
}

func (r *Runner) onStep(number int, status StepStatus, message string) {
	if r.progress == nil {
		return
	}
	r.progress.UpdateStep(number, status, message)
	if status.Done() && r.printer.Styled() {
		r.printer.Println(r.progress.RenderStep(number))
	}
}

// printBar closes the step list with the overall bar on styled output.
func (r *Runner) printBar() {
	if r.progress == nil || !r.printer.Styled() {
		return
	}
	r.printer.Newline()
	r.printer.Println(r.progress.RenderBar())
}

// failRunning marks the step that was in progress as failed.
func (r *Runner) failRunning() {
	if r.progress == nil {
		return
	}
	for _, step := range r.progress.Steps {
		if !step.Status.Done() {
			r.onStep(step.Number, StepFailed, "")
			return
		}
	}
}
