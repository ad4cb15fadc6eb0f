// Package ui provides terminal output components for the fwbuild and
// fwtrace commands.
//
// Components are rendered with Lipgloss and follow a "run once and exit"
// pattern:
//
//   - Header: banner showing the operation and its inputs
//   - Progress: step list with a progress bar
//   - Result: success, failure and warning boxes
//
// A Runner drives the header → steps → result flow for an operation.
// All output goes through a Printer, which only renders boxes when its
// writer is a terminal. Build hooks usually run with stdout captured by
// the build system, in which case the Printer falls back to plain
// "Key: Value" lines.
//
// The one interactive component is PromptBacktrace, a Bubble Tea text
// input used by fwtrace when no backtrace was given on the command line.
//
// # Logging Integration
//
// Logging is controlled by the FWBUILD_LOG_LEVEL environment variable or
// the --log-level flag. When neither is set zap is silent and only the
// output of this package is shown.
package ui
