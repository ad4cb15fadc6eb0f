package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPrinterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	if p.Styled() {
		t.Fatal("printer writing to a buffer should not be styled")
	}

	p.PrintHeader("Firmware Upload", "fwbuild postbuild", []Param{{Key: "Endpoint", Value: "http://x"}})
	p.PrintSuccess("Build metadata updated", []Param{
		{Key: "Build number", Value: "0.2"},
		{Key: "Build version", Value: "v0.0.002"},
	})
	p.PrintFailure("Upload failed", errors.New("boom"), []string{"tip"})

	want := "Build number: 0.2\nBuild version: v0.0.002\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrinterStyledResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetStyled(true)

	p.PrintResult(NewFailureResult("Upload failed", errors.New("connection refused"), []string{"Check the endpoint"}))

	out := buf.String()
	for _, want := range []string{"FAILED", "Upload failed", "connection refused", "Troubleshooting:", "Check the endpoint"} {
		if !strings.Contains(out, want) {
			t.Errorf("styled output missing %q:\n%s", want, out)
		}
	}
}

func TestHeaderKeepsParamOrder(t *testing.T) {
	h := NewHeader("Firmware Upload", "fwbuild postbuild", []Param{
		{Key: "Endpoint", Value: "http://upload"},
		{Key: "Artifact", Value: "firmware.bin"},
	}).SetWidth(80)

	out := h.Render()
	if !strings.Contains(out, "FIRMWARE UPLOAD") {
		t.Errorf("title not upper-cased:\n%s", out)
	}
	if strings.Index(out, "Endpoint") > strings.Index(out, "Artifact") {
		t.Errorf("params rendered out of order:\n%s", out)
	}
}

func TestProgress(t *testing.T) {
	p := NewProgress("", []string{"Read build metadata", "Locate firmware", "Upload firmware"})

	p.UpdateStep(1, StepRunning, "")
	if p.Completed() != 0 || p.Percent != 0 {
		t.Errorf("running step counted as done: completed=%d percent=%v", p.Completed(), p.Percent)
	}
	p.UpdateStep(1, StepComplete, "")
	p.UpdateStep(2, StepComplete, "412 bytes")
	p.UpdateStep(3, StepFailed, "")

	if got := p.Percent; got < 0.66 || got > 0.67 {
		t.Errorf("Percent = %v, want 2/3", got)
	}

	line := p.RenderStep(2)
	if !strings.Contains(line, "[2/3]") || !strings.Contains(line, StepMarkerComplete) || !strings.Contains(line, "(412 bytes)") {
		t.Errorf("RenderStep(2) = %q", line)
	}
	if !strings.Contains(p.RenderStep(3), FailureMarker) {
		t.Errorf("RenderStep(3) = %q, want failure marker", p.RenderStep(3))
	}
	if p.RenderStep(4) != "" {
		t.Error("out of range step should render empty")
	}

	bar := p.RenderBar()
	if !strings.Contains(bar, "67%") || !strings.Contains(bar, "[2/3]") {
		t.Errorf("RenderBar() = %q, want 67%% and [2/3]", bar)
	}

	full := p.Render()
	if strings.Index(full, "Upload firmware") > strings.Index(full, "67%") {
		t.Errorf("Render() should list steps before the bar:\n%s", full)
	}

	// Out of range updates are ignored.
	p.UpdateStep(0, StepComplete, "")
	p.UpdateStep(9, StepComplete, "")
	if p.Completed() != 2 {
		t.Errorf("Completed() = %d after out of range updates, want 2", p.Completed())
	}
}

func TestRunnerSuccess(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	r := NewRunner(p, RunnerConfig{
		Title:     "Build Metadata",
		Command:   "fwbuild prebuild",
		StepNames: []string{"Gather facts", "Write header"},
	})

	result, err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (*Result, error) {
		onStep(1, StepComplete, "")
		onStep(2, StepComplete, "")
		return NewSuccessResult("done", []Param{{Key: "Build number", Value: "0.1"}}), nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Title != "done" {
		t.Errorf("result title = %q", result.Title)
	}
	if buf.String() != "Build number: 0.1\n" {
		t.Errorf("plain output = %q", buf.String())
	}
	for _, s := range r.progress.Steps {
		if s.Status != StepComplete {
			t.Errorf("step %d status = %v, want complete", s.Number, s.Status)
		}
	}
}

func TestRunnerFailureMarksRunningStep(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetStyled(true)
	r := NewRunner(p, RunnerConfig{
		Title:           "Firmware Upload",
		Command:         "fwbuild postbuild",
		StepNames:       []string{"Read build metadata", "Locate firmware", "Upload firmware"},
		Troubleshooting: []string{"Run the build first"},
	})

	wantErr := errors.New("firmware file not found")
	_, err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (*Result, error) {
		onStep(1, StepComplete, "")
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}

	steps := r.progress.Steps
	if steps[1].Status != StepFailed {
		t.Errorf("step 2 status = %v, want failed", steps[1].Status)
	}
	if steps[2].Status != StepPending {
		t.Errorf("step 3 status = %v, want pending", steps[2].Status)
	}
	if !strings.Contains(buf.String(), "Run the build first") {
		t.Errorf("failure box missing troubleshooting:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "33%  [1/3]") {
		t.Errorf("progress bar missing from styled output:\n%s", buf.String())
	}
}

func TestRunnerStyledPrintsBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetStyled(true)
	r := NewRunner(p, RunnerConfig{
		Title:     "Build Metadata",
		Command:   "fwbuild prebuild",
		StepNames: []string{"Gather facts", "Write header"},
	})

	_, err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (*Result, error) {
		onStep(1, StepComplete, "")
		onStep(2, StepComplete, "build_info.h")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Gather facts", "(build_info.h)", "100%  [2/2]", "Build Metadata complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("styled output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "[2/2] Write header") > strings.Index(out, "100%") {
		t.Errorf("bar printed before the last step:\n%s", out)
	}
}

func TestConfirmOverwrite(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		got := ConfirmOverwrite(strings.NewReader(tt.input), NewPrinter(&buf), "fwbuild.yaml")
		if got != tt.want {
			t.Errorf("ConfirmOverwrite(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(buf.String(), "Overwrite fwbuild.yaml?") {
			t.Errorf("prompt not printed: %q", buf.String())
		}
	}
}

func TestPromptModel(t *testing.T) {
	var m tea.Model = newPromptModel(BacktracePrompt)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" 0x400d1234:0x3ffb1230 ")})
	if !strings.Contains(m.View(), BacktracePrompt) {
		t.Errorf("View() = %q, want prompt label", m.View())
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit the program")
	}

	pm := m.(promptModel)
	if !pm.submitted {
		t.Error("model not marked submitted")
	}
	if pm.Value() != "0x400d1234:0x3ffb1230" {
		t.Errorf("Value() = %q", pm.Value())
	}
	if pm.View() != "" {
		t.Errorf("View() after submit = %q, want empty", pm.View())
	}
}

func TestPromptModelCancel(t *testing.T) {
	var m tea.Model = newPromptModel(BacktracePrompt)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.(promptModel).cancelled {
		t.Error("esc should cancel the prompt")
	}
}
