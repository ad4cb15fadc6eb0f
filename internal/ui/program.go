package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes UI components to a writer. Styled output (boxes,
// colours, step lines) is only produced when the writer is a terminal;
// otherwise components degrade to plain lines that build logs can carry.
type Printer struct {
	out    io.Writer
	width  int
	styled bool
}

// NewPrinter creates a Printer for w. If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = IsTerminal(f)
	}
	return &Printer{
		out:    w,
		width:  GetTerminalWidth(),
		styled: styled,
	}
}

// SetStyled forces styled output on or off.
func (p *Printer) SetStyled(styled bool) *Printer {
	p.styled = styled
	return p
}

// Styled reports whether the printer renders boxes.
func (p *Printer) Styled() bool {
	return p.styled
}

// Width returns the terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintParams prints "Key: Value" lines.
func (p *Printer) PrintParams(params []Param) {
	for _, param := range params {
		p.Printf("%s: %s\n", param.Key, param.Value)
	}
}

// PrintHeader prints a command header box. Plain output skips it.
func (p *Printer) PrintHeader(title, command string, params []Param) {
	if !p.styled {
		return
	}
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintResult prints a result box. Plain output prints r.Plain when set,
// otherwise the details as lines and, for failures, the error.
func (p *Printer) PrintResult(r *Result) {
	if p.styled {
		p.Newline()
		p.Println(r.SetWidth(p.width).Render())
		return
	}
	if r.Plain != "" {
		p.Println(r.Plain)
		return
	}
	p.PrintParams(r.Details)
	if r.Error != nil {
		p.Printf("%s: %v\n", r.Title, r.Error)
	}
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Param) {
	p.PrintResult(NewSuccessResult(title, details))
}

// PrintFailure prints a failure box with troubleshooting tips. Plain
// output leaves error reporting to the caller.
func (p *Printer) PrintFailure(title string, err error, troubleshooting []string) {
	if !p.styled {
		return
	}
	p.PrintResult(NewFailureResult(title, err, troubleshooting))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details []Param) {
	p.PrintResult(NewWarningResult(title, details))
}
