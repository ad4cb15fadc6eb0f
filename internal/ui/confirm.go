package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmOverwrite shows a warning naming path and asks whether to
// replace it. Only "y" or "yes" (any case) confirms; a read error or EOF
// declines.
func ConfirmOverwrite(in io.Reader, p *Printer, path string) bool {
	if p.Styled() {
		p.PrintWarning("File exists", []Param{{Key: "Path", Value: path}})
		p.Newline()
	}

	prompt := fmt.Sprintf("Overwrite %s? [y/N]: ", path)
	if p.Styled() {
		prompt = lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render(prompt)
	}
	p.Printf("%s", prompt)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		p.Newline()
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}

	p.Println(lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	return false
}
