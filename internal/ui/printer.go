// Package ui renders the CLI's human-facing output.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled status lines to a terminal. Colors are dropped
// automatically when the writer is not a terminal.
type Printer struct {
	w io.Writer

	success lipgloss.Style
	failure lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		section: r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("6")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Line prints a plain line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Success prints a line prefixed with a check mark.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.success.Render("✅"), fmt.Sprintf(format, args...))
}

// Failure prints a line prefixed with a cross.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.failure.Render("❌"), fmt.Sprintf(format, args...))
}

// Section prints a bold heading preceded by a blank line.
func (p *Printer) Section(title string) {
	fmt.Fprintf(p.w, "\n%s\n", p.section.Render(title))
}

// Field prints an indented "label: value" pair.
func (p *Printer) Field(label string, value any) {
	fmt.Fprintf(p.w, "  %s %v\n", p.label.Render(label+":"), value)
}

// Divider prints a horizontal rule.
func (p *Printer) Divider() {
	fmt.Fprintln(p.w, p.muted.Render("----------------------------------------"))
}

// Hint prints a muted line, for follow-up suggestions.
func (p *Printer) Hint(format string, args ...any) {
	fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf(format, args...)))
}
