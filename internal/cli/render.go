package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/inercia/llm-code/pkg/workspace"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("4")).
			Padding(0, 1)

	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle       = lipgloss.NewStyle().Faint(true)
	assistantStyle = lipgloss.NewStyle().Bold(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

// Printer writes the REPL output. It also reports session progress, so it
// can be passed to chat.WithObserver.
type Printer struct {
	out      io.Writer
	markdown *glamour.TermRenderer
}

// NewPrinter creates a printer writing to out. Replies are rendered as
// markdown when markdown is true and a renderer can be built; otherwise they
// are printed verbatim.
func NewPrinter(out io.Writer, markdown bool) *Printer {
	p := &Printer{out: out}
	if markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			p.markdown = r
		}
	}
	return p
}

// IsTerminal reports whether stdout is a terminal, in which case markdown
// rendering makes sense
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func (p *Printer) println(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(p.out, style.Render(fmt.Sprintf(format, args...)))
}

// Info prints an informational line
func (p *Printer) Info(format string, args ...any) {
	p.println(infoStyle, format, args...)
}

// Success prints a confirmation line
func (p *Printer) Success(format string, args ...any) {
	p.println(successStyle, format, args...)
}

// Warn prints a warning line
func (p *Printer) Warn(format string, args ...any) {
	p.println(warningStyle, format, args...)
}

// Error prints an error line
func (p *Printer) Error(format string, args ...any) {
	p.println(errorStyle, format, args...)
}

// Dim prints a low-emphasis line
func (p *Printer) Dim(format string, args ...any) {
	p.println(dimStyle, format, args...)
}

// Plain prints a line with no styling
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Banner prints the startup panel
func (p *Printer) Banner() {
	body := titleStyle.Render("LLM CODE") + "\n" +
		"Chat with multiple LLM providers\n" +
		"Type /help for commands"
	fmt.Fprintln(p.out, bannerStyle.Render(body))
}

// Markdown prints text through the markdown renderer
func (p *Printer) Markdown(text string) {
	fmt.Fprintln(p.out, p.render(text))
}

// Reply prints an assistant reply
func (p *Printer) Reply(reply string) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, assistantStyle.Render("Assistant:"))
	fmt.Fprintln(p.out, p.render(reply))
}

func (p *Printer) render(text string) string {
	if p.markdown == nil {
		return text
	}
	rendered, err := p.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// FilesLoading implements chat.Observer
func (p *Printer) FilesLoading(files []string) {
	p.Info("Loading files: %s", strings.Join(files, ", "))
}

// FileWarning implements chat.Observer
func (p *Printer) FileWarning(block workspace.Block) {
	p.Warn("%s", block.Content)
}

// Generating implements chat.Observer
func (p *Printer) Generating(provider string) {
	p.Dim("Using %s...", provider)
}
