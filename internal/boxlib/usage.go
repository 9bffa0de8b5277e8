package boxlib

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// InputFileFirst is printed when an option precedes the input file.
const InputFileFirst = "input file must be first argument\n"

const usageHeader = "usage:\n"

// UsageText returns the invocation help for program.
func UsageText(program string) string {
	var b strings.Builder
	b.WriteString(usageHeader)
	b.WriteString(program)
	b.WriteString(" infile [options] \n\tOptions:\n")
	b.WriteString("\t     [<root>.]<var>  = <val_list>\n")
	b.WriteString("\tor  -[<root>.]<var>\n")
	b.WriteString("\t where:\n")
	b.WriteString("\t    <root>     =  class name of variable\n")
	b.WriteString("\t    <var>      =  variable name\n")
	b.WriteString("\t    <val_list> =  list of values\n")
	return b.String()
}

// usageStyle returns the header style for w, or nil when w is not a
// terminal.
func usageStyle(w io.Writer) *lipgloss.Style {
	if !isTerminal(w) {
		return nil
	}
	style := lipgloss.NewRenderer(w).NewStyle().Bold(true)
	return &style
}

// renderUsage applies style to the header. The text is otherwise
// unchanged.
func renderUsage(program string, style *lipgloss.Style) string {
	text := UsageText(program)
	if style == nil {
		return text
	}
	return style.Render(strings.TrimSuffix(usageHeader, "\n")) + "\n" +
		strings.TrimPrefix(text, usageHeader)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
