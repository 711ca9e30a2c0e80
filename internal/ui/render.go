// Package ui renders tool results, declarations and audit history for the
// terminal. Styling is optional so piped output stays plain.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/iavtools/internal/adapter"
	"github.com/Cyclone1070/iavtools/internal/tool"
	"github.com/Cyclone1070/iavtools/internal/tool/service/audit"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	HeaderStyle = lipgloss.NewStyle().Bold(true)
	OKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Renderer formats command output. The zero value renders plain text.
type Renderer struct {
	styled   bool
	markdown *glamour.TermRenderer
}

// NewRenderer returns a renderer. When styled is false, or the markdown
// renderer cannot be built, output is plain text.
func NewRenderer(styled bool, wordWrap int) *Renderer {
	r := &Renderer{styled: styled}
	if !styled {
		return r
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err == nil {
		r.markdown = md
	}
	return r
}

// Result renders a tool result under a status header.
func (r *Renderer) Result(name string, res *adapter.Result) string {
	status := "ok"
	style := OKStyle
	if res.Error {
		status = "error"
		style = ErrorStyle
	}
	header := fmt.Sprintf("%s: %s", name, status)
	if r.styled {
		header = HeaderStyle.Render(name) + " " + style.Render(status) + " " + DimStyle.Render(res.ID)
	}
	if res.Output == "" {
		return header
	}
	return header + "\n" + res.Output
}

// Error renders a failed invocation.
func (r *Renderer) Error(name string, err error) string {
	if r.styled {
		return HeaderStyle.Render(name) + " " + ErrorStyle.Render("failed") + "\n" + err.Error()
	}
	return fmt.Sprintf("%s: failed\n%s", name, err)
}

// Markdown renders md through glamour when styling is on.
func (r *Renderer) Markdown(md string) string {
	if r.markdown == nil {
		return md
	}
	out, err := r.markdown.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Tools renders tool declarations as a table. Required parameters carry a
// trailing asterisk.
func (r *Renderer) Tools(decls []tool.Declaration) string {
	var sb strings.Builder
	sb.WriteString("| Tool | Parameters | Description |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, d := range decls {
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", d.Name, paramList(d.Parameters), cell(d.Description))
	}
	return r.Markdown(sb.String())
}

// Audit renders audit entries as a table, oldest first.
func (r *Renderer) Audit(entries []audit.Entry) string {
	if len(entries) == 0 {
		return "No audit entries"
	}
	var sb strings.Builder
	sb.WriteString("| Time | Mode | Command | Exit | Duration |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			e.Timestamp.UTC().Format(time.RFC3339),
			e.Mode,
			cell(commandLine(e)),
			exitText(e),
			(time.Duration(e.DurationMs) * time.Millisecond).String(),
		)
	}
	return r.Markdown(sb.String())
}

func paramList(s *tool.Schema) string {
	if s == nil || len(s.Properties) == 0 {
		return "-"
	}
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if required[name] {
			names[i] = name + "*"
		}
	}
	return strings.Join(names, ", ")
}

func commandLine(e audit.Entry) string {
	if len(e.Args) == 0 {
		return e.Cmd
	}
	return e.Cmd + " " + strings.Join(e.Args, " ")
}

func exitText(e audit.Entry) string {
	switch {
	case e.TimedOut:
		return "timeout"
	case e.Error != "":
		return "error"
	case e.ExitCode == nil:
		return "-"
	default:
		return fmt.Sprintf("%d", *e.ExitCode)
	}
}

// cell makes s safe for a single markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
