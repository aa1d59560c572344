// Package ui renders resolution results for terminals: lipgloss styles for
// results and host listings, and a bubbletea spinner shown while a
// resolution is running.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vidresolve/internal/extract"
	"vidresolve/internal/resolve"
)

var (
	okTag      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("28")).Padding(0, 1)
	passTag    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Padding(0, 1)
	failTag    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Padding(0, 1)
	hostStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	faint      = lipgloss.NewStyle().Faint(true)
	urlStyle   = lipgloss.NewStyle().Underline(true)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
)

// Result renders one resolution for humans.
func Result(source string, res *resolve.Result) string {
	var b strings.Builder
	switch res.Status {
	case resolve.StatusResolved:
		b.WriteString(okTag.Render("resolved"))
	case resolve.StatusPassthrough:
		b.WriteString(passTag.Render("passthrough"))
	default:
		b.WriteString(failTag.Render("unresolved"))
	}
	b.WriteString(" " + hostStyle.Render(res.Host.String()))
	if res.Method != "" {
		b.WriteString(" " + faint.Render("via "+res.Method))
	}
	if res.Cached {
		b.WriteString(" " + faint.Render("cached"))
	}
	b.WriteString(" " + faint.Render(attempts(res.Attempts)))
	b.WriteString("\n  " + faint.Render(source) + "\n")

	if res.URL != "" {
		b.WriteString("  " + urlStyle.Render(res.URL) + "\n")
	}
	if res.Reason != "" {
		b.WriteString("  " + faint.Render(res.Reason) + "\n")
	}
	if len(res.Tried) > 0 {
		b.WriteString("  " + faint.Render("tried: "+strings.Join(res.Tried, ", ")) + "\n")
	}
	return b.String()
}

func attempts(n int) string {
	if n == 1 {
		return "(1 attempt)"
	}
	return fmt.Sprintf("(%d attempts)", n)
}

// Hosts renders the adapter table: host kind, claimed hostnames and
// methods in execution order.
func Hosts(adapters []*extract.Adapter) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Supported hosts") + "\n\n")
	for _, a := range adapters {
		hosts := strings.Join(a.Hosts, ", ")
		if hosts == "" {
			hosts = "any other host"
		}
		fmt.Fprintf(&b, "%s %s\n", hostStyle.Width(12).Render(a.Kind.String()), faint.Render(hosts))
		fmt.Fprintf(&b, "%s %s\n", strings.Repeat(" ", 12), strings.Join(a.MethodNames(), " → "))
	}
	return b.String()
}
