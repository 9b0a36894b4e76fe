package cli

import (
	"fmt"

	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleMuted   = lipgloss.NewStyle().Faint(true)
	styleLabel   = lipgloss.NewStyle().Bold(true).Width(12)
)

func statusStyle(s deployments.Status) lipgloss.Style {
	switch s {
	case deployments.StatusActive:
		return styleActive
	case deployments.StatusFailed:
		return styleFailed
	}
	return stylePending
}

func renderStatus(s deployments.Status) string {
	return statusStyle(s).Render(string(s))
}

// progressLine renders "[ 50%] deploying  message" for the last log line.
func progressLine(d deployments.Deployment) string {
	msg := ""
	if n := len(d.Logs); n > 0 {
		msg = d.Logs[n-1].Message
	}
	return fmt.Sprintf("[%3d%%] %s  %s", d.Progress, renderStatus(d.Status), msg)
}
