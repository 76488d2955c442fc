package ui

import "github.com/charmbracelet/lipgloss"

const (
	accent = lipgloss.Color("62")
	muted  = lipgloss.Color("241")
	light  = lipgloss.Color("230")
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(light).
			Background(accent).
			Bold(true).
			Padding(0, 1).
			Align(lipgloss.Center)

	footerStyle = baseStyle.Align(lipgloss.Center)

	keyStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	descStyle = lipgloss.NewStyle().Foreground(muted)
	timeStyle = lipgloss.NewStyle().Foreground(muted)

	// Event line colours, by severity.
	serverStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)
