package main

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6b7686")
	warning = lipgloss.Color("#FFC107")
	info    = lipgloss.Color("#2196F3")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(info)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	tooltipStyle = lipgloss.NewStyle().Foreground(warning).Italic(true)
)
