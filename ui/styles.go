package ui

import "github.com/charmbracelet/lipgloss"

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")

	// User message style
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Assistant message style
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// System/metadata style
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Interactive action prompt style
	ActionStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	// Error style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	// REPL prompt style
	PromptStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)
)
