package ui

import "github.com/charmbracelet/lipgloss"

// Theme is the set of styles the screen draws with.
type Theme struct {
	Name string

	Title    lipgloss.Style
	Author   lipgloss.Style
	Meta     lipgloss.Style
	Body     lipgloss.Style
	Selected lipgloss.Style
	Agreed   lipgloss.Style
	Error    lipgloss.Style
	Faint    lipgloss.Style
}

func themeByName(name string) Theme {
	switch name {
	case "Nord":
		return nordTheme()
	case "Plain":
		return plainTheme()
	default:
		return draculaTheme()
	}
}

func draculaTheme() Theme {
	return Theme{
		Name:     "Dracula",
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bd93f9")),
		Author:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd")),
		Meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4")),
		Body:     lipgloss.NewStyle().Foreground(lipgloss.Color("#f8f8f2")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#50fa7b")),
		Agreed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb86c")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5555")),
		Faint:    lipgloss.NewStyle().Faint(true),
	}
}

func nordTheme() Theme {
	return Theme{
		Name:     "Nord",
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#88c0d0")),
		Author:   lipgloss.NewStyle().Foreground(lipgloss.Color("#81a1c1")),
		Meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4c566a")),
		Body:     lipgloss.NewStyle().Foreground(lipgloss.Color("#eceff4")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a3be8c")),
		Agreed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ebcb8b")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bf616a")),
		Faint:    lipgloss.NewStyle().Faint(true),
	}
}

func plainTheme() Theme {
	return Theme{
		Name:     "Plain",
		Title:    lipgloss.NewStyle().Bold(true),
		Author:   lipgloss.NewStyle(),
		Meta:     lipgloss.NewStyle().Faint(true),
		Body:     lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().Reverse(true),
		Agreed:   lipgloss.NewStyle().Bold(true),
		Error:    lipgloss.NewStyle().Bold(true),
		Faint:    lipgloss.NewStyle().Faint(true),
	}
}
