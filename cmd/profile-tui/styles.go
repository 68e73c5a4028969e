// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import "github.com/charmbracelet/lipgloss"

var (
	ColorIce  = lipgloss.Color("45")
	ColorDeep = lipgloss.Color("62")

	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorIce)

	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorIce).MarginBottom(1)

	StyleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDeep).
			Padding(0, 1)

	StyleTab = lipgloss.NewStyle().Padding(0, 2)

	StyleTabActive = StyleTab.Foreground(ColorIce).Bold(true).Underline(true)
)
