// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command profile-tui is a read-only terminal browser over a decoded proxy
// profile's policies, groups and rules: a bubbletea Model wrapping one
// bubbles/list per view, styled with lipgloss, switched with Tab.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"grimm.is/relayprofile/internal/config"
)

func main() {
	path := flag.String("profile", "", "path to a profile text file")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: profile-tui -profile <file>")
		os.Exit(2)
	}

	pf, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading profile: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(pf.Profile), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}
