package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/dupsweep/internal/ui/views"
)

// RunInteractive starts the interactive TUI mode
func RunInteractive(deps views.Deps) error {
	m := views.NewAppModel(deps)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(deps.Ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running interactive mode: %w", err)
	}

	return nil
}
