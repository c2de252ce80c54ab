package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize/english"

	"github.com/fenilsonani/dupsweep/internal/cleaner"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
)

// SummaryViewModel handles the summary/results view
type SummaryViewModel struct {
	report *models.DeletionReport
}

// NewSummaryViewModel creates a new summary view model
func NewSummaryViewModel(report *models.DeletionReport) *SummaryViewModel {
	return &SummaryViewModel{report: report}
}

// Update handles messages
func (m *SummaryViewModel) Update(msg tea.Msg) (*SummaryViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "enter":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the summary view
func (m *SummaryViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("✨ Deletion Summary"))
	b.WriteString("\n\n")

	if m.report != nil {
		b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("✓ Deleted %s",
			english.Plural(m.report.SucceededCount(), "item", "items"))))
		b.WriteString("\n")

		if failed := m.report.FailedCount(); failed > 0 {
			b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("✗ %s could not be deleted",
				english.Plural(failed, "item", "items"))))
			b.WriteString("\n")
			b.WriteString(cleaner.FormatErrorSummary(m.report))
		}

		if m.report.DryRun {
			b.WriteString("\n")
			b.WriteString(styles.InfoStyle.Render("Note: This was a dry run. Nothing was actually deleted."))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Press q or enter to exit"))

	return b.String()
}
