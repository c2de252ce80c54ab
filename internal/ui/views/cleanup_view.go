package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/dupsweep/internal/models"
	prog "github.com/fenilsonani/dupsweep/internal/progress"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
)

// CleanupViewModel handles the deletion progress view
type CleanupViewModel struct {
	deps      Deps
	items     []models.Item
	spinner   spinner.Model
	bar       progress.Model
	processed int
	failed    int
	startTime time.Time
	cancel    context.CancelFunc
	cancelled bool
}

// NewCleanupViewModel creates a new cleanup view model
func NewCleanupViewModel(deps Deps, items []models.Item, width int) *CleanupViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	bar := progress.New(progress.WithDefaultGradient())
	if width > 10 {
		bar.Width = min(width-10, 60)
	}

	return &CleanupViewModel{
		deps:      deps,
		items:     items,
		spinner:   s,
		bar:       bar,
		startTime: time.Now(),
	}
}

// Init starts deletion
func (m *CleanupViewModel) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(m.deps.Ctx)
	m.cancel = cancel

	run := func() tea.Msg {
		defer cancel()
		report := m.deps.Executor.Delete(ctx, m.items)
		if m.deps.OnDeletionComplete != nil {
			m.deps.OnDeletionComplete(m.deps.Ctx, report)
		}
		return CleanupCompleteMsg{Report: report}
	}
	return tea.Batch(m.spinner.Tick, run)
}

// Cancel stops items not yet dispatched
func (m *CleanupViewModel) Cancel() {
	if m != nil && m.cancel != nil {
		m.cancel()
		m.cancelled = true
	}
}

// Update handles messages
func (m *CleanupViewModel) Update(msg tea.Msg) (*CleanupViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		if p, ok := msg.update.(*prog.CleanProgress); ok {
			m.processed = p.Processed
			m.failed = p.Failed
		}
	}

	return m, nil
}

// View renders the cleanup view
func (m *CleanupViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("🗑️  Deleting Duplicates"))
	b.WriteString("\n\n")

	b.WriteString(m.spinner.View())
	if m.cancelled {
		b.WriteString(" Stopping... ")
	} else {
		b.WriteString(" Deleting... ")
	}
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
	b.WriteString("\n\n")

	percent := 0.0
	if len(m.items) > 0 {
		percent = float64(m.processed) / float64(len(m.items))
	}
	b.WriteString(m.bar.ViewAs(percent))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Progress: %d/%d items", m.processed, len(m.items)))
	if m.failed > 0 {
		b.WriteString(" " + styles.ErrorStyle.Render(fmt.Sprintf("(%d failed)", m.failed)))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("ctrl+c stop"))

	return b.String()
}
