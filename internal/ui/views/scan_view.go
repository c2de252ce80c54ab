package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize/english"

	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
)

// ScanViewModel shows a running scan session
type ScanViewModel struct {
	deps     Deps
	spinner  spinner.Model
	bar      progress.Model
	session  *scanner.Session
	snap     scanner.SessionSnapshot
	finished bool
	width    int
}

type scanStartedMsg struct {
	session *scanner.Session
}

// NewScanViewModel creates a new scan view model
func NewScanViewModel(deps Deps, width, height int) *ScanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	bar := progress.New(progress.WithDefaultGradient())
	if width > 10 {
		bar.Width = min(width-10, 60)
	}

	return &ScanViewModel{
		deps:    deps,
		spinner: s,
		bar:     bar,
		width:   width,
	}
}

// Init initializes the scan view
func (m *ScanViewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startScan)
}

func (m *ScanViewModel) startScan() tea.Msg {
	session, err := m.deps.Scanner.Start(m.deps.Ctx)
	if err != nil {
		return errMsg{err: fmt.Errorf("start scan: %w", err)}
	}
	return scanStartedMsg{session: session}
}

// waitForSession reports the session once every category is terminal
func waitForSession(s *scanner.Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Done()
		return ScanCompleteMsg{Snapshot: s.Snapshot()}
	}
}

// Cancel stops the running session, if any
func (m *ScanViewModel) Cancel() {
	if m != nil && m.session != nil {
		m.session.Cancel()
	}
}

// Update handles messages
func (m *ScanViewModel) Update(msg tea.Msg) (*ScanViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanStartedMsg:
		m.session = msg.session
		m.snap = msg.session.Snapshot()
		return m, waitForSession(msg.session)

	case progressMsg:
		if m.session != nil {
			m.snap = m.session.Snapshot()
		}

	case tea.KeyMsg:
		if msg.String() == "c" {
			m.Cancel()
		}
	}

	return m, nil
}

// View renders the scan view
func (m *ScanViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("🔍 Scanning for Duplicates"))
	b.WriteString("\n\n")

	task := m.snap.CurrentTask
	if task == "" {
		task = "Starting Scan"
	}
	b.WriteString(m.spinner.View())
	b.WriteString(" " + task + " ")
	if !m.snap.StartedAt.IsZero() {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", m.snap.Elapsed().Round(time.Second))))
	}
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.snap.OverallProgress))
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Categories:"))
	b.WriteString("\n")
	for _, c := range m.snap.Categories {
		b.WriteString(fmt.Sprintf("  %s %-16s %s",
			styles.GetCategoryIcon(c.Category),
			c.Category.DisplayName(),
			styles.StatusStyle(c.Status).Render(styles.StatusIcon(c.Status)+" "+c.Status.String()),
		))
		if c.Status.IsTerminal() && len(c.Groups) > 0 {
			b.WriteString(styles.DimStyle.Render(" " + english.Plural(len(c.Groups), "group", "groups")))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("c stop and review • ctrl+c cancel and exit"))

	return b.String()
}
