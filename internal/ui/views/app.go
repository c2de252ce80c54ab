package views

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/dupsweep/internal/cleaner"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/progress"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
)

// ViewState represents the current view in the app
type ViewState int

const (
	ViewScanning ViewState = iota
	ViewCategorySelection
	ViewGroupBrowser
	ViewConfirmation
	ViewCleaning
	ViewSummary
	ViewHelp
)

// Deps are the engine pieces the interactive flow drives
type Deps struct {
	Ctx      context.Context
	Scanner  *scanner.Scanner
	Executor *cleaner.Executor
	Progress *progress.ProgressReporter
	DryRun   bool

	// OnScanComplete, if set, is called once with the finished session
	OnScanComplete func(scanner.SessionSnapshot)

	// OnDeletionComplete, if set, is called off the UI loop after each delete
	OnDeletionComplete func(context.Context, *models.DeletionReport)
}

// AppModel is the root model for the interactive TUI
type AppModel struct {
	state         ViewState
	previousState ViewState

	deps    Deps
	updates <-chan progress.Update
	snap    scanner.SessionSnapshot

	scanView     *ScanViewModel
	categoryView *CategoryViewModel
	browserView  *BrowserViewModel
	confirmView  *ConfirmViewModel
	cleanupView  *CleanupViewModel
	summaryView  *SummaryViewModel

	width  int
	height int
	err    error
}

// NewAppModel creates a new app model
func NewAppModel(deps Deps) *AppModel {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	return &AppModel{
		state: ViewScanning,
		deps:  deps,
	}
}

// Init subscribes to engine progress and starts scanning immediately
func (m *AppModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.deps.Progress != nil {
		m.updates = m.deps.Progress.Subscribe()
		cmds = append(cmds, waitForUpdate(m.updates))
	}
	m.scanView = NewScanViewModel(m.deps, m.width, m.height)
	cmds = append(cmds, m.scanView.Init())
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == ViewHelp {
			m.state = m.previousState
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			switch m.state {
			case ViewScanning:
				m.scanView.Cancel()
			case ViewCleaning:
				// Deletion stops early and reports what it managed
				m.cleanupView.Cancel()
				return m, nil
			}
			return m.quit()
		case "q":
			if m.state != ViewCleaning {
				if m.state == ViewScanning {
					m.scanView.Cancel()
				}
				return m.quit()
			}
		case "?":
			m.previousState = m.state
			m.state = ViewHelp
			return m, nil
		case "esc":
			switch m.state {
			case ViewGroupBrowser:
				m.state = ViewCategorySelection
				return m, nil
			case ViewConfirmation:
				m.state = ViewGroupBrowser
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case progressMsg:
		cmd := waitForUpdate(m.updates)
		_, viewCmd := m.delegateUpdate(msg)
		return m, tea.Batch(cmd, viewCmd)

	case ScanCompleteMsg:
		m.snap = msg.Snapshot
		if m.deps.OnScanComplete != nil {
			m.deps.OnScanComplete(msg.Snapshot)
		}
		m.categoryView = NewCategoryViewModel(m.snap, m.width, m.height)
		m.state = ViewCategorySelection
		return m, nil

	case CategoriesSelectedMsg:
		m.browserView = NewBrowserViewModel(m.snap, msg.Categories, m.width, m.height)
		m.state = ViewGroupBrowser
		return m, nil

	case ItemsSelectedMsg:
		m.confirmView = NewConfirmViewModel(msg.Items, m.deps.DryRun, m.width, m.height)
		m.state = ViewConfirmation
		return m, nil

	case ConfirmedMsg:
		m.cleanupView = NewCleanupViewModel(m.deps, m.confirmView.items, m.width)
		m.state = ViewCleaning
		return m, m.cleanupView.Init()

	case ReviewSelectionMsg:
		m.state = ViewGroupBrowser
		return m, nil

	case CleanupCompleteMsg:
		m.summaryView = NewSummaryViewModel(msg.Report)
		m.state = ViewSummary
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m.delegateUpdate(msg)
}

func (m *AppModel) quit() (tea.Model, tea.Cmd) {
	if m.updates != nil {
		m.deps.Progress.Unsubscribe(m.updates)
		m.updates = nil
	}
	return m, tea.Quit
}

// delegateUpdate delegates the update to the current view
func (m *AppModel) delegateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case ViewScanning:
		if m.scanView != nil {
			m.scanView, cmd = m.scanView.Update(msg)
		}
	case ViewCategorySelection:
		if m.categoryView != nil {
			m.categoryView, cmd = m.categoryView.Update(msg)
		}
	case ViewGroupBrowser:
		if m.browserView != nil {
			m.browserView, cmd = m.browserView.Update(msg)
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			m.confirmView, cmd = m.confirmView.Update(msg)
		}
	case ViewCleaning:
		if m.cleanupView != nil {
			m.cleanupView, cmd = m.cleanupView.Update(msg)
		}
	case ViewSummary:
		if m.summaryView != nil {
			m.summaryView, cmd = m.summaryView.Update(msg)
		}
	}

	return m, cmd
}

// View renders the current view
func (m *AppModel) View() string {
	if m.err != nil {
		return styles.ErrorStyle.Render("Error: "+m.err.Error()) + "\n\nPress q to quit."
	}

	switch m.state {
	case ViewScanning:
		if m.scanView != nil {
			return m.scanView.View()
		}
	case ViewCategorySelection:
		if m.categoryView != nil {
			return m.categoryView.View()
		}
	case ViewGroupBrowser:
		if m.browserView != nil {
			return m.browserView.View()
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			return m.confirmView.View()
		}
	case ViewCleaning:
		if m.cleanupView != nil {
			return m.cleanupView.View()
		}
	case ViewSummary:
		if m.summaryView != nil {
			return m.summaryView.View()
		}
	case ViewHelp:
		return m.renderHelp()
	}

	return "Loading..."
}

// State returns the current view state
func (m *AppModel) State() ViewState {
	return m.state
}

// renderHelp renders the help view with context-aware content
func (m *AppModel) renderHelp() string {
	var viewName, helpContent string

	switch m.previousState {
	case ViewScanning:
		viewName, helpContent = "Scan", helpScan
	case ViewCategorySelection:
		viewName, helpContent = "Category Selection", helpCategory
	case ViewGroupBrowser:
		viewName, helpContent = "Duplicate Groups", helpBrowser
	case ViewConfirmation:
		viewName, helpContent = "Confirmation", helpConfirm
	case ViewCleaning:
		viewName, helpContent = "Deletion", helpCleanup
	default:
		viewName, helpContent = "Summary", helpSummary
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Help - %s", viewName)))
	b.WriteString("\n\n")
	b.WriteString(helpContent)
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("Press any key to close"))
	return b.String()
}

const helpScan = `Scanning photos, videos, contacts and calendars for duplicates.

Actions:
  c       - Stop scanning and review what was found so far
  ctrl+c  - Cancel scan and exit
  q       - Cancel scan and exit`

const helpCategory = `Choose which categories to review.

Navigation:
  ↑/k ↓/j - Move
  g / G   - Top / bottom

Selection:
  space   - Toggle category
  ctrl+a  - Select all
  ctrl+d  - Deselect all

Actions:
  enter   - Review duplicate groups
  q       - Quit`

const helpBrowser = `Pick the copies to delete. The first item of each group is the one kept.

Navigation               Selection
  ↑/k     Move up          space    Toggle item
  ↓/j     Move down        x        Toggle + down
  ctrl+f  Page down        a        All duplicates
  ctrl+b  Page up          ctrl+d   Clear selection

Actions
  i       Item details
  enter   Continue
  esc     Back`

const helpConfirm = `Review and confirm your deletion choices.

  ←/→/h/l - Switch between buttons
  y       - Yes, delete
  e       - Edit selection
  n       - Cancel and quit

Deleted items cannot be recovered!`

const helpCleanup = `Deleting the selected items.

  ctrl+c  - Stop; items not yet attempted are reported as cancelled`

const helpSummary = `Deletion finished. Failed items are listed by reason.

  enter/q - Exit`

// Custom messages

// ScanCompleteMsg carries the final state of a scan session
type ScanCompleteMsg struct {
	Snapshot scanner.SessionSnapshot
}

// CategoriesSelectedMsg moves to the group browser
type CategoriesSelectedMsg struct {
	Categories []models.Category
}

// ItemsSelectedMsg moves to confirmation
type ItemsSelectedMsg struct {
	Items []models.Item
}

type ConfirmedMsg struct{}

type ReviewSelectionMsg struct{}

// CleanupCompleteMsg carries the deletion report
type CleanupCompleteMsg struct {
	Report *models.DeletionReport
}

type progressMsg struct {
	update progress.Update
}

type errMsg struct {
	err error
}

// waitForUpdate blocks for the next engine progress event
func waitForUpdate(ch <-chan progress.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg{update: u}
	}
}
