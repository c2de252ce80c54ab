package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/dupsweep/internal/ui/utils"
)

// RiskLevel represents the risk level of a deletion operation
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// ConfirmViewModel handles the confirmation screen
type ConfirmViewModel struct {
	items     []models.Item
	dryRun    bool
	cursor    int // 0 = Yes, 1 = Review, 2 = Cancel
	riskLevel RiskLevel
	width     int
	height    int
}

// NewConfirmViewModel creates a new confirm view model
func NewConfirmViewModel(items []models.Item, dryRun bool, width, height int) *ConfirmViewModel {
	risk := CalculateRiskLevel(items)
	cursor := 0
	if risk == RiskHigh {
		cursor = 2
	}

	return &ConfirmViewModel{
		items:     items,
		dryRun:    dryRun,
		cursor:    cursor,
		riskLevel: risk,
		width:     width,
		height:    height,
	}
}

// CalculateRiskLevel grades a deletion by size and by whether it touches
// address book or calendar records
func CalculateRiskLevel(items []models.Item) RiskLevel {
	records := 0
	for _, item := range items {
		if !item.Category.IsMedia() {
			records++
		}
	}

	switch {
	case len(items) > 500:
		return RiskHigh
	case len(items) >= 50 || records > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Update handles messages
func (m *ConfirmViewModel) Update(msg tea.Msg) (*ConfirmViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < 2 {
				m.cursor++
			}
		case "tab":
			m.cursor = (m.cursor + 1) % 3
		case "enter":
			switch m.cursor {
			case 0:
				return m, func() tea.Msg { return ConfirmedMsg{} }
			case 1:
				return m, func() tea.Msg { return ReviewSelectionMsg{} }
			case 2:
				return m, tea.Quit
			}
		case "y":
			return m, func() tea.Msg { return ConfirmedMsg{} }
		case "e":
			return m, func() tea.Msg { return ReviewSelectionMsg{} }
		case "n":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the confirmation view
func (m *ConfirmViewModel) View() string {
	var b strings.Builder

	b.WriteString(uiutils.GetSizeWarningBanner(m.width, m.height))
	b.WriteString(styles.TitleStyle.Render("⚠️  Confirm Deletion"))
	b.WriteString("\n\n")

	type entry struct {
		count int
		size  int64
	}
	breakdown := make(map[models.Category]entry)
	var totalSize int64
	for _, item := range m.items {
		e := breakdown[item.Category]
		e.count++
		e.size += item.Size()
		breakdown[item.Category] = e
		totalSize += item.Size()
	}

	headline := fmt.Sprintf("You are about to delete %s", english.Plural(len(m.items), "item", "items"))
	if totalSize > 0 {
		headline += fmt.Sprintf(" (%s)", humanize.IBytes(uint64(totalSize)))
	}
	b.WriteString(styles.BoldStyle.Render(headline))
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Breakdown:"))
	b.WriteString("\n")
	for _, c := range models.AllCategories() {
		e, ok := breakdown[c]
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %s %-16s %4d", styles.GetCategoryIcon(c), c.DisplayName()+":", e.count)
		if e.size > 0 {
			line += " " + styles.FileSizeStyle.Render(humanize.IBytes(uint64(e.size)))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	riskText, riskStyle, riskIcon := m.riskDisplay()
	b.WriteString(fmt.Sprintf("Risk Level: %s %s\n", riskIcon, riskStyle(riskText)))

	b.WriteString("\n")
	if m.dryRun {
		b.WriteString(styles.InfoStyle.Render("Dry run: nothing will actually be deleted."))
	} else {
		b.WriteString(styles.WarningStyle.Render("⚠️  This action cannot be undone!"))
	}
	b.WriteString("\n\n")

	buttons := []string{"[ Yes, delete ]", "[ Review ]", "[ Cancel ]"}
	buttons[m.cursor] = styles.HighlightStyle.Render(buttons[m.cursor])
	b.WriteString(strings.Join(buttons, "  "))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpStyle.Render("y:confirm  e:edit  n:cancel  ←/→:navigate"))

	return b.String()
}

func (m *ConfirmViewModel) riskDisplay() (string, func(...string) string, string) {
	switch m.riskLevel {
	case RiskHigh:
		return "HIGH (a large number of items)", styles.ErrorStyle.Render, "🔴"
	case RiskMedium:
		return "MEDIUM (many items, or contacts and events)", styles.WarningStyle.Render, "⚠️"
	default:
		return "LOW (a few media files)", styles.SuccessStyle.Render, "✓"
	}
}
