package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/ui/components"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/dupsweep/internal/ui/utils"
)

// CategoryItem is one row of the category selection list
type CategoryItem struct {
	Category  models.Category
	Status    models.CategoryStatus
	Groups    int
	Redundant int
	Size      int64
	Error     string
	Selected  bool
}

// Selectable reports whether the category has anything to review
func (c CategoryItem) Selectable() bool {
	return c.Groups > 0
}

// CategoryViewModel handles category selection
type CategoryViewModel struct {
	categories []CategoryItem
	cursor     int
	width      int
	height     int
}

// NewCategoryViewModel creates a new category view model. Categories that
// found duplicates start selected; failed ones still offer partial results.
func NewCategoryViewModel(snap scanner.SessionSnapshot, width, height int) *CategoryViewModel {
	categories := make([]CategoryItem, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		item := CategoryItem{
			Category: c.Category,
			Status:   c.Status,
			Groups:   len(c.Groups),
			Error:    c.Error,
		}
		for _, g := range c.Groups {
			for _, it := range g.Redundant() {
				item.Redundant++
				item.Size += it.Size()
			}
		}
		item.Selected = item.Selectable() && c.Status == models.StatusCompleted
		categories = append(categories, item)
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	return &CategoryViewModel{
		categories: categories,
		width:      width,
		height:     height,
	}
}

// Update handles messages
func (m *CategoryViewModel) Update(msg tea.Msg) (*CategoryViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.categories)-1 {
				m.cursor++
			}
		case "g":
			m.cursor = 0
		case "G":
			if len(m.categories) > 0 {
				m.cursor = len(m.categories) - 1
			}
		case "space", " ":
			m.toggle(m.cursor)
		case "ctrl+a":
			for i := range m.categories {
				m.categories[i].Selected = m.categories[i].Selectable()
			}
		case "ctrl+d":
			for i := range m.categories {
				m.categories[i].Selected = false
			}
		case "enter":
			if !m.anyDuplicates() {
				return m, tea.Quit
			}
			if selected := m.Selected(); len(selected) > 0 {
				return m, func() tea.Msg { return CategoriesSelectedMsg{Categories: selected} }
			}
		}
	}

	return m, nil
}

func (m *CategoryViewModel) toggle(i int) {
	if i < 0 || i >= len(m.categories) || !m.categories[i].Selectable() {
		return
	}
	m.categories[i].Selected = !m.categories[i].Selected
}

func (m *CategoryViewModel) anyDuplicates() bool {
	for _, c := range m.categories {
		if c.Selectable() {
			return true
		}
	}
	return false
}

// Selected returns the chosen categories in display order
func (m *CategoryViewModel) Selected() []models.Category {
	var selected []models.Category
	for _, c := range m.categories {
		if c.Selected {
			selected = append(selected, c.Category)
		}
	}
	return selected
}

// View renders the category selection view
func (m *CategoryViewModel) View() string {
	var b strings.Builder

	b.WriteString(uiutils.GetSizeWarningBanner(m.width, m.height))
	b.WriteString(styles.TitleStyle.Render("📦 Select Categories to Review"))
	b.WriteString("\n\n")

	if !m.anyDuplicates() {
		b.WriteString(styles.SuccessStyle.Render("✓ No duplicates found"))
		b.WriteString("\n\n")
	}

	var selectedCount, total int
	var selectedSize int64
	for i, cat := range m.categories {
		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("→ ")
		}

		checkbox := "  "
		if cat.Selectable() {
			total++
			checkbox = styles.UncheckedBox()
			if cat.Selected {
				checkbox = styles.CheckedBox()
				selectedCount++
				selectedSize += cat.Size
			}
		}

		nameStyle := lipgloss.NewStyle().Foreground(styles.GetCategoryColor(cat.Category)).Bold(true)
		line := fmt.Sprintf("%s%s %s %s %s",
			cursor,
			checkbox,
			styles.GetCategoryIcon(cat.Category),
			nameStyle.Render(fmt.Sprintf("%-16s", cat.Category.DisplayName())),
			styles.StatusStyle(cat.Status).Render(styles.StatusIcon(cat.Status)),
		)

		if cat.Groups > 0 {
			line += fmt.Sprintf(" %s, %s",
				english.Plural(cat.Groups, "group", "groups"),
				styles.DimStyle.Render(english.Plural(cat.Redundant, "duplicate", "duplicates")))
			if cat.Size > 0 {
				line += " " + styles.FileSizeStyle.Render(humanize.IBytes(uint64(cat.Size)))
			}
		} else if cat.Status == models.StatusCompleted {
			line += styles.DimStyle.Render(" no duplicates")
		}

		if cat.Status != models.StatusCompleted {
			line += " " + styles.StatusStyle(cat.Status).Render(cat.Status.String())
		}
		b.WriteString(line)
		b.WriteString("\n")

		if cat.Error != "" && i == m.cursor {
			b.WriteString(styles.DimStyle.Render("      ↳ " + uiutils.TruncateString(cat.Error, m.width-8)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	bar := components.NewStatusBar("Categories")
	bar.SetSelection(selectedCount, total, selectedSize)
	bar.SetShortcuts(
		components.Shortcut{Key: "↑/↓", Help: "navigate"},
		components.Shortcut{Key: "space", Help: "toggle"},
		components.Shortcut{Key: "enter", Help: "continue"},
		components.Shortcut{Key: "?", Help: "help"},
		components.Shortcut{Key: "q", Help: "quit"},
	)
	b.WriteString(bar.Render(m.width))

	return b.String()
}
