package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/ui/components"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/dupsweep/internal/ui/utils"
)

type itemKey struct {
	category models.Category
	id       string
}

func keyOf(item models.Item) itemKey {
	return itemKey{category: item.Category, id: item.ID}
}

// row is a group header (item == -1) or one item of a group
type row struct {
	group int
	item  int
}

// BrowserViewModel lets the user pick duplicates group by group
type BrowserViewModel struct {
	groups   []models.DuplicateGroup
	rows     []row
	selected map[itemKey]bool
	cursor   int // index into rows, always on an item row
	offset   int
	showInfo bool
	width    int
	height   int
}

// NewBrowserViewModel creates a browser over the groups of the chosen categories
func NewBrowserViewModel(snap scanner.SessionSnapshot, categories []models.Category, width, height int) *BrowserViewModel {
	wanted := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	m := &BrowserViewModel{
		selected: make(map[itemKey]bool),
		width:    width,
		height:   height,
	}
	for _, g := range snap.Groups() {
		if !wanted[g.Category] {
			continue
		}
		gi := len(m.groups)
		m.groups = append(m.groups, g)
		m.rows = append(m.rows, row{group: gi, item: -1})
		for ii := range g.Items {
			m.rows = append(m.rows, row{group: gi, item: ii})
		}
	}
	if len(m.rows) > 1 {
		m.cursor = 1
	}
	return m
}

func (m *BrowserViewModel) pageSize() int {
	if m.height == 0 {
		return 20
	}
	return uiutils.CalculatePageSize(m.height)
}

func (m *BrowserViewModel) current() (models.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || m.rows[m.cursor].item < 0 {
		return models.Item{}, false
	}
	r := m.rows[m.cursor]
	return m.groups[r.group].Items[r.item], true
}

// move shifts the cursor by delta rows, skipping group headers
func (m *BrowserViewModel) move(delta int) {
	next := m.cursor
	for step := 0; step < abs(delta); step++ {
		candidate := next + sign(delta)
		for candidate >= 0 && candidate < len(m.rows) && m.rows[candidate].item < 0 {
			candidate += sign(delta)
		}
		if candidate < 0 || candidate >= len(m.rows) {
			break
		}
		next = candidate
	}
	m.cursor = next

	// Keep the group header visible above its first item
	top := m.cursor
	if top > 0 && m.rows[top-1].item < 0 {
		top--
	}
	if top < m.offset {
		m.offset = top
	}
	if m.cursor >= m.offset+m.pageSize() {
		m.offset = m.cursor - m.pageSize() + 1
	}
}

func (m *BrowserViewModel) toggleCurrent() {
	if item, ok := m.current(); ok {
		k := keyOf(item)
		m.selected[k] = !m.selected[k]
	}
}

// SelectRedundant selects every item except the first of each group
func (m *BrowserViewModel) SelectRedundant() {
	m.selected = make(map[itemKey]bool)
	for _, g := range m.groups {
		for _, item := range g.Redundant() {
			m.selected[keyOf(item)] = true
		}
	}
}

// Selected returns the chosen items in browse order
func (m *BrowserViewModel) Selected() []models.Item {
	var items []models.Item
	for _, g := range m.groups {
		for _, item := range g.Items {
			if m.selected[keyOf(item)] {
				items = append(items, item)
			}
		}
	}
	return items
}

// Update handles messages
func (m *BrowserViewModel) Update(msg tea.Msg) (*BrowserViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "ctrl+f", "pgdown":
			m.move(m.pageSize())
		case "ctrl+b", "pgup":
			m.move(-m.pageSize())
		case "space", " ":
			m.toggleCurrent()
		case "x":
			m.toggleCurrent()
			m.move(1)
		case "a":
			m.SelectRedundant()
		case "ctrl+d":
			m.selected = make(map[itemKey]bool)
		case "i":
			m.showInfo = !m.showInfo
		case "enter":
			if items := m.Selected(); len(items) > 0 {
				return m, func() tea.Msg { return ItemsSelectedMsg{Items: items} }
			}
		}
	}

	return m, nil
}

// View renders the browser view
func (m *BrowserViewModel) View() string {
	var b strings.Builder

	b.WriteString(uiutils.GetSizeWarningBanner(m.width, m.height))
	b.WriteString(styles.TitleStyle.Render("🗂  Select Duplicates to Delete"))
	b.WriteString("\n\n")

	if m.showInfo {
		if item, ok := m.current(); ok {
			b.WriteString(components.ItemInfoPanel(item, m.width).Render())
			return b.String()
		}
	}

	nameWidth := 50
	if m.width > 0 && m.width-30 < nameWidth {
		nameWidth = max(m.width-30, 10)
	}

	end := min(m.offset+m.pageSize(), len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		g := m.groups[r.group]

		if r.item < 0 {
			b.WriteString(styles.GroupHeaderStyle.Render(fmt.Sprintf("%s Group %d · %s",
				styles.GetCategoryIcon(g.Category), r.group+1,
				english.Plural(len(g.Items), "item", "items"))))
			b.WriteString("\n")
			continue
		}

		item := g.Items[r.item]
		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("→ ")
		}
		checkbox := styles.UncheckedBox()
		if m.selected[keyOf(item)] {
			checkbox = styles.CheckedBox()
		}

		label := item.DisplayName
		if label == "" {
			label = item.ID
		}
		line := fmt.Sprintf("  %s%s %s", cursor, checkbox, styles.FilePathStyle.Render(uiutils.TruncatePath(label, nameWidth)))
		if item.Size() > 0 {
			line += " " + styles.FileSizeStyle.Render(humanize.IBytes(uint64(item.Size())))
		}
		if r.item == 0 {
			line += " " + styles.DimStyle.Render("(original)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	var count int
	var size int64
	for _, item := range m.Selected() {
		count++
		size += item.Size()
	}

	b.WriteString("\n")
	bar := components.NewStatusBar("Duplicates")
	bar.SetSelection(count, len(m.rows)-len(m.groups), size)
	bar.SetShortcuts(
		components.Shortcut{Key: "space", Help: "toggle"},
		components.Shortcut{Key: "a", Help: "all duplicates"},
		components.Shortcut{Key: "i", Help: "details"},
		components.Shortcut{Key: "enter", Help: "continue"},
		components.Shortcut{Key: "esc", Help: "back"},
	)
	b.WriteString(bar.Render(m.width))

	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}
