package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/ui/styles"
)

// InfoPanel represents a contextual information panel
type InfoPanel struct {
	title   string
	content []InfoItem
	width   int
}

// InfoItem represents a single piece of information
type InfoItem struct {
	Label string
	Value string
	Icon  string
}

// NewInfoPanel creates a new info panel
func NewInfoPanel(title string, width int) *InfoPanel {
	return &InfoPanel{title: title, width: width}
}

// AddItem adds an information item to the panel
func (p *InfoPanel) AddItem(label, value, icon string) {
	p.content = append(p.content, InfoItem{Label: label, Value: value, Icon: icon})
}

// Render renders the info panel
func (p *InfoPanel) Render() string {
	if len(p.content) == 0 {
		return ""
	}

	panelWidth := p.width / 2
	if panelWidth < 40 {
		panelWidth = 40
	}
	if panelWidth > 80 {
		panelWidth = 80
	}

	labelStyle := lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(styles.Text)

	var content strings.Builder
	content.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Underline(true).Render(p.title))
	content.WriteString("\n\n")

	for i, item := range p.content {
		if item.Icon != "" {
			content.WriteString(item.Icon + " ")
		}
		content.WriteString(labelStyle.Render(item.Label) + ": ")
		content.WriteString(valueStyle.Render(item.Value))
		if i < len(p.content)-1 {
			content.WriteString("\n")
		}
	}

	content.WriteString("\n\n")
	content.WriteString(styles.HelpStyle.Render("Press 'i' to close"))

	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(styles.FocusBorder).
		Padding(1, 2).
		Width(panelWidth).
		Render(content.String())
}

// ItemInfoPanel describes one scanned item
func ItemInfoPanel(item models.Item, width int) *InfoPanel {
	panel := NewInfoPanel("Item Information", width)

	panel.AddItem("Category", item.Category.DisplayName(), styles.GetCategoryIcon(item.Category))
	panel.AddItem("Name", item.DisplayName, "🏷")
	panel.AddItem("ID", item.ID, "🔑")

	switch {
	case item.Media != nil:
		m := item.Media
		panel.AddItem("Dimensions", fmt.Sprintf("%dx%d", m.PixelWidth, m.PixelHeight), "📐")
		panel.AddItem("Created", formatTime(m.CreatedAt), "🕒")
		if m.Size > 0 {
			panel.AddItem("Size", humanize.IBytes(uint64(m.Size)), "💾")
		}
		if m.Path != "" {
			panel.AddItem("Path", m.Path, "📁")
		}
	case item.Contact != nil:
		c := item.Contact
		panel.AddItem("Given name", c.GivenName, "")
		panel.AddItem("Family name", c.FamilyName, "")
		panel.AddItem("Email", c.PrimaryEmail, "✉")
		panel.AddItem("Phone", c.PrimaryPhone, "☎")
	case item.Event != nil:
		panel.AddItem("Title", item.Event.Title, "")
		panel.AddItem("Starts", formatTime(item.Event.Start), "🕒")
	}

	if item.DetailLabel != "" {
		panel.AddItem("Note", item.DetailLabel, "⚠")
	}

	return panel
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
