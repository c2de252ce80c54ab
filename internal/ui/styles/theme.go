package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/dupsweep/internal/models"
)

// Theme colors
var (
	Primary     = lipgloss.Color("#7C3AED")
	Secondary   = lipgloss.Color("#A78BFA")
	Success     = lipgloss.Color("#10B981")
	Warning     = lipgloss.Color("#F59E0B")
	Danger      = lipgloss.Color("#EF4444")
	Info        = lipgloss.Color("#3B82F6")
	Muted       = lipgloss.Color("#6B7280")
	Text        = lipgloss.Color("#F3F4F6")
	TextDim     = lipgloss.Color("#9CA3AF")
	Border      = lipgloss.Color("#4B5563")
	FocusBorder = lipgloss.Color("#8B5CF6")
	BgDark      = lipgloss.Color("#1F2937")
	BgLight     = lipgloss.Color("#374151")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	CheckboxStyle = lipgloss.NewStyle().
			Foreground(Success)

	CheckboxUncheckedStyle = lipgloss.NewStyle().
				Foreground(Muted)

	FilePathStyle = lipgloss.NewStyle().
			Foreground(Info)

	FileSizeStyle = lipgloss.NewStyle().
			Foreground(Warning)

	CategoryStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	GroupHeaderStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)
)

// CheckedBox renders a ticked checkbox
func CheckedBox() string {
	return CheckboxStyle.Render("☑")
}

// UncheckedBox renders an empty checkbox
func UncheckedBox() string {
	return CheckboxUncheckedStyle.Render("☐")
}

// GetCategoryIcon returns the icon shown next to a category
func GetCategoryIcon(c models.Category) string {
	switch c {
	case models.CategoryPhoto:
		return "📷"
	case models.CategoryVideo:
		return "🎬"
	case models.CategoryContact:
		return "👤"
	case models.CategoryCalendarEvent:
		return "📅"
	default:
		return "•"
	}
}

// GetCategoryColor returns the accent color of a category
func GetCategoryColor(c models.Category) lipgloss.Color {
	switch c {
	case models.CategoryPhoto:
		return Info
	case models.CategoryVideo:
		return Secondary
	case models.CategoryContact:
		return Success
	case models.CategoryCalendarEvent:
		return Warning
	default:
		return Muted
	}
}

// StatusStyle renders a category status in its signal color
func StatusStyle(s models.CategoryStatus) lipgloss.Style {
	switch s {
	case models.StatusCompleted:
		return SuccessStyle
	case models.StatusFailed:
		return ErrorStyle
	case models.StatusPermissionDenied, models.StatusCancelled:
		return WarningStyle
	case models.StatusRunning:
		return InfoStyle
	default:
		return DimStyle
	}
}

// StatusIcon returns the glyph for a category status
func StatusIcon(s models.CategoryStatus) string {
	switch s {
	case models.StatusCompleted:
		return "✓"
	case models.StatusFailed:
		return "✗"
	case models.StatusPermissionDenied:
		return "🔒"
	case models.StatusCancelled:
		return "⊘"
	case models.StatusRunning:
		return "…"
	default:
		return "·"
	}
}
