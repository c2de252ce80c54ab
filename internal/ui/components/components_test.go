package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/dupsweep/internal/models"
)

func TestStatusBarRender(t *testing.T) {
	bar := NewStatusBar("Duplicates")
	bar.SetSelection(2, 5, 2048)
	bar.SetShortcuts(Shortcut{Key: "space", Help: "toggle"}, Shortcut{Key: "enter", Help: "continue"})

	out := bar.Render(100)
	for _, want := range []string{"Duplicates", "2/5 selected", "2.0 KiB", "toggle", "continue"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar %q missing %q", out, want)
		}
	}
	if w := lipgloss.Width(out); w != 100 {
		t.Errorf("width = %d, want 100", w)
	}
}

func TestStatusBarDropsHintsWhenNarrow(t *testing.T) {
	bar := NewStatusBar("Duplicates")
	bar.SetShortcuts(
		Shortcut{Key: "space", Help: "toggle"},
		Shortcut{Key: "enter", Help: "continue-with-a-very-long-hint"},
	)

	out := bar.Render(32)
	if !strings.Contains(out, "toggle") {
		t.Errorf("first hint dropped: %q", out)
	}
	if strings.Contains(out, "continue") {
		t.Errorf("last hint kept on a narrow bar: %q", out)
	}
}

func TestItemInfoPanel(t *testing.T) {
	tests := []struct {
		name string
		item models.Item
		want []string
	}{
		{
			name: "photo",
			item: models.Item{
				ID:       "p1",
				Category: models.CategoryPhoto,
				Media:    &models.MediaInfo{PixelWidth: 4032, PixelHeight: 3024, CreatedAt: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), Path: "/photos/a.jpg"},
			},
			want: []string{"4032x3024", "/photos/a.jpg"},
		},
		{
			name: "contact",
			item: models.Item{
				ID:       "c1",
				Category: models.CategoryContact,
				Contact:  &models.ContactInfo{GivenName: "Ann", FamilyName: "Lee", PrimaryEmail: "ann@example.com"},
			},
			want: []string{"Ann", "ann@example.com"},
		},
		{
			name: "event",
			item: models.Item{
				ID:       "e1",
				Category: models.CategoryCalendarEvent,
				Event:    &models.EventInfo{Title: "Standup", Start: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)},
			},
			want: []string{"Standup", "2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ItemInfoPanel(tt.item, 80).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("panel missing %q:\n%s", want, out)
				}
			}
		})
	}
}
