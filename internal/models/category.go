package models

import (
	"fmt"
	"strings"
)

// Category identifies one of the fixed resource kinds that get scanned
type Category int

const (
	CategoryPhoto Category = iota
	CategoryVideo
	CategoryContact
	CategoryCalendarEvent
)

// AllCategories returns every category in scan order
func AllCategories() []Category {
	return []Category{CategoryPhoto, CategoryVideo, CategoryContact, CategoryCalendarEvent}
}

// String returns the config/wire name of the category
func (c Category) String() string {
	switch c {
	case CategoryPhoto:
		return "photo"
	case CategoryVideo:
		return "video"
	case CategoryContact:
		return "contact"
	case CategoryCalendarEvent:
		return "calendar_event"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// DisplayName returns a human-readable plural label
func (c Category) DisplayName() string {
	switch c {
	case CategoryPhoto:
		return "Photos"
	case CategoryVideo:
		return "Videos"
	case CategoryContact:
		return "Contacts"
	case CategoryCalendarEvent:
		return "Calendar Events"
	default:
		return "Unknown"
	}
}

// DuplicateLabel is the detail label stamped on grouped items
func (c Category) DuplicateLabel() string {
	switch c {
	case CategoryPhoto:
		return "Duplicate Photo"
	case CategoryVideo:
		return "Duplicate Video"
	case CategoryContact:
		return "Duplicate Contact"
	case CategoryCalendarEvent:
		return "Duplicate Event"
	default:
		return "Duplicate"
	}
}

// IsMedia reports whether items of this category carry a MediaInfo payload
func (c Category) IsMedia() bool {
	return c == CategoryPhoto || c == CategoryVideo
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	return c >= CategoryPhoto && c <= CategoryCalendarEvent
}

// ParseCategory parses a config name such as "photo" or "calendar_event"
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo", "photos":
		return CategoryPhoto, nil
	case "video", "videos":
		return CategoryVideo, nil
	case "contact", "contacts":
		return CategoryContact, nil
	case "calendar_event", "calendar", "event", "events":
		return CategoryCalendarEvent, nil
	default:
		return 0, fmt.Errorf("unknown category: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
