package models

import "time"

// Item is an immutable snapshot of one unit in a resource collection,
// taken at scan time. Exactly one payload matching Category is set.
type Item struct {
	ID          string       `json:"id" yaml:"id"`
	Category    Category     `json:"category" yaml:"category"`
	DisplayName string       `json:"display_name" yaml:"display_name"`
	DetailLabel string       `json:"detail_label,omitempty" yaml:"detail_label,omitempty"`
	Media       *MediaInfo   `json:"media,omitempty" yaml:"media,omitempty"`
	Contact     *ContactInfo `json:"contact,omitempty" yaml:"contact,omitempty"`
	Event       *EventInfo   `json:"event,omitempty" yaml:"event,omitempty"`
}

// MediaInfo holds the attributes of a photo or video asset
type MediaInfo struct {
	PixelWidth  int       `json:"pixel_width" yaml:"pixel_width"`
	PixelHeight int       `json:"pixel_height" yaml:"pixel_height"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Size        int64     `json:"size,omitempty" yaml:"size,omitempty"`
	Path        string    `json:"path,omitempty" yaml:"path,omitempty"` // Set by file-backed stores only
}

// ContactInfo holds the identifying fields of an address-book record
type ContactInfo struct {
	GivenName    string `json:"given_name,omitempty" yaml:"given_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty" yaml:"family_name,omitempty"`
	PrimaryEmail string `json:"primary_email,omitempty" yaml:"primary_email,omitempty"`
	PrimaryPhone string `json:"primary_phone,omitempty" yaml:"primary_phone,omitempty"`
}

// EventInfo holds the identifying fields of a calendar event
type EventInfo struct {
	Title string    `json:"title" yaml:"title"`
	Start time.Time `json:"start" yaml:"start"`
}

// WithDetailLabel returns a copy of the item carrying the given label
func (i Item) WithDetailLabel(label string) Item {
	i.DetailLabel = label
	return i
}

// Size returns the byte size of media items and zero for everything else
func (i Item) Size() int64 {
	if i.Media == nil {
		return 0
	}
	return i.Media.Size
}
