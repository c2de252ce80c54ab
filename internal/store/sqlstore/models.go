package sqlstore

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fenilsonani/dupsweep/internal/models"
)

// Media kinds stored in media_assets.kind
const (
	KindPhoto = "photo"
	KindVideo = "video"
)

// BaseModel provides common fields for all models
type BaseModel struct {
	ID        string    `gorm:"primaryKey"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an id to records created without one
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MediaAsset represents a photo or video in the library
type MediaAsset struct {
	BaseModel
	Kind        string    `gorm:"not null;index"`
	Filename    string    `gorm:"not null"`
	PixelWidth  int       `gorm:"not null;default:0"`
	PixelHeight int       `gorm:"not null;default:0"`
	CapturedAt  time.Time `gorm:"index"`
	SizeBytes   int64     `gorm:"not null;default:0"`
	FilePath    string
}

func (MediaAsset) TableName() string { return "media_assets" }

// ToItem converts a MediaAsset to a scan item
func (m *MediaAsset) ToItem() models.Item {
	category := models.CategoryPhoto
	if m.Kind == KindVideo {
		category = models.CategoryVideo
	}
	return models.Item{
		ID:          m.ID,
		Category:    category,
		DisplayName: m.Filename,
		Media: &models.MediaInfo{
			PixelWidth:  m.PixelWidth,
			PixelHeight: m.PixelHeight,
			CreatedAt:   m.CapturedAt,
			Size:        m.SizeBytes,
			Path:        m.FilePath,
		},
	}
}

// ContactRecord represents an address-book entry
type ContactRecord struct {
	BaseModel
	GivenName  string
	FamilyName string
	Email      string
	Phone      string
}

func (ContactRecord) TableName() string { return "contacts" }

// ToItem converts a ContactRecord to a scan item
func (m *ContactRecord) ToItem() models.Item {
	name := strings.TrimSpace(m.GivenName + " " + m.FamilyName)
	if name == "" {
		name = m.Email
	}
	if name == "" {
		name = m.Phone
	}
	return models.Item{
		ID:          m.ID,
		Category:    models.CategoryContact,
		DisplayName: name,
		Contact: &models.ContactInfo{
			GivenName:    m.GivenName,
			FamilyName:   m.FamilyName,
			PrimaryEmail: m.Email,
			PrimaryPhone: m.Phone,
		},
	}
}

// CalendarEventRecord represents one calendar entry
type CalendarEventRecord struct {
	BaseModel
	Title    string    `gorm:"not null"`
	StartsAt time.Time `gorm:"index"`
}

func (CalendarEventRecord) TableName() string { return "calendar_events" }

// ToItem converts a CalendarEventRecord to a scan item
func (m *CalendarEventRecord) ToItem() models.Item {
	return models.Item{
		ID:          m.ID,
		Category:    models.CategoryCalendarEvent,
		DisplayName: m.Title,
		Event: &models.EventInfo{
			Title: m.Title,
			Start: m.StartsAt,
		},
	}
}

// KindFor returns the media kind stored for a media category
func KindFor(category models.Category) string {
	if category == models.CategoryVideo {
		return KindVideo
	}
	return KindPhoto
}
