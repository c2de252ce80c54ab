package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fenilsonani/dupsweep/internal/models"
)

// AddMedia inserts photo and video assets
func (l *Library) AddMedia(ctx context.Context, assets ...MediaAsset) error {
	return create(l.db.WithContext(ctx), assets)
}

// AddContacts inserts address-book entries
func (l *Library) AddContacts(ctx context.Context, contacts ...ContactRecord) error {
	return create(l.db.WithContext(ctx), contacts)
}

// AddEvents inserts calendar events
func (l *Library) AddEvents(ctx context.Context, events ...CalendarEventRecord) error {
	return create(l.db.WithContext(ctx), events)
}

func create[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.CreateInBatches(&rows, 100).Error
}

// Count returns how many items of category the library holds
func (l *Library) Count(ctx context.Context, category models.Category) (int64, error) {
	a, err := l.Adapter(category)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := a.(*tableAdapter).query(ctx).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", category, err)
	}
	return n, nil
}
