package sqlstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/store"
)

type record[T any] interface {
	*T
	ToItem() models.Item
}

// fetchItems runs q and converts every row to an item
func fetchItems[T any, P record[T]](q *gorm.DB) ([]models.Item, error) {
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]models.Item, len(rows))
	for i := range rows {
		items[i] = P(&rows[i]).ToItem()
	}
	return items, nil
}

// tableAdapter serves one category out of one table
type tableAdapter struct {
	lib      *Library
	category models.Category
	newModel func() any
	scope    func(*gorm.DB) *gorm.DB
	fetch    func(*gorm.DB) ([]models.Item, error)
}

// Adapter returns the adapter serving category
func (l *Library) Adapter(category models.Category) (store.Adapter, error) {
	a := &tableAdapter{lib: l, category: category, scope: func(db *gorm.DB) *gorm.DB { return db }}

	switch category {
	case models.CategoryPhoto, models.CategoryVideo:
		kind := KindFor(category)
		a.newModel = func() any { return &MediaAsset{} }
		a.scope = func(db *gorm.DB) *gorm.DB { return db.Where("kind = ?", kind) }
		a.fetch = fetchItems[MediaAsset]
	case models.CategoryContact:
		a.newModel = func() any { return &ContactRecord{} }
		a.fetch = fetchItems[ContactRecord]
	case models.CategoryCalendarEvent:
		a.newModel = func() any { return &CalendarEventRecord{} }
		a.fetch = fetchItems[CalendarEventRecord]
	default:
		return nil, fmt.Errorf("library has no table for %s", category)
	}

	return a, nil
}

// Adapters returns one adapter per requested category
func (l *Library) Adapters(categories ...models.Category) ([]store.Adapter, error) {
	adapters := make([]store.Adapter, 0, len(categories))
	for _, c := range categories {
		a, err := l.Adapter(c)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func (a *tableAdapter) Category() models.Category {
	return a.category
}

func (a *tableAdapter) RequestAuthorization(ctx context.Context) (store.Authorization, error) {
	if a.lib.authorizer == nil {
		return store.AuthGranted, nil
	}
	return a.lib.authorizer.Authorize(ctx, a.category)
}

func (a *tableAdapter) Enumerate(ctx context.Context) (store.Pager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &pager{adapter: a}, nil
}

func (a *tableAdapter) query(ctx context.Context) *gorm.DB {
	return a.lib.db.WithContext(ctx).Model(a.newModel()).Scopes(a.scope)
}

// Delete removes the ids that still exist in one transaction. Ids that are
// already gone are reported as store.ErrNotFound.
func (a *tableAdapter) Delete(ctx context.Context, ids []string) map[string]error {
	results := make(map[string]error, len(ids))
	existing := make(map[string]bool, len(ids))

	err := a.lib.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []string
		if err := tx.Model(a.newModel()).Scopes(a.scope).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return err
		}
		if len(found) == 0 {
			return nil
		}
		if err := tx.Scopes(a.scope).Where("id IN ?", found).Delete(a.newModel()).Error; err != nil {
			return err
		}
		for _, id := range found {
			existing[id] = true
		}
		return nil
	})

	for _, id := range ids {
		switch {
		case err != nil:
			results[id] = err
		case existing[id]:
			results[id] = nil
		default:
			results[id] = store.ErrNotFound
		}
	}

	if err != nil {
		a.lib.logger.Warn("delete batch failed",
			zap.Stringer("category", a.category),
			zap.Int("ids", len(ids)),
			zap.Error(err),
		)
	}

	return results
}

// pager walks a table in primary-key order
type pager struct {
	adapter *tableAdapter
	lastID  string
	done    bool
}

func (p *pager) Next(ctx context.Context) ([]models.Item, error) {
	if p.done {
		return nil, store.ErrDone
	}

	q := p.adapter.query(ctx).
		Where("id > ?", p.lastID).
		Order("id").
		Limit(p.adapter.lib.pageSize)

	items, err := p.adapter.fetch(q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		p.done = true
		return nil, store.ErrDone
	}

	p.lastID = items[len(items)-1].ID
	if len(items) < p.adapter.lib.pageSize {
		p.done = true
	}
	return items, nil
}
