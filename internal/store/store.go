// Package store defines the capability interfaces through which the engine
// reads and deletes items in the underlying resource stores. Concrete
// implementations live in the sqlstore and fsmedia subpackages.
package store

import (
	"context"
	"errors"

	"github.com/fenilsonani/dupsweep/internal/models"
)

var (
	// ErrDone is returned by Pager.Next once every page has been served
	ErrDone = errors.New("no more pages")

	// ErrNotFound is reported for ids that no longer exist in the store
	ErrNotFound = errors.New("item not found")
)

// Authorization is the answer to an access request
type Authorization int

const (
	AuthGranted Authorization = iota
	AuthDenied
	AuthRestricted
)

// String returns a human-readable authorization value
func (a Authorization) String() string {
	switch a {
	case AuthGranted:
		return "granted"
	case AuthDenied:
		return "denied"
	case AuthRestricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// Allowed reports whether the store may be read. Restricted is treated as denied.
func (a Authorization) Allowed() bool {
	return a == AuthGranted
}

// Adapter exposes one category's backing store
type Adapter interface {
	// Category returns the single category this adapter serves
	Category() models.Category

	// RequestAuthorization asks for access. It may block on a user prompt.
	RequestAuthorization(ctx context.Context) (Authorization, error)

	// Enumerate returns a fresh cursor over every item. Cursors never share state.
	Enumerate(ctx context.Context) (Pager, error)

	// Delete removes the given ids and reports one outcome per id.
	// A nil value means the id was deleted.
	Delete(ctx context.Context, ids []string) map[string]error
}

// Pager serves items page by page
type Pager interface {
	// Next returns the next page, or ErrDone when exhausted
	Next(ctx context.Context) ([]models.Item, error)
}

// SlicePager pages through an in-memory slice
type SlicePager struct {
	items    []models.Item
	pageSize int
	offset   int
}

// NewSlicePager creates a pager over items. pageSize <= 0 serves everything at once.
func NewSlicePager(items []models.Item, pageSize int) *SlicePager {
	if pageSize <= 0 {
		pageSize = len(items)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	return &SlicePager{items: items, pageSize: pageSize}
}

// Next implements Pager
func (p *SlicePager) Next(ctx context.Context) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.offset >= len(p.items) {
		return nil, ErrDone
	}
	end := p.offset + p.pageSize
	if end > len(p.items) {
		end = len(p.items)
	}
	page := p.items[p.offset:end]
	p.offset = end
	return page, nil
}
