package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/store"
)

// ErrInjected is the default error returned by injected faults
var ErrInjected = errors.New("injected store failure")

// FakeAdapter is an in-memory store.Adapter with fault injection. Configure
// the exported fields before handing it to a scanner or executor.
type FakeAdapter struct {
	Cat      models.Category
	PageSize int

	// Auth is returned from RequestAuthorization, with AuthErr if set
	Auth    store.Authorization
	AuthErr error
	// AuthBlock makes RequestAuthorization wait until closed or ctx is done
	AuthBlock chan struct{}

	// FailAfterPages makes Next fail with EnumerateErr once that many pages
	// were served. Negative disables the fault.
	FailAfterPages int
	EnumerateErr   error
	// PageDelay sleeps before each page, ignoring ctx
	PageDelay time.Duration
	// PageBlock makes each Next wait until closed or ctx is done
	PageBlock chan struct{}
	// Panic makes Enumerate panic
	Panic bool

	// DeleteErrs maps ids to the error Delete reports for them
	DeleteErrs map[string]error
	// OmitIDs are left out of Delete's answer entirely
	OmitIDs map[string]bool
	// DeleteDelay sleeps before answering, ignoring ctx
	DeleteDelay time.Duration
	// DeleteStep sleeps before each id. Ids reached after ctx is done are
	// answered with ctx.Err() and left in place.
	DeleteStep time.Duration

	mu          sync.Mutex
	items       []models.Item
	deleteCalls [][]string
	authCalls   int
}

// NewFakeAdapter creates an adapter serving items in the given order
func NewFakeAdapter(category models.Category, items ...models.Item) *FakeAdapter {
	return &FakeAdapter{
		Cat:            category,
		PageSize:       2,
		FailAfterPages: -1,
		items:          append([]models.Item(nil), items...),
	}
}

// Category implements store.Adapter
func (f *FakeAdapter) Category() models.Category {
	return f.Cat
}

// RequestAuthorization implements store.Adapter
func (f *FakeAdapter) RequestAuthorization(ctx context.Context) (store.Authorization, error) {
	f.mu.Lock()
	f.authCalls++
	f.mu.Unlock()

	if f.AuthBlock != nil {
		select {
		case <-f.AuthBlock:
		case <-ctx.Done():
			return store.AuthDenied, ctx.Err()
		}
	}
	return f.Auth, f.AuthErr
}

// Enumerate implements store.Adapter
func (f *FakeAdapter) Enumerate(ctx context.Context) (store.Pager, error) {
	if f.Panic {
		panic("fake adapter panic")
	}

	f.mu.Lock()
	snapshot := make([]models.Item, len(f.items))
	copy(snapshot, f.items)
	f.mu.Unlock()

	return &fakePager{adapter: f, inner: store.NewSlicePager(snapshot, f.PageSize)}, nil
}

type fakePager struct {
	adapter *FakeAdapter
	inner   *store.SlicePager
	served  int
}

func (p *fakePager) Next(ctx context.Context) ([]models.Item, error) {
	f := p.adapter
	if f.PageDelay > 0 {
		time.Sleep(f.PageDelay)
	}
	if f.PageBlock != nil {
		select {
		case <-f.PageBlock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.FailAfterPages >= 0 && p.served >= f.FailAfterPages {
		if f.EnumerateErr != nil {
			return nil, f.EnumerateErr
		}
		return nil, ErrInjected
	}

	page, err := p.inner.Next(ctx)
	if err == nil {
		p.served++
	}
	return page, err
}

// Delete implements store.Adapter
func (f *FakeAdapter) Delete(ctx context.Context, ids []string) map[string]error {
	if f.DeleteDelay > 0 {
		time.Sleep(f.DeleteDelay)
	}

	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, append([]string(nil), ids...))
	f.mu.Unlock()

	out := make(map[string]error, len(ids))
	for _, id := range ids {
		if f.DeleteStep > 0 {
			select {
			case <-time.After(f.DeleteStep):
			case <-ctx.Done():
			}
		}
		if f.DeleteStep > 0 && ctx.Err() != nil {
			out[id] = ctx.Err()
			continue
		}
		if f.OmitIDs[id] {
			continue
		}
		if err, ok := f.DeleteErrs[id]; ok {
			out[id] = err
			continue
		}
		f.mu.Lock()
		removed := f.remove(id)
		f.mu.Unlock()
		if removed {
			out[id] = nil
		} else {
			out[id] = store.ErrNotFound
		}
	}
	return out
}

func (f *FakeAdapter) remove(id string) bool {
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns the items still present in the store
func (f *FakeAdapter) Items() []models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Item, len(f.items))
	copy(out, f.items)
	return out
}

// DeleteCalls returns the id batches Delete was called with
func (f *FakeAdapter) DeleteCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.deleteCalls))
	copy(out, f.deleteCalls)
	return out
}

// DeletedIDs returns every id passed to Delete, in call order
func (f *FakeAdapter) DeletedIDs() []string {
	var ids []string
	for _, batch := range f.DeleteCalls() {
		ids = append(ids, batch...)
	}
	return ids
}

// AuthCalls returns how many times authorization was requested
func (f *FakeAdapter) AuthCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls
}
