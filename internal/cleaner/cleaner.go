package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fenilsonani/dupsweep/internal/logger"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/progress"
	"github.com/fenilsonani/dupsweep/internal/store"
)

// Options configures an Executor
type Options struct {
	// Workers bounds concurrent store calls
	Workers int
	// BatchSize is the number of ids sent to a store per call
	BatchSize int
	// RatePerSecond paces batches per store. Zero disables pacing.
	RatePerSecond float64
	// Timeout is the deadline handed to each store call. Zero disables it.
	Timeout time.Duration
	// AbandonAfter is how long to keep waiting for a store that ignores its
	// deadline before the whole batch is failed unanswered. Zero means
	// DefaultAbandonAfter.
	AbandonAfter time.Duration
	// DryRun records every item as deleted without touching the stores
	DryRun bool

	Logger   *zap.Logger
	Reporter *progress.ProgressReporter
}

// DefaultAbandonAfter is the grace period given to a store past its deadline
const DefaultAbandonAfter = 5 * time.Second

// Executor deletes items through their category's store. Deletion is best
// effort: every requested item is attempted once and gets exactly one outcome.
type Executor struct {
	opts     Options
	adapters map[models.Category]store.Adapter
	limiters map[models.Category]*rate.Limiter
	logger   *zap.Logger
	manifest *DeletionManifest
}

// New creates an executor over the given adapters. A later adapter for the
// same category replaces an earlier one.
func New(opts Options, adapters ...store.Adapter) *Executor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.AbandonAfter <= 0 {
		opts.AbandonAfter = DefaultAbandonAfter
	}

	e := &Executor{
		opts:     opts,
		adapters: make(map[models.Category]store.Adapter, len(adapters)),
		limiters: make(map[models.Category]*rate.Limiter, len(adapters)),
		logger:   logger.OrNop(opts.Logger),
		manifest: NewDeletionManifest(),
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	for _, a := range adapters {
		e.adapters[a.Category()] = a
		e.limiters[a.Category()] = rate.NewLimiter(limit, 1)
	}

	return e
}

// batch is one store call worth of ids. index maps each id back to its
// position in the request.
type batch struct {
	category models.Category
	ids      []string
	index    []int
}

// Delete attempts every item and returns one outcome per item, in request
// order. A failure never stops the remaining items.
func (e *Executor) Delete(ctx context.Context, items []models.Item) *models.DeletionReport {
	report := &models.DeletionReport{
		ID:        uuid.NewString(),
		Outcomes:  make([]models.DeletionOutcome, len(items)),
		DryRun:    e.opts.DryRun,
		StartedAt: time.Now(),
	}
	log := e.logger.With(zap.String("report", report.ID))
	rec := newRecorder(report, items, e.opts.Reporter, e.manifest)

	log.Info("deletion started", zap.Int("items", len(items)), zap.Bool("dry_run", e.opts.DryRun))

	type itemKey struct {
		category models.Category
		id       string
	}
	seen := make(map[itemKey]bool, len(items))
	pending := make(map[models.Category][]int)
	var order []models.Category

	for i, item := range items {
		key := itemKey{item.Category, item.ID}
		if seen[key] {
			rec.fail(i, errDuplicateRequest)
			continue
		}
		seen[key] = true

		if e.opts.DryRun {
			rec.succeed(i)
			continue
		}
		if _, ok := e.adapters[item.Category]; !ok {
			rec.fail(i, fmt.Errorf("%w: %s", errNoAdapter, item.Category))
			continue
		}

		if _, ok := pending[item.Category]; !ok {
			order = append(order, item.Category)
		}
		pending[item.Category] = append(pending[item.Category], i)
	}

	var batches []batch
	for _, c := range order {
		indices := pending[c]
		for start := 0; start < len(indices); start += e.opts.BatchSize {
			end := min(start+e.opts.BatchSize, len(indices))
			b := batch{category: c, index: indices[start:end]}
			for _, i := range b.index {
				b.ids = append(b.ids, items[i].ID)
			}
			batches = append(batches, b)
		}
	}

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)

	for _, b := range batches {
		if ctx.Err() != nil {
			rec.failBatch(b, ctx.Err())
			continue
		}
		g.Go(func() error {
			e.runBatch(ctx, b, rec, log)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)
	rec.finish()

	log.Info("deletion finished",
		zap.Int("succeeded", report.SucceededCount()),
		zap.Int("failed", report.FailedCount()),
		zap.Duration("duration", report.Duration))

	return report
}

func (e *Executor) runBatch(ctx context.Context, b batch, rec *recorder, log *zap.Logger) {
	log = log.With(zap.String("category", b.category.String()), zap.Int("ids", len(b.ids)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("store panicked during delete", zap.Any("panic", r))
			rec.failBatch(b, fmt.Errorf("store panicked: %v", r))
		}
	}()

	if err := e.limiters[b.category].Wait(ctx); err != nil {
		rec.failBatch(b, err)
		return
	}

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if e.opts.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
	}
	defer cancel()

	answers, err := e.callDelete(callCtx, e.adapters[b.category], b.ids)
	if err != nil {
		log.Warn("delete batch unanswered", zap.Error(err))
		rec.failBatch(b, err)
		return
	}

	// The store may have removed some ids before its deadline; trust its
	// per-id answers and only fill in the ones it could not give.
	expired := e.expiryErr(ctx, callCtx)
	for n, id := range b.ids {
		res, ok := answers[id]
		switch {
		case !ok && expired != nil:
			rec.fail(b.index[n], expired)
		case !ok:
			rec.fail(b.index[n], ErrNoOutcome)
		case res != nil && expired != nil && isContextErr(res):
			rec.fail(b.index[n], expired)
		case res != nil:
			rec.fail(b.index[n], res)
		default:
			rec.succeed(b.index[n])
		}
	}

	log.Debug("delete batch done")
}

// callDelete runs one store call and waits for its answers. A store that is
// still running AbandonAfter past its deadline is given up on, and its ids
// are reported as timed out without knowing which of them were removed.
func (e *Executor) callDelete(ctx context.Context, adapter store.Adapter, ids []string) (map[string]error, error) {
	type result struct {
		answers map[string]error
		err     error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", store.ErrPanic, r)}
			}
		}()
		done <- result{answers: adapter.Delete(ctx, ids)}
	}()

	select {
	case r := <-done:
		return r.answers, r.err
	case <-ctx.Done():
	}

	grace := time.NewTimer(e.opts.AbandonAfter)
	defer grace.Stop()
	select {
	case r := <-done:
		return r.answers, r.err
	case <-grace.C:
		return nil, fmt.Errorf("%w: no answer %s past the deadline, items may have been removed",
			store.ErrTimeout, e.opts.AbandonAfter)
	}
}

// expiryErr describes why callCtx ended, or returns nil if it has not
func (e *Executor) expiryErr(parent, callCtx context.Context) error {
	if callCtx.Err() == nil {
		return nil
	}
	if err := parent.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w after %s", store.ErrTimeout, e.opts.Timeout)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Manifest returns the record of items deleted by this executor
func (e *Executor) Manifest() *DeletionManifest {
	return e.manifest
}

// SaveManifest saves the deletion manifest to a file
func (e *Executor) SaveManifest(path string) error {
	return e.manifest.Save(path)
}

// recorder fills a report from concurrent batches and publishes progress
type recorder struct {
	mu       sync.Mutex
	report   *models.DeletionReport
	items    []models.Item
	done     []bool
	reporter *progress.ProgressReporter
	manifest *DeletionManifest

	processed int
	succeeded int
	failed    int
}

func newRecorder(report *models.DeletionReport, items []models.Item, reporter *progress.ProgressReporter, manifest *DeletionManifest) *recorder {
	r := &recorder{
		report:   report,
		items:    items,
		done:     make([]bool, len(items)),
		reporter: reporter,
		manifest: manifest,
	}
	r.publish(progress.PhaseDeleting, "")
	return r
}

func (r *recorder) succeed(i int) {
	r.record(i, nil)
}

func (r *recorder) fail(i int, err error) {
	item := r.items[i]
	r.record(i, CategorizeError(item.ID, item.Category, err))
}

func (r *recorder) failBatch(b batch, err error) {
	for _, i := range b.index {
		r.fail(i, err)
	}
}

func (r *recorder) record(i int, err error) {
	item := r.items[i]

	r.mu.Lock()
	if r.done[i] {
		// The first outcome for a position wins
		r.mu.Unlock()
		return
	}
	r.done[i] = true

	outcome := models.DeletionOutcome{ItemID: item.ID, Category: item.Category, Succeeded: err == nil}
	if err != nil {
		outcome.Err = err
		r.failed++
	} else {
		r.succeeded++
		if !r.report.DryRun {
			r.manifest.Add(item)
		}
	}
	r.report.Outcomes[i] = outcome
	r.processed++
	r.publishLocked(progress.PhaseDeleting, item.Category.DisplayName())
	r.mu.Unlock()
}

func (r *recorder) finish() {
	r.publish(progress.PhaseComplete, "")
}

func (r *recorder) publish(phase progress.Phase, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishLocked(phase, category)
}

// publishLocked sends under r.mu so subscribers see counts in order
func (r *recorder) publishLocked(phase progress.Phase, category string) {
	if r.reporter == nil {
		return
	}

	p := &progress.CleanProgress{
		Phase:     phase,
		Category:  category,
		Processed: r.processed,
		Total:     len(r.items),
		Succeeded: r.succeeded,
		Failed:    r.failed,
		DryRun:    r.report.DryRun,
		StartTime: r.report.StartedAt,
	}
	r.reporter.UpdateCleanProgress(p)
}

// DeletionManifest keeps track of deleted items
type DeletionManifest struct {
	mu        sync.Mutex
	Items     []DeletedItemInfo
	Timestamp time.Time
	TotalSize int64
}

// DeletedItemInfo represents information about a deleted item
type DeletedItemInfo struct {
	ID          string
	Category    models.Category
	DisplayName string
	Size        int64
	DeletedAt   time.Time
}

// NewDeletionManifest creates a new DeletionManifest
func NewDeletionManifest() *DeletionManifest {
	return &DeletionManifest{
		Items:     []DeletedItemInfo{},
		Timestamp: time.Now(),
	}
}

// Add adds an item to the manifest
func (m *DeletionManifest) Add(item models.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Items = append(m.Items, DeletedItemInfo{
		ID:          item.ID,
		Category:    item.Category,
		DisplayName: item.DisplayName,
		Size:        item.Size(),
		DeletedAt:   time.Now(),
	})
	m.TotalSize += item.Size()
}

// Len returns the number of recorded items
func (m *DeletionManifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Items)
}

// Save saves the manifest to a file
func (m *DeletionManifest) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Deletion Manifest\n")
	fmt.Fprintf(file, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(file, "Total Size: %d bytes\n", m.TotalSize)
	fmt.Fprintf(file, "Total Items: %d\n\n", len(m.Items))

	for _, it := range m.Items {
		fmt.Fprintf(file, "%s | %s | %s | %d bytes | %s\n",
			it.Category, it.ID, it.DisplayName, it.Size, it.DeletedAt.Format(time.RFC3339))
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync manifest: %w", err)
	}
	return nil
}
