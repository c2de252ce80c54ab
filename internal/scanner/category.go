package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fenilsonani/dupsweep/internal/keys"
	"github.com/fenilsonani/dupsweep/internal/logger"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/store"
)

// ErrPermissionDenied marks a category whose store refused access
var ErrPermissionDenied = errors.New("permission denied")

// CategoryResult is the terminal outcome of one category scan
type CategoryResult struct {
	Category  models.Category
	Status    models.CategoryStatus
	Groups    []models.DuplicateGroup
	ItemsSeen int
	Excluded  int
	Err       error
	Duration  time.Duration
}

// CategoryScanner runs one category end to end: authorization, paged
// enumeration and grouping. It only reads from its store.
type CategoryScanner struct {
	adapter  store.Adapter
	strategy keys.Strategy
	timeout  time.Duration
	strict   bool
	logger   *zap.Logger
}

// CategoryOption configures a CategoryScanner
type CategoryOption func(*CategoryScanner)

// WithTimeout bounds each enumeration call. Authorization is never bounded.
func WithTimeout(d time.Duration) CategoryOption {
	return func(cs *CategoryScanner) { cs.timeout = d }
}

// WithStrict makes invariant violations panic instead of being dropped
func WithStrict(strict bool) CategoryOption {
	return func(cs *CategoryScanner) { cs.strict = strict }
}

// WithLogger sets the scanner's logger
func WithLogger(l *zap.Logger) CategoryOption {
	return func(cs *CategoryScanner) { cs.logger = l }
}

// NewCategoryScanner creates a scanner for the adapter's category. A nil
// strategy selects the category default.
func NewCategoryScanner(adapter store.Adapter, strategy keys.Strategy, opts ...CategoryOption) *CategoryScanner {
	if strategy == nil {
		strategy = keys.Default(adapter.Category())
	}
	cs := &CategoryScanner{
		adapter:  adapter,
		strategy: strategy,
	}
	for _, opt := range opts {
		opt(cs)
	}
	cs.logger = logger.OrNop(cs.logger).With(zap.String("category", adapter.Category().String()))
	return cs
}

// Category returns the category this scanner covers
func (cs *CategoryScanner) Category() models.Category {
	return cs.adapter.Category()
}

// Scan runs the category to a terminal status. It never returns an error:
// denial, store failures and cancellation are all reported through the
// result's Status and Err.
func (cs *CategoryScanner) Scan(ctx context.Context) (result CategoryResult) {
	category := cs.Category()
	start := time.Now()
	result = CategoryResult{Category: category, Status: models.StatusRunning}

	defer func() {
		result.Duration = time.Since(start)
	}()

	if !cs.strict {
		defer func() {
			if r := recover(); r != nil {
				cs.logger.Error("adapter panicked", zap.Any("panic", r))
				result.Status = models.StatusFailed
				result.Groups = nil
				result.Err = fmt.Errorf("adapter panicked: %v", r)
			}
		}()
	}

	// Authorization may wait on a human, so no timeout applies here
	auth, err := cs.adapter.RequestAuthorization(ctx)
	if ctx.Err() != nil {
		return cs.cancelled(result, ctx.Err())
	}
	if err != nil {
		result.Status = models.StatusFailed
		result.Err = fmt.Errorf("authorization request failed: %w", err)
		return result
	}
	if !auth.Allowed() {
		cs.logger.Info("access not granted", zap.Stringer("authorization", auth))
		result.Status = models.StatusPermissionDenied
		result.Err = fmt.Errorf("%w: %s access %s", ErrPermissionDenied, category.DisplayName(), auth)
		return result
	}

	pager, err := store.CallWithTimeout(ctx, cs.timeout, cs.adapter.Enumerate)
	if err != nil {
		if ctx.Err() != nil {
			return cs.cancelled(result, ctx.Err())
		}
		result.Status = models.StatusFailed
		result.Err = fmt.Errorf("failed to start enumeration: %w", err)
		return result
	}

	g := newGrouper(category, cs.strategy)

	for {
		// Page boundaries are the cancellation checkpoints
		if ctx.Err() != nil {
			return cs.cancelled(result, ctx.Err())
		}

		page, err := store.CallWithTimeout(ctx, cs.timeout, pager.Next)
		if errors.Is(err, store.ErrDone) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return cs.cancelled(result, ctx.Err())
			}
			// Keep what was found before the failure instead of aborting
			result.Status = models.StatusFailed
			result.Groups = g.Groups()
			result.Excluded = g.excluded
			result.Err = fmt.Errorf("enumeration failed after %d items: %w", result.ItemsSeen, err)
			cs.logger.Warn("enumeration failed",
				zap.Int("items", result.ItemsSeen),
				zap.Int("partial_groups", len(result.Groups)),
				zap.Error(err))
			return result
		}

		for _, item := range page {
			if item.Category != category {
				cs.invariantViolation(item)
				continue
			}
			g.Add(item)
			result.ItemsSeen++
		}
	}

	result.Groups = g.Groups()
	result.Excluded = g.excluded
	result.Status = models.StatusCompleted

	cs.logger.Debug("category scanned",
		zap.Int("items", result.ItemsSeen),
		zap.Int("excluded", result.Excluded),
		zap.Int("groups", len(result.Groups)))

	return result
}

// cancelled discards anything found so far so partial work is never
// mistaken for a completed category
func (cs *CategoryScanner) cancelled(result CategoryResult, cause error) CategoryResult {
	result.Status = models.StatusCancelled
	result.Groups = nil
	result.Err = cause
	cs.logger.Info("scan cancelled", zap.Int("items", result.ItemsSeen))
	return result
}

func (cs *CategoryScanner) invariantViolation(item models.Item) {
	msg := fmt.Sprintf("adapter for %s returned %s item %q", cs.Category(), item.Category, item.ID)
	if cs.strict {
		panic(msg)
	}
	cs.logger.Warn("dropping item from wrong category", zap.String("item", item.ID), zap.String("detail", msg))
}
