package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"syscall"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/store"
)

var (
	// ErrNoOutcome is recorded for ids the store left out of its answer
	ErrNoOutcome = errors.New("store reported no outcome")

	errNoAdapter        = errors.New("no store configured for category")
	errDuplicateRequest = errors.New("item requested more than once")
)

// ErrorReason categorizes why a deletion failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorNotFound
	ErrorTimeout
	ErrorNoAdapter
	ErrorDuplicateRequest
	ErrorCancelled
	ErrorStore
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorNotFound:
		return "Item not found"
	case ErrorTimeout:
		return "Timed out"
	case ErrorNoAdapter:
		return "No store"
	case ErrorDuplicateRequest:
		return "Duplicate request"
	case ErrorCancelled:
		return "Cancelled"
	case ErrorStore:
		return "Store error"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// DeletionError represents a detailed deletion error
type DeletionError struct {
	ItemID    string
	Category  models.Category
	Reason    ErrorReason
	Original  error
	Retryable bool
}

// Error implements the error interface
func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s %s: %s (%v)", e.Category, e.ItemID, e.Reason, e.Original)
}

// Unwrap returns the underlying error
func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *DeletionError) UserMessage() string {
	label := e.Category.DisplayName()
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("⚠️  Permission denied: %s %s", label, e.ItemID)
	case ErrorNotFound:
		return fmt.Sprintf("ℹ️  Already deleted: %s %s", label, e.ItemID)
	case ErrorTimeout:
		return fmt.Sprintf("⚠️  Store did not answer in time: %s %s (try again)", label, e.ItemID)
	case ErrorNoAdapter:
		return fmt.Sprintf("❌ No store available for %s: %s", label, e.ItemID)
	case ErrorDuplicateRequest:
		return fmt.Sprintf("ℹ️  Requested twice, attempted once: %s %s", label, e.ItemID)
	case ErrorCancelled:
		return fmt.Sprintf("ℹ️  Not attempted (cancelled): %s %s", label, e.ItemID)
	default:
		return fmt.Sprintf("❌ Error deleting %s %s: %v", label, e.ItemID, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized DeletionError
func CategorizeError(itemID string, category models.Category, err error) *DeletionError {
	if err == nil {
		return nil
	}

	var existing *DeletionError
	if errors.As(err, &existing) {
		return existing
	}

	delErr := &DeletionError{
		ItemID:   itemID,
		Category: category,
		Original: err,
		Reason:   ErrorUnknown,
	}

	switch {
	case errors.Is(err, errNoAdapter):
		delErr.Reason = ErrorNoAdapter
		return delErr
	case errors.Is(err, errDuplicateRequest):
		delErr.Reason = ErrorDuplicateRequest
		return delErr
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		delErr.Reason = ErrorNotFound
		return delErr
	case errors.Is(err, fs.ErrPermission):
		delErr.Reason = ErrorPermissionDenied
		return delErr
	case errors.Is(err, store.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		delErr.Reason = ErrorTimeout
		delErr.Retryable = true
		return delErr
	case errors.Is(err, context.Canceled):
		delErr.Reason = ErrorCancelled
		delErr.Retryable = true
		return delErr
	case errors.Is(err, ErrNoOutcome):
		delErr.Reason = ErrorStore
		return delErr
	}

	// Check syscall errors
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			delErr.Reason = ErrorPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			delErr.Reason = ErrorStore
			delErr.Retryable = true
		case syscall.ENOENT:
			delErr.Reason = ErrorNotFound
		default:
			delErr.Reason = ErrorStore
		}
		return delErr
	}

	return delErr
}

// GroupErrors groups deletion errors by reason
func GroupErrors(errs []*DeletionError) map[ErrorReason][]*DeletionError {
	grouped := make(map[ErrorReason][]*DeletionError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// ReportErrors extracts the categorized errors of a report's failed outcomes
func ReportErrors(report *models.DeletionReport) []*DeletionError {
	if report == nil {
		return nil
	}

	var errs []*DeletionError
	for _, o := range report.Failed() {
		errs = append(errs, CategorizeError(o.ItemID, o.Category, o.Err))
	}
	return errs
}

// FormatErrorSummary creates a user-friendly summary of a report's failures
func FormatErrorSummary(report *models.DeletionReport) string {
	errs := ReportErrors(report)
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	reasons := make([]ErrorReason, 0, len(grouped))
	for r := range grouped {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	var b strings.Builder
	b.WriteString("\n⚠️  Issues encountered:\n")

	for i, reason := range reasons {
		branch := "├─"
		if i == len(reasons)-1 {
			branch = "└─"
		}
		fmt.Fprintf(&b, "   %s %s: %d items\n", branch, reason, len(grouped[reason]))

		if tip := reasonTip(reason); tip != "" {
			fmt.Fprintf(&b, "   │  └─ Tip: %s\n", tip)
		}
	}

	return b.String()
}

func reasonTip(reason ErrorReason) string {
	switch reason {
	case ErrorPermissionDenied:
		return "Grant access to the store and retry"
	case ErrorTimeout:
		return "Raise timeouts.delete in the config"
	case ErrorNoAdapter:
		return "Enable the category or configure its source"
	default:
		return ""
	}
}
