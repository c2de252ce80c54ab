package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/store"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		reason    ErrorReason
		retryable bool
	}{
		{"store not found", store.ErrNotFound, ErrorNotFound, false},
		{"os.ErrNotExist", os.ErrNotExist, ErrorNotFound, false},
		{"ENOENT", syscall.ENOENT, ErrorNotFound, false},
		{"os.ErrPermission", os.ErrPermission, ErrorPermissionDenied, false},
		{"EACCES", syscall.EACCES, ErrorPermissionDenied, false},
		{"EPERM", syscall.EPERM, ErrorPermissionDenied, false},
		{"EBUSY", syscall.EBUSY, ErrorStore, true},
		{"store timeout", fmt.Errorf("%w after 1s", store.ErrTimeout), ErrorTimeout, true},
		{"deadline", context.DeadlineExceeded, ErrorTimeout, true},
		{"cancelled", context.Canceled, ErrorCancelled, true},
		{"no outcome", ErrNoOutcome, ErrorStore, false},
		{"no adapter", fmt.Errorf("%w: photo", errNoAdapter), ErrorNoAdapter, false},
		{"duplicate", errDuplicateRequest, ErrorDuplicateRequest, false},
		{"generic", errors.New("something went wrong"), ErrorUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError("id-1", models.CategoryPhoto, tt.err)
			if got.Reason != tt.reason {
				t.Errorf("Reason = %v, want %v", got.Reason, tt.reason)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("DeletionError does not unwrap to the original error")
			}
		})
	}
}

func TestCategorizeErrorNil(t *testing.T) {
	if got := CategorizeError("x", models.CategoryContact, nil); got != nil {
		t.Errorf("CategorizeError(nil) = %v, want nil", got)
	}
}

func TestCategorizeErrorKeepsExisting(t *testing.T) {
	orig := &DeletionError{ItemID: "a", Category: models.CategoryVideo, Reason: ErrorTimeout}
	wrapped := fmt.Errorf("batch: %w", orig)

	if got := CategorizeError("b", models.CategoryPhoto, wrapped); got != orig {
		t.Errorf("got %+v, want the original DeletionError", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		reason ErrorReason
		want   string
	}{
		{ErrorPermissionDenied, "Permission denied"},
		{ErrorNotFound, "Already deleted"},
		{ErrorTimeout, "in time"},
		{ErrorNoAdapter, "No store"},
		{ErrorCancelled, "cancelled"},
		{ErrorUnknown, "Error deleting"},
	}

	for _, tt := range tests {
		t.Run(tt.reason.String(), func(t *testing.T) {
			e := &DeletionError{ItemID: "c1", Category: models.CategoryContact, Reason: tt.reason, Original: errors.New("x")}
			msg := e.UserMessage()
			if !strings.Contains(msg, tt.want) || !strings.Contains(msg, "c1") {
				t.Errorf("UserMessage() = %q, want it to mention %q and the id", msg, tt.want)
			}
		})
	}
}

func TestFormatErrorSummary(t *testing.T) {
	if got := FormatErrorSummary(&models.DeletionReport{}); got != "" {
		t.Errorf("summary of a clean report = %q, want empty", got)
	}

	report := &models.DeletionReport{
		Outcomes: []models.DeletionOutcome{
			{ItemID: "a", Category: models.CategoryPhoto, Succeeded: true},
			{ItemID: "b", Category: models.CategoryPhoto, Err: syscall.EACCES},
			{ItemID: "c", Category: models.CategoryPhoto, Err: os.ErrPermission},
			{ItemID: "d", Category: models.CategoryContact, Err: store.ErrNotFound},
		},
	}

	got := FormatErrorSummary(report)
	for _, want := range []string{"Permission denied: 2 items", "Item not found: 1 items", "Tip:"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

func TestGroupErrors(t *testing.T) {
	errs := []*DeletionError{
		{Reason: ErrorTimeout},
		{Reason: ErrorTimeout},
		{Reason: ErrorStore},
	}
	grouped := GroupErrors(errs)
	if len(grouped[ErrorTimeout]) != 2 || len(grouped[ErrorStore]) != 1 {
		t.Errorf("GroupErrors() = %v", grouped)
	}
}
