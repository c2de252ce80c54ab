package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/store"
	"github.com/fenilsonani/dupsweep/internal/testutil"
)

var testTime = time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)

func TestCategoryScanMediaScenario(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryPhoto,
		testutil.Photo("1", 1024, 768, testTime),
		testutil.Photo("2", 3000, 4000, testTime),
		testutil.Photo("3", 1920, 1080, testTime),
		testutil.Photo("4", 3000, 4000, testTime),
		testutil.Photo("5", 800, 600, testTime),
	)

	result := NewCategoryScanner(adapter, nil, WithStrict(true)).Scan(context.Background())

	if result.Status != models.StatusCompleted {
		t.Fatalf("status = %v, want Completed (err %v)", result.Status, result.Err)
	}
	if result.ItemsSeen != 5 {
		t.Errorf("ItemsSeen = %d, want 5", result.ItemsSeen)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Items) != 2 {
		t.Fatalf("groups = %+v, want one group of 2", result.Groups)
	}
	if result.Groups[0].Items[0].ID != "2" || result.Groups[0].Items[1].ID != "4" {
		t.Errorf("group = %s,%s; want 2,4", result.Groups[0].Items[0].ID, result.Groups[0].Items[1].ID)
	}
}

func TestCategoryScanContactScenario(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryContact,
		testutil.Contact("c1", "John", "Smith", "john@x.com", ""),
		testutil.Contact("c2", " john ", "SMITH", "John@X.com", ""),
		testutil.Contact("c3", "Jane", "Doe", "jane@y.com", "555-0100"),
		testutil.Contact("c4", "Johnny", "S", "other@z.com", "555-0100"),
	)

	result := NewCategoryScanner(adapter, nil).Scan(context.Background())

	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	g := result.Groups[0]
	if g.Key != "john smith|john@x.com|" {
		t.Errorf("key = %q", g.Key)
	}
	if len(g.Items) != 2 || g.Items[0].ID != "c1" || g.Items[1].ID != "c2" {
		t.Errorf("group items = %+v", g.Items)
	}
}

func TestCategoryScanPermissionDenied(t *testing.T) {
	for _, auth := range []store.Authorization{store.AuthDenied, store.AuthRestricted} {
		t.Run(auth.String(), func(t *testing.T) {
			adapter := testutil.NewFakeAdapter(models.CategoryCalendarEvent,
				testutil.Event("e1", "Standup", testTime),
				testutil.Event("e2", "Standup", testTime),
			)
			adapter.Auth = auth

			result := NewCategoryScanner(adapter, nil).Scan(context.Background())

			if result.Status != models.StatusPermissionDenied {
				t.Errorf("status = %v, want PermissionDenied", result.Status)
			}
			if len(result.Groups) != 0 {
				t.Errorf("denied category returned %d groups", len(result.Groups))
			}
			if !errors.Is(result.Err, ErrPermissionDenied) {
				t.Errorf("err = %v, want ErrPermissionDenied", result.Err)
			}
		})
	}
}

func TestCategoryScanAuthorizationError(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryContact)
	adapter.AuthErr = errors.New("prompt crashed")

	result := NewCategoryScanner(adapter, nil).Scan(context.Background())
	if result.Status != models.StatusFailed {
		t.Errorf("status = %v, want Failed", result.Status)
	}
}

func TestCategoryScanFailureKeepsPartialGroups(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryVideo,
		testutil.Video("v1", 1920, 1080, testTime),
		testutil.Video("v2", 1920, 1080, testTime),
		testutil.Video("v3", 1280, 720, testTime),
		testutil.Video("v4", 1280, 720, testTime),
	)
	adapter.PageSize = 2
	adapter.FailAfterPages = 1

	result := NewCategoryScanner(adapter, nil).Scan(context.Background())

	if result.Status != models.StatusFailed {
		t.Fatalf("status = %v, want Failed", result.Status)
	}
	if !errors.Is(result.Err, testutil.ErrInjected) {
		t.Errorf("err = %v, want injected failure", result.Err)
	}
	if len(result.Groups) != 1 || result.Groups[0].Items[0].ID != "v1" {
		t.Errorf("partial groups = %+v, want the v1/v2 group", result.Groups)
	}
	if result.ItemsSeen != 2 {
		t.Errorf("ItemsSeen = %d, want 2", result.ItemsSeen)
	}
}

func TestCategoryScanTimeoutIsFailure(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryPhoto, testutil.Photo("1", 1, 1, testTime))
	adapter.PageDelay = 200 * time.Millisecond

	result := NewCategoryScanner(adapter, nil, WithTimeout(20*time.Millisecond)).Scan(context.Background())

	if result.Status != models.StatusFailed {
		t.Fatalf("status = %v, want Failed", result.Status)
	}
	if !errors.Is(result.Err, store.ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", result.Err)
	}
}

func TestCategoryScanCancelledDiscardsGroups(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryPhoto,
		testutil.Photo("1", 10, 10, testTime),
		testutil.Photo("2", 10, 10, testTime),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewCategoryScanner(adapter, nil).Scan(ctx)

	if result.Status != models.StatusCancelled {
		t.Errorf("status = %v, want Cancelled", result.Status)
	}
	if result.Groups != nil {
		t.Errorf("cancelled scan kept %d groups", len(result.Groups))
	}
}

func TestCategoryScanWrongCategoryDropped(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryPhoto,
		testutil.Photo("p1", 10, 10, testTime),
		testutil.Video("v1", 10, 10, testTime),
		testutil.Photo("p2", 10, 10, testTime),
	)

	result := NewCategoryScanner(adapter, nil).Scan(context.Background())

	if result.ItemsSeen != 2 {
		t.Errorf("ItemsSeen = %d, want 2", result.ItemsSeen)
	}
	for _, g := range result.Groups {
		if err := g.Validate(); err != nil {
			t.Errorf("invalid group: %v", err)
		}
	}
}

func TestCategoryScanWrongCategoryPanicsWhenStrict(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryPhoto, testutil.Video("v1", 10, 10, testTime))

	defer func() {
		if recover() == nil {
			t.Error("expected panic in strict mode")
		}
	}()
	NewCategoryScanner(adapter, nil, WithStrict(true)).Scan(context.Background())
}

func TestCategoryScanRecoversAdapterPanic(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryContact)
	adapter.Panic = true

	result := NewCategoryScanner(adapter, nil).Scan(context.Background())
	if result.Status != models.StatusFailed || result.Err == nil {
		t.Errorf("status = %v err = %v, want Failed with error", result.Status, result.Err)
	}
}

func TestCategoryScanIdempotent(t *testing.T) {
	adapter := testutil.NewFakeAdapter(models.CategoryCalendarEvent,
		testutil.Event("e1", "Review", testTime),
		testutil.Event("e2", "review", testTime),
		testutil.Event("e3", "Retro", testTime),
	)
	cs := NewCategoryScanner(adapter, nil)

	first := cs.Scan(context.Background())
	second := cs.Scan(context.Background())

	if len(first.Groups) != len(second.Groups) {
		t.Fatalf("group counts differ: %d vs %d", len(first.Groups), len(second.Groups))
	}
	for i := range first.Groups {
		if first.Groups[i].Key != second.Groups[i].Key {
			t.Errorf("group %d key %q != %q", i, first.Groups[i].Key, second.Groups[i].Key)
		}
	}
}
