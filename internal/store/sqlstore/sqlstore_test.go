package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilsonani/dupsweep/internal/keys"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/store"
)

var captured = time.Date(2023, 7, 14, 10, 0, 0, 0, time.UTC)

func newTestLibrary(t *testing.T, opts Options) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "library.db"), opts)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

func collect(t *testing.T, a store.Adapter) []models.Item {
	t.Helper()
	ctx := context.Background()
	pager, err := a.Enumerate(ctx)
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	var items []models.Item
	for {
		page, err := pager.Next(ctx)
		if errors.Is(err, store.ErrDone) {
			return items
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		items = append(items, page...)
	}
}

func TestMediaAdapterFiltersByKind(t *testing.T) {
	lib := newTestLibrary(t, Options{PageSize: 2})
	ctx := context.Background()

	err := lib.AddMedia(ctx,
		MediaAsset{BaseModel: BaseModel{ID: "p1"}, Kind: KindPhoto, Filename: "a.jpg", PixelWidth: 3000, PixelHeight: 4000, CapturedAt: captured},
		MediaAsset{BaseModel: BaseModel{ID: "p2"}, Kind: KindPhoto, Filename: "b.jpg", PixelWidth: 3000, PixelHeight: 4000, CapturedAt: captured},
		MediaAsset{BaseModel: BaseModel{ID: "p3"}, Kind: KindPhoto, Filename: "c.jpg", PixelWidth: 1920, PixelHeight: 1080, CapturedAt: captured},
		MediaAsset{BaseModel: BaseModel{ID: "v1"}, Kind: KindVideo, Filename: "clip.mov", PixelWidth: 1920, PixelHeight: 1080, CapturedAt: captured},
	)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}

	photos, _ := lib.Adapter(models.CategoryPhoto)
	items := collect(t, photos)
	if len(items) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(items))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if items[i].ID != want {
			t.Errorf("item %d = %s, want %s", i, items[i].ID, want)
		}
		if items[i].Category != models.CategoryPhoto {
			t.Errorf("item %s category = %v", items[i].ID, items[i].Category)
		}
	}
	if !items[0].Media.CreatedAt.Equal(captured) {
		t.Errorf("capture time lost: %v", items[0].Media.CreatedAt)
	}

	videos, _ := lib.Adapter(models.CategoryVideo)
	if got := collect(t, videos); len(got) != 1 || got[0].Category != models.CategoryVideo {
		t.Errorf("videos = %+v", got)
	}
}

func TestEnumerateReturnsFreshCursors(t *testing.T) {
	lib := newTestLibrary(t, Options{PageSize: 1})
	ctx := context.Background()
	if err := lib.AddContacts(ctx,
		ContactRecord{BaseModel: BaseModel{ID: "c1"}, GivenName: "Ann"},
		ContactRecord{BaseModel: BaseModel{ID: "c2"}, GivenName: "Bob"},
	); err != nil {
		t.Fatal(err)
	}

	a, _ := lib.Adapter(models.CategoryContact)
	first := collect(t, a)
	second := collect(t, a)
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("cursors share state: %d then %d items", len(first), len(second))
	}
}

func TestDeleteReportsOneOutcomePerID(t *testing.T) {
	lib := newTestLibrary(t, Options{})
	ctx := context.Background()
	if err := lib.AddEvents(ctx,
		CalendarEventRecord{BaseModel: BaseModel{ID: "e1"}, Title: "Sync", StartsAt: captured},
		CalendarEventRecord{BaseModel: BaseModel{ID: "e2"}, Title: "Sync", StartsAt: captured},
	); err != nil {
		t.Fatal(err)
	}

	a, _ := lib.Adapter(models.CategoryCalendarEvent)
	results := a.Delete(ctx, []string{"e2", "missing"})

	if len(results) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(results))
	}
	if results["e2"] != nil {
		t.Errorf("e2: unexpected error %v", results["e2"])
	}
	if !errors.Is(results["missing"], store.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", results["missing"])
	}

	n, err := lib.Count(ctx, models.CategoryCalendarEvent)
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
}

func TestDeleteDoesNotCrossKinds(t *testing.T) {
	lib := newTestLibrary(t, Options{})
	ctx := context.Background()
	if err := lib.AddMedia(ctx, MediaAsset{BaseModel: BaseModel{ID: "v1"}, Kind: KindVideo, Filename: "x.mov"}); err != nil {
		t.Fatal(err)
	}

	photos, _ := lib.Adapter(models.CategoryPhoto)
	if err := photos.Delete(ctx, []string{"v1"})["v1"]; !errors.Is(err, store.ErrNotFound) {
		t.Errorf("photo adapter deleted a video: err = %v", err)
	}
	if n, _ := lib.Count(ctx, models.CategoryVideo); n != 1 {
		t.Errorf("video count = %d, want 1", n)
	}
}

func TestRequestAuthorization(t *testing.T) {
	auth := store.NewStaticAuthorizer(map[models.Category]store.Authorization{
		models.CategoryContact: store.AuthDenied,
	})
	lib := newTestLibrary(t, Options{Authorizer: auth})

	contacts, _ := lib.Adapter(models.CategoryContact)
	if got, _ := contacts.RequestAuthorization(context.Background()); got != store.AuthDenied {
		t.Errorf("contacts = %v, want denied", got)
	}
	photos, _ := lib.Adapter(models.CategoryPhoto)
	if got, _ := photos.RequestAuthorization(context.Background()); got != store.AuthGranted {
		t.Errorf("photos = %v, want granted", got)
	}
}

func TestGeneratedIDs(t *testing.T) {
	lib := newTestLibrary(t, Options{})
	ctx := context.Background()
	if err := lib.AddContacts(ctx, ContactRecord{Email: "x@example.com"}); err != nil {
		t.Fatal(err)
	}

	a, _ := lib.Adapter(models.CategoryContact)
	items := collect(t, a)
	if len(items) != 1 || items[0].ID == "" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].DisplayName != "x@example.com" {
		t.Errorf("display name = %q, want email fallback", items[0].DisplayName)
	}
}

func TestCategoryScanOverLibrary(t *testing.T) {
	lib := newTestLibrary(t, Options{PageSize: 2})
	ctx := context.Background()
	if err := lib.AddContacts(ctx,
		ContactRecord{BaseModel: BaseModel{ID: "c1"}, GivenName: "John", FamilyName: "Smith", Email: "john@x.com"},
		ContactRecord{BaseModel: BaseModel{ID: "c2"}, GivenName: "john", FamilyName: "smith", Email: "JOHN@x.com"},
		ContactRecord{BaseModel: BaseModel{ID: "c3"}, GivenName: "Jane", FamilyName: "Doe"},
	); err != nil {
		t.Fatal(err)
	}

	a, _ := lib.Adapter(models.CategoryContact)
	result := scanner.NewCategoryScanner(a, keys.Contact()).Scan(ctx)

	if result.Status != models.StatusCompleted {
		t.Fatalf("status = %v, err = %v", result.Status, result.Err)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Items) != 2 {
		t.Fatalf("groups = %+v", result.Groups)
	}
	if result.Groups[0].Items[0].ID != "c1" {
		t.Errorf("group should keep enumeration order, got %s first", result.Groups[0].Items[0].ID)
	}
}
