package fsmedia

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/dupsweep/internal/keys"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/store"
	"github.com/fenilsonani/dupsweep/internal/testutil"
)

var shot = time.Date(2023, 7, 14, 10, 0, 0, 0, time.UTC)

// mp4Header is the smallest ftyp box that sniffs as video/mp4
var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

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

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		category models.Category
		roots    []string
		excludes []string
		errorMsg string
	}{
		{"photo", models.CategoryPhoto, []string{"/srv/photos"}, nil, ""},
		{"contacts", models.CategoryContact, []string{"/srv/photos"}, nil, "cannot serve"},
		{"no roots", models.CategoryPhoto, nil, nil, "at least one root"},
		{"relative root", models.CategoryVideo, []string{"videos"}, nil, "absolute"},
		{"bad exclude", models.CategoryPhoto, []string{"/srv/photos"}, []string{"["}, "invalid glob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.category, Options{Roots: tt.roots, Excludes: tt.excludes})
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.errorMsg)
			}
		})
	}
}

func TestEnumeratePhotos(t *testing.T) {
	f := testutil.NewFixture(t)
	a1 := f.CreatePNG("photos/a.png", 40, 30, color.White, shot)
	f.CreatePNG("photos/2023/b.png", 40, 30, color.Black, shot)
	f.CreatePNG("photos/c.png", 10, 10, color.White, shot)
	f.CreatePNG("photos/.thumbnails/a.png", 40, 30, color.White, shot)
	f.CreateFile("photos/notes.txt", []byte("not a photo"))
	f.CreateFile("photos/clip.mp4", mp4Header)

	a, err := New(models.CategoryPhoto, Options{
		Roots:    []string{f.PhotosDir},
		Excludes: []string{"*/.thumbnails/*"},
		PageSize: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	items := collect(t, a)
	if len(items) != 3 {
		t.Fatalf("expected 3 photos, got %d: %+v", len(items), items)
	}

	var first models.Item
	for _, it := range items {
		if it.ID == a1 {
			first = it
		}
	}
	if first.Media == nil {
		t.Fatalf("a.png not enumerated")
	}
	if first.Media.PixelWidth != 40 || first.Media.PixelHeight != 30 {
		t.Errorf("dimensions = %dx%d, want 40x30", first.Media.PixelWidth, first.Media.PixelHeight)
	}
	if !first.Media.CreatedAt.Equal(shot) {
		t.Errorf("capture time = %v, want %v", first.Media.CreatedAt, shot)
	}
	if first.DisplayName != "a.png" || first.Media.Size == 0 {
		t.Errorf("unexpected item: %+v", first)
	}
}

func TestEnumerateVideosSkipsImages(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreatePNG("videos/frame.png", 4, 4, color.White, shot)
	clip := f.CreateFile("videos/clip.mp4", mp4Header)

	a, err := New(models.CategoryVideo, Options{Roots: []string{f.VideosDir}})
	if err != nil {
		t.Fatal(err)
	}

	items := collect(t, a)
	if len(items) != 1 || items[0].ID != clip {
		t.Errorf("items = %+v, want only %s", items, clip)
	}
}

func TestEnumerateCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreatePNG("photos/a.png", 4, 4, color.White, shot)

	a, _ := New(models.CategoryPhoto, Options{Roots: []string{f.PhotosDir}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Enumerate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestScanFindsDuplicatePhotos(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreatePNG("photos/IMG_0001.png", 30, 40, color.White, shot)
	f.CreatePNG("photos/copy/IMG_0001.png", 30, 40, color.White, shot)
	f.CreatePNG("photos/other.png", 30, 40, color.White, shot.Add(time.Hour))

	a, _ := New(models.CategoryPhoto, Options{Roots: []string{f.PhotosDir}})
	result := scanner.NewCategoryScanner(a, keys.Media()).Scan(context.Background())

	if result.Status != models.StatusCompleted {
		t.Fatalf("status = %v, err = %v", result.Status, result.Err)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Items) != 2 {
		t.Errorf("groups = %+v", result.Groups)
	}
}

func TestDelete(t *testing.T) {
	f := testutil.NewFixture(t)
	photo := f.CreatePNG("photos/a.png", 4, 4, color.White, shot)
	notes := f.CreateFile("photos/notes.txt", []byte("keep me"))
	outside := f.CreatePNG("elsewhere/b.png", 4, 4, color.White, shot)
	missing := filepath.Join(f.PhotosDir, "gone.png")

	a, _ := New(models.CategoryPhoto, Options{Roots: []string{f.PhotosDir}})
	results := a.Delete(context.Background(), []string{photo, notes, outside, missing})

	if len(results) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(results))
	}
	if results[photo] != nil {
		t.Errorf("photo: unexpected error %v", results[photo])
	}
	f.AssertFileNotExists(photo)

	if results[notes] == nil {
		t.Error("non-media file should not be deleted")
	}
	f.AssertFileExists(notes)

	if err := results[outside]; err == nil || !strings.Contains(err.Error(), "outside") {
		t.Errorf("outside: err = %v", err)
	}
	f.AssertFileExists(outside)

	if !errors.Is(results[missing], store.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", results[missing])
	}
}

func TestDeleteReadOnlyDirectory(t *testing.T) {
	testutil.SkipIfRoot(t)
	testutil.SkipOnWindows(t)

	f := testutil.NewFixture(t)
	photo := f.CreatePNG("photos/locked/a.png", 4, 4, color.White, shot)
	f.MakeReadOnly(filepath.Dir(photo))

	a, _ := New(models.CategoryPhoto, Options{Roots: []string{f.PhotosDir}})
	err := a.Delete(context.Background(), []string{photo})[photo]

	if err == nil {
		t.Fatal("expected permission error")
	}
	f.AssertFileExists(photo)
}

func TestDeleteCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	photo := f.CreatePNG("photos/a.png", 4, 4, color.White, shot)

	a, _ := New(models.CategoryPhoto, Options{Roots: []string{f.PhotosDir}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Delete(ctx, []string{photo})[photo]; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	f.AssertFileExists(photo)
}

func TestRequestAuthorization(t *testing.T) {
	auth := store.NewStaticAuthorizer(map[models.Category]store.Authorization{
		models.CategoryPhoto: store.AuthRestricted,
	})
	a, _ := New(models.CategoryPhoto, Options{Roots: []string{"/srv/photos"}, Authorizer: auth})

	got, err := a.RequestAuthorization(context.Background())
	if err != nil || got != store.AuthRestricted {
		t.Errorf("RequestAuthorization = %v, %v; want restricted", got, err)
	}
}
