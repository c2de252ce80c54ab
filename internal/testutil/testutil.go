// Package testutil provides test helpers and fixtures for dupsweep tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fenilsonani/dupsweep/internal/models"
)

// TestFixture holds paths to a temporary media library
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)

	PhotosDir string
	VideosDir string
}

// NewFixture creates a new test fixture with a photos and a videos directory
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()

	f := &TestFixture{
		T:         t,
		RootDir:   root,
		PhotosDir: filepath.Join(root, "photos"),
		VideosDir: filepath.Join(root, "videos"),
	}

	for _, dir := range []string{f.PhotosDir, f.VideosDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return f
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFileWithTime creates a file and sets its modification time
func (f *TestFixture) CreateFileWithTime(relPath string, content []byte, modTime time.Time) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	if err := os.Chtimes(fullPath, modTime, modTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// CreatePNG writes a width x height PNG filled with fill and stamps its mtime
func (f *TestFixture) CreatePNG(relPath string, width, height int, fill color.Color, modTime time.Time) string {
	f.T.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		f.T.Fatalf("failed to create directory for %s: %v", fullPath, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		f.T.Fatalf("failed to create %s: %v", fullPath, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		f.T.Fatalf("failed to encode %s: %v", fullPath, err)
	}
	if err := file.Close(); err != nil {
		f.T.Fatalf("failed to close %s: %v", fullPath, err)
	}

	if err := os.Chtimes(fullPath, modTime, modTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// MakeReadOnly removes write permission from a directory so its entries
// cannot be deleted. Permissions are restored on cleanup.
func (f *TestFixture) MakeReadOnly(dir string) {
	f.T.Helper()

	if err := os.Chmod(dir, 0555); err != nil {
		f.T.Fatalf("failed to chmod %s: %v", dir, err)
	}
	f.T.Cleanup(func() {
		os.Chmod(dir, 0755)
	})
}

// Path returns the full path for a relative path
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// =============================================================================
// Item Builders
// =============================================================================

// MediaItem builds a photo or video item
func MediaItem(id string, category models.Category, width, height int, created time.Time) models.Item {
	return models.Item{
		ID:          id,
		Category:    category,
		DisplayName: id,
		Media: &models.MediaInfo{
			PixelWidth:  width,
			PixelHeight: height,
			CreatedAt:   created,
		},
	}
}

// Photo builds a photo item
func Photo(id string, width, height int, created time.Time) models.Item {
	return MediaItem(id, models.CategoryPhoto, width, height, created)
}

// Video builds a video item
func Video(id string, width, height int, created time.Time) models.Item {
	return MediaItem(id, models.CategoryVideo, width, height, created)
}

// Contact builds a contact item
func Contact(id, given, family, email, phone string) models.Item {
	return models.Item{
		ID:          id,
		Category:    models.CategoryContact,
		DisplayName: given + " " + family,
		Contact: &models.ContactInfo{
			GivenName:    given,
			FamilyName:   family,
			PrimaryEmail: email,
			PrimaryPhone: phone,
		},
	}
}

// Event builds a calendar event item
func Event(id, title string, start time.Time) models.Item {
	return models.Item{
		ID:          id,
		Category:    models.CategoryCalendarEvent,
		DisplayName: title,
		Event:       &models.EventInfo{Title: title, Start: start},
	}
}

// =============================================================================
// Environment Helpers
// =============================================================================

// IsRoot returns true if running as root
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}

// SkipOnWindows skips tests relying on POSIX permissions
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on windows")
	}
}
