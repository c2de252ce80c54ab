package security

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePathForDeletion(t *testing.T) {
	root := t.TempDir()
	photo := filepath.Join(root, "a.png")
	if err := os.WriteFile(photo, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.png")
	if err := os.Symlink(photo, link); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "album")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	pv := NewPathValidator()
	pv.RestrictTo(root)
	if err := pv.Exclude("*/.thumbnails/*"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		errorMsg string
	}{
		{"regular file", photo, ""},
		{"relative path", "relative/a.png", "must be absolute"},
		{"traversal", root + "/album/../a.png", "suspicious"},
		{"protected root", "/", "protected"},
		{"system child", "/etc/passwd", "critical system path"},
		{"outside roots", filepath.Join(os.TempDir(), "elsewhere.png"), "outside"},
		{"excluded", filepath.Join(root, ".thumbnails", "a.png"), "exclude"},
		{"symlink", link, "symlink"},
		{"directory", sub, "directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidatePathForDeletion(tt.path)
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

func TestValidateMissingFile(t *testing.T) {
	root := t.TempDir()
	pv := NewPathValidator()
	pv.RestrictTo(root)

	err := pv.ValidatePathForDeletion(filepath.Join(root, "gone.png"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestIsProtectedPath(t *testing.T) {
	pv := NewPathValidator("/srv/archive")

	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/usr/local/bin", true},
		{"/srv/archive/2020", true},
		{"/home/me/Pictures", false},
		{"/srv/photos", false},
	}

	for _, tt := range tests {
		if got := pv.IsProtectedPath(tt.path); got != tt.want {
			t.Errorf("IsProtectedPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsExcluded(t *testing.T) {
	pv := NewPathValidator()
	if err := pv.Exclude("*/.Trash/*", "*.tmp", "/srv/**/cache/*.jpg"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/home/me/.Trash/old.jpg", true},
		{"/home/me/photos/a/.Trash/b/c.jpg", true},
		{"x.tmp", true},
		{"/home/me/photos/keep.jpg", false},
		{"/srv/a/b/cache/x.jpg", true},
		{"/srv/a/b/cache/x.png", false},
	}

	for _, tt := range tests {
		if got := pv.IsExcluded(tt.path); got != tt.want {
			t.Errorf("IsExcluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestValidateGlobPattern(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{"*.jpg", false},
		{"*/.thumbnails/*", false},
		{"../*", true},
		{"[", true},
		{"/photos/**/*.heic", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			err := ValidateGlobPattern(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGlobPattern(%q) = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}
