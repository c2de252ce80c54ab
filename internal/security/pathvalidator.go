package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultProtectedPaths are never deleted from, whatever the configuration says
var DefaultProtectedPaths = []string{
	"/",
	"/bin",
	"/boot",
	"/dev",
	"/etc",
	"/lib",
	"/proc",
	"/sbin",
	"/sys",
	"/usr",
	"/System",
	"/Applications",
}

// PathValidator checks file-backed items before they are removed
type PathValidator struct {
	protectedPaths []string
	roots          []string
	excludes       []string
}

// NewPathValidator creates a validator over the default protected paths plus
// any extra ones
func NewPathValidator(extraProtected ...string) *PathValidator {
	pv := &PathValidator{}
	for _, p := range DefaultProtectedPaths {
		pv.AddProtectedPath(p)
	}
	for _, p := range extraProtected {
		pv.AddProtectedPath(p)
	}
	return pv
}

// RestrictTo limits deletions to paths inside the given roots
func (pv *PathValidator) RestrictTo(roots ...string) {
	for _, r := range roots {
		pv.roots = append(pv.roots, filepath.Clean(r))
	}
}

// Exclude adds glob patterns whose matches are neither scanned nor deleted.
// "**" matches any number of directories.
func (pv *PathValidator) Exclude(patterns ...string) error {
	for _, p := range patterns {
		if err := ValidateGlobPattern(p); err != nil {
			return err
		}
		pv.excludes = append(pv.excludes, p)
	}
	return nil
}

// IsExcluded reports whether path matches an exclude pattern
func (pv *PathValidator) IsExcluded(path string) bool {
	clean := filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range pv.excludes {
		if ok, _ := doublestar.Match(pattern, clean); ok {
			return true
		}
		// "*/dir/*" style patterns match at any depth
		if strings.HasPrefix(pattern, "*/") && strings.HasSuffix(pattern, "/*") {
			segment := "/" + strings.TrimSuffix(strings.TrimPrefix(pattern, "*/"), "/*") + "/"
			if strings.Contains(clean, segment) {
				return true
			}
		}
	}
	return false
}

// ValidatePathForDeletion performs every check required before removing path
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	// A path that changes when cleaned carries ".." or similar elements
	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	// Resolve symlinks so a link cannot redirect the deletion elsewhere
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to resolve symlinks: %w", err)
		}
		resolved = path
	}
	resolved = filepath.Clean(resolved)

	if err := pv.checkProtectedPaths(resolved); err != nil {
		return err
	}

	if len(pv.roots) > 0 && !pv.insideRoots(resolved) {
		return fmt.Errorf("path is outside the configured media roots: %s", path)
	}

	if pv.IsExcluded(path) {
		return fmt.Errorf("path matches an exclude pattern: %s", path)
	}

	return CheckRegularFile(path)
}

// checkProtectedPaths validates that a path is not a protected directory or
// one of its direct children
func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return fmt.Errorf("refusing to delete protected path: %s", cleanPath)
		}

		if protected != "/" && strings.HasPrefix(cleanPath, protected+"/") {
			rel, _ := filepath.Rel(protected, cleanPath)
			if !strings.Contains(rel, "/") {
				return fmt.Errorf("refusing to delete critical system path: %s", cleanPath)
			}
		}
	}

	return nil
}

func (pv *PathValidator) insideRoots(path string) bool {
	for _, root := range pv.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// IsProtectedPath checks if a path is a protected path or below one
func (pv *PathValidator) IsProtectedPath(path string) bool {
	cleanPath := filepath.Clean(path)
	for _, protected := range pv.protectedPaths {
		if protected == "/" {
			if cleanPath == "/" {
				return true
			}
			continue
		}
		if cleanPath == protected || strings.HasPrefix(cleanPath, protected+"/") {
			return true
		}
	}
	return false
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	pv.protectedPaths = append(pv.protectedPaths, filepath.Clean(path))
}

// CheckRegularFile refuses anything that is not a plain file: directories,
// symlinks, devices, sockets and pipes
func CheckRegularFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return fmt.Errorf("refusing to delete symlink: %s", path)
	case mode.IsDir():
		return fmt.Errorf("refusing to delete directory: %s", path)
	case mode&os.ModeDevice != 0, mode&os.ModeCharDevice != 0:
		return fmt.Errorf("refusing to delete device file: %s", path)
	case mode&os.ModeSocket != 0:
		return fmt.Errorf("refusing to delete socket: %s", path)
	case mode&os.ModeNamedPipe != 0:
		return fmt.Errorf("refusing to delete named pipe: %s", path)
	}

	return nil
}

// ValidateGlobPattern validates that a glob pattern is safe
func ValidateGlobPattern(pattern string) error {
	if strings.Contains(pattern, "..") {
		return fmt.Errorf("glob pattern contains directory traversal: %s", pattern)
	}

	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	return nil
}
