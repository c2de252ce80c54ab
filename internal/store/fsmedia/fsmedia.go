// Package fsmedia serves photos and videos straight from directories on disk.
// Item ids are absolute file paths.
package fsmedia

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/fenilsonani/dupsweep/internal/logger"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/security"
	"github.com/fenilsonani/dupsweep/internal/store"
)

// DefaultPageSize is used when Options.PageSize is not positive
const DefaultPageSize = 100

// Options configures a directory adapter
type Options struct {
	Roots      []string
	Excludes   []string
	Protected  []string
	Authorizer store.Authorizer
	PageSize   int
	Logger     *zap.Logger
}

// Adapter walks media roots for one media category
type Adapter struct {
	category   models.Category
	roots      []string
	validator  *security.PathValidator
	authorizer store.Authorizer
	pageSize   int
	logger     *zap.Logger
}

// New creates a directory adapter for a photo or video category
func New(category models.Category, opts Options) (*Adapter, error) {
	if !category.IsMedia() {
		return nil, fmt.Errorf("fsmedia cannot serve %s", category)
	}
	if len(opts.Roots) == 0 {
		return nil, errors.New("fsmedia needs at least one root")
	}

	validator := security.NewPathValidator(opts.Protected...)
	roots := make([]string, 0, len(opts.Roots))
	for _, r := range opts.Roots {
		if !filepath.IsAbs(r) {
			return nil, fmt.Errorf("media root must be absolute: %s", r)
		}
		if resolved, err := filepath.EvalSymlinks(r); err == nil {
			r = resolved
		}
		roots = append(roots, filepath.Clean(r))
	}
	validator.RestrictTo(roots...)
	if err := validator.Exclude(opts.Excludes...); err != nil {
		return nil, err
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Adapter{
		category:   category,
		roots:      roots,
		validator:  validator,
		authorizer: opts.Authorizer,
		pageSize:   pageSize,
		logger:     logger.OrNop(opts.Logger).Named("fsmedia").With(zap.Stringer("category", category)),
	}, nil
}

func (a *Adapter) Category() models.Category {
	return a.category
}

func (a *Adapter) RequestAuthorization(ctx context.Context) (store.Authorization, error) {
	if a.authorizer == nil {
		return store.AuthGranted, nil
	}
	return a.authorizer.Authorize(ctx, a.category)
}

// Enumerate lists candidate files under every root. Files are classified and
// measured lazily as pages are served.
func (a *Adapter) Enumerate(ctx context.Context) (store.Pager, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, root := range a.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				// Unreadable subtrees are skipped, an unreadable root is not
				if path == root {
					return err
				}
				a.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if a.validator.IsExcluded(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || seen[path] {
				return nil
			}
			seen[path] = true
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	return &pager{adapter: a, paths: paths}, nil
}

// inspect builds an item for path, or reports false when the file is not
// media of the adapter's category
func (a *Adapter) inspect(path string) (models.Item, bool) {
	mime, err := mimetype.DetectFile(path)
	if err != nil || !a.matches(mime) {
		return models.Item{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		return models.Item{}, false
	}

	media := &models.MediaInfo{
		CreatedAt: info.ModTime().UTC(),
		Size:      info.Size(),
		Path:      path,
	}
	if a.category == models.CategoryPhoto {
		media.PixelWidth, media.PixelHeight = imageDimensions(path)
	}

	return models.Item{
		ID:          path,
		Category:    a.category,
		DisplayName: filepath.Base(path),
		Media:       media,
	}, true
}

func (a *Adapter) matches(mime *mimetype.MIME) bool {
	prefix := "image/"
	if a.category == models.CategoryVideo {
		prefix = "video/"
	}
	for m := mime; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), prefix) {
			return true
		}
	}
	return false
}

// imageDimensions reads the header of formats the image package decodes.
// Anything else reports 0x0 and is left out of metadata keying.
func imageDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// Delete validates and removes each path on its own
func (a *Adapter) Delete(ctx context.Context, ids []string) map[string]error {
	results := make(map[string]error, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results[id] = err
			continue
		}
		results[id] = a.remove(id)
	}
	return results
}

func (a *Adapter) remove(path string) error {
	if err := a.validator.ValidatePathForDeletion(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, path)
		}
		return err
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	if !a.matches(mime) {
		return fmt.Errorf("refusing to delete %s: %s is not a %s", path, mime.String(), a.category)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, path)
		}
		return err
	}

	a.logger.Debug("removed file", zap.String("path", path))
	return nil
}

type pager struct {
	adapter *Adapter
	paths   []string
	offset  int
}

// Next serves up to one page of matching items. Non-media files are skipped
// without counting against the page.
func (p *pager) Next(ctx context.Context) ([]models.Item, error) {
	var page []models.Item
	for len(page) < p.adapter.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.offset >= len(p.paths) {
			break
		}
		path := p.paths[p.offset]
		p.offset++
		if item, ok := p.adapter.inspect(path); ok {
			page = append(page, item)
		}
	}

	if len(page) == 0 {
		return nil, store.ErrDone
	}
	return page, nil
}
