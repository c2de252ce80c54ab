package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fenilsonani/dupsweep/internal/cleaner"
	"github.com/fenilsonani/dupsweep/internal/config"
	"github.com/fenilsonani/dupsweep/internal/keys"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/notify"
	"github.com/fenilsonani/dupsweep/internal/progress"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/store"
	"github.com/fenilsonani/dupsweep/internal/store/fsmedia"
	"github.com/fenilsonani/dupsweep/internal/store/sqlstore"
)

// engine is the scanner and executor wired to the configured stores
type engine struct {
	cfg      *config.Config
	log      *zap.Logger
	progress *progress.ProgressReporter
	library  *sqlstore.Library
	adapters []store.Adapter
	scanner  *scanner.Scanner
	executor *cleaner.Executor
	notifier *notify.Notifier
}

func newEngine(cfg *config.Config, log *zap.Logger) (*engine, error) {
	authorizer, err := cfg.Permissions.Authorizer()
	if err != nil {
		return nil, err
	}

	e := &engine{
		cfg:      cfg,
		log:      log,
		progress: progress.NewProgressReporter(),
		notifier: notify.New(cfg.Notifications, log),
	}

	categories := cfg.Categories.List()
	var libraryCategories []models.Category
	for _, category := range categories {
		if category == models.CategoryPhoto && len(cfg.Sources.PhotoDirs) > 0 {
			adapter, err := fsmedia.New(category, fsmedia.Options{
				Roots:      cfg.Sources.PhotoDirs,
				Excludes:   cfg.ExcludePatterns,
				Protected:  cfg.ProtectedPaths,
				Authorizer: authorizer,
				PageSize:   cfg.Sources.PageSize,
				Logger:     log,
			})
			if err != nil {
				return nil, fmt.Errorf("open %s directories: %w", category, err)
			}
			e.adapters = append(e.adapters, adapter)
			continue
		}
		libraryCategories = append(libraryCategories, category)
	}

	if len(libraryCategories) > 0 {
		path, err := expandHome(cfg.Sources.Library)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create library directory: %w", err)
		}

		e.library, err = sqlstore.Open(path, sqlstore.Options{
			Logger:     log,
			Authorizer: authorizer,
			PageSize:   cfg.Sources.PageSize,
			Debug:      cfg.Verbose,
		})
		if err != nil {
			return nil, err
		}

		adapters, err := e.library.Adapters(libraryCategories...)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.adapters = append(e.adapters, adapters...)
	}

	// Keep canonical category order regardless of which store serves it
	ordered := make([]*scanner.CategoryScanner, 0, len(e.adapters))
	byCategory := make(map[models.Category]store.Adapter, len(e.adapters))
	for _, a := range e.adapters {
		byCategory[a.Category()] = a
	}
	for _, category := range categories {
		a, ok := byCategory[category]
		if !ok {
			continue
		}
		ordered = append(ordered, scanner.NewCategoryScanner(a,
			keys.Default(category),
			scanner.WithTimeout(cfg.Timeouts.Enumerate.Std()),
			scanner.WithStrict(cfg.Strict),
			scanner.WithLogger(log),
		))
	}

	e.scanner = scanner.New(scanner.Options{Logger: log, Reporter: e.progress}, ordered...)
	e.executor = cleaner.New(cleaner.Options{
		Workers:       cfg.Deletion.Workers,
		BatchSize:     cfg.Deletion.BatchSize,
		RatePerSecond: cfg.Deletion.RatePerSecond,
		Timeout:       cfg.Timeouts.Delete.Std(),
		DryRun:        cfg.DryRun,
		Logger:        log,
		Reporter:      e.progress,
	}, e.adapters...)

	return e, nil
}

// Close releases the library database, if one was opened
func (e *engine) Close() {
	if e.library == nil {
		return
	}
	if err := e.library.Close(); err != nil {
		e.log.Warn("close library", zap.Error(err))
	}
	e.library = nil
}

// savedSession converts a finished scan into its persisted form
func savedSession(snap scanner.SessionSnapshot) *config.SavedSession {
	saved := &config.SavedSession{
		ID:        snap.ID,
		Timestamp: snap.StartedAt,
		Status:    snap.Status.String(),
		Groups:    snap.Groups(),
	}
	for _, c := range snap.Categories {
		saved.Categories = append(saved.Categories, config.SavedCategory{
			Category: c.Category,
			Status:   c.Status.String(),
			Groups:   len(c.Groups),
			Error:    c.Error,
		})
	}
	return saved
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// snapshotFromSaved rebuilds a reportable snapshot from a saved session
func snapshotFromSaved(saved *config.SavedSession) scanner.SessionSnapshot {
	snap := scanner.SessionSnapshot{
		ID:              saved.ID,
		StartedAt:       saved.Timestamp,
		OverallProgress: 1,
		CurrentTask:     "Scan Complete",
	}
	for s := scanner.SessionRunning; s <= scanner.SessionCancelled; s++ {
		if s.String() == saved.Status {
			snap.Status = s
		}
	}

	byCategory := make(map[models.Category][]models.DuplicateGroup)
	for _, g := range saved.Groups {
		byCategory[g.Category] = append(byCategory[g.Category], g)
	}
	for _, c := range saved.Categories {
		var status models.CategoryStatus
		_ = status.UnmarshalText([]byte(c.Status))
		snap.Categories = append(snap.Categories, scanner.CategorySnapshot{
			Category: c.Category,
			Status:   status,
			Groups:   byCategory[c.Category],
			Error:    c.Error,
		})
	}
	return snap
}
