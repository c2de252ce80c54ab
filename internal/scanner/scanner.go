package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fenilsonani/dupsweep/internal/logger"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/progress"
)

// ErrScanInProgress is returned by Start while another session is running
var ErrScanInProgress = errors.New("scan already in progress")

// Options configures a Scanner
type Options struct {
	Logger   *zap.Logger
	Reporter *progress.ProgressReporter
}

// Scanner runs every configured category concurrently under one session
type Scanner struct {
	scanners []*CategoryScanner
	logger   *zap.Logger
	reporter *progress.ProgressReporter

	mu     sync.Mutex
	active *Session
}

// event is what category goroutines send to the aggregator
type event struct {
	category models.Category
	started  bool
	result   CategoryResult
}

// New creates a scanner over the given category scanners. It panics if two
// scanners cover the same category.
func New(opts Options, scanners ...*CategoryScanner) *Scanner {
	seen := make(map[models.Category]bool, len(scanners))
	for _, cs := range scanners {
		if seen[cs.Category()] {
			panic(fmt.Sprintf("scanner: category %s registered twice", cs.Category()))
		}
		seen[cs.Category()] = true
	}
	return &Scanner{
		scanners: scanners,
		logger:   logger.OrNop(opts.Logger),
		reporter: opts.Reporter,
	}
}

// Categories returns the categories this scanner covers
func (s *Scanner) Categories() []models.Category {
	out := make([]models.Category, len(s.scanners))
	for i, cs := range s.scanners {
		out[i] = cs.Category()
	}
	return out
}

// Active returns the most recent session, or nil if none was started
func (s *Scanner) Active() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start launches a new session and returns it immediately. It returns
// ErrScanInProgress if the previous session has not finished.
func (s *Scanner) Start(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && !s.active.isFinished() {
		return nil, ErrScanInProgress
	}

	ctx, cancel := context.WithCancel(ctx)
	sess := newSession(uuid.NewString(), s.Categories(), cancel)
	s.active = sess

	log := s.logger.With(zap.String("session", sess.ID()))
	log.Info("scan started", zap.Int("categories", len(s.scanners)))
	s.publish(sess)

	events := make(chan event, 2*len(s.scanners))

	var g errgroup.Group
	for _, cs := range s.scanners {
		g.Go(func() error {
			events <- event{category: cs.Category(), started: true}
			events <- event{category: cs.Category(), result: cs.Scan(ctx)}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(events)
	}()

	go s.aggregate(sess, events, cancel, log)

	return sess, nil
}

// aggregate is the only writer of the session
func (s *Scanner) aggregate(sess *Session, events <-chan event, cancel context.CancelFunc, log *zap.Logger) {
	defer cancel()

	for ev := range events {
		if ev.started {
			sess.markRunning(ev.category)
		} else {
			r := ev.result
			sess.complete(r)

			fields := []zap.Field{
				zap.String("category", r.Category.String()),
				zap.Stringer("status", r.Status),
				zap.Int("items", r.ItemsSeen),
				zap.Int("groups", len(r.Groups)),
				zap.Duration("duration", r.Duration),
			}
			switch r.Status {
			case models.StatusFailed:
				log.Warn("category failed", append(fields, zap.Error(r.Err))...)
			case models.StatusPermissionDenied:
				log.Warn("category not authorized", fields...)
			default:
				log.Info("category finished", fields...)
			}
		}
		s.publish(sess)
	}

	sess.finish()
	s.publish(sess)

	snap := sess.Snapshot()
	log.Info("scan finished",
		zap.Stringer("status", snap.Status),
		zap.Int("groups", len(snap.Groups())),
		zap.Duration("duration", snap.Elapsed()))
}

// Run starts a session and waits for it to finish. Cancelling ctx cancels
// the session; Run still returns the session with its terminal state.
func (s *Scanner) Run(ctx context.Context) (*Session, error) {
	sess, err := s.Start(ctx)
	if err != nil {
		return nil, err
	}
	<-sess.Done()
	return sess, nil
}

func (s *Scanner) publish(sess *Session) {
	if s.reporter == nil {
		return
	}
	s.reporter.UpdateScanProgress(ScanProgressFromSnapshot(sess.Snapshot()))
}

// ScanProgressFromSnapshot converts a session snapshot into a progress event
func ScanProgressFromSnapshot(snap SessionSnapshot) *progress.ScanProgress {
	p := &progress.ScanProgress{
		Phase:           progress.PhaseScanning,
		SessionID:       snap.ID,
		CurrentTask:     snap.CurrentTask,
		OverallProgress: snap.OverallProgress,
		CategoriesTotal: len(snap.Categories),
		StartTime:       snap.StartedAt,
		Categories:      make([]progress.CategoryState, 0, len(snap.Categories)),
	}

	for _, c := range snap.Categories {
		if c.Status.IsTerminal() {
			p.CategoriesDone++
		}
		p.GroupsFound += len(c.Groups)
		p.Categories = append(p.Categories, progress.CategoryState{
			Category: c.Category.DisplayName(),
			Status:   c.Status.String(),
			Groups:   len(c.Groups),
		})
	}

	if snap.Status != SessionRunning {
		p.Phase = progress.PhaseComplete
	}

	return p
}
