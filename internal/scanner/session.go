package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fenilsonani/dupsweep/internal/models"
)

const (
	labelStarting = "Starting Scan"
	labelComplete = "Scan Complete"
)

// SessionStatus is the lifecycle state of a whole scan session
type SessionStatus int

const (
	SessionRunning SessionStatus = iota
	SessionComplete
	SessionCancelled
)

// String returns a human-readable session status
func (s SessionStatus) String() string {
	switch s {
	case SessionRunning:
		return "Running"
	case SessionComplete:
		return "Complete"
	case SessionCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s SessionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CategorySnapshot is a copy of one category's state
type CategorySnapshot struct {
	Category  models.Category         `json:"category" yaml:"category"`
	Status    models.CategoryStatus   `json:"status" yaml:"status"`
	Groups    []models.DuplicateGroup `json:"groups" yaml:"groups"`
	ItemsSeen int                     `json:"items_seen" yaml:"items_seen"`
	Error     string                  `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  time.Duration           `json:"duration" yaml:"duration"`
}

// SessionSnapshot is a consistent copy of a session at one moment
type SessionSnapshot struct {
	ID              string             `json:"id" yaml:"id"`
	Status          SessionStatus      `json:"status" yaml:"status"`
	StartedAt       time.Time          `json:"started_at" yaml:"started_at"`
	FinishedAt      time.Time          `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	OverallProgress float64            `json:"overall_progress" yaml:"overall_progress"`
	CurrentTask     string             `json:"current_task" yaml:"current_task"`
	Categories      []CategorySnapshot `json:"categories" yaml:"categories"`
}

// Groups returns every duplicate group in the snapshot, in category order
func (s SessionSnapshot) Groups() []models.DuplicateGroup {
	var groups []models.DuplicateGroup
	for _, c := range s.Categories {
		groups = append(groups, c.Groups...)
	}
	return groups
}

// Elapsed returns how long the session ran, or has run so far
func (s SessionSnapshot) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

type categoryState struct {
	status    models.CategoryStatus
	groups    []models.DuplicateGroup
	itemsSeen int
	err       error
	duration  time.Duration
}

// Session is the observable state of one scan. Readers may call any method
// from any goroutine; only the orchestrator's aggregator writes to it.
type Session struct {
	id         string
	order      []models.Category
	startedAt  time.Time
	cancelFunc context.CancelFunc
	done       chan struct{}

	mu         sync.RWMutex
	states     map[models.Category]*categoryState
	completed  int
	label      string
	finishedAt time.Time
	status     SessionStatus
}

func newSession(id string, categories []models.Category, cancel context.CancelFunc) *Session {
	s := &Session{
		id:         id,
		order:      categories,
		startedAt:  time.Now(),
		cancelFunc: cancel,
		done:       make(chan struct{}),
		states:     make(map[models.Category]*categoryState, len(categories)),
		label:      labelStarting,
		status:     SessionRunning,
	}
	for _, c := range categories {
		s.states[c] = &categoryState{status: models.StatusPending}
	}
	return s
}

// ID returns the session's unique identifier
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session began
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Categories returns the scanned categories in scan order
func (s *Session) Categories() []models.Category {
	out := make([]models.Category, len(s.order))
	copy(out, s.order)
	return out
}

// OverallProgress returns the fraction of categories that reached a terminal state
func (s *Session) OverallProgress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() float64 {
	if len(s.order) == 0 {
		if s.status == SessionRunning {
			return 0
		}
		return 1
	}
	return float64(s.completed) / float64(len(s.order))
}

// CurrentTaskLabel returns the label of the most recent state change
func (s *Session) CurrentTaskLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.label
}

// Status returns the session status
func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// CategoryStatus returns the status of one category. Unknown categories
// report Pending.
func (s *Session) CategoryStatus(c models.Category) models.CategoryStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[c]; ok {
		return st.status
	}
	return models.StatusPending
}

// Err returns the error recorded for a category, if any
func (s *Session) Err(c models.Category) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[c]; ok {
		return st.err
	}
	return nil
}

// Results returns all duplicate groups found so far, in category order
func (s *Session) Results() []models.DuplicateGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []models.DuplicateGroup
	for _, c := range s.order {
		groups = append(groups, s.states[c].groups...)
	}
	return groups
}

// ResultsByCategory returns the groups found per category
func (s *Session) ResultsByCategory() map[models.Category][]models.DuplicateGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.Category][]models.DuplicateGroup, len(s.order))
	for _, c := range s.order {
		groups := s.states[c].groups
		cp := make([]models.DuplicateGroup, len(groups))
		copy(cp, groups)
		out[c] = cp
	}
	return out
}

// Snapshot returns a consistent copy of the session
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := SessionSnapshot{
		ID:              s.id,
		Status:          s.status,
		StartedAt:       s.startedAt,
		FinishedAt:      s.finishedAt,
		OverallProgress: s.progressLocked(),
		CurrentTask:     s.label,
		Categories:      make([]CategorySnapshot, 0, len(s.order)),
	}

	for _, c := range s.order {
		st := s.states[c]
		cs := CategorySnapshot{
			Category:  c,
			Status:    st.status,
			Groups:    append([]models.DuplicateGroup(nil), st.groups...),
			ItemsSeen: st.itemsSeen,
			Duration:  st.duration,
		}
		if st.err != nil {
			cs.Error = st.err.Error()
		}
		snap.Categories = append(snap.Categories, cs)
	}

	return snap
}

// Done returns a channel closed once every category is terminal
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session finishes or ctx is done
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel asks every running category to stop at its next checkpoint.
// Categories already terminal keep their results.
func (s *Session) Cancel() {
	s.cancelFunc()
}

func (s *Session) isFinished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// markRunning and complete are called only by the aggregator

func (s *Session) markRunning(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[c]; ok && st.status == models.StatusPending {
		st.status = models.StatusRunning
	}
}

func (s *Session) complete(r CategoryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[r.Category]
	if !ok || st.status.IsTerminal() {
		return
	}

	st.status = r.Status
	st.groups = r.Groups
	st.itemsSeen = r.ItemsSeen
	st.err = r.Err
	st.duration = r.Duration

	s.completed++
	s.label = r.Category.DisplayName()
	if s.completed == len(s.order) {
		s.finalizeLocked()
	}
}

// finalizeLocked settles the label and status together with the last
// category so readers never see full progress on a running session
func (s *Session) finalizeLocked() {
	if s.status != SessionRunning {
		return
	}
	s.finishedAt = time.Now()
	s.label = labelComplete
	s.status = SessionComplete
	for _, st := range s.states {
		if st.status == models.StatusCancelled || errors.Is(st.err, context.Canceled) {
			s.status = SessionCancelled
			break
		}
	}
}

func (s *Session) finish() {
	s.mu.Lock()
	s.finalizeLocked()
	s.mu.Unlock()

	close(s.done)
}
