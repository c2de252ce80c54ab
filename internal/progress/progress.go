package progress

import (
	"fmt"
	"sync"
	"time"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseDeleting Phase = "deleting"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// Update is a progress event delivered to subscribers
type Update interface {
	phase() Phase
}

// CategoryState is the per-category part of a scan progress event
type CategoryState struct {
	Category string
	Status   string
	Groups   int
}

// ScanProgress is published every time a scan session changes
type ScanProgress struct {
	Phase           Phase
	SessionID       string
	CurrentTask     string
	OverallProgress float64
	CategoriesTotal int
	CategoriesDone  int
	Categories      []CategoryState
	GroupsFound     int
	StartTime       time.Time
	Error           error
}

func (p *ScanProgress) phase() Phase { return p.Phase }

// CleanProgress is published while a deletion batch runs
type CleanProgress struct {
	Phase     Phase
	Category  string
	Processed int
	Total     int
	Succeeded int
	Failed    int
	DryRun    bool
	StartTime time.Time
	Error     error
}

func (p *CleanProgress) phase() Phase { return p.Phase }

// ProgressReporter provides thread-safe progress reporting
type ProgressReporter struct {
	scanProgress  *ScanProgress
	cleanProgress *CleanProgress
	mu            sync.RWMutex
	listeners     []chan Update
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		listeners: make([]chan Update, 0),
	}
}

// Subscribe returns a channel that receives progress updates.
// Slow subscribers miss intermediate updates rather than blocking publishers.
func (pr *ProgressReporter) Subscribe() <-chan Update {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan Update, 16)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *ProgressReporter) Unsubscribe(ch <-chan Update) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// UpdateScanProgress records scan progress and notifies listeners
func (pr *ProgressReporter) UpdateScanProgress(update *ScanProgress) {
	pr.mu.Lock()
	pr.scanProgress = update
	pr.mu.Unlock()
	pr.publish(update)
}

// UpdateCleanProgress records clean progress and notifies listeners
func (pr *ProgressReporter) UpdateCleanProgress(update *CleanProgress) {
	pr.mu.Lock()
	pr.cleanProgress = update
	pr.mu.Unlock()
	pr.publish(update)
}

func (pr *ProgressReporter) publish(update Update) {
	// Sending under the read lock keeps Unsubscribe from closing a channel mid-send
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	for _, listener := range pr.listeners {
		select {
		case listener <- update:
		default:
			// Skip if channel is full
		}
	}
}

// GetScanProgress returns the latest scan progress
func (pr *ProgressReporter) GetScanProgress() *ScanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.scanProgress
}

// GetCleanProgress returns the latest clean progress
func (pr *ProgressReporter) GetCleanProgress() *CleanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.cleanProgress
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("%s... %d/%d categories (%.0f%%), %d duplicate groups [%s]",
			p.CurrentTask,
			p.CategoriesDone,
			p.CategoriesTotal,
			p.OverallProgress*100,
			p.GroupsFound,
			FormatDuration(elapsed))
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %d duplicate groups in %s",
			p.GroupsFound,
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Scan error: %v", p.Error)
	default:
		return "Scanning..."
	}
}

// FormatCleanProgress returns a human-readable deletion progress string
func FormatCleanProgress(p *CleanProgress) string {
	if p == nil {
		return "Preparing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseDeleting:
		percentage := 0
		if p.Total > 0 {
			percentage = (p.Processed * 100) / p.Total
		}

		dry := ""
		if p.DryRun {
			dry = " [DRY RUN]"
		}

		return fmt.Sprintf("Deleting... %d/%d items (%d%%) - %d failed%s",
			p.Processed,
			p.Total,
			percentage,
			p.Failed,
			dry)
	case PhaseComplete:
		return fmt.Sprintf("Deletion complete: %d removed, %d failed in %s",
			p.Succeeded,
			p.Failed,
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Deletion error: %v", p.Error)
	default:
		return "Preparing deletion..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
