package reporter

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fenilsonani/dupsweep/internal/cleaner"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/scanner"
)

type scanReport struct {
	Timestamp          string                  `json:"timestamp" yaml:"timestamp"`
	Session            scanner.SessionSnapshot `json:"session" yaml:"session"`
	TotalGroups        int                     `json:"total_groups" yaml:"total_groups"`
	RedundantItems     int                     `json:"redundant_items" yaml:"redundant_items"`
	RedundantSize      int64                   `json:"redundant_size" yaml:"redundant_size"`
	RedundantFormatted string                  `json:"redundant_size_formatted" yaml:"redundant_size_formatted"`
}

func newScanReport(snap scanner.SessionSnapshot) scanReport {
	groups := snap.Groups()
	count, size := redundancy(groups)
	return scanReport{
		Timestamp:          time.Now().Format(time.RFC3339),
		Session:            snap,
		TotalGroups:        len(groups),
		RedundantItems:     count,
		RedundantSize:      size,
		RedundantFormatted: humanize.IBytes(uint64(size)),
	}
}

type outcomeView struct {
	ItemID    string          `json:"item_id" yaml:"item_id"`
	Category  models.Category `json:"category" yaml:"category"`
	Succeeded bool            `json:"succeeded" yaml:"succeeded"`
	Reason    string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
	Retryable bool            `json:"retryable,omitempty" yaml:"retryable,omitempty"`
}

type deletionView struct {
	ID        string        `json:"id" yaml:"id"`
	DryRun    bool          `json:"dry_run" yaml:"dry_run"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  string        `json:"duration" yaml:"duration"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failed    int           `json:"failed" yaml:"failed"`
	Outcomes  []outcomeView `json:"outcomes" yaml:"outcomes"`
}

func newDeletionView(report *models.DeletionReport) deletionView {
	view := deletionView{
		ID:        report.ID,
		DryRun:    report.DryRun,
		StartedAt: report.StartedAt,
		Duration:  report.Duration.String(),
		Succeeded: report.SucceededCount(),
		Failed:    report.FailedCount(),
		Outcomes:  make([]outcomeView, len(report.Outcomes)),
	}

	for i, o := range report.Outcomes {
		ov := outcomeView{ItemID: o.ItemID, Category: o.Category, Succeeded: o.Succeeded}
		if de := cleaner.CategorizeError(o.ItemID, o.Category, o.Err); de != nil {
			ov.Reason = de.Reason.String()
			ov.Error = o.ErrorDetail()
			ov.Retryable = de.Retryable
		}
		view.Outcomes[i] = ov
	}

	return view
}
