package models

import "time"

// DeletionOutcome records the result of one attempted item deletion.
// Err is non-nil exactly when Succeeded is false.
type DeletionOutcome struct {
	ItemID    string
	Category  Category
	Succeeded bool
	Err       error
}

// ErrorDetail returns the failure text, or "" for successful deletions
func (o DeletionOutcome) ErrorDetail() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// DeletionReport is the ordered set of outcomes for one delete request
type DeletionReport struct {
	ID        string
	Outcomes  []DeletionOutcome
	DryRun    bool
	StartedAt time.Time
	Duration  time.Duration
}

// SucceededCount returns the number of successful deletions
func (r *DeletionReport) SucceededCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

// FailedCount returns the number of failed deletions
func (r *DeletionReport) FailedCount() int {
	return len(r.Outcomes) - r.SucceededCount()
}

// Failed returns only the failed outcomes, in request order
func (r *DeletionReport) Failed() []DeletionOutcome {
	var failed []DeletionOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			failed = append(failed, o)
		}
	}
	return failed
}

// ByCategory counts outcomes per category as (succeeded, failed)
func (r *DeletionReport) ByCategory() map[Category][2]int {
	counts := make(map[Category][2]int)
	for _, o := range r.Outcomes {
		c := counts[o.Category]
		if o.Succeeded {
			c[0]++
		} else {
			c[1]++
		}
		counts[o.Category] = c
	}
	return counts
}
