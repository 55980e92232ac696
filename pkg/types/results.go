package types

import "sync"

// Outcome classifies what happened to one entry during a batch operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// EntryResult is the per-entry report line of a batch operation. A failed
// entry never aborts its siblings; it is recorded here instead.
type EntryResult struct {
	ID      string
	Name    string
	Outcome Outcome
	// Detail explains skips and failures ("no source in any layer",
	// the error message, ...)
	Detail string
}

// BatchReport collects per-entry results from a backup, restore or
// migrate run. It is safe for concurrent use by parallel workers.
type BatchReport struct {
	mu      sync.Mutex
	results []EntryResult
}

// Add records one entry outcome.
func (r *BatchReport) Add(res EntryResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns the recorded results in arrival order.
func (r *BatchReport) Results() []EntryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EntryResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *BatchReport) count(o Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Succeeded returns the number of successful entries.
func (r *BatchReport) Succeeded() int { return r.count(OutcomeSuccess) }

// Skipped returns the number of skipped entries.
func (r *BatchReport) Skipped() int { return r.count(OutcomeSkipped) }

// Failed returns the number of failed entries.
func (r *BatchReport) Failed() int { return r.count(OutcomeFailed) }

// HasFailures reports whether any entry failed.
func (r *BatchReport) HasFailures() bool { return r.Failed() > 0 }
