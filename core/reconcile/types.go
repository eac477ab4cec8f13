package reconcile

import (
	"fmt"
	"time"
)

// State is the phase of a reconciliation run.
type State int

const (
	// StateIdle means no run is in progress.
	StateIdle State = iota
	// StateScanning means the primary scan is fetching pages.
	StateScanning
	// StateChecking means a page's existence check is running.
	StateChecking
	// StateAccumulating means missing keys are being merged into the orphan set.
	StateAccumulating
	// StateDone means the primary scan is exhausted and the report is final.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateChecking:
		return "checking"
	case StateAccumulating:
		return "accumulating"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Report is the outcome of a completed run.
type Report struct {
	// RunID identifies the run in logs and published reports.
	RunID string `json:"run_id"`

	// Adapter is the name of the adapter the run used.
	Adapter string `json:"adapter"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the primary scan was exhausted.
	FinishedAt time.Time `json:"finished_at"`

	// Orphans contains, in ascending order, every reference key that was not found
	// in the secondary collection.
	Orphans []int64 `json:"orphans"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`
}

// Summary provides aggregate statistics for a run.
type Summary struct {
	// Candidates is the result of the optional count query. Nil when not counted.
	Candidates *int64 `json:"candidates,omitempty"`

	// Pages counts non-empty primary pages.
	Pages int `json:"pages"`

	// Records counts primary records.
	Records int `json:"records"`

	// Anomalies counts primary records skipped for an absent or mistyped reference.
	Anomalies int `json:"anomalies"`

	// CheckedKeys counts distinct reference keys checked, summed over pages.
	CheckedKeys int `json:"checked_keys"`

	// ExistenceChecks counts secondary scans issued.
	ExistenceChecks int `json:"existence_checks"`

	// Orphans counts keys in the final orphan set.
	Orphans int `json:"orphans"`
}

// PageProgress describes one processed primary page.
type PageProgress struct {
	// Page is the 1-based page number.
	Page int

	// Records is the number of records on the page.
	Records int

	// Anomalies is the number of records skipped on the page.
	Anomalies int

	// Extracted is the number of distinct reference keys on the page.
	Extracted int

	// Missing lists the page's keys that were not found, ascending.
	Missing []int64

	// Orphans is the cumulative orphan set after the page, ascending.
	Orphans []int64
}

// Options controls a run.
type Options struct {
	// RunID identifies the run. A random id is generated when empty.
	RunID string

	// Count issues a count query before the scan, for operator visibility only.
	Count bool

	// OnPage is called after every non-empty primary page.
	OnPage func(PageProgress)
}
