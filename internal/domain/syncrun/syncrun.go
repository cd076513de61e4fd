package syncrun

import (
	"fmt"
	"time"
)

// Kind is the window strategy a run was started with.
type Kind string

const (
	KindFull        Kind = "full"
	KindIncremental Kind = "incremental"
	KindRange       Kind = "range"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindFull, KindIncremental, KindRange:
		return true
	}
	return false
}

// Status is the lifecycle state of a run record.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Counts holds per-entity tallies for one run. A completed run may carry a
// non-zero Failed count: per-item failures do not fail the run.
type Counts struct {
	Technicians  int
	Tickets      int
	Requesters   int
	Satisfaction int
	Enriched     int
	Failed       int
}

// SyncRun is the append-only audit record for one synchronization run.
// Exactly one row is written per run regardless of outcome; the record is
// finalized exactly once and never mutated afterwards.
type SyncRun struct {
	id          uint
	runUID      string
	kind        Kind
	status      Status
	startedAt   time.Time
	completedAt *time.Time
	counts      Counts
	errorMsg    string
	finalized   bool
}

// Start creates a run record in the started state.
func Start(runUID string, kind Kind, startedAt time.Time) (*SyncRun, error) {
	if runUID == "" {
		return nil, fmt.Errorf("run UID is required")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid sync kind: %s", kind)
	}
	return &SyncRun{
		runUID:    runUID,
		kind:      kind,
		status:    StatusStarted,
		startedAt: startedAt.UTC(),
	}, nil
}

func Reconstruct(
	id uint,
	runUID string,
	kind Kind,
	status Status,
	startedAt time.Time,
	completedAt *time.Time,
	counts Counts,
	errorMsg string,
) (*SyncRun, error) {
	if id == 0 {
		return nil, fmt.Errorf("sync run ID cannot be zero")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid sync kind: %s", kind)
	}
	return &SyncRun{
		id:          id,
		runUID:      runUID,
		kind:        kind,
		status:      status,
		startedAt:   startedAt,
		completedAt: completedAt,
		counts:      counts,
		errorMsg:    errorMsg,
		finalized:   status != StatusStarted,
	}, nil
}

func (r *SyncRun) ID() uint {
	return r.id
}

func (r *SyncRun) RunUID() string {
	return r.runUID
}

func (r *SyncRun) Kind() Kind {
	return r.kind
}

func (r *SyncRun) Status() Status {
	return r.status
}

func (r *SyncRun) StartedAt() time.Time {
	return r.startedAt
}

func (r *SyncRun) CompletedAt() *time.Time {
	return r.completedAt
}

func (r *SyncRun) Counts() Counts {
	return r.counts
}

func (r *SyncRun) ErrorMessage() string {
	return r.errorMsg
}

func (r *SyncRun) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("sync run ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("sync run ID cannot be zero")
	}
	r.id = id
	return nil
}

// Complete finalizes the run as completed with the given counts.
func (r *SyncRun) Complete(counts Counts, completedAt time.Time) error {
	if r.finalized {
		return fmt.Errorf("sync run already finalized")
	}
	t := completedAt.UTC()
	r.status = StatusCompleted
	r.counts = counts
	r.completedAt = &t
	r.finalized = true
	return nil
}

// Fail finalizes the run as failed with the error message.
func (r *SyncRun) Fail(errorMsg string, completedAt time.Time) error {
	if r.finalized {
		return fmt.Errorf("sync run already finalized")
	}
	t := completedAt.UTC()
	r.status = StatusFailed
	r.errorMsg = errorMsg
	r.completedAt = &t
	r.finalized = true
	return nil
}
