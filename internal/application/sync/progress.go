package sync

import (
	"sync"
	"time"

	"opsdesk/internal/domain/syncrun"
)

// Progress is a point-in-time snapshot of a running sync.
type Progress struct {
	CurrentStep string         `json:"current_step"`
	StepNumber  int            `json:"step_number"`
	TotalSteps  int            `json:"total_steps"`
	Counts      syncrun.Counts `json:"counts"`
	Percent     int            `json:"percent"`
}

// Status is what the status endpoint reports: whether a run is in flight,
// when the last successful run completed, and the in-flight progress if
// any.
type Status struct {
	IsRunning    bool       `json:"is_running"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	Progress     *Progress  `json:"progress,omitempty"`
}

// ProgressTracker holds the in-flight progress of the current run. All
// methods are safe for concurrent use; the HTTP status handler reads while
// the orchestrator writes.
type ProgressTracker struct {
	mu      sync.Mutex
	current *Progress
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

func (p *ProgressTracker) Begin(totalSteps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &Progress{TotalSteps: totalSteps}
}

func (p *ProgressTracker) Step(name string, number int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	p.current.CurrentStep = name
	p.current.StepNumber = number
	if p.current.TotalSteps > 0 {
		p.current.Percent = (number - 1) * 100 / p.current.TotalSteps
	}
}

// SetPercent overrides the coarse per-step percentage with finer progress,
// used during long phases like enrichment.
func (p *ProgressTracker) SetPercent(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	p.current.Percent = percent
}

func (p *ProgressTracker) UpdateCounts(counts syncrun.Counts) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	p.current.Counts = counts
}

func (p *ProgressTracker) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
}

// Snapshot returns a copy of the current progress, or nil when no run is
// in flight.
func (p *ProgressTracker) Snapshot() *Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	snapshot := *p.current
	return &snapshot
}
