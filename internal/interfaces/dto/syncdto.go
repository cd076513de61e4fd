package dto

import (
	"time"

	"opsdesk/internal/application/sync"
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/shared/biztime"
)

// TriggerSyncRequest is the body of POST /api/sync.
type TriggerSyncRequest struct {
	Kind          string `json:"kind" binding:"omitempty,oneof=full incremental range"`
	RangeStart    string `json:"range_start"`
	RangeEnd      string `json:"range_end"`
	ForceReenrich bool   `json:"force_reenrich"`
}

// ParseKind returns the sync kind, defaulting to incremental.
func (r *TriggerSyncRequest) ParseKind() syncrun.Kind {
	if r.Kind == "" {
		return syncrun.KindIncremental
	}
	return syncrun.Kind(r.Kind)
}

// ParseOptions converts the request into trigger options.
func (r *TriggerSyncRequest) ParseOptions() (sync.TriggerOptions, error) {
	opts := sync.TriggerOptions{ForceReenrich: r.ForceReenrich}

	if r.RangeStart != "" {
		start, err := biztime.ParseRFC3339(r.RangeStart)
		if err != nil {
			return opts, err
		}
		opts.RangeStart = &start
	}
	if r.RangeEnd != "" {
		end, err := biztime.ParseRFC3339(r.RangeEnd)
		if err != nil {
			return opts, err
		}
		opts.RangeEnd = &end
	}
	return opts, nil
}

// TriggerSyncResponse acknowledges an accepted trigger.
type TriggerSyncResponse struct {
	Kind string `json:"kind"`
}

// SyncRunResponse is one run record in GET /api/sync/runs.
type SyncRunResponse struct {
	RunUID            string  `json:"run_uid"`
	Kind              string  `json:"kind"`
	Status            string  `json:"status"`
	StartedAt         string  `json:"started_at"`
	CompletedAt       *string `json:"completed_at,omitempty"`
	TechnicianCount   int     `json:"technician_count"`
	TicketCount       int     `json:"ticket_count"`
	RequesterCount    int     `json:"requester_count"`
	SatisfactionCount int     `json:"satisfaction_count"`
	EnrichedCount     int     `json:"enriched_count"`
	FailedCount       int     `json:"failed_count"`
	Error             string  `json:"error,omitempty"`
}

// SyncRunFromDomain converts a run record to its API shape.
func SyncRunFromDomain(run *syncrun.SyncRun) SyncRunResponse {
	counts := run.Counts()
	resp := SyncRunResponse{
		RunUID:            run.RunUID(),
		Kind:              string(run.Kind()),
		Status:            string(run.Status()),
		StartedAt:         biztime.FormatRFC3339(run.StartedAt()),
		TechnicianCount:   counts.Technicians,
		TicketCount:       counts.Tickets,
		RequesterCount:    counts.Requesters,
		SatisfactionCount: counts.Satisfaction,
		EnrichedCount:     counts.Enriched,
		FailedCount:       counts.Failed,
		Error:             run.ErrorMessage(),
	}
	if run.CompletedAt() != nil {
		completed := biztime.FormatRFC3339(*run.CompletedAt())
		resp.CompletedAt = &completed
	}
	return resp
}

// SyncStatusResponse is the body of GET /api/sync/status.
type SyncStatusResponse struct {
	IsRunning    bool           `json:"is_running"`
	LastSyncTime *string        `json:"last_sync_time,omitempty"`
	Progress     *sync.Progress `json:"progress,omitempty"`
}

// SyncStatusFromDomain converts engine status to its API shape.
func SyncStatusFromDomain(status sync.Status) SyncStatusResponse {
	resp := SyncStatusResponse{
		IsRunning: status.IsRunning,
		Progress:  status.Progress,
	}
	if status.LastSyncTime != nil {
		last := status.LastSyncTime.UTC().Format(time.RFC3339)
		resp.LastSyncTime = &last
	}
	return resp
}
