package sync

import (
	"context"
	"time"

	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/infrastructure/helpdesk"
)

// HelpdeskClient is the upstream API surface the sync engine consumes.
// The production implementation is the rate-limited helpdesk client; tests
// substitute fakes.
type HelpdeskClient interface {
	ListAgents(ctx context.Context, onProgress helpdesk.ProgressFunc) ([]helpdesk.Agent, error)
	ListTickets(ctx context.Context, updatedSince time.Time, onProgress helpdesk.ProgressFunc) ([]helpdesk.Ticket, error)
	FetchTicketActivities(ctx context.Context, ticketID int64) ([]helpdesk.Activity, error)
	FetchRequester(ctx context.Context, requesterID int64) (*helpdesk.Requester, error)
	FetchSatisfactionRating(ctx context.Context, ticketID int64) (*helpdesk.SatisfactionResponse, error)
}

// CompletedEvent is published once per run, fire-and-forget. Delivery is
// best-effort; the persisted sync run record is the source of truth.
type CompletedEvent struct {
	RunUID      string         `json:"run_uid"`
	Kind        string         `json:"kind"`
	Status      string         `json:"status"`
	Counts      syncrun.Counts `json:"counts"`
	CompletedAt time.Time      `json:"completed_at"`
}

// EventPublisher delivers run completion events to whatever pub/sub the
// surrounding system uses. Injected at construction so the orchestrator
// never reaches out to a sibling module at call time.
type EventPublisher interface {
	PublishSyncCompleted(ctx context.Context, event CompletedEvent) error
}
