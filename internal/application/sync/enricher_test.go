package sync

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdesk/internal/domain/ticket"
	vo "opsdesk/internal/domain/ticket/value_objects"
	"opsdesk/internal/infrastructure/helpdesk"
)

func assignedTicket(t *testing.T, externalID int64, techID uint) *ticket.Ticket {
	t.Helper()
	tk, err := ticket.NewTicket(externalID, "subject", vo.StatusOpen, vo.PriorityMedium, time.Now(), time.Now())
	require.NoError(t, err)
	id := techID
	tk.ResolveAssignee(&id)
	return tk
}

func testPacing() helpdesk.PacingPolicy {
	p := helpdesk.DefaultPacingPolicy()
	p.Concurrency = 2
	p.Stagger = 0
	p.ChunkPause = 0
	return p
}

func TestAnalyzeTimeline_SelfPick(t *testing.T) {
	assignee := int64(501)
	events := []helpdesk.Activity{
		{ID: 1, PerformedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), ActorID: 501, ActorName: "Alice", AssignedToID: &assignee},
	}

	result := AnalyzeTimeline(events)

	assert.True(t, result.IsSelfPicked)
	assert.Nil(t, result.AssignedBy)
	require.NotNil(t, result.FirstAssignedAt)
	assert.Equal(t, events[0].PerformedAt, *result.FirstAssignedAt)
}

func TestAnalyzeTimeline_FirstAssignmentWinsOutOfOrder(t *testing.T) {
	// Received out of order: the reassignment by Bob arrives before the
	// original assignment by Alice. Sorting restores Alice's event as the
	// first assignment, so the verdict comes from it.
	toCarol := int64(503)
	toBob := int64(502)
	events := []helpdesk.Activity{
		{ID: 2, PerformedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), ActorID: 502, ActorName: "Bob", AssignedToID: &toCarol},
		{ID: 1, PerformedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), ActorID: 501, ActorName: "Alice", AssignedToID: &toBob},
	}

	result := AnalyzeTimeline(events)

	assert.False(t, result.IsSelfPicked)
	require.NotNil(t, result.AssignedBy)
	assert.Equal(t, "Alice", *result.AssignedBy)
	require.NotNil(t, result.FirstAssignedAt)
	assert.Equal(t, events[1].PerformedAt, *result.FirstAssignedAt)

	require.Len(t, result.AssignmentHistory, 2)
	assert.Equal(t, int64(502), result.AssignmentHistory[0].AssignedToID)
	assert.Equal(t, int64(503), result.AssignmentHistory[1].AssignedToID)
}

func TestAnalyzeTimeline_FirstPublicReply(t *testing.T) {
	events := []helpdesk.Activity{
		{ID: 1, PerformedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), Private: true, BodyText: "internal note"},
		{ID: 2, PerformedAt: time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), Incoming: true, BodyText: "customer reply"},
		{ID: 3, PerformedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), BodyText: "agent reply"},
	}

	result := AnalyzeTimeline(events)

	require.NotNil(t, result.FirstPublicReplyAt)
	assert.Equal(t, events[2].PerformedAt, *result.FirstPublicReplyAt)
	assert.Nil(t, result.FirstAssignedAt)
}

func TestSelectForEnrichment(t *testing.T) {
	unassigned, err := ticket.NewTicket(1, "no assignee", vo.StatusOpen, vo.PriorityMedium, time.Now(), time.Now())
	require.NoError(t, err)
	fresh := assignedTicket(t, 2, 7)
	known := assignedTicket(t, 3, 7)

	at := time.Now()
	enrichedExisting, err := ticket.ReconstructTicket(
		10, 3, "already enriched", vo.StatusOpen, vo.PriorityMedium,
		nil, nil, nil, true, &at, nil, nil, nil, nil, time.Now(), time.Now(), nil, nil,
	)
	require.NoError(t, err)
	existing := map[int64]*ticket.Ticket{3: enrichedExisting}

	selected := SelectForEnrichment([]*ticket.Ticket{unassigned, fresh, known}, existing, false)
	require.Len(t, selected, 1)
	assert.Equal(t, int64(2), selected[0].ExternalID())

	// Force re-enriches every assigned ticket.
	selected = SelectForEnrichment([]*ticket.Ticket{unassigned, fresh, known}, existing, true)
	assert.Len(t, selected, 2)
}

func TestEnrich_PerTicketFailureDoesNotAbort(t *testing.T) {
	assignee := int64(501)
	client := &mockHelpdeskClient{
		fetchActivitiesFunc: func(ctx context.Context, ticketID int64) ([]helpdesk.Activity, error) {
			if ticketID == 2 {
				return nil, fmt.Errorf("upstream 500")
			}
			return []helpdesk.Activity{
				{ID: 1, PerformedAt: time.Now(), ActorID: 501, AssignedToID: &assignee},
			}, nil
		},
	}
	enricher := NewEnricher(client, testPacing(), testLogger())

	tickets := []*ticket.Ticket{
		assignedTicket(t, 1, 7),
		assignedTicket(t, 2, 7),
		assignedTicket(t, 3, 7),
	}

	batch, err := enricher.Enrich(context.Background(), tickets, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, batch.Failed)
	assert.Len(t, batch.Results, 2)
	assert.Contains(t, batch.Results, int64(1))
	assert.Contains(t, batch.Results, int64(3))
	assert.Equal(t, int64(1), batch.Results[1].TicketExternalID)
}

func TestEnrich_ReportsProgress(t *testing.T) {
	var calls atomic.Int32
	client := &mockHelpdeskClient{
		fetchActivitiesFunc: func(ctx context.Context, ticketID int64) ([]helpdesk.Activity, error) {
			return nil, nil
		},
	}

	pacing := testPacing()
	pacing.ProgressEvery = 1
	enricher := NewEnricher(client, pacing, testLogger())

	tickets := []*ticket.Ticket{assignedTicket(t, 1, 7), assignedTicket(t, 2, 7)}
	var lastProcessed, lastTotal int
	batch, err := enricher.Enrich(context.Background(), tickets, func(processed, total int) {
		calls.Add(1)
		lastProcessed, lastTotal = processed, total
	})
	require.NoError(t, err)

	assert.Len(t, batch.Results, 2)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, lastProcessed)
	assert.Equal(t, 2, lastTotal)
}

func TestEnrich_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enricher := NewEnricher(&mockHelpdeskClient{}, testPacing(), testLogger())
	_, err := enricher.Enrich(ctx, []*ticket.Ticket{assignedTicket(t, 1, 7)}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
