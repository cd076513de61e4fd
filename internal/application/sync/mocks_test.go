package sync

import (
	"context"
	"io"
	"log/slog"
	"time"

	"opsdesk/internal/domain/requester"
	"opsdesk/internal/domain/satisfaction"
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/domain/technician"
	"opsdesk/internal/domain/ticket"
	"opsdesk/internal/infrastructure/helpdesk"
	"opsdesk/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockTicketRepo struct {
	saveFunc              func(ctx context.Context, t *ticket.Ticket) error
	updateFunc            func(ctx context.Context, t *ticket.Ticket) error
	findByExternalIDFunc  func(ctx context.Context, externalID int64) (*ticket.Ticket, error)
	findByExternalIDsFunc func(ctx context.Context, externalIDs []int64) (map[int64]*ticket.Ticket, error)
	unlinkedRefsFunc      func(ctx context.Context) ([]int64, error)
	linkRequesterRefFunc  func(ctx context.Context, requesterExternalID int64, requesterID uint) error
}

func (m *mockTicketRepo) Save(ctx context.Context, t *ticket.Ticket) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepo) Update(ctx context.Context, t *ticket.Ticket) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepo) FindByExternalID(ctx context.Context, externalID int64) (*ticket.Ticket, error) {
	if m.findByExternalIDFunc != nil {
		return m.findByExternalIDFunc(ctx, externalID)
	}
	return nil, nil
}

func (m *mockTicketRepo) FindByExternalIDs(ctx context.Context, externalIDs []int64) (map[int64]*ticket.Ticket, error) {
	if m.findByExternalIDsFunc != nil {
		return m.findByExternalIDsFunc(ctx, externalIDs)
	}
	return map[int64]*ticket.Ticket{}, nil
}

func (m *mockTicketRepo) UnlinkedRequesterRefs(ctx context.Context) ([]int64, error) {
	if m.unlinkedRefsFunc != nil {
		return m.unlinkedRefsFunc(ctx)
	}
	return nil, nil
}

func (m *mockTicketRepo) LinkRequesterRef(ctx context.Context, requesterExternalID int64, requesterID uint) error {
	if m.linkRequesterRefFunc != nil {
		return m.linkRequesterRefFunc(ctx, requesterExternalID, requesterID)
	}
	return nil
}

type mockActivityLogRepo struct {
	saveFunc           func(ctx context.Context, entry *ticket.ActivityLog) error
	listByTicketIDFunc func(ctx context.Context, ticketID uint) ([]*ticket.ActivityLog, error)
	countFunc          func(ctx context.Context) (int64, error)
}

func (m *mockActivityLogRepo) Save(ctx context.Context, entry *ticket.ActivityLog) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, entry)
	}
	return nil
}

func (m *mockActivityLogRepo) ListByTicketID(ctx context.Context, ticketID uint) ([]*ticket.ActivityLog, error) {
	if m.listByTicketIDFunc != nil {
		return m.listByTicketIDFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockActivityLogRepo) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

type mockTechnicianRepo struct {
	saveFunc             func(ctx context.Context, t *technician.Technician) error
	updateFunc           func(ctx context.Context, t *technician.Technician) error
	findByExternalIDFunc func(ctx context.Context, externalID int64) (*technician.Technician, error)
	listActiveFunc       func(ctx context.Context) ([]*technician.Technician, error)
}

func (m *mockTechnicianRepo) Save(ctx context.Context, t *technician.Technician) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, t)
	}
	return nil
}

func (m *mockTechnicianRepo) Update(ctx context.Context, t *technician.Technician) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, t)
	}
	return nil
}

func (m *mockTechnicianRepo) FindByExternalID(ctx context.Context, externalID int64) (*technician.Technician, error) {
	if m.findByExternalIDFunc != nil {
		return m.findByExternalIDFunc(ctx, externalID)
	}
	return nil, nil
}

func (m *mockTechnicianRepo) ListActive(ctx context.Context) ([]*technician.Technician, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, nil
}

type mockRequesterRepo struct {
	saveFunc                func(ctx context.Context, r *requester.Requester) error
	findByExternalIDFunc    func(ctx context.Context, externalID int64) (*requester.Requester, error)
	existingExternalIDsFunc func(ctx context.Context, externalIDs []int64) (map[int64]uint, error)
}

func (m *mockRequesterRepo) Save(ctx context.Context, r *requester.Requester) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, r)
	}
	return nil
}

func (m *mockRequesterRepo) FindByExternalID(ctx context.Context, externalID int64) (*requester.Requester, error) {
	if m.findByExternalIDFunc != nil {
		return m.findByExternalIDFunc(ctx, externalID)
	}
	return nil, nil
}

func (m *mockRequesterRepo) ExistingExternalIDs(ctx context.Context, externalIDs []int64) (map[int64]uint, error) {
	if m.existingExternalIDsFunc != nil {
		return m.existingExternalIDsFunc(ctx, externalIDs)
	}
	return map[int64]uint{}, nil
}

type mockSatisfactionRepo struct {
	saveFunc           func(ctx context.Context, r *satisfaction.Response) error
	findByTicketIDFunc func(ctx context.Context, ticketID uint) (*satisfaction.Response, error)
}

func (m *mockSatisfactionRepo) Save(ctx context.Context, r *satisfaction.Response) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, r)
	}
	return nil
}

func (m *mockSatisfactionRepo) FindByTicketID(ctx context.Context, ticketID uint) (*satisfaction.Response, error) {
	if m.findByTicketIDFunc != nil {
		return m.findByTicketIDFunc(ctx, ticketID)
	}
	return nil, nil
}

type mockRunRepo struct {
	saveFunc               func(ctx context.Context, run *syncrun.SyncRun) error
	updateFunc             func(ctx context.Context, run *syncrun.SyncRun) error
	findLastSuccessfulFunc func(ctx context.Context) (*syncrun.SyncRun, error)
	listFunc               func(ctx context.Context, limit int) ([]*syncrun.SyncRun, error)
}

func (m *mockRunRepo) Save(ctx context.Context, run *syncrun.SyncRun) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, run)
	}
	return nil
}

func (m *mockRunRepo) Update(ctx context.Context, run *syncrun.SyncRun) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, run)
	}
	return nil
}

func (m *mockRunRepo) FindLastSuccessful(ctx context.Context) (*syncrun.SyncRun, error) {
	if m.findLastSuccessfulFunc != nil {
		return m.findLastSuccessfulFunc(ctx)
	}
	return nil, nil
}

func (m *mockRunRepo) List(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return nil, nil
}

type mockHelpdeskClient struct {
	listAgentsFunc       func(ctx context.Context, onProgress helpdesk.ProgressFunc) ([]helpdesk.Agent, error)
	listTicketsFunc      func(ctx context.Context, updatedSince time.Time, onProgress helpdesk.ProgressFunc) ([]helpdesk.Ticket, error)
	fetchActivitiesFunc  func(ctx context.Context, ticketID int64) ([]helpdesk.Activity, error)
	fetchRequesterFunc   func(ctx context.Context, requesterID int64) (*helpdesk.Requester, error)
	fetchSatisfactionFn  func(ctx context.Context, ticketID int64) (*helpdesk.SatisfactionResponse, error)
}

func (m *mockHelpdeskClient) ListAgents(ctx context.Context, onProgress helpdesk.ProgressFunc) ([]helpdesk.Agent, error) {
	if m.listAgentsFunc != nil {
		return m.listAgentsFunc(ctx, onProgress)
	}
	return nil, nil
}

func (m *mockHelpdeskClient) ListTickets(ctx context.Context, updatedSince time.Time, onProgress helpdesk.ProgressFunc) ([]helpdesk.Ticket, error) {
	if m.listTicketsFunc != nil {
		return m.listTicketsFunc(ctx, updatedSince, onProgress)
	}
	return nil, nil
}

func (m *mockHelpdeskClient) FetchTicketActivities(ctx context.Context, ticketID int64) ([]helpdesk.Activity, error) {
	if m.fetchActivitiesFunc != nil {
		return m.fetchActivitiesFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockHelpdeskClient) FetchRequester(ctx context.Context, requesterID int64) (*helpdesk.Requester, error) {
	if m.fetchRequesterFunc != nil {
		return m.fetchRequesterFunc(ctx, requesterID)
	}
	return nil, nil
}

func (m *mockHelpdeskClient) FetchSatisfactionRating(ctx context.Context, ticketID int64) (*helpdesk.SatisfactionResponse, error) {
	if m.fetchSatisfactionFn != nil {
		return m.fetchSatisfactionFn(ctx, ticketID)
	}
	return nil, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, event CompletedEvent) error
}

func (m *mockPublisher) PublishSyncCompleted(ctx context.Context, event CompletedEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, event)
	}
	return nil
}

// mockTxRunner runs the function directly; the application tests assert
// orchestration behavior, not transactional isolation.
type mockTxRunner struct{}

func (m *mockTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
