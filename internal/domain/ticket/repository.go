package ticket

import "context"

// Repository persists tickets keyed by their immutable external id.
// Find methods return (nil, nil) when no row exists; absence is a normal
// outcome during merge-upserts, not an error.
type Repository interface {
	Save(ctx context.Context, t *Ticket) error
	Update(ctx context.Context, t *Ticket) error
	FindByExternalID(ctx context.Context, externalID int64) (*Ticket, error)
	FindByExternalIDs(ctx context.Context, externalIDs []int64) (map[int64]*Ticket, error)

	// UnlinkedRequesterRefs returns the external requester ids referenced
	// by tickets that have no internal requester link yet.
	UnlinkedRequesterRefs(ctx context.Context) ([]int64, error)
	// LinkRequesterRef links every ticket referencing the external
	// requester id to the cached internal requester row.
	LinkRequesterRef(ctx context.Context, requesterExternalID int64, requesterID uint) error
}

// ActivityLogRepository persists the append-only transition audit trail.
type ActivityLogRepository interface {
	Save(ctx context.Context, entry *ActivityLog) error
	ListByTicketID(ctx context.Context, ticketID uint) ([]*ActivityLog, error)
	Count(ctx context.Context) (int64, error)
}
