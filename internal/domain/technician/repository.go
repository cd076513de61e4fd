package technician

import "context"

// Repository persists technicians keyed by their immutable external id.
// FindByExternalID returns (nil, nil) when no row exists.
type Repository interface {
	Save(ctx context.Context, t *Technician) error
	Update(ctx context.Context, t *Technician) error
	FindByExternalID(ctx context.Context, externalID int64) (*Technician, error)
	ListActive(ctx context.Context) ([]*Technician, error)
}
