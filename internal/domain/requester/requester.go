package requester

import (
	"context"
	"fmt"
	"time"
)

// Requester is a locally cached ticket requester. Rows are fetched lazily:
// only requester ids referenced by synced tickets and not yet cached are
// looked up upstream.
type Requester struct {
	id         uint
	externalID int64
	name       string
	email      string
	createdAt  time.Time
}

func NewRequester(externalID int64, name, email string) (*Requester, error) {
	if externalID <= 0 {
		return nil, fmt.Errorf("external ID is required")
	}
	return &Requester{
		externalID: externalID,
		name:       name,
		email:      email,
		createdAt:  time.Now().UTC(),
	}, nil
}

func ReconstructRequester(id uint, externalID int64, name, email string, createdAt time.Time) (*Requester, error) {
	if id == 0 {
		return nil, fmt.Errorf("requester ID cannot be zero")
	}
	if externalID <= 0 {
		return nil, fmt.Errorf("external ID is required")
	}
	return &Requester{
		id:         id,
		externalID: externalID,
		name:       name,
		email:      email,
		createdAt:  createdAt,
	}, nil
}

func (r *Requester) ID() uint {
	return r.id
}

func (r *Requester) ExternalID() int64 {
	return r.externalID
}

func (r *Requester) Name() string {
	return r.name
}

func (r *Requester) Email() string {
	return r.email
}

func (r *Requester) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Requester) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("requester ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("requester ID cannot be zero")
	}
	r.id = id
	return nil
}

// Repository persists cached requesters. FindByExternalID returns
// (nil, nil) when no row exists.
type Repository interface {
	Save(ctx context.Context, r *Requester) error
	FindByExternalID(ctx context.Context, externalID int64) (*Requester, error)
	// ExistingExternalIDs filters the given ids down to those already cached.
	ExistingExternalIDs(ctx context.Context, externalIDs []int64) (map[int64]uint, error)
}
