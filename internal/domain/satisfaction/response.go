package satisfaction

import (
	"context"
	"fmt"
	"time"
)

// Response is a per-ticket customer satisfaction rating fetched from the
// upstream helpdesk. Synced best-effort: a missing response upstream is a
// normal outcome, not an error.
type Response struct {
	id               uint
	ticketID         uint
	externalTicketID int64
	rating           int
	feedback         string
	respondedAt      time.Time
}

func NewResponse(ticketID uint, externalTicketID int64, rating int, feedback string, respondedAt time.Time) (*Response, error) {
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	if externalTicketID <= 0 {
		return nil, fmt.Errorf("external ticket ID is required")
	}
	return &Response{
		ticketID:         ticketID,
		externalTicketID: externalTicketID,
		rating:           rating,
		feedback:         feedback,
		respondedAt:      respondedAt.UTC(),
	}, nil
}

func ReconstructResponse(id, ticketID uint, externalTicketID int64, rating int, feedback string, respondedAt time.Time) (*Response, error) {
	if id == 0 {
		return nil, fmt.Errorf("response ID cannot be zero")
	}
	return &Response{
		id:               id,
		ticketID:         ticketID,
		externalTicketID: externalTicketID,
		rating:           rating,
		feedback:         feedback,
		respondedAt:      respondedAt,
	}, nil
}

func (r *Response) ID() uint {
	return r.id
}

func (r *Response) TicketID() uint {
	return r.ticketID
}

func (r *Response) ExternalTicketID() int64 {
	return r.externalTicketID
}

func (r *Response) Rating() int {
	return r.rating
}

func (r *Response) Feedback() string {
	return r.feedback
}

func (r *Response) RespondedAt() time.Time {
	return r.respondedAt
}

func (r *Response) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("response ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("response ID cannot be zero")
	}
	r.id = id
	return nil
}

// Repository persists satisfaction responses. FindByTicketID returns
// (nil, nil) when no row exists.
type Repository interface {
	Save(ctx context.Context, r *Response) error
	FindByTicketID(ctx context.Context, ticketID uint) (*Response, error)
}
