package ticket

import (
	"fmt"
	"time"
)

// ChangeKind identifies the field-level transition an activity log entry
// records.
type ChangeKind string

const (
	ChangeReassigned    ChangeKind = "reassigned"
	ChangeStatusChanged ChangeKind = "status_changed"
)

// ActivityLog is an append-only audit record for a detected transition on
// a tracked ticket field. Entries are produced only by the merge-upsert
// path when an existing row's tracked field differs from the incoming
// value.
type ActivityLog struct {
	id         uint
	ticketID   uint
	kind       ChangeKind
	fromValue  string
	toValue    string
	detectedAt time.Time
}

func NewActivityLog(ticketID uint, kind ChangeKind, fromValue, toValue string, detectedAt time.Time) (*ActivityLog, error) {
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	if kind != ChangeReassigned && kind != ChangeStatusChanged {
		return nil, fmt.Errorf("invalid change kind: %s", kind)
	}
	return &ActivityLog{
		ticketID:   ticketID,
		kind:       kind,
		fromValue:  fromValue,
		toValue:    toValue,
		detectedAt: detectedAt.UTC(),
	}, nil
}

func ReconstructActivityLog(id, ticketID uint, kind ChangeKind, fromValue, toValue string, detectedAt time.Time) *ActivityLog {
	return &ActivityLog{
		id:         id,
		ticketID:   ticketID,
		kind:       kind,
		fromValue:  fromValue,
		toValue:    toValue,
		detectedAt: detectedAt,
	}
}

func (a *ActivityLog) ID() uint {
	return a.id
}

func (a *ActivityLog) TicketID() uint {
	return a.ticketID
}

func (a *ActivityLog) Kind() ChangeKind {
	return a.kind
}

func (a *ActivityLog) FromValue() string {
	return a.fromValue
}

func (a *ActivityLog) ToValue() string {
	return a.toValue
}

func (a *ActivityLog) DetectedAt() time.Time {
	return a.detectedAt
}

func (a *ActivityLog) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("activity log ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("activity log ID cannot be zero")
	}
	a.id = id
	return nil
}
