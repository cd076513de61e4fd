package sync

import (
	"fmt"

	"opsdesk/internal/domain/technician"
	"opsdesk/internal/domain/ticket"
	vo "opsdesk/internal/domain/ticket/value_objects"
	"opsdesk/internal/infrastructure/helpdesk"
)

// IdentityMap is the per-run mapping from external agent id to internal
// technician id. It is rebuilt at the start of every ticket-sync pass from
// the currently active technician set and never persisted, so stale
// entries cannot occur.
type IdentityMap map[int64]uint

// BuildIdentityMap builds the lookup from the given technicians.
func BuildIdentityMap(technicians []*technician.Technician) IdentityMap {
	m := make(IdentityMap, len(technicians))
	for _, t := range technicians {
		m[t.ExternalID()] = t.ID()
	}
	return m
}

// NormalizeTechnician maps a raw agent payload into a technician entity.
// Manually-owned fields (location, timezone, map visibility) are only
// meaningful on first creation; the upsert path excludes them from
// updates.
func NormalizeTechnician(raw helpdesk.Agent) (*technician.Technician, error) {
	t, err := technician.NewTechnician(raw.ID, raw.Name(), raw.Email, raw.Active)
	if err != nil {
		return nil, fmt.Errorf("normalize agent %d: %w", raw.ID, err)
	}
	var location, timezone *string
	if raw.Location != "" {
		location = &raw.Location
	}
	if raw.TimeZone != "" {
		timezone = &raw.TimeZone
	}
	t.SetManualFields(location, timezone, true)
	return t, nil
}

// NormalizeTicket maps a raw ticket payload into a ticket entity. Status
// and priority codes go through fixed lookup tables with documented
// fallbacks. The responder reference is carried through unresolved;
// assignment resolution happens against the identity map afterwards.
func NormalizeTicket(raw helpdesk.Ticket) (*ticket.Ticket, error) {
	t, err := ticket.NewTicket(
		raw.ID,
		raw.Subject,
		vo.StatusFromExternalCode(raw.Status),
		vo.PriorityFromExternalCode(raw.Priority),
		raw.CreatedAt,
		raw.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("normalize ticket %d: %w", raw.ID, err)
	}

	t.SetResponderRef(raw.ResponderID)
	t.SetRequesterRef(raw.RequesterID)
	if raw.CustomFields != nil {
		t.SetCustomFields(raw.CustomFields)
	}
	if raw.Stats != nil {
		t.SetLifecycle(raw.Stats.ResolvedAt, raw.Stats.ClosedAt)
	}
	return t, nil
}

// ResolveAssignments rewrites each ticket's responder reference through
// the identity map. An unknown responder (inactive or never-synced agent)
// leaves the assignee nil; that is expected, not an error.
func ResolveAssignments(tickets []*ticket.Ticket, idmap IdentityMap) {
	for _, t := range tickets {
		ref := t.ResponderExternalID()
		if ref == nil {
			continue
		}
		if techID, ok := idmap[*ref]; ok {
			id := techID
			t.ResolveAssignee(&id)
		}
	}
}
