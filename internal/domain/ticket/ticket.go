package ticket

import (
	"fmt"
	"time"

	vo "opsdesk/internal/domain/ticket/value_objects"
)

// Ticket is the local mirror of an upstream helpdesk ticket. The internal
// id is assigned on first insert; the external id is the immutable natural
// key used for merge-upserts. Assignment provenance fields (assignedBy,
// isSelfPicked, firstAssignedAt, firstPublicReplyAt) are owned by the
// activity enrichment step and are never derived from the plain ticket
// payload.
type Ticket struct {
	id                  uint
	externalID          int64
	subject             string
	status              vo.Status
	priority            vo.Priority
	responderExternalID *int64
	assignedTechID      *uint
	assignedBy          *string
	isSelfPicked        bool
	firstAssignedAt     *time.Time
	firstPublicReplyAt  *time.Time
	requesterExternalID *int64
	requesterID         *uint
	customFields        map[string]interface{}
	createdAt           time.Time
	updatedAt           time.Time
	resolvedAt          *time.Time
	closedAt            *time.Time
}

func NewTicket(
	externalID int64,
	subject string,
	status vo.Status,
	priority vo.Priority,
	createdAt time.Time,
	updatedAt time.Time,
) (*Ticket, error) {
	if externalID <= 0 {
		return nil, fmt.Errorf("external ID is required")
	}
	if len(subject) == 0 {
		return nil, fmt.Errorf("subject is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status")
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority")
	}

	return &Ticket{
		externalID:   externalID,
		subject:      subject,
		status:       status,
		priority:     priority,
		customFields: make(map[string]interface{}),
		createdAt:    createdAt.UTC(),
		updatedAt:    updatedAt.UTC(),
	}, nil
}

func ReconstructTicket(
	id uint,
	externalID int64,
	subject string,
	status vo.Status,
	priority vo.Priority,
	responderExternalID *int64,
	assignedTechID *uint,
	assignedBy *string,
	isSelfPicked bool,
	firstAssignedAt *time.Time,
	firstPublicReplyAt *time.Time,
	requesterExternalID *int64,
	requesterID *uint,
	customFields map[string]interface{},
	createdAt, updatedAt time.Time,
	resolvedAt, closedAt *time.Time,
) (*Ticket, error) {
	if id == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if externalID <= 0 {
		return nil, fmt.Errorf("external ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status")
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority")
	}
	if isSelfPicked && assignedBy != nil {
		return nil, fmt.Errorf("self-picked ticket cannot have assigned_by")
	}

	if customFields == nil {
		customFields = make(map[string]interface{})
	}

	return &Ticket{
		id:                  id,
		externalID:          externalID,
		subject:             subject,
		status:              status,
		priority:            priority,
		responderExternalID: responderExternalID,
		assignedTechID:      assignedTechID,
		assignedBy:          assignedBy,
		isSelfPicked:        isSelfPicked,
		firstAssignedAt:     firstAssignedAt,
		firstPublicReplyAt:  firstPublicReplyAt,
		requesterExternalID: requesterExternalID,
		requesterID:         requesterID,
		customFields:        customFields,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
		resolvedAt:          resolvedAt,
		closedAt:            closedAt,
	}, nil
}

func (t *Ticket) ID() uint {
	return t.id
}

func (t *Ticket) ExternalID() int64 {
	return t.externalID
}

func (t *Ticket) Subject() string {
	return t.subject
}

func (t *Ticket) Status() vo.Status {
	return t.status
}

func (t *Ticket) Priority() vo.Priority {
	return t.priority
}

func (t *Ticket) ResponderExternalID() *int64 {
	return t.responderExternalID
}

func (t *Ticket) AssignedTechID() *uint {
	return t.assignedTechID
}

func (t *Ticket) AssignedBy() *string {
	return t.assignedBy
}

func (t *Ticket) IsSelfPicked() bool {
	return t.isSelfPicked
}

func (t *Ticket) FirstAssignedAt() *time.Time {
	return t.firstAssignedAt
}

func (t *Ticket) FirstPublicReplyAt() *time.Time {
	return t.firstPublicReplyAt
}

func (t *Ticket) RequesterExternalID() *int64 {
	return t.requesterExternalID
}

func (t *Ticket) RequesterID() *uint {
	return t.requesterID
}

func (t *Ticket) CustomFields() map[string]interface{} {
	fieldsCopy := make(map[string]interface{}, len(t.customFields))
	for k, v := range t.customFields {
		fieldsCopy[k] = v
	}
	return fieldsCopy
}

func (t *Ticket) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Ticket) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Ticket) ResolvedAt() *time.Time {
	return t.resolvedAt
}

func (t *Ticket) ClosedAt() *time.Time {
	return t.closedAt
}

func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

// SetResponderRef carries the upstream responder id through normalization
// unresolved. Assignment resolution happens later against the identity map.
func (t *Ticket) SetResponderRef(externalID *int64) {
	t.responderExternalID = externalID
}

func (t *Ticket) SetRequesterRef(externalID *int64) {
	t.requesterExternalID = externalID
}

// ResolveAssignee sets the internal technician id for this ticket. A nil
// id is valid: the responder is unknown or inactive locally.
func (t *Ticket) ResolveAssignee(techID *uint) {
	t.assignedTechID = techID
}

func (t *Ticket) LinkRequester(requesterID uint) error {
	if requesterID == 0 {
		return fmt.Errorf("requester ID cannot be zero")
	}
	t.requesterID = &requesterID
	return nil
}

func (t *Ticket) SetCustomFields(fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	t.customFields = fields
}

func (t *Ticket) SetLifecycle(resolvedAt, closedAt *time.Time) {
	t.resolvedAt = resolvedAt
	t.closedAt = closedAt
}

// ApplyEnrichment records assignment provenance derived from the activity
// timeline. firstAssignedAt is write-once: a later sync pass never
// overwrites it unless re-enrichment is explicitly forced. The self-pick
// invariant (self-picked implies no assigner) is enforced here.
func (t *Ticket) ApplyEnrichment(
	assignedBy *string,
	isSelfPicked bool,
	firstAssignedAt *time.Time,
	firstPublicReplyAt *time.Time,
	force bool,
) {
	if t.firstAssignedAt != nil && !force {
		return
	}

	if isSelfPicked {
		assignedBy = nil
	}
	t.assignedBy = assignedBy
	t.isSelfPicked = isSelfPicked
	t.firstAssignedAt = firstAssignedAt
	if firstPublicReplyAt != nil {
		t.firstPublicReplyAt = firstPublicReplyAt
	}
}

// PreserveEnrichmentFrom copies the enrichment-owned fields from the
// existing row so a plain ticket update never clobbers provenance derived
// by an earlier enrichment pass.
func (t *Ticket) PreserveEnrichmentFrom(existing *Ticket) {
	if existing == nil {
		return
	}
	t.assignedBy = existing.assignedBy
	t.isSelfPicked = existing.isSelfPicked
	t.firstAssignedAt = existing.firstAssignedAt
	t.firstPublicReplyAt = existing.firstPublicReplyAt
	if t.requesterID == nil {
		t.requesterID = existing.requesterID
	}
}

func (t *Ticket) Validate() error {
	if t.externalID <= 0 {
		return fmt.Errorf("external ID is required")
	}
	if len(t.subject) == 0 {
		return fmt.Errorf("subject is required")
	}
	if !t.status.IsValid() {
		return fmt.Errorf("invalid status")
	}
	if !t.priority.IsValid() {
		return fmt.Errorf("invalid priority")
	}
	if t.isSelfPicked && t.assignedBy != nil {
		return fmt.Errorf("self-picked ticket cannot have assigned_by")
	}
	return nil
}
