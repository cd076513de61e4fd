package helpdesk

import "time"

// Typed per-endpoint response schemas for the upstream helpdesk API.
// Every endpoint has an explicit envelope struct; nothing is decoded by
// structural guessing.

// Agent is an upstream helpdesk agent record.
type Agent struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	Location  string `json:"location"`
	TimeZone  string `json:"time_zone"`
}

// Name returns the agent's display name.
func (a Agent) Name() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// TicketStats carries the lifecycle timestamps the list endpoint reports
// alongside each ticket.
type TicketStats struct {
	ResolvedAt *time.Time `json:"resolved_at"`
	ClosedAt   *time.Time `json:"closed_at"`
}

// Ticket is an upstream helpdesk ticket record, pre-normalization.
type Ticket struct {
	ID           int64                  `json:"id"`
	Subject      string                 `json:"subject"`
	Status       int                    `json:"status"`
	Priority     int                    `json:"priority"`
	ResponderID  *int64                 `json:"responder_id"`
	RequesterID  *int64                 `json:"requester_id"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Stats        *TicketStats           `json:"stats"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

// Activity is one event on a ticket's timeline. The upstream API does not
// guarantee chronological order; consumers sort by PerformedAt.
type Activity struct {
	ID           int64     `json:"id"`
	PerformedAt  time.Time `json:"performed_at"`
	ActorID      int64     `json:"actor_id"`
	ActorName    string    `json:"actor_name"`
	AssignedToID *int64    `json:"assigned_to_id"`
	Private      bool      `json:"private"`
	Incoming     bool      `json:"incoming"`
	BodyText     string    `json:"body_text"`
}

// IsAssignment reports whether this event assigns the ticket to an agent.
func (a Activity) IsAssignment() bool {
	return a.AssignedToID != nil
}

// IsPublicReply reports whether this event is an outgoing public reply
// with a non-empty body.
func (a Activity) IsPublicReply() bool {
	return !a.Private && !a.Incoming && a.BodyText != ""
}

// Requester is an upstream requester detail record.
type Requester struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SatisfactionResponse is a per-ticket CSAT record. The endpoint returns
// 404 when the requester has not responded yet.
type SatisfactionResponse struct {
	ID          int64     `json:"id"`
	TicketID    int64     `json:"ticket_id"`
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback"`
	RespondedAt time.Time `json:"created_at"`
}

type agentsEnvelope struct {
	Agents []Agent `json:"agents"`
}

type ticketsEnvelope struct {
	Tickets []Ticket `json:"tickets"`
}

type activitiesEnvelope struct {
	Activities []Activity `json:"activities"`
}

type requesterEnvelope struct {
	Requester Requester `json:"requester"`
}

type satisfactionEnvelope struct {
	SatisfactionResponse SatisfactionResponse `json:"satisfaction_response"`
}
