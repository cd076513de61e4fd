package value_objects

import "fmt"

type Status string

const (
	StatusOpen     Status = "open"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusClosed   Status = "closed"
)

var validStatuses = map[Status]bool{
	StatusOpen:     true,
	StatusPending:  true,
	StatusResolved: true,
	StatusClosed:   true,
}

// statusByExternalCode maps the upstream helpdesk API's numeric status
// codes to internal statuses.
var statusByExternalCode = map[int]Status{
	2: StatusOpen,
	3: StatusPending,
	4: StatusResolved,
	5: StatusClosed,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) IsResolved() bool {
	return s == StatusResolved
}

func (s Status) IsClosed() bool {
	return s == StatusClosed
}

func NewStatus(value string) (Status, error) {
	s := Status(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return s, nil
}

// StatusFromExternalCode maps an upstream status code to an internal
// status. Unknown codes fall back to open so a new upstream status never
// breaks a sync pass.
func StatusFromExternalCode(code int) Status {
	if s, ok := statusByExternalCode[code]; ok {
		return s
	}
	return StatusOpen
}
