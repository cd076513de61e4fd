package value_objects

import "fmt"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var validPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// priorityByExternalCode maps the upstream helpdesk API's numeric priority
// codes to internal priorities.
var priorityByExternalCode = map[int]Priority{
	1: PriorityLow,
	2: PriorityMedium,
	3: PriorityHigh,
	4: PriorityUrgent,
}

func (p Priority) String() string {
	return string(p)
}

func (p Priority) IsValid() bool {
	return validPriorities[p]
}

func NewPriority(value string) (Priority, error) {
	p := Priority(value)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", value)
	}
	return p, nil
}

// PriorityFromExternalCode maps an upstream priority code to an internal
// priority. Unknown codes fall back to medium.
func PriorityFromExternalCode(code int) Priority {
	if p, ok := priorityByExternalCode[code]; ok {
		return p
	}
	return PriorityMedium
}
