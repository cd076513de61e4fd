package technician

import (
	"fmt"
	"time"
)

// Technician is the local mirror of an upstream helpdesk agent. Location,
// timezone and map visibility are owner-exclusive to manual edits: the
// sync engine sets them on first creation only and never overwrites them
// afterwards.
type Technician struct {
	id         uint
	externalID int64
	name       string
	email      string
	active     bool
	location   *string
	timezone   *string
	showOnMap  bool
	createdAt  time.Time
	updatedAt  time.Time
}

func NewTechnician(externalID int64, name, email string, active bool) (*Technician, error) {
	if externalID <= 0 {
		return nil, fmt.Errorf("external ID is required")
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("name is required")
	}

	now := time.Now().UTC()
	return &Technician{
		externalID: externalID,
		name:       name,
		email:      email,
		active:     active,
		showOnMap:  true,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructTechnician(
	id uint,
	externalID int64,
	name, email string,
	active bool,
	location, timezone *string,
	showOnMap bool,
	createdAt, updatedAt time.Time,
) (*Technician, error) {
	if id == 0 {
		return nil, fmt.Errorf("technician ID cannot be zero")
	}
	if externalID <= 0 {
		return nil, fmt.Errorf("external ID is required")
	}

	return &Technician{
		id:         id,
		externalID: externalID,
		name:       name,
		email:      email,
		active:     active,
		location:   location,
		timezone:   timezone,
		showOnMap:  showOnMap,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (t *Technician) ID() uint {
	return t.id
}

func (t *Technician) ExternalID() int64 {
	return t.externalID
}

func (t *Technician) Name() string {
	return t.name
}

func (t *Technician) Email() string {
	return t.email
}

func (t *Technician) Active() bool {
	return t.active
}

func (t *Technician) Location() *string {
	return t.location
}

func (t *Technician) Timezone() *string {
	return t.timezone
}

func (t *Technician) ShowOnMap() bool {
	return t.showOnMap
}

func (t *Technician) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Technician) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Technician) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("technician ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("technician ID cannot be zero")
	}
	t.id = id
	return nil
}

// UpdateFromSync applies the sync-owned fields from a fresh upstream
// record. Manually-owned fields (location, timezone, showOnMap) are
// deliberately not part of this path.
func (t *Technician) UpdateFromSync(name, email string, active bool) {
	t.name = name
	t.email = email
	t.active = active
	t.updatedAt = time.Now().UTC()
}

// SetManualFields records operator edits. The sync engine never calls it.
func (t *Technician) SetManualFields(location, timezone *string, showOnMap bool) {
	t.location = location
	t.timezone = timezone
	t.showOnMap = showOnMap
	t.updatedAt = time.Now().UTC()
}
