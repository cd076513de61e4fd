package models

import "gorm.io/datatypes"

type TicketModel struct {
	ID                  uint   `gorm:"primaryKey"`
	ExternalID          int64  `gorm:"uniqueIndex;not null"`
	Subject             string `gorm:"size:500;not null"`
	Status              string `gorm:"size:20;not null;index"`
	Priority            string `gorm:"size:20;not null;index"`
	ResponderExternalID *int64
	AssignedTechID      *uint   `gorm:"index"`
	AssignedBy          *string `gorm:"size:200"`
	IsSelfPicked        bool    `gorm:"not null;default:false"`
	FirstAssignedAt     *int64
	FirstPublicReplyAt  *int64
	RequesterExternalID *int64 `gorm:"index"`
	RequesterID         *uint  `gorm:"index"`
	CustomFields        datatypes.JSON
	TicketCreatedAt     int64 `gorm:"not null"`
	TicketUpdatedAt     int64 `gorm:"not null;index"`
	ResolvedAt          *int64
	ClosedAt            *int64
	CreatedAt           int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt           int64 `gorm:"autoUpdateTime:milli;not null"`

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

func (TicketModel) TableName() string {
	return "tickets"
}

type ActivityLogModel struct {
	ID         uint   `gorm:"primaryKey"`
	TicketID   uint   `gorm:"not null;index"`
	Kind       string `gorm:"size:30;not null;index"`
	FromValue  string `gorm:"size:200;not null"`
	ToValue    string `gorm:"size:200;not null"`
	DetectedAt int64  `gorm:"not null;index"`
	CreatedAt  int64  `gorm:"autoCreateTime:milli;not null"`
}

func (ActivityLogModel) TableName() string {
	return "ticket_activity_logs"
}
