package models

type SatisfactionResponseModel struct {
	ID               uint  `gorm:"primaryKey"`
	TicketID         uint  `gorm:"uniqueIndex;not null"`
	ExternalTicketID int64 `gorm:"index;not null"`
	Rating           int   `gorm:"not null"`
	Feedback         string `gorm:"type:text"`
	RespondedAt      int64  `gorm:"not null"`
	CreatedAt        int64  `gorm:"autoCreateTime:milli;not null"`
}

func (SatisfactionResponseModel) TableName() string {
	return "satisfaction_responses"
}
