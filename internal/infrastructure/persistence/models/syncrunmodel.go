package models

type SyncRunModel struct {
	ID                uint   `gorm:"primaryKey"`
	RunUID            string `gorm:"uniqueIndex;size:36;not null"`
	Kind              string `gorm:"size:20;not null;index"`
	Status            string `gorm:"size:20;not null;index"`
	StartedAt         int64  `gorm:"not null;index"`
	CompletedAt       *int64
	TechnicianCount   int    `gorm:"not null;default:0"`
	TicketCount       int    `gorm:"not null;default:0"`
	RequesterCount    int    `gorm:"not null;default:0"`
	SatisfactionCount int    `gorm:"not null;default:0"`
	EnrichedCount     int    `gorm:"not null;default:0"`
	FailedCount       int    `gorm:"not null;default:0"`
	ErrorMessage      string `gorm:"type:text"`
	CreatedAt         int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt         int64  `gorm:"autoUpdateTime:milli;not null"`
}

func (SyncRunModel) TableName() string {
	return "sync_runs"
}
