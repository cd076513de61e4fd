package models

type RequesterModel struct {
	ID         uint   `gorm:"primaryKey"`
	ExternalID int64  `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"size:200;not null"`
	Email      string `gorm:"size:255"`
	CreatedAt  int64  `gorm:"autoCreateTime:milli;not null"`
}

func (RequesterModel) TableName() string {
	return "requesters"
}
