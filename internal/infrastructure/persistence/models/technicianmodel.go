package models

type TechnicianModel struct {
	ID         uint   `gorm:"primaryKey"`
	ExternalID int64  `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"size:200;not null"`
	Email      string `gorm:"size:255;not null;index"`
	Active     bool   `gorm:"not null;default:true;index"`
	Location   *string `gorm:"size:200"`
	Timezone   *string `gorm:"size:100"`
	ShowOnMap  bool    `gorm:"not null;default:true"`
	CreatedAt  int64   `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt  int64   `gorm:"autoUpdateTime:milli;not null"`
}

func (TechnicianModel) TableName() string {
	return "technicians"
}
