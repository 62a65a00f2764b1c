package models

import "time"

// Activity is a recurring obligation with an annual numeric target, belonging to one Component.
type Activity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Description  string    `gorm:"size:512;not null" json:"actividad"`
	AnnualTarget int       `gorm:"not null" json:"metaAnual"`
	ComponentID  uint      `gorm:"not null;index" json:"-"`
	Component    Component `gorm:"foreignKey:ComponentID" json:"componente"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
