package models

import "time"

// Component is a top-level organizational grouping under which activities are tracked.
type Component struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"componente"`
	CreatedAt time.Time `json:"creadoEn"`
	UpdatedAt time.Time `json:"-"`
}
