package models

import "time"

// User is a person that can be assigned as responsible for evidence.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"nombre"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Affiliation string    `gorm:"size:255" json:"vinculacion"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
