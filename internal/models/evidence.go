package models

import "time"

// Evidence status values, kept as the Spanish labels the spreadsheet and
// frontend already use.
const (
	StatusPending   = "Por Entregar"
	StatusDelivered = "Entregada"
	StatusLate      = "Entrega Extemporanea"
	StatusNotDone   = "No Logro"
)

// ValidStatus reports whether s is one of the known evidence states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusDelivered, StatusLate, StatusNotDone:
		return true
	}
	return false
}

// Evidence is a dated deliverable proving an Activity occurred in a given
// month/quarter/year, assigned to one or more responsible Users.
//
// Invariants maintained by the lifecycle service: DeliveredAt is non-nil
// exactly when Status is Entregada or Entrega Extemporanea, and
// Justification is non-empty exactly when Status is No Logro.
type Evidence struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ActivityID    uint       `gorm:"not null;index" json:"-"`
	Activity      Activity   `gorm:"foreignKey:ActivityID" json:"actividad"`
	EvidenceType  string     `gorm:"size:255;not null" json:"tipoEvidencia"`
	Month         int        `gorm:"not null" json:"mes"`
	Quarter       int        `gorm:"not null" json:"trimestre"`
	Year          int        `gorm:"not null" json:"anio"`
	Responsibles  []User     `gorm:"many2many:evidence_responsibles" json:"responsables"`
	Status        string     `gorm:"size:32;not null;default:'Por Entregar'" json:"estado"`
	DueDate       time.Time  `gorm:"not null" json:"fechaEntrega"`
	DeliveredAt   *time.Time `json:"entregadoEn"`
	Justification string     `gorm:"type:text;not null;default:''" json:"justificacion"`
	CreatedAt     time.Time  `json:"creadoEn"`
	UpdatedAt     time.Time  `json:"-"`
}

// Delivered reports whether the evidence is in a delivered state.
func (e Evidence) Delivered() bool {
	return e.Status == StatusDelivered || e.Status == StatusLate
}
