package dto

import "github.com/seguimiento-cmr/seguimiento-api/internal/models"

// ComponentCreateRequest describes the payload for creating a component.
type ComponentCreateRequest struct {
	Componente string `json:"componente" validate:"required,min=2"`
}

// ComponentTasks is one entry of the grouped task board: a component with the
// evidence records that roll up to it, in the order the query engine emitted
// them.
type ComponentTasks struct {
	ID         uint              `json:"id"`
	Componente string            `json:"componente"`
	Evidencias []models.Evidence `json:"evidencias"`
}
