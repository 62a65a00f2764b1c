package dto

import "github.com/seguimiento-cmr/seguimiento-api/internal/models"

// EvidenceCreateRequest describes the payload for creating evidence against
// an existing activity.
type EvidenceCreateRequest struct {
	Actividad     uint   `json:"actividad" validate:"required"`
	TipoEvidencia string `json:"tipoEvidencia" validate:"required"`
	Mes           int    `json:"mes" validate:"required,min=1,max=12"`
	Trimestre     int    `json:"trimestre" validate:"required,min=1,max=4"`
	Anio          int    `json:"anio" validate:"required"`
	FechaEntrega  string `json:"fechaEntrega" validate:"required"`
	Responsables  []uint `json:"responsables"`
	Estado        string `json:"estado"`
	Justificacion string `json:"justificacion"`
}

// EvidenceStatusRequest describes the payload for the status transition
// endpoint. EntregadoEn and Justificacion are conditionally required
// depending on the target status, which the lifecycle service enforces.
type EvidenceStatusRequest struct {
	Estado        string `json:"estado"`
	EntregadoEn   string `json:"entregadoEn"`
	Justificacion string `json:"justificacion"`
}

// EvidencePage is the pagination envelope returned when both page and limit
// are requested.
type EvidencePage struct {
	Items      []models.Evidence `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	PerPage    int               `json:"perPage"`
}
