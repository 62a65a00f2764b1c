package dto

// ActivityCreateRequest describes the payload for creating an activity under
// an existing component.
type ActivityCreateRequest struct {
	Actividad  string `json:"actividad" validate:"required,min=2"`
	MetaAnual  int    `json:"metaAnual" validate:"required,min=1"`
	Componente uint   `json:"componente" validate:"required"`
}
