package dto

// UserRegisterRequest describes the payload for registering a responsible user.
type UserRegisterRequest struct {
	Nombre      string `json:"nombre" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Vinculacion string `json:"vinculacion" validate:"required"`
}
