package dto

import "github.com/seguimiento-cmr/seguimiento-api/internal/models"

// AdminRegisterRequest describes the payload for registering an admin account.
type AdminRegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest describes the payload for admin login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminResponse is the serialized admin representation, without the password hash.
type AdminResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewAdminResponse converts a model into a DTO.
func NewAdminResponse(admin models.Admin) AdminResponse {
	return AdminResponse{
		ID:    admin.ID,
		Name:  admin.Name,
		Email: admin.Email,
	}
}

// LoginResponse carries a signed token plus the authenticated admin.
type LoginResponse struct {
	Token string        `json:"token"`
	Admin AdminResponse `json:"admin"`
}
