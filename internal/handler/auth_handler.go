package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/service"
	"github.com/seguimiento-cmr/seguimiento-api/internal/utils"
)

// AuthHandler wires admin authentication routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth endpoints to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Get("/verify", h.verify)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.AdminRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	admin, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, admin)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, response)
}

// verify accepts the token in the Authorization header, the x-access-token
// header, or the token query parameter.
func (h *AuthHandler) verify(c *fiber.Ctx) error {
	token := c.Get("Authorization")
	if token == "" {
		token = c.Get("x-access-token")
	}
	if token == "" {
		token = c.Query("token")
	}

	claims, err := h.service.VerifyToken(token)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, claims)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAdminExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrMissingToken):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AuthHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
