package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/service"
	"github.com/seguimiento-cmr/seguimiento-api/internal/utils"
)

// UserHandler wires user HTTP routes.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(svc service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches user endpoints to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Get("", h.list)
	router.Get("/by-name/:nombre", h.getByName)
	router.Get("/:id", h.get)
}

func (h *UserHandler) register(c *fiber.Ctx) error {
	var payload dto.UserRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, user)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, users)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, user)
}

func (h *UserHandler) getByName(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("nombre"))
	if name == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "nombre no proporcionado")
	}

	user, err := h.service.GetByName(c.UserContext(), name)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, user)
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUserNameExists),
		errors.Is(err, service.ErrUserEmailExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *UserHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
