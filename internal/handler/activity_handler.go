package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/service"
	"github.com/seguimiento-cmr/seguimiento-api/internal/utils"
)

// ActivityHandler wires activity HTTP routes.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(svc service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: svc,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/responsable/:userId", h.listByResponsible)
	router.Get("/:id", h.get)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	activity, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, activity)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	activities, err := h.service.List(c.UserContext())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, activities)
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	activity, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, activity)
}

func (h *ActivityHandler) listByResponsible(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	componentID, err := optionalQueryUint(c, "componente")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	activities, err := h.service.ListByResponsible(c.UserContext(), userID, componentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, activities)
}

func (h *ActivityHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrActivityNotFound),
		errors.Is(err, service.ErrComponentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *ActivityHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
