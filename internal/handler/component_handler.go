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

// ComponentHandler wires component HTTP routes.
type ComponentHandler struct {
	service service.ComponentService
	logger  zerolog.Logger
}

// NewComponentHandler constructs the handler.
func NewComponentHandler(svc service.ComponentService, logger zerolog.Logger) *ComponentHandler {
	return &ComponentHandler{
		service: svc,
		logger:  logger.With().Str("component", "component_handler").Logger(),
	}
}

// Register attaches component endpoints to the router group.
func (h *ComponentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/by-name/:nombre", h.getByName)
	router.Get("/by-user/:userId", h.listByUser)
	router.Get("/:id/responsables", h.responsibles)
	router.Get("/:id", h.get)
}

func (h *ComponentHandler) create(c *fiber.Ctx) error {
	var payload dto.ComponentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	component, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, component)
}

func (h *ComponentHandler) list(c *fiber.Ctx) error {
	components, err := h.service.List(c.UserContext())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, components)
}

func (h *ComponentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	component, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, component)
}

func (h *ComponentHandler) getByName(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("nombre"))
	if name == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "nombre no proporcionado")
	}

	component, err := h.service.GetByName(c.UserContext(), name)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, component)
}

func (h *ComponentHandler) responsibles(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	users, err := h.service.Responsibles(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, users)
}

func (h *ComponentHandler) listByUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	components, err := h.service.ListByUser(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, components)
}

func (h *ComponentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrComponentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrComponentExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *ComponentHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
