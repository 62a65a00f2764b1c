package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/service"
	"github.com/seguimiento-cmr/seguimiento-api/internal/utils"
)

// EvidenceHandler wires evidence HTTP routes.
type EvidenceHandler struct {
	service   service.EvidenceService
	taskBoard service.TaskBoardService
	logger    zerolog.Logger
}

// NewEvidenceHandler constructs the handler.
func NewEvidenceHandler(svc service.EvidenceService, taskBoard service.TaskBoardService, logger zerolog.Logger) *EvidenceHandler {
	return &EvidenceHandler{
		service:   svc,
		taskBoard: taskBoard,
		logger:    logger.With().Str("component", "evidence_handler").Logger(),
	}
}

// Register attaches evidence endpoints to the router group. Specific routes
// go before the parametric ones.
func (h *EvidenceHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/tasks", h.tasks)
	router.Get("/actividades/trimestre", h.activitiesByQuarter)
	router.Patch("/:id/estado", h.updateStatus)
	router.Get("/:id", h.get)
}

func (h *EvidenceHandler) create(c *fiber.Ctx) error {
	var payload dto.EvidenceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	evidence, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.taskBoard.Invalidate(c.UserContext())

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, evidence)
}

func (h *EvidenceHandler) list(c *fiber.Ctx) error {
	query, err := parseEvidenceQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := optionalQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := optionalQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if page != nil && limit != nil {
		envelope, err := h.service.ListPage(c.UserContext(), query, *page, *limit)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, envelope)
	}

	evidences, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, evidences)
}

func (h *EvidenceHandler) tasks(c *fiber.Ctx) error {
	query, err := parseEvidenceQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	groups, err := h.taskBoard.Grouped(c.UserContext(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, groups)
}

func (h *EvidenceHandler) activitiesByQuarter(c *fiber.Ctx) error {
	quarter, err := optionalQueryInt(c, "trimestre")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if quarter == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "trimestre no proporcionado")
	}

	activities, err := h.service.ActivitiesByQuarter(c.UserContext(), *quarter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, activities)
}

func (h *EvidenceHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evidence, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, evidence)
}

func (h *EvidenceHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EvidenceStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	evidence, err := h.service.UpdateStatus(c.UserContext(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.taskBoard.Invalidate(c.UserContext())

	return utils.SendSuccess(c, evidence)
}

func (h *EvidenceHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEvidenceNotFound),
		errors.Is(err, service.ErrActivityNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMissingStatus),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrMissingDeliveredAt),
		errors.Is(err, service.ErrInvalidDeliveredAt),
		errors.Is(err, service.ErrMissingJustification),
		errors.Is(err, service.ErrInvalidDueDate),
		errors.Is(err, service.ErrInvalidPagination),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *EvidenceHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

// parseEvidenceQuery maps the public query parameters onto the evidence
// filter. responsables (plural csv) takes precedence over responsable.
func parseEvidenceQuery(c *fiber.Ctx) (service.EvidenceQuery, error) {
	var query service.EvidenceQuery
	var err error

	if query.ComponentID, err = optionalQueryUint(c, "componente"); err != nil {
		return service.EvidenceQuery{}, err
	}
	if query.ActivityID, err = optionalQueryUint(c, "actividad"); err != nil {
		return service.EvidenceQuery{}, err
	}
	if query.Month, err = optionalQueryInt(c, "mes"); err != nil {
		return service.EvidenceQuery{}, err
	}
	if query.Year, err = optionalQueryInt(c, "anio"); err != nil {
		return service.EvidenceQuery{}, err
	}
	if query.Quarter, err = optionalQueryInt(c, "trimestre"); err != nil {
		return service.EvidenceQuery{}, err
	}
	if query.ResponsibleID, err = optionalQueryUint(c, "responsable"); err != nil {
		return service.EvidenceQuery{}, err
	}
	if query.ResponsibleIDs, err = queryUintList(c, "responsables"); err != nil {
		return service.EvidenceQuery{}, err
	}

	query.Status = c.Query("estado")

	return query, nil
}
