package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
	"github.com/seguimiento-cmr/seguimiento-api/internal/repository"
)

// Evidence lifecycle and query errors.
var (
	ErrEvidenceNotFound     = errors.New("evidencia no encontrada")
	ErrMissingStatus        = errors.New("estado no proporcionado")
	ErrInvalidStatus        = errors.New("estado inválido")
	ErrMissingDeliveredAt   = errors.New("debe proporcionar la fecha de entrega (entregadoEn)")
	ErrInvalidDeliveredAt   = errors.New("fecha de entrega (entregadoEn) inválida")
	ErrMissingJustification = errors.New("debe proporcionar una justificación")
	ErrInvalidDueDate       = errors.New("fecha de entrega (fechaEntrega) inválida")
	ErrInvalidPagination    = errors.New("page y limit deben ser enteros positivos")
)

// EvidenceMirror pushes evidence records into the external spreadsheet mirror.
// Implementations must never return sync failures to the caller; outcomes are
// logged at the adapter boundary.
type EvidenceMirror interface {
	EvidenceCreated(ctx context.Context, evidence models.Evidence)
	EvidenceUpdated(ctx context.Context, evidence models.Evidence)
}

// EvidenceQuery is the filter set accepted by the evidence listing endpoints.
// ResponsibleIDs takes precedence over ResponsibleID when both are present.
type EvidenceQuery struct {
	ActivityID     *uint
	ComponentID    *uint
	Month          *int
	Year           *int
	Quarter        *int
	Status         string
	ResponsibleID  *uint
	ResponsibleIDs []uint
}

// EvidenceService exposes the evidence domain use cases: creation, filtered
// and paginated listings, the status lifecycle and the grouped task view.
type EvidenceService interface {
	Create(ctx context.Context, payload dto.EvidenceCreateRequest) (models.Evidence, error)
	List(ctx context.Context, query EvidenceQuery) ([]models.Evidence, error)
	ListPage(ctx context.Context, query EvidenceQuery, page, limit int) (dto.EvidencePage, error)
	Get(ctx context.Context, id uint) (models.Evidence, error)
	UpdateStatus(ctx context.Context, id uint, payload dto.EvidenceStatusRequest) (models.Evidence, error)
	GroupedByComponent(ctx context.Context, query EvidenceQuery) ([]dto.ComponentTasks, error)
	ActivitiesByQuarter(ctx context.Context, quarter int) ([]models.Activity, error)
}

type evidenceService struct {
	repo       repository.EvidenceRepository
	activities repository.ActivityRepository
	users      repository.UserRepository
	mirror     EvidenceMirror
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewEvidenceService builds the evidence service.
func NewEvidenceService(repo repository.EvidenceRepository, activities repository.ActivityRepository, users repository.UserRepository, mirror EvidenceMirror, validate *validator.Validate, logger zerolog.Logger) EvidenceService {
	return &evidenceService{
		repo:       repo,
		activities: activities,
		users:      users,
		mirror:     mirror,
		validator:  validate,
		logger:     logger.With().Str("component", "evidence_service").Logger(),
		tracer:     otel.Tracer("github.com/seguimiento-cmr/seguimiento-api/internal/service/evidence"),
		now:        time.Now,
	}
}

func (s *evidenceService) Create(ctx context.Context, payload dto.EvidenceCreateRequest) (models.Evidence, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Evidence{}, err
	}

	status := payload.Estado
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		return models.Evidence{}, ErrInvalidStatus
	}

	justification := strings.TrimSpace(payload.Justificacion)
	if status == models.StatusNotDone && justification == "" {
		return models.Evidence{}, ErrMissingJustification
	}
	if status != models.StatusNotDone {
		justification = ""
	}

	dueDate, err := parseFlexibleDate(payload.FechaEntrega)
	if err != nil {
		return models.Evidence{}, ErrInvalidDueDate
	}

	attrs := []attribute.KeyValue{
		attribute.Int("evidence.activity_id", int(payload.Actividad)),
		attribute.String("evidence.estado", status),
	}
	spanCtx, span := s.tracer.Start(ctx, "evidence.create", trace.WithAttributes(attrs...))
	defer span.End()

	activity, err := s.activities.GetByID(spanCtx, payload.Actividad)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evidence{}, ErrActivityNotFound
		}
		span.RecordError(err)
		return models.Evidence{}, err
	}

	responsibles, err := s.users.ListByIDs(spanCtx, payload.Responsables)
	if err != nil {
		span.RecordError(err)
		return models.Evidence{}, err
	}

	evidence := models.Evidence{
		ActivityID:    activity.ID,
		EvidenceType:  payload.TipoEvidencia,
		Month:         payload.Mes,
		Quarter:       payload.Trimestre,
		Year:          payload.Anio,
		Responsibles:  responsibles,
		Status:        status,
		DueDate:       dueDate,
		Justification: justification,
	}

	if evidence.Delivered() {
		deliveredAt := s.now()
		evidence.DeliveredAt = &deliveredAt
	}

	if err := s.repo.Create(spanCtx, &evidence); err != nil {
		span.RecordError(err)
		return models.Evidence{}, err
	}

	evidence.Activity = activity

	s.logger.Info().Uint("evidence_id", evidence.ID).Str("estado", evidence.Status).Msg("evidence created")

	if s.mirror != nil {
		s.mirror.EvidenceCreated(spanCtx, evidence)
	}

	return evidence, nil
}

func (s *evidenceService) List(ctx context.Context, query EvidenceQuery) ([]models.Evidence, error) {
	filter, empty, err := s.resolveFilter(ctx, query)
	if err != nil {
		return nil, err
	}
	if empty {
		return []models.Evidence{}, nil
	}

	evidences, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.sortByDueDistance(evidences)

	return evidences, nil
}

func (s *evidenceService) ListPage(ctx context.Context, query EvidenceQuery, page, limit int) (dto.EvidencePage, error) {
	if page < 1 || limit < 1 {
		return dto.EvidencePage{}, ErrInvalidPagination
	}

	evidences, err := s.List(ctx, query)
	if err != nil {
		return dto.EvidencePage{}, err
	}

	total := len(evidences)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	items := []models.Evidence{}
	if start < total {
		end := start + limit
		if end > total {
			end = total
		}
		items = evidences[start:end]
	}

	return dto.EvidencePage{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		PerPage:    limit,
	}, nil
}

func (s *evidenceService) Get(ctx context.Context, id uint) (models.Evidence, error) {
	evidence, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evidence{}, ErrEvidenceNotFound
		}
		return models.Evidence{}, err
	}

	return evidence, nil
}

// UpdateStatus applies a status transition. The persisted status is the
// effective one: a delivery stamped after the due date is recorded as
// Entrega Extemporanea no matter what the caller asked for, and an explicit
// Entrega Extemporanea request is honored even when the delivery was on time.
func (s *evidenceService) UpdateStatus(ctx context.Context, id uint, payload dto.EvidenceStatusRequest) (models.Evidence, error) {
	requested := strings.TrimSpace(payload.Estado)
	if requested == "" {
		return models.Evidence{}, ErrMissingStatus
	}
	if !models.ValidStatus(requested) {
		return models.Evidence{}, ErrInvalidStatus
	}

	attrs := []attribute.KeyValue{
		attribute.Int("evidence.id", int(id)),
		attribute.String("evidence.estado", requested),
	}
	spanCtx, span := s.tracer.Start(ctx, "evidence.update_status", trace.WithAttributes(attrs...))
	defer span.End()

	evidence, err := s.repo.GetByID(spanCtx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evidence{}, ErrEvidenceNotFound
		}
		span.RecordError(err)
		return models.Evidence{}, err
	}

	switch requested {
	case models.StatusDelivered, models.StatusLate:
		if strings.TrimSpace(payload.EntregadoEn) == "" {
			return models.Evidence{}, ErrMissingDeliveredAt
		}
		deliveredAt, err := parseFlexibleDate(payload.EntregadoEn)
		if err != nil {
			return models.Evidence{}, ErrInvalidDeliveredAt
		}

		effective := models.StatusDelivered
		if deliveredAt.After(evidence.DueDate) || requested == models.StatusLate {
			effective = models.StatusLate
		}

		evidence.Status = effective
		evidence.DeliveredAt = &deliveredAt
		evidence.Justification = ""

	case models.StatusNotDone:
		justification := strings.TrimSpace(payload.Justificacion)
		if justification == "" {
			return models.Evidence{}, ErrMissingJustification
		}

		evidence.Status = models.StatusNotDone
		evidence.DeliveredAt = nil
		evidence.Justification = justification

	default:
		evidence.Status = requested
		evidence.DeliveredAt = nil
		evidence.Justification = ""
	}

	if err := s.repo.Save(spanCtx, &evidence); err != nil {
		span.RecordError(err)
		return models.Evidence{}, err
	}

	s.logger.Info().Uint("evidence_id", evidence.ID).Str("estado", evidence.Status).Msg("evidence status updated")

	if s.mirror != nil {
		s.mirror.EvidenceUpdated(spanCtx, evidence)
	}

	return evidence, nil
}

// GroupedByComponent folds the ordered evidence listing into one entry per
// component, preserving the order in which each component first appears.
// Evidence whose activity or component could not be resolved is skipped.
func (s *evidenceService) GroupedByComponent(ctx context.Context, query EvidenceQuery) ([]dto.ComponentTasks, error) {
	evidences, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}

	groups := []dto.ComponentTasks{}
	index := map[uint]int{}

	for _, evidence := range evidences {
		component := evidence.Activity.Component
		if evidence.Activity.ID == 0 || component.ID == 0 {
			continue
		}

		at, ok := index[component.ID]
		if !ok {
			at = len(groups)
			index[component.ID] = at
			groups = append(groups, dto.ComponentTasks{
				ID:         component.ID,
				Componente: component.Name,
			})
		}

		groups[at].Evidencias = append(groups[at].Evidencias, evidence)
	}

	return groups, nil
}

func (s *evidenceService) ActivitiesByQuarter(ctx context.Context, quarter int) ([]models.Activity, error) {
	ids, err := s.repo.ActivityIDsByQuarter(ctx, quarter)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Activity{}, nil
	}

	return s.activities.ListByIDs(ctx, ids)
}

// resolveFilter translates the public query into a repository filter. A
// component filter is resolved through the component's activities; when the
// component has none, or the requested activity does not belong to it, the
// listing is empty rather than an error.
func (s *evidenceService) resolveFilter(ctx context.Context, query EvidenceQuery) (repository.EvidenceFilter, bool, error) {
	filter := repository.EvidenceFilter{
		Month:   query.Month,
		Quarter: query.Quarter,
		Year:    query.Year,
		Status:  query.Status,
	}

	if len(query.ResponsibleIDs) > 0 {
		filter.ResponsibleIDs = query.ResponsibleIDs
	} else if query.ResponsibleID != nil {
		filter.ResponsibleIDs = []uint{*query.ResponsibleID}
	}

	switch {
	case query.ComponentID != nil:
		ids, err := s.activities.IDsByComponent(ctx, *query.ComponentID)
		if err != nil {
			return repository.EvidenceFilter{}, false, err
		}
		if len(ids) == 0 {
			return repository.EvidenceFilter{}, true, nil
		}

		if query.ActivityID != nil {
			if !containsID(ids, *query.ActivityID) {
				return repository.EvidenceFilter{}, true, nil
			}
			filter.ActivityIDs = []uint{*query.ActivityID}
		} else {
			filter.ActivityIDs = ids
		}

	case query.ActivityID != nil:
		filter.ActivityIDs = []uint{*query.ActivityID}
	}

	return filter, false, nil
}

// sortByDueDistance orders evidence by temporal distance from the current
// month: due this month first, then overdue by increasing months lapsed,
// then future by increasing distance, ties broken by due date descending.
func (s *evidenceService) sortByDueDistance(evidences []models.Evidence) {
	now := s.now()

	sort.SliceStable(evidences, func(i, j int) bool {
		classI, distI := dueDistance(evidences[i], now)
		classJ, distJ := dueDistance(evidences[j], now)

		if classI != classJ {
			return classI < classJ
		}
		if distI != distJ {
			return distI < distJ
		}
		return evidences[i].DueDate.After(evidences[j].DueDate)
	})
}

func dueDistance(evidence models.Evidence, now time.Time) (class, distance int) {
	diff := (evidence.Year-now.Year())*12 + evidence.Month - int(now.Month())
	switch {
	case diff == 0:
		return 0, 0
	case diff < 0:
		return 1, -diff
	default:
		return 2, diff
	}
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// parseFlexibleDate accepts RFC3339 timestamps and plain dates.
func parseFlexibleDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	return time.Parse("2006-01-02", value)
}
