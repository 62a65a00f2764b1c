package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
	"github.com/seguimiento-cmr/seguimiento-api/internal/repository"
)

// ErrActivityNotFound indicates the requested activity does not exist.
var ErrActivityNotFound = errors.New("actividad no encontrada")

// ActivityService exposes activity use cases.
type ActivityService interface {
	Create(ctx context.Context, payload dto.ActivityCreateRequest) (models.Activity, error)
	List(ctx context.Context) ([]models.Activity, error)
	Get(ctx context.Context, id uint) (models.Activity, error)
	ListByResponsible(ctx context.Context, userID uint, componentID *uint) ([]models.Activity, error)
}

type activityService struct {
	repo       repository.ActivityRepository
	components repository.ComponentRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewActivityService builds the activity service.
func NewActivityService(repo repository.ActivityRepository, components repository.ComponentRepository, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:       repo,
		components: components,
		validator:  validate,
		logger:     logger.With().Str("component", "activity_service").Logger(),
	}
}

// Create persists a new activity. The referenced component must already
// exist; otherwise nothing is written.
func (s *activityService) Create(ctx context.Context, payload dto.ActivityCreateRequest) (models.Activity, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Activity{}, err
	}

	component, err := s.components.GetByID(ctx, payload.Componente)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Activity{}, ErrComponentNotFound
		}
		return models.Activity{}, err
	}

	activity := models.Activity{
		Description:  strings.TrimSpace(payload.Actividad),
		AnnualTarget: payload.MetaAnual,
		ComponentID:  component.ID,
	}

	if err := s.repo.Create(ctx, &activity); err != nil {
		return models.Activity{}, err
	}

	activity.Component = component

	s.logger.Info().Uint("activity_id", activity.ID).Uint("component_id", component.ID).Msg("activity created")

	return activity, nil
}

func (s *activityService) List(ctx context.Context) ([]models.Activity, error) {
	return s.repo.List(ctx)
}

func (s *activityService) Get(ctx context.Context, id uint) (models.Activity, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Activity{}, ErrActivityNotFound
		}
		return models.Activity{}, err
	}

	return activity, nil
}

func (s *activityService) ListByResponsible(ctx context.Context, userID uint, componentID *uint) ([]models.Activity, error) {
	return s.repo.ListByResponsible(ctx, userID, componentID)
}
