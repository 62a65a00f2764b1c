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

// Component errors.
var (
	ErrComponentNotFound = errors.New("componente no encontrado")
	ErrComponentExists   = errors.New("componente ya registrado")
)

// ComponentService exposes component use cases.
type ComponentService interface {
	Create(ctx context.Context, payload dto.ComponentCreateRequest) (models.Component, error)
	List(ctx context.Context) ([]models.Component, error)
	Get(ctx context.Context, id uint) (models.Component, error)
	GetByName(ctx context.Context, name string) (models.Component, error)
	Responsibles(ctx context.Context, componentID uint) ([]models.User, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Component, error)
}

type componentService struct {
	repo       repository.ComponentRepository
	activities repository.ActivityRepository
	evidences  repository.EvidenceRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewComponentService builds the component service.
func NewComponentService(repo repository.ComponentRepository, activities repository.ActivityRepository, evidences repository.EvidenceRepository, validate *validator.Validate, logger zerolog.Logger) ComponentService {
	return &componentService{
		repo:       repo,
		activities: activities,
		evidences:  evidences,
		validator:  validate,
		logger:     logger.With().Str("component", "component_service").Logger(),
	}
}

func (s *componentService) Create(ctx context.Context, payload dto.ComponentCreateRequest) (models.Component, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Component{}, err
	}

	name := strings.TrimSpace(payload.Componente)

	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return models.Component{}, err
	}
	if exists {
		return models.Component{}, ErrComponentExists
	}

	component := models.Component{Name: name}
	if err := s.repo.Create(ctx, &component); err != nil {
		return models.Component{}, err
	}

	s.logger.Info().Uint("component_id", component.ID).Str("nombre", component.Name).Msg("component created")

	return component, nil
}

func (s *componentService) List(ctx context.Context) ([]models.Component, error) {
	return s.repo.List(ctx)
}

func (s *componentService) Get(ctx context.Context, id uint) (models.Component, error) {
	component, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Component{}, ErrComponentNotFound
		}
		return models.Component{}, err
	}

	return component, nil
}

func (s *componentService) GetByName(ctx context.Context, name string) (models.Component, error) {
	component, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Component{}, ErrComponentNotFound
		}
		return models.Component{}, err
	}

	return component, nil
}

// Responsibles returns the distinct users assigned to evidence under any of
// the component's activities.
func (s *componentService) Responsibles(ctx context.Context, componentID uint) ([]models.User, error) {
	if _, err := s.Get(ctx, componentID); err != nil {
		return nil, err
	}

	activityIDs, err := s.activities.IDsByComponent(ctx, componentID)
	if err != nil {
		return nil, err
	}

	return s.evidences.ResponsiblesByActivityIDs(ctx, activityIDs)
}

func (s *componentService) ListByUser(ctx context.Context, userID uint) ([]models.Component, error) {
	return s.repo.ListByResponsible(ctx, userID)
}
