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

// User errors.
var (
	ErrUserNotFound    = errors.New("usuario no encontrado")
	ErrUserNameExists  = errors.New("nombre ya registrado")
	ErrUserEmailExists = errors.New("email ya registrado")
)

// UserService exposes responsible-user use cases.
type UserService interface {
	Register(ctx context.Context, payload dto.UserRegisterRequest) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id uint) (models.User, error)
	GetByName(ctx context.Context, name string) (models.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds the user service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, payload dto.UserRegisterRequest) (models.User, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.User{}, err
	}

	name := strings.TrimSpace(payload.Nombre)
	email := strings.TrimSpace(payload.Email)

	if exists, err := s.repo.ExistsByEmail(ctx, email); err != nil {
		return models.User{}, err
	} else if exists {
		return models.User{}, ErrUserEmailExists
	}

	if exists, err := s.repo.ExistsByName(ctx, name); err != nil {
		return models.User{}, err
	} else if exists {
		return models.User{}, ErrUserNameExists
	}

	user := models.User{
		Name:        name,
		Email:       email,
		Affiliation: strings.TrimSpace(payload.Vinculacion),
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user registered")

	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) Get(ctx context.Context, id uint) (models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *userService) GetByName(ctx context.Context, name string) (models.User, error) {
	user, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}
