package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
	"github.com/seguimiento-cmr/seguimiento-api/internal/repository"
)

// Auth errors.
var (
	ErrAdminExists        = errors.New("el email ya está registrado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInvalidToken       = errors.New("token inválido o expirado")
	ErrMissingToken       = errors.New("token no proporcionado")
)

const tokenTTL = 12 * time.Hour

// AuthService exposes admin registration, login and token verification.
type AuthService interface {
	Register(ctx context.Context, payload dto.AdminRegisterRequest) (dto.AdminResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	VerifyToken(token string) (jwt.MapClaims, error)
}

type authService struct {
	repo      repository.AdminRepository
	secret    []byte
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService builds the auth service with the HS256 signing secret.
func NewAuthService(repo repository.AdminRepository, secret string, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		repo:      repo,
		secret:    []byte(secret),
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, payload dto.AdminRegisterRequest) (dto.AdminResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminResponse{}, err
	}

	email := strings.TrimSpace(payload.Email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return dto.AdminResponse{}, err
	}
	if exists {
		return dto.AdminResponse{}, ErrAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AdminResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := models.Admin{
		Name:         strings.TrimSpace(payload.Name),
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, &admin); err != nil {
		return dto.AdminResponse{}, err
	}

	s.logger.Info().Uint("admin_id", admin.ID).Msg("admin registered")

	return dto.NewAdminResponse(admin), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	admin, err := s.repo.FindByEmail(ctx, strings.TrimSpace(payload.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"id":    admin.ID,
		"email": admin.Email,
		"name":  admin.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return dto.LoginResponse{
		Token: token,
		Admin: dto.NewAdminResponse(admin),
	}, nil
}

// VerifyToken validates a token string, accepting either the raw token or a
// "Bearer <token>" value.
func (s *authService) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	const bearer = "Bearer "
	if strings.HasPrefix(tokenString, bearer) {
		tokenString = strings.TrimSpace(tokenString[len(bearer):])
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
