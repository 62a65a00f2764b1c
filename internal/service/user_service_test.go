package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

func newUserFixture(seed ...models.User) UserService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	repo := newMemoryUserRepo(seed...)
	return NewUserService(repo, validate, testLogger())
}

func TestUserServiceRegister(t *testing.T) {
	svc := newUserFixture()

	user, err := svc.Register(context.Background(), dto.UserRegisterRequest{
		Nombre:      "  Ana Torres  ",
		Email:       "ana@example.com",
		Vinculacion: "Docente",
	})
	require.NoError(t, err)
	require.Equal(t, "Ana Torres", user.Name)
	require.Equal(t, "Docente", user.Affiliation)
}

func TestUserServiceRegisterConflicts(t *testing.T) {
	existing := models.User{ID: 1, Name: "Ana Torres", Email: "ana@example.com"}
	svc := newUserFixture(existing)

	_, err := svc.Register(context.Background(), dto.UserRegisterRequest{
		Nombre:      "Otra Persona",
		Email:       "ana@example.com",
		Vinculacion: "Docente",
	})
	require.ErrorIs(t, err, ErrUserEmailExists)

	_, err = svc.Register(context.Background(), dto.UserRegisterRequest{
		Nombre:      "Ana Torres",
		Email:       "otra@example.com",
		Vinculacion: "Docente",
	})
	require.ErrorIs(t, err, ErrUserNameExists)
}

func TestUserServiceRegisterValidation(t *testing.T) {
	svc := newUserFixture()

	_, err := svc.Register(context.Background(), dto.UserRegisterRequest{
		Nombre:      "Ana Torres",
		Email:       "not-an-email",
		Vinculacion: "Docente",
	})
	require.Error(t, err)
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := newUserFixture(models.User{ID: 1, Name: "Ana Torres", Email: "ana@example.com"})

	_, err := svc.Get(context.Background(), 99)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetByName(context.Background(), "Nadie")
	require.ErrorIs(t, err, ErrUserNotFound)

	user, err := svc.GetByName(context.Background(), "Ana Torres")
	require.NoError(t, err)
	require.Equal(t, uint(1), user.ID)
}
