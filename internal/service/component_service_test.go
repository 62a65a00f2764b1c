package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

type memoryComponentRepo struct {
	components map[uint]models.Component
	nextID     uint
}

func newMemoryComponentRepo() *memoryComponentRepo {
	return &memoryComponentRepo{components: make(map[uint]models.Component), nextID: 1}
}

func (m *memoryComponentRepo) add(component models.Component) models.Component {
	component.ID = m.nextID
	m.components[m.nextID] = component
	m.nextID++
	return component
}

func (m *memoryComponentRepo) Create(ctx context.Context, component *models.Component) error {
	*component = m.add(*component)
	return nil
}

func (m *memoryComponentRepo) List(ctx context.Context) ([]models.Component, error) {
	results := make([]models.Component, 0, len(m.components))
	for id := uint(1); id < m.nextID; id++ {
		if component, ok := m.components[id]; ok {
			results = append(results, component)
		}
	}
	return results, nil
}

func (m *memoryComponentRepo) GetByID(ctx context.Context, id uint) (models.Component, error) {
	component, ok := m.components[id]
	if !ok {
		return models.Component{}, gorm.ErrRecordNotFound
	}
	return component, nil
}

func (m *memoryComponentRepo) FindByName(ctx context.Context, name string) (models.Component, error) {
	needle := strings.ToLower(name)
	for _, component := range m.components {
		if strings.Contains(strings.ToLower(component.Name), needle) {
			return component, nil
		}
	}
	return models.Component{}, gorm.ErrRecordNotFound
}

func (m *memoryComponentRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, component := range m.components {
		if strings.EqualFold(component.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryComponentRepo) ListByResponsible(ctx context.Context, userID uint) ([]models.Component, error) {
	return nil, nil
}

type componentFixture struct {
	svc        ComponentService
	repo       *memoryComponentRepo
	activities *memoryActivityRepo
	evidences  *memoryEvidenceRepo
}

func newComponentFixture(t *testing.T) componentFixture {
	t.Helper()

	repo := newMemoryComponentRepo()
	activities := newMemoryActivityRepo()
	evidences := newMemoryEvidenceRepo(activities)
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewComponentService(repo, activities, evidences, validate, testLogger())

	return componentFixture{svc: svc, repo: repo, activities: activities, evidences: evidences}
}

func TestComponentServiceCreate(t *testing.T) {
	f := newComponentFixture(t)

	component, err := f.svc.Create(context.Background(), dto.ComponentCreateRequest{Componente: " Gestión Ambiental "})
	require.NoError(t, err)
	require.Equal(t, "Gestión Ambiental", component.Name)
	require.NotZero(t, component.ID)
}

func TestComponentServiceCreateDuplicate(t *testing.T) {
	f := newComponentFixture(t)
	f.repo.add(models.Component{Name: "Gestión Ambiental"})

	_, err := f.svc.Create(context.Background(), dto.ComponentCreateRequest{Componente: "Gestión Ambiental"})
	require.ErrorIs(t, err, ErrComponentExists)
}

func TestComponentServiceGetByName(t *testing.T) {
	f := newComponentFixture(t)
	f.repo.add(models.Component{Name: "Gestión Ambiental"})

	component, err := f.svc.GetByName(context.Background(), "ambiental")
	require.NoError(t, err)
	require.Equal(t, "Gestión Ambiental", component.Name)

	_, err = f.svc.GetByName(context.Background(), "inexistente")
	require.ErrorIs(t, err, ErrComponentNotFound)
}

func TestComponentServiceResponsibles(t *testing.T) {
	f := newComponentFixture(t)
	component := f.repo.add(models.Component{Name: "Gestión"})
	activity := f.activities.add(models.Activity{Description: "Capacitación", ComponentID: component.ID})

	require.NoError(t, f.evidences.Create(context.Background(), &models.Evidence{
		ActivityID:   activity.ID,
		Responsibles: []models.User{{ID: 1, Name: "Ana Torres"}, {ID: 2, Name: "Luis Mora"}},
	}))
	require.NoError(t, f.evidences.Create(context.Background(), &models.Evidence{
		ActivityID:   activity.ID,
		Responsibles: []models.User{{ID: 1, Name: "Ana Torres"}},
	}))

	users, err := f.svc.Responsibles(context.Background(), component.ID)
	require.NoError(t, err)
	require.Len(t, users, 2, "responsibles must be distinct")

	_, err = f.svc.Responsibles(context.Background(), 99)
	require.ErrorIs(t, err, ErrComponentNotFound)
}

func TestComponentServiceResponsiblesEmptyComponent(t *testing.T) {
	f := newComponentFixture(t)
	component := f.repo.add(models.Component{Name: "Sin Actividades"})

	users, err := f.svc.Responsibles(context.Background(), component.ID)
	require.NoError(t, err)
	require.Empty(t, users)
}
