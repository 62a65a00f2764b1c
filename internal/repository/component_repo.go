package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

// ComponentRepository defines persistence operations for components.
type ComponentRepository interface {
	Create(ctx context.Context, component *models.Component) error
	List(ctx context.Context) ([]models.Component, error)
	GetByID(ctx context.Context, id uint) (models.Component, error)
	FindByName(ctx context.Context, name string) (models.Component, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListByResponsible(ctx context.Context, userID uint) ([]models.Component, error)
}

type componentRepository struct {
	db *gorm.DB
}

// NewComponentRepository instantiates a GORM-backed repository.
func NewComponentRepository(db *gorm.DB) ComponentRepository {
	return &componentRepository{db: db}
}

func (r *componentRepository) Create(ctx context.Context, component *models.Component) error {
	return r.db.WithContext(ctx).Create(component).Error
}

func (r *componentRepository) List(ctx context.Context) ([]models.Component, error) {
	var components []models.Component
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&components).Error; err != nil {
		return nil, err
	}

	return components, nil
}

func (r *componentRepository) GetByID(ctx context.Context, id uint) (models.Component, error) {
	var component models.Component
	if err := r.db.WithContext(ctx).First(&component, id).Error; err != nil {
		return models.Component{}, err
	}

	return component, nil
}

// FindByName matches the component name case-insensitively as a substring.
func (r *componentRepository) FindByName(ctx context.Context, name string) (models.Component, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"

	var component models.Component
	if err := r.db.WithContext(ctx).Where("LOWER(name) LIKE ?", pattern).First(&component).Error; err != nil {
		return models.Component{}, err
	}

	return component, nil
}

func (r *componentRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Component{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListByResponsible returns the distinct components that have evidence
// assigned to the given user.
func (r *componentRepository) ListByResponsible(ctx context.Context, userID uint) ([]models.Component, error) {
	var components []models.Component
	err := r.db.WithContext(ctx).Model(&models.Component{}).
		Distinct("components.*").
		Joins("JOIN activities ON activities.component_id = components.id").
		Joins("JOIN evidences ON evidences.activity_id = activities.id").
		Joins("JOIN evidence_responsibles ON evidence_responsibles.evidence_id = evidences.id").
		Where("evidence_responsibles.user_id = ?", userID).
		Find(&components).Error
	if err != nil {
		return nil, err
	}

	return components, nil
}
