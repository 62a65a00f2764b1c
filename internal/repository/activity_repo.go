package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

// ActivityRepository defines persistence operations for activities.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context) ([]models.Activity, error)
	GetByID(ctx context.Context, id uint) (models.Activity, error)
	IDsByComponent(ctx context.Context, componentID uint) ([]uint, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Activity, error)
	ListByResponsible(ctx context.Context, userID uint, componentID *uint) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates a GORM-backed repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) List(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.WithContext(ctx).Preload("Component").Order("id ASC").Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).Preload("Component").First(&activity, id).Error; err != nil {
		return models.Activity{}, err
	}

	return activity, nil
}

func (r *activityRepository) IDsByComponent(ctx context.Context, componentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("component_id = ?", componentID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *activityRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Activity, error) {
	if len(ids) == 0 {
		return []models.Activity{}, nil
	}

	var activities []models.Activity
	if err := r.db.WithContext(ctx).Preload("Component").Where("id IN ?", ids).Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}

// ListByResponsible returns the distinct activities that have evidence
// assigned to the given user, optionally constrained to one component.
func (r *activityRepository) ListByResponsible(ctx context.Context, userID uint, componentID *uint) ([]models.Activity, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{}).
		Preload("Component").
		Distinct("activities.*").
		Joins("JOIN evidences ON evidences.activity_id = activities.id").
		Joins("JOIN evidence_responsibles ON evidence_responsibles.evidence_id = evidences.id").
		Where("evidence_responsibles.user_id = ?", userID)

	if componentID != nil {
		query = query.Where("activities.component_id = ?", *componentID)
	}

	var activities []models.Activity
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}
