package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

// EvidenceFilter restricts evidence listings. ActivityIDs is already resolved
// by the caller (a component filter becomes the component's activity set).
type EvidenceFilter struct {
	ActivityIDs    []uint
	Month          *int
	Quarter        *int
	Year           *int
	Status         string
	ResponsibleIDs []uint
}

// EvidenceRepository defines persistence operations for evidence records.
type EvidenceRepository interface {
	Create(ctx context.Context, evidence *models.Evidence) error
	Save(ctx context.Context, evidence *models.Evidence) error
	List(ctx context.Context, filter EvidenceFilter) ([]models.Evidence, error)
	GetByID(ctx context.Context, id uint) (models.Evidence, error)
	ActivityIDsByQuarter(ctx context.Context, quarter int) ([]uint, error)
	ResponsiblesByActivityIDs(ctx context.Context, activityIDs []uint) ([]models.User, error)
}

type evidenceRepository struct {
	db *gorm.DB
}

// NewEvidenceRepository instantiates a GORM-backed repository.
func NewEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

func (r *evidenceRepository) Create(ctx context.Context, evidence *models.Evidence) error {
	return r.db.WithContext(ctx).Create(evidence).Error
}

func (r *evidenceRepository) Save(ctx context.Context, evidence *models.Evidence) error {
	return r.db.WithContext(ctx).Omit("Responsibles").Save(evidence).Error
}

func (r *evidenceRepository) List(ctx context.Context, filter EvidenceFilter) ([]models.Evidence, error) {
	query := r.db.WithContext(ctx).Model(&models.Evidence{}).
		Preload("Activity").
		Preload("Activity.Component").
		Preload("Responsibles")

	if len(filter.ActivityIDs) > 0 {
		query = query.Where("evidences.activity_id IN ?", filter.ActivityIDs)
	}
	if filter.Month != nil {
		query = query.Where("evidences.month = ?", *filter.Month)
	}
	if filter.Quarter != nil {
		query = query.Where("evidences.quarter = ?", *filter.Quarter)
	}
	if filter.Year != nil {
		query = query.Where("evidences.year = ?", *filter.Year)
	}
	if filter.Status != "" {
		query = query.Where("evidences.status = ?", filter.Status)
	}
	if len(filter.ResponsibleIDs) > 0 {
		query = query.Distinct("evidences.*").
			Joins("JOIN evidence_responsibles ON evidence_responsibles.evidence_id = evidences.id").
			Where("evidence_responsibles.user_id IN ?", filter.ResponsibleIDs)
	}

	var evidences []models.Evidence
	if err := query.Find(&evidences).Error; err != nil {
		return nil, err
	}

	return evidences, nil
}

func (r *evidenceRepository) GetByID(ctx context.Context, id uint) (models.Evidence, error) {
	var evidence models.Evidence
	err := r.db.WithContext(ctx).
		Preload("Activity").
		Preload("Activity.Component").
		Preload("Responsibles").
		First(&evidence, id).Error
	if err != nil {
		return models.Evidence{}, err
	}

	return evidence, nil
}

// ActivityIDsByQuarter returns the distinct activity ids that have evidence
// scheduled in the given quarter.
func (r *evidenceRepository) ActivityIDsByQuarter(ctx context.Context, quarter int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Evidence{}).
		Where("quarter = ?", quarter).
		Distinct().
		Pluck("activity_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// ResponsiblesByActivityIDs returns the distinct users responsible for any
// evidence under the given activities.
func (r *evidenceRepository) ResponsiblesByActivityIDs(ctx context.Context, activityIDs []uint) ([]models.User, error) {
	if len(activityIDs) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN evidence_responsibles ON evidence_responsibles.user_id = users.id").
		Joins("JOIN evidences ON evidences.id = evidence_responsibles.evidence_id").
		Where("evidences.activity_id IN ?", activityIDs).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}
