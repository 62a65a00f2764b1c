package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

// AdminRepository defines persistence operations for admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository instantiates a GORM-backed repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return models.Admin{}, err
	}

	return admin, nil
}

func (r *adminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
