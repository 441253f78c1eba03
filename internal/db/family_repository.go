package db

import (
	"context"

	"github.com/zabotahq/zabota/internal/models"
	"gorm.io/gorm"
)

type FamilyRepository struct {
	database *gorm.DB
}

func NewFamilyRepository(database *gorm.DB) *FamilyRepository {
	return &FamilyRepository{database: database}
}

func (repo *FamilyRepository) Create(ctx context.Context, family *models.Family) error {
	return repo.database.WithContext(ctx).Create(family).Error
}

func (repo *FamilyRepository) FindByID(ctx context.Context, familyID uint) (models.Family, error) {
	var family models.Family
	if err := repo.database.WithContext(ctx).First(&family, familyID).Error; err != nil {
		return models.Family{}, err
	}
	return family, nil
}

func (repo *FamilyRepository) FindByInviteCode(ctx context.Context, code string) (models.Family, error) {
	var family models.Family
	if err := repo.database.WithContext(ctx).
		Where("invite_code = ?", code).
		First(&family).Error; err != nil {
		return models.Family{}, err
	}
	return family, nil
}

func (repo *FamilyRepository) ExistsByID(ctx context.Context, familyID uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Family{}).
		Where("id = ?", familyID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *FamilyRepository) ExistsByInviteCode(ctx context.Context, code string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Family{}).
		Where("invite_code = ?", code).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}
