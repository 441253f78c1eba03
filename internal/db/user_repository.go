package db

import (
	"context"

	"github.com/zabotahq/zabota/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).
		Where("lower(trim(email)) = ?", email).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return repo.database.WithContext(ctx).Create(user).Error
}

func (repo *UserRepository) Save(ctx context.Context, user *models.User) error {
	return repo.database.WithContext(ctx).Save(user).Error
}

func (repo *UserRepository) UpdateByID(ctx context.Context, userID uint, updates map[string]any) error {
	return repo.database.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

// FindMemberOf returns the user only when they currently belong to the
// given family.
func (repo *UserRepository) FindMemberOf(ctx context.Context, familyID uint, userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).
		Where("id = ? AND family_id = ?", userID, familyID).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) IsMemberOf(ctx context.Context, familyID uint, userID uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND family_id = ?", userID, familyID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) IsFamilyAdmin(ctx context.Context, familyID uint, userID uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND family_id = ? AND is_family_admin = ?", userID, familyID, true).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ListFamilyMembers orders admins first, then by last and first name, the
// order the member screen renders.
func (repo *UserRepository) ListFamilyMembers(ctx context.Context, familyID uint) ([]models.User, error) {
	members := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("is_family_admin DESC, last_name ASC, first_name ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
