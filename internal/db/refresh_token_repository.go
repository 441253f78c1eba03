package db

import (
	"context"
	"time"

	"github.com/zabotahq/zabota/internal/models"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	database *gorm.DB
}

func NewRefreshTokenRepository(database *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{database: database}
}

func (repo *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return repo.database.WithContext(ctx).Create(token).Error
}

func (repo *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (models.RefreshToken, error) {
	var record models.RefreshToken
	if err := repo.database.WithContext(ctx).
		Where("token = ?", token).
		First(&record).Error; err != nil {
		return models.RefreshToken{}, err
	}
	return record, nil
}

// RevokeByToken marks the matching row revoked. A missing token is a silent
// no-op so callers cannot probe which values exist.
func (repo *RefreshTokenRepository) RevokeByToken(ctx context.Context, token string, now time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", now).Error
}

// RevokeAllForUser revokes every still-valid token for the user
// ("log out everywhere"). Already revoked or expired rows are untouched.
func (repo *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint, now time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Update("revoked_at", now).Error
}

// Rotate atomically revokes the presented token and persists its
// replacement. Revocation and issuance share one transaction so there is no
// window with both tokens valid, and no window with neither persisted. The
// revocation itself is the arbiter: when the row was already revoked by a
// concurrent rotation the whole transaction fails and no replacement is
// written.
func (repo *RefreshTokenRepository) Rotate(ctx context.Context, presented *models.RefreshToken, replacement *models.RefreshToken, now time.Time) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		revocation := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", presented.ID).
			Update("revoked_at", now)
		if revocation.Error != nil {
			return revocation.Error
		}
		if revocation.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(replacement).Error
	})
}
