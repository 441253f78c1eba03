package db

import (
	"context"
	"time"

	"github.com/zabotahq/zabota/internal/models"
	"gorm.io/gorm"
)

type ChatMessageRepository struct {
	database *gorm.DB
}

func NewChatMessageRepository(database *gorm.DB) *ChatMessageRepository {
	return &ChatMessageRepository{database: database}
}

func (repo *ChatMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return repo.database.WithContext(ctx).Create(message).Error
}

// FindActive returns the message only when it belongs to the family and has
// not been soft-deleted.
func (repo *ChatMessageRepository) FindActive(ctx context.Context, familyID uint, messageID uint) (models.ChatMessage, error) {
	var message models.ChatMessage
	if err := repo.database.WithContext(ctx).
		Where("id = ? AND family_id = ? AND is_deleted = ?", messageID, familyID, false).
		First(&message).Error; err != nil {
		return models.ChatMessage{}, err
	}
	return message, nil
}

func (repo *ChatMessageRepository) Save(ctx context.Context, message *models.ChatMessage) error {
	return repo.database.WithContext(ctx).Save(message).Error
}

// ListBefore fetches up to limit non-deleted messages sent strictly before
// the cursor, newest first. Callers reverse for chronological display.
func (repo *ChatMessageRepository) ListBefore(ctx context.Context, familyID uint, before *time.Time, limit int) ([]models.ChatMessage, error) {
	query := repo.database.WithContext(ctx).
		Where("family_id = ? AND is_deleted = ?", familyID, false)
	if before != nil {
		query = query.Where("sent_at < ?", *before)
	}

	messages := make([]models.ChatMessage, 0, limit)
	if err := query.Order("sent_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
