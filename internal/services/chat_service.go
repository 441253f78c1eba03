package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zabotahq/zabota/internal/db"
	"github.com/zabotahq/zabota/internal/models"
)

const (
	messageMaxLength    = 4000
	messagesPageSize    = 50
	messagesPageSizeMax = 200
)

var (
	ErrMessageTextInvalid = errors.New("message text is required")
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotFamilyMember    = errors.New("user is not a member of the family")
	// ErrNotMessageAuthor applies to admins too: moderation of other
	// members' messages is intentionally not supported.
	ErrNotMessageAuthor = errors.New("only the author may modify a message")
)

type ChatMessageStore interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	FindActive(ctx context.Context, familyID uint, messageID uint) (models.ChatMessage, error)
	Save(ctx context.Context, message *models.ChatMessage) error
	ListBefore(ctx context.Context, familyID uint, before *time.Time, limit int) ([]models.ChatMessage, error)
}

type ChatFamilyStore interface {
	ExistsByID(ctx context.Context, familyID uint) (bool, error)
}

type ChatMembershipStore interface {
	IsMemberOf(ctx context.Context, familyID uint, userID uint) (bool, error)
}

type ChatService struct {
	messages ChatMessageStore
	families ChatFamilyStore
	members  ChatMembershipStore
}

func NewChatService(messages ChatMessageStore, families ChatFamilyStore, members ChatMembershipStore) *ChatService {
	return &ChatService{messages: messages, families: families, members: members}
}

// Send requires current membership in the target family.
func (service *ChatService) Send(ctx context.Context, familyID uint, authorID uint, text string) (models.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len([]rune(trimmed)) > messageMaxLength {
		return models.ChatMessage{}, ErrMessageTextInvalid
	}

	exists, err := service.families.ExistsByID(ctx, familyID)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("check family: %w", err)
	}
	if !exists {
		return models.ChatMessage{}, ErrFamilyNotFound
	}

	isMember, err := service.members.IsMemberOf(ctx, familyID, authorID)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return models.ChatMessage{}, ErrNotFamilyMember
	}

	message := models.ChatMessage{
		FamilyID:     familyID,
		AuthorUserID: authorID,
		Text:         trimmed,
		SentAt:       time.Now().UTC(),
	}
	if err := service.messages.Create(ctx, &message); err != nil {
		return models.ChatMessage{}, fmt.Errorf("persist message: %w", err)
	}
	return message, nil
}

// List pages backwards from the cursor but returns chronological order:
// rows are fetched newest-first and reversed before returning.
func (service *ChatService) List(ctx context.Context, familyID uint, before *time.Time, take int) ([]models.ChatMessage, error) {
	exists, err := service.families.ExistsByID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("check family: %w", err)
	}
	if !exists {
		return nil, ErrFamilyNotFound
	}

	// take=0 is indistinguishable from an absent query parameter after
	// integer parsing, so zero and negative both fall back to the default
	// page size rather than clamping to 1.
	limit := take
	if limit <= 0 {
		limit = messagesPageSize
	}
	if limit > messagesPageSizeMax {
		limit = messagesPageSizeMax
	}

	messages, err := service.messages.ListBefore(ctx, familyID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	for left, right := 0, len(messages)-1; left < right; left, right = left+1, right-1 {
		messages[left], messages[right] = messages[right], messages[left]
	}
	return messages, nil
}

// Edit is strict authorship: family admins editing someone else's message
// get ErrNotMessageAuthor like everyone else.
func (service *ChatService) Edit(ctx context.Context, familyID uint, messageID uint, actorID uint, text string) (models.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len([]rune(trimmed)) > messageMaxLength {
		return models.ChatMessage{}, ErrMessageTextInvalid
	}

	message, err := service.messages.FindActive(ctx, familyID, messageID)
	if err != nil {
		if db.IsNotFound(err) {
			return models.ChatMessage{}, ErrMessageNotFound
		}
		return models.ChatMessage{}, fmt.Errorf("load message: %w", err)
	}
	if message.AuthorUserID != actorID {
		return models.ChatMessage{}, ErrNotMessageAuthor
	}

	now := time.Now().UTC()
	message.Text = trimmed
	message.EditedAt = &now
	if err := service.messages.Save(ctx, &message); err != nil {
		return models.ChatMessage{}, fmt.Errorf("save message: %w", err)
	}
	return message, nil
}

// Delete is logical: the row stays, flagged deleted, and disappears from
// listings. Already-deleted messages read as not found.
func (service *ChatService) Delete(ctx context.Context, familyID uint, messageID uint, actorID uint) error {
	message, err := service.messages.FindActive(ctx, familyID, messageID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("load message: %w", err)
	}
	if message.AuthorUserID != actorID {
		return ErrNotMessageAuthor
	}

	now := time.Now().UTC()
	message.IsDeleted = true
	message.EditedAt = &now
	if err := service.messages.Save(ctx, &message); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}
