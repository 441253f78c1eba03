package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repositories struct {
	Users         *UserRepository
	Families      *FamilyRepository
	RefreshTokens *RefreshTokenRepository
	ChatMessages  *ChatMessageRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Families:      NewFamilyRepository(database),
		RefreshTokens: NewRefreshTokenRepository(database),
		ChatMessages:  NewChatMessageRepository(database),
	}
}

// IsDuplicateKey reports whether err is a unique-constraint violation. The
// string fallback covers drivers that predate gorm's error translation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
