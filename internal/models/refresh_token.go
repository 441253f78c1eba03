package models

import "time"

// RefreshToken is an opaque bearer credential. Validity is determined
// solely by its row state: revoked tokens are kept for audit, never deleted.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"index;not null"`
	Token     string     `gorm:"uniqueIndex;size:128;not null"`
	IssuedAt  time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	RevokedAt *time.Time
}

func (token RefreshToken) IsRevoked() bool {
	return token.RevokedAt != nil
}

func (token RefreshToken) IsValidAt(now time.Time) bool {
	return !token.IsRevoked() && token.ExpiresAt.After(now)
}
