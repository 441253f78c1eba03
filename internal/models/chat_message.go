package models

import "time"

// ChatMessage deletion is logical; deleted rows stay in the table and are
// filtered out of every listing.
type ChatMessage struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FamilyID     uint       `gorm:"index:idx_chat_family_sent;not null" json:"familyId"`
	AuthorUserID uint       `gorm:"not null" json:"authorUserId"`
	Text         string     `gorm:"size:4000;not null" json:"text"`
	SentAt       time.Time  `gorm:"index:idx_chat_family_sent;not null" json:"sentAtUtc"`
	EditedAt     *time.Time `json:"editedAtUtc,omitempty"`
	IsDeleted    bool       `gorm:"not null;default:false" json:"-"`
}
