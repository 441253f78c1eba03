package models

import "time"

type Family struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:200;not null" json:"name"`
	InviteCode string    `gorm:"uniqueIndex;size:12;not null" json:"inviteCode"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAtUtc"`
}
