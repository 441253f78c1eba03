package models

import "time"

const (
	// MembershipRoleDefault is assigned whenever a user joins a family
	// without an explicit role and restored when a user leaves.
	MembershipRoleDefault = "Member"
	MembershipRoleAdmin   = "Admin"
)

type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Email        string      `gorm:"uniqueIndex;size:320;not null" json:"email"`
	PasswordHash string      `gorm:"size:200;not null" json:"-"`
	LastName     string      `gorm:"size:100;not null" json:"lastName"`
	FirstName    string      `gorm:"size:100;not null" json:"firstName"`
	MiddleName   string      `gorm:"size:100" json:"middleName,omitempty"`
	Phone        string      `gorm:"size:32" json:"phone,omitempty"`
	Role         *FamilyRole `gorm:"size:32" json:"role,omitempty"`

	BirthDate  *time.Time `json:"birthDate,omitempty"`
	IsActive   bool       `gorm:"not null;default:true" json:"isActive"`
	IsVerified bool       `gorm:"not null;default:false" json:"isVerified"`
	IsPremium  bool       `gorm:"not null;default:false" json:"isPremium"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`

	// Membership is a direct reference: a user belongs to at most one
	// family at a time.
	FamilyID      *uint  `gorm:"index" json:"familyId,omitempty"`
	RoleInFamily  string `gorm:"size:50;not null;default:Member" json:"roleInFamily"`
	IsFamilyAdmin bool   `gorm:"not null;default:false" json:"isFamilyAdmin"`
}

// FullName renders "Last First Middle" the way the member list shows it.
func (user User) FullName() string {
	name := user.LastName + " " + user.FirstName
	if user.MiddleName != "" {
		name += " " + user.MiddleName
	}
	return name
}
