package api

import (
	"time"

	"github.com/zabotahq/zabota/internal/models"
)

// userSummary is the safe projection of a user returned by auth endpoints.
// The password hash never leaves the service; the role is rendered as its
// display label while the stored key stays internal.
type userSummary struct {
	ID            uint       `json:"id"`
	Email         string     `json:"email"`
	LastName      string     `json:"lastName"`
	FirstName     string     `json:"firstName"`
	MiddleName    string     `json:"middleName,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Role          string     `json:"role,omitempty"`
	BirthDate     *time.Time `json:"birthDate,omitempty"`
	IsVerified    bool       `json:"isVerified"`
	IsPremium     bool       `json:"isPremium"`
	FamilyID      *uint      `json:"familyId,omitempty"`
	RoleInFamily  string     `json:"roleInFamily"`
	IsFamilyAdmin bool       `json:"isFamilyAdmin"`
}

func newUserSummary(user models.User) userSummary {
	summary := userSummary{
		ID:            user.ID,
		Email:         user.Email,
		LastName:      user.LastName,
		FirstName:     user.FirstName,
		MiddleName:    user.MiddleName,
		Phone:         user.Phone,
		BirthDate:     user.BirthDate,
		IsVerified:    user.IsVerified,
		IsPremium:     user.IsPremium,
		FamilyID:      user.FamilyID,
		RoleInFamily:  user.RoleInFamily,
		IsFamilyAdmin: user.IsFamilyAdmin,
	}
	if user.Role != nil {
		summary.Role = user.Role.Label()
	}
	return summary
}

// authData is the token pair handed out on registration, login and refresh.
type authData struct {
	User                  userSummary `json:"user"`
	Token                 string      `json:"token"`
	TokenExpiresAt        time.Time   `json:"tokenExpiresAt"`
	RefreshToken          string      `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time   `json:"refreshTokenExpiresAt"`
}

type familyMemberDTO struct {
	ID           uint   `json:"id"`
	FamilyID     uint   `json:"familyId"`
	UserID       uint   `json:"userId"`
	FullName     string `json:"fullName"`
	RoleInFamily string `json:"roleInFamily"`
	IsAdmin      bool   `json:"isAdmin"`
}

func newFamilyMemberDTO(familyID uint, user models.User) familyMemberDTO {
	return familyMemberDTO{
		ID:           user.ID,
		FamilyID:     familyID,
		UserID:       user.ID,
		FullName:     user.FullName(),
		RoleInFamily: user.RoleInFamily,
		IsAdmin:      user.IsFamilyAdmin,
	}
}
