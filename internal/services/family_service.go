package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zabotahq/zabota/internal/db"
	"github.com/zabotahq/zabota/internal/models"
	"github.com/zabotahq/zabota/internal/security"
)

const (
	familyNameMaxLength = 200
	inviteCodeAttempts  = 5
)

var (
	ErrFamilyNameInvalid = errors.New("family name is required")
	ErrAlreadyInFamily   = errors.New("user already belongs to a family")
	ErrFamilyNotFound    = errors.New("family not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrNotFamilyAdmin    = errors.New("acting user is not a family admin")
	// ErrInviteCodeExhausted signals repeated unique-index collisions. At 12
	// characters over a 31-symbol alphabet that means a bug, not bad luck.
	ErrInviteCodeExhausted = errors.New("could not generate a unique invite code")
)

type FamilyUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
	UpdateByID(ctx context.Context, userID uint, updates map[string]any) error
	FindMemberOf(ctx context.Context, familyID uint, userID uint) (models.User, error)
	IsMemberOf(ctx context.Context, familyID uint, userID uint) (bool, error)
	IsFamilyAdmin(ctx context.Context, familyID uint, userID uint) (bool, error)
	ListFamilyMembers(ctx context.Context, familyID uint) ([]models.User, error)
}

type FamilyStore interface {
	Create(ctx context.Context, family *models.Family) error
	FindByInviteCode(ctx context.Context, code string) (models.Family, error)
	ExistsByID(ctx context.Context, familyID uint) (bool, error)
	ExistsByInviteCode(ctx context.Context, code string) (bool, error)
}

type FamilyService struct {
	families FamilyStore
	users    FamilyUserRepository
}

func NewFamilyService(families FamilyStore, users FamilyUserRepository) *FamilyService {
	return &FamilyService{families: families, users: users}
}

// CreateFamily creates the group and makes the actor its admin. The invite
// code is retried on collision a bounded number of times; the store's unique
// index stays the final arbiter for concurrent creations.
func (service *FamilyService) CreateFamily(ctx context.Context, actorID uint, name string) (models.Family, models.User, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" || len([]rune(trimmedName)) > familyNameMaxLength {
		return models.Family{}, models.User{}, ErrFamilyNameInvalid
	}

	actor, err := service.users.FindByID(ctx, actorID)
	if err != nil {
		if db.IsNotFound(err) {
			return models.Family{}, models.User{}, ErrUserNotFound
		}
		return models.Family{}, models.User{}, fmt.Errorf("load acting user: %w", err)
	}
	if actor.FamilyID != nil {
		return models.Family{}, models.User{}, ErrAlreadyInFamily
	}

	family, err := service.createWithUniqueCode(ctx, trimmedName)
	if err != nil {
		return models.Family{}, models.User{}, err
	}

	if err := service.users.UpdateByID(ctx, actor.ID, map[string]any{
		"family_id":       family.ID,
		"role_in_family":  models.MembershipRoleAdmin,
		"is_family_admin": true,
	}); err != nil {
		return models.Family{}, models.User{}, fmt.Errorf("assign founding admin: %w", err)
	}

	actor.FamilyID = &family.ID
	actor.RoleInFamily = models.MembershipRoleAdmin
	actor.IsFamilyAdmin = true
	return family, actor, nil
}

func (service *FamilyService) createWithUniqueCode(ctx context.Context, name string) (models.Family, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := security.InviteCode()
		if err != nil {
			return models.Family{}, fmt.Errorf("generate invite code: %w", err)
		}

		taken, err := service.families.ExistsByInviteCode(ctx, code)
		if err != nil {
			return models.Family{}, fmt.Errorf("check invite code: %w", err)
		}
		if taken {
			continue
		}

		family := models.Family{Name: name, InviteCode: code}
		if err := service.families.Create(ctx, &family); err != nil {
			if db.IsDuplicateKey(err) {
				// Lost a race on the code between check and insert.
				continue
			}
			return models.Family{}, fmt.Errorf("create family: %w", err)
		}
		return family, nil
	}
	return models.Family{}, ErrInviteCodeExhausted
}

// JoinByCode admits the user into the family the code names. The
// single-membership invariant rejects users who already belong anywhere.
func (service *FamilyService) JoinByCode(ctx context.Context, code string, userID uint, role string, isAdmin bool) (models.Family, models.User, error) {
	normalizedCode := strings.ToUpper(strings.TrimSpace(code))
	if normalizedCode == "" {
		return models.Family{}, models.User{}, ErrFamilyNotFound
	}

	family, err := service.families.FindByInviteCode(ctx, normalizedCode)
	if err != nil {
		if db.IsNotFound(err) {
			return models.Family{}, models.User{}, ErrFamilyNotFound
		}
		return models.Family{}, models.User{}, fmt.Errorf("look up family by code: %w", err)
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return models.Family{}, models.User{}, ErrUserNotFound
		}
		return models.Family{}, models.User{}, fmt.Errorf("load joining user: %w", err)
	}
	if user.FamilyID != nil {
		return models.Family{}, models.User{}, ErrAlreadyInFamily
	}

	membershipRole := strings.TrimSpace(role)
	if membershipRole == "" {
		membershipRole = models.MembershipRoleDefault
	}

	if err := service.users.UpdateByID(ctx, user.ID, map[string]any{
		"family_id":       family.ID,
		"role_in_family":  membershipRole,
		"is_family_admin": isAdmin,
	}); err != nil {
		return models.Family{}, models.User{}, fmt.Errorf("join family: %w", err)
	}

	user.FamilyID = &family.ID
	user.RoleInFamily = membershipRole
	user.IsFamilyAdmin = isAdmin
	return family, user, nil
}

func (service *FamilyService) Members(ctx context.Context, familyID uint) ([]models.User, error) {
	exists, err := service.families.ExistsByID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("check family: %w", err)
	}
	if !exists {
		return nil, ErrFamilyNotFound
	}
	return service.users.ListFamilyMembers(ctx, familyID)
}

// UpdateMember changes the target's membership role and/or admin flag.
// Only an admin of the same family may do this.
func (service *FamilyService) UpdateMember(ctx context.Context, actorID uint, familyID uint, memberID uint, role *string, isAdmin *bool) (models.User, error) {
	member, err := service.users.FindMemberOf(ctx, familyID, memberID)
	if err != nil {
		if db.IsNotFound(err) {
			return models.User{}, ErrMemberNotFound
		}
		return models.User{}, fmt.Errorf("load member: %w", err)
	}

	if err := service.requireAdmin(ctx, familyID, actorID); err != nil {
		return models.User{}, err
	}

	updates := map[string]any{}
	if role != nil && strings.TrimSpace(*role) != "" {
		member.RoleInFamily = strings.TrimSpace(*role)
		updates["role_in_family"] = member.RoleInFamily
	}
	if isAdmin != nil {
		member.IsFamilyAdmin = *isAdmin
		updates["is_family_admin"] = member.IsFamilyAdmin
	}
	if len(updates) == 0 {
		return member, nil
	}

	if err := service.users.UpdateByID(ctx, member.ID, updates); err != nil {
		return models.User{}, fmt.Errorf("update member: %w", err)
	}
	return member, nil
}

// RemoveMember is admin-only. Removal clears the membership reference and
// always restores the default role; the user row itself is kept.
func (service *FamilyService) RemoveMember(ctx context.Context, actorID uint, familyID uint, memberID uint) error {
	if _, err := service.users.FindMemberOf(ctx, familyID, memberID); err != nil {
		if db.IsNotFound(err) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("load member: %w", err)
	}

	if err := service.requireAdmin(ctx, familyID, actorID); err != nil {
		return err
	}
	return service.clearMembership(ctx, memberID)
}

// Leave removes the user from the family. The admin requirement is waived
// only when the acting user is removing themselves.
func (service *FamilyService) Leave(ctx context.Context, actorID uint, familyID uint, userID uint) error {
	if _, err := service.users.FindMemberOf(ctx, familyID, userID); err != nil {
		if db.IsNotFound(err) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("load member: %w", err)
	}

	if actorID != userID {
		if err := service.requireAdmin(ctx, familyID, actorID); err != nil {
			return err
		}
	}
	return service.clearMembership(ctx, userID)
}

func (service *FamilyService) requireAdmin(ctx context.Context, familyID uint, actorID uint) error {
	isAdmin, err := service.users.IsFamilyAdmin(ctx, familyID, actorID)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if !isAdmin {
		return ErrNotFamilyAdmin
	}
	return nil
}

func (service *FamilyService) clearMembership(ctx context.Context, userID uint) error {
	if err := service.users.UpdateByID(ctx, userID, map[string]any{
		"family_id":       nil,
		"role_in_family":  models.MembershipRoleDefault,
		"is_family_admin": false,
	}); err != nil {
		return fmt.Errorf("clear membership: %w", err)
	}
	return nil
}
