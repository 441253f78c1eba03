package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zabotahq/zabota/internal/db"
	"github.com/zabotahq/zabota/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// the distinction must not leak to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRateLimited   = errors.New("too many failed login attempts")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateByID(ctx context.Context, userID uint, updates map[string]any) error
}

type AuthService struct {
	users    AuthUserRepository
	throttle *LoginThrottle
}

func NewAuthService(users AuthUserRepository, throttle *LoginThrottle) *AuthService {
	return &AuthService{users: users, throttle: throttle}
}

// Register creates the user from already-validated input. Two registrations
// racing on the same email are arbitrated by the unique index: the loser's
// constraint violation comes back as ErrEmailTaken, same as the pre-check.
func (service *AuthService) Register(ctx context.Context, input NormalizedRegistration) (models.User, error) {
	exists, err := service.users.ExistsByNormalizedEmail(ctx, input.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email uniqueness: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: string(passwordHash),
		LastName:     input.LastName,
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		Phone:        input.Phone,
		Role:         input.Role,
		BirthDate:    input.BirthDate,
		IsActive:     true,
		IsVerified:   false,
		RoleInFamily: models.MembershipRoleDefault,
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.users.Create(ctx, &user); err != nil {
		if db.IsDuplicateKey(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// LoginOutcome carries the authenticated user on success; AttemptsLeft is
// how many tries remain and is surfaced to the client on failure.
type LoginOutcome struct {
	User         models.User
	AttemptsLeft int
}

// Login verifies credentials under the throttle. Unknown email and wrong
// password both come back as ErrInvalidCredentials.
func (service *AuthService) Login(ctx context.Context, email string, password string) (LoginOutcome, error) {
	normalized := NormalizeEmail(email)
	now := time.Now().UTC()

	// Capped identifiers are rejected before any hashing work happens.
	if service.throttle.Blocked(normalized, now) {
		return LoginOutcome{}, ErrLoginRateLimited
	}

	user, err := service.users.FindByNormalizedEmail(ctx, normalized)
	if err != nil {
		if db.IsNotFound(err) {
			return service.failLogin(normalized, now), ErrInvalidCredentials
		}
		return LoginOutcome{}, fmt.Errorf("look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return service.failLogin(normalized, now), ErrInvalidCredentials
	}

	service.throttle.Reset(normalized)
	return LoginOutcome{User: user, AttemptsLeft: service.throttle.limit}, nil
}

func (service *AuthService) failLogin(normalized string, now time.Time) LoginOutcome {
	service.throttle.RecordFailure(normalized, now)
	return LoginOutcome{AttemptsLeft: service.throttle.AttemptsLeft(normalized, now)}
}

func (service *AuthService) FindByID(ctx context.Context, userID uint) (models.User, error) {
	return service.users.FindByID(ctx, userID)
}

// UpdateInfo applies the profile fields the mobile client can change after
// registration: kinship role and birth date.
func (service *AuthService) UpdateInfo(ctx context.Context, userID uint, role *models.FamilyRole, birthDate *time.Time) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	updates := map[string]any{}
	if role != nil {
		updates["role"] = *role
	}
	if birthDate != nil {
		updates["birth_date"] = *birthDate
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := service.users.UpdateByID(ctx, userID, updates); err != nil {
		return models.User{}, fmt.Errorf("update user info: %w", err)
	}
	return service.users.FindByID(ctx, userID)
}
