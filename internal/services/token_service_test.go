package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zabotahq/zabota/internal/db"
	"github.com/zabotahq/zabota/internal/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	service := NewTokenService(nil, testTokenConfig())
	user := models.User{ID: 42, Email: "anna@example.com", FirstName: "Анна", LastName: "Тестова"}

	signed, expiresAt, err := service.CreateAccessToken(user)
	if err != nil {
		t.Fatalf("create access token: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 14*time.Minute || remaining > 16*time.Minute {
		t.Fatalf("unexpected expiry distance: %v", remaining)
	}

	claims, err := service.ParseAccessToken(signed)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Email != user.Email || claims.FirstName != user.FirstName || claims.LastName != user.LastName {
		t.Fatalf("claims do not match user: %+v", claims)
	}
	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("parse subject: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected subject %d, got %d", user.ID, userID)
	}
}

func TestParseAccessTokenRejectsForeignTokens(t *testing.T) {
	t.Parallel()

	service := NewTokenService(nil, testTokenConfig())

	otherSecret := testTokenConfig()
	otherSecret.Secret = []byte("some-other-secret")
	otherIssuer := testTokenConfig()
	otherIssuer.Issuer = "someone-else"

	user := models.User{ID: 7, Email: "anna@example.com"}
	for name, issuingConfig := range map[string]TokenConfig{
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
	} {
		signed, _, err := NewTokenService(nil, issuingConfig).CreateAccessToken(user)
		if err != nil {
			t.Fatalf("%s: create token: %v", name, err)
		}
		if _, err := service.ParseAccessToken(signed); err == nil {
			t.Fatalf("%s: expected parse to fail", name)
		}
	}

	if _, err := service.ParseAccessToken("not.a.jwt"); err == nil {
		t.Fatal("expected garbage token to fail")
	}
}

func TestRefreshTokenRotationIsSingleUse(t *testing.T) {
	t.Parallel()

	repositories := openTestRepositories(t)
	service := NewTokenService(repositories.RefreshTokens, testTokenConfig())
	user := createTestUser(t, repositories, "rotate@example.com")
	ctx := context.Background()

	issued, err := service.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	first, err := service.RotateRefreshToken(ctx, issued.Token)
	if err != nil {
		t.Fatalf("first rotation: %v", err)
	}
	if first.Token == issued.Token {
		t.Fatal("rotation must produce a different opaque value")
	}
	if first.UserID != user.ID {
		t.Fatalf("replacement bound to user %d, want %d", first.UserID, user.ID)
	}

	if _, err := service.RotateRefreshToken(ctx, issued.Token); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("second presentation: expected ErrRefreshTokenInvalid, got %v", err)
	}

	// The replacement from the first rotation is still live.
	if _, err := service.RotateRefreshToken(ctx, first.Token); err != nil {
		t.Fatalf("rotating the replacement: %v", err)
	}
}

// racingRefreshStore revokes the presented row before delegating, standing
// in for a concurrent rotation that wins between lookup and update.
type racingRefreshStore struct {
	*db.RefreshTokenRepository
}

func (store racingRefreshStore) Rotate(ctx context.Context, presented *models.RefreshToken, replacement *models.RefreshToken, now time.Time) error {
	if err := store.RefreshTokenRepository.RevokeByToken(ctx, presented.Token, now); err != nil {
		return err
	}
	return store.RefreshTokenRepository.Rotate(ctx, presented, replacement, now)
}

func TestRotationLostToConcurrentRevocationIsInvalid(t *testing.T) {
	t.Parallel()

	repositories := openTestRepositories(t)
	service := NewTokenService(racingRefreshStore{repositories.RefreshTokens}, testTokenConfig())
	user := createTestUser(t, repositories, "racer@example.com")
	ctx := context.Background()

	issued, err := service.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	if _, err := service.RotateRefreshToken(ctx, issued.Token); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("losing rotation must fail as invalid, got %v", err)
	}

	// No replacement was minted for the loser.
	record, err := repositories.RefreshTokens.FindByToken(ctx, issued.Token)
	if err != nil {
		t.Fatalf("reload presented token: %v", err)
	}
	if !record.IsRevoked() {
		t.Fatal("presented token must stay revoked")
	}
}

func TestRotateRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	repositories := openTestRepositories(t)
	service := NewTokenService(repositories.RefreshTokens, testTokenConfig())
	user := createTestUser(t, repositories, "expired@example.com")
	ctx := context.Background()

	stale := models.RefreshToken{
		UserID:    user.ID,
		Token:     "expired-opaque-token-value",
		IssuedAt:  time.Now().UTC().Add(-91 * 24 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-24 * time.Hour),
	}
	if err := repositories.RefreshTokens.Create(ctx, &stale); err != nil {
		t.Fatalf("seed expired token: %v", err)
	}

	if _, err := service.RotateRefreshToken(ctx, stale.Token); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestRotateRejectsUnknownToken(t *testing.T) {
	t.Parallel()

	repositories := openTestRepositories(t)
	service := NewTokenService(repositories.RefreshTokens, testTokenConfig())

	if _, err := service.RotateRefreshToken(context.Background(), "never-issued"); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestInvalidateAllUserRefreshTokens(t *testing.T) {
	t.Parallel()

	repositories := openTestRepositories(t)
	service := NewTokenService(repositories.RefreshTokens, testTokenConfig())
	user := createTestUser(t, repositories, "everywhere@example.com")
	other := createTestUser(t, repositories, "bystander@example.com")
	ctx := context.Background()

	firstDevice, err := service.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue first token: %v", err)
	}
	secondDevice, err := service.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue second token: %v", err)
	}
	otherToken, err := service.IssueRefreshToken(ctx, other.ID)
	if err != nil {
		t.Fatalf("issue bystander token: %v", err)
	}

	if err := service.InvalidateAllUserRefreshTokens(ctx, user.ID); err != nil {
		t.Fatalf("invalidate all: %v", err)
	}

	for _, token := range []string{firstDevice.Token, secondDevice.Token} {
		if _, err := service.RotateRefreshToken(ctx, token); !errors.Is(err, ErrRefreshTokenInvalid) {
			t.Fatalf("expected revoked token to be unusable, got %v", err)
		}
	}
	if _, err := service.RotateRefreshToken(ctx, otherToken.Token); err != nil {
		t.Fatalf("bystander token must stay valid: %v", err)
	}
}

func TestInvalidateRefreshTokenIsSilentForUnknownValues(t *testing.T) {
	t.Parallel()

	repositories := openTestRepositories(t)
	service := NewTokenService(repositories.RefreshTokens, testTokenConfig())

	if err := service.InvalidateRefreshToken(context.Background(), "never-issued"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
