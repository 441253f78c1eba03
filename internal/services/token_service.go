package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zabotahq/zabota/internal/models"
	"github.com/zabotahq/zabota/internal/security"
	"gorm.io/gorm"
)

// ErrRefreshTokenInvalid is deliberately the only refresh failure callers
// see: missing, revoked and expired tokens are indistinguishable.
var ErrRefreshTokenInvalid = errors.New("refresh token invalid or expired")

type RefreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (models.RefreshToken, error)
	RevokeByToken(ctx context.Context, token string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint, now time.Time) error
	Rotate(ctx context.Context, presented *models.RefreshToken, replacement *models.RefreshToken, now time.Time) error
}

type TokenConfig struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AccessClaims is the minimal claim set embedded in access tokens: enough
// to authorize ordinary requests without a database round trip, nothing
// secret beyond that.
type AccessClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	jwt.RegisteredClaims
}

func (claims *AccessClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse subject claim: %w", err)
	}
	return uint(id), nil
}

type TokenService struct {
	tokens RefreshTokenStore
	config TokenConfig
}

func NewTokenService(tokens RefreshTokenStore, config TokenConfig) *TokenService {
	return &TokenService{tokens: tokens, config: config}
}

// CreateAccessToken mints a signed, time-boxed credential. Stateless: its
// validity is checked by signature and expiry alone.
func (service *TokenService) CreateAccessToken(user models.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(service.config.AccessTTL)

	claims := AccessClaims{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    service.config.Issuer,
			Audience:  jwt.ClaimStrings{service.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

func (service *TokenService) ParseAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return service.config.Secret, nil
	},
		jwt.WithIssuer(service.config.Issuer),
		jwt.WithAudience(service.config.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// IssueRefreshToken persists and returns a fresh opaque token. A user may
// hold several live tokens at once (one per device).
func (service *TokenService) IssueRefreshToken(ctx context.Context, userID uint) (models.RefreshToken, error) {
	opaque, err := security.OpaqueToken()
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	token := models.RefreshToken{
		UserID:    userID,
		Token:     opaque,
		IssuedAt:  now,
		ExpiresAt: now.Add(service.config.RefreshTTL),
	}
	if err := service.tokens.Create(ctx, &token); err != nil {
		return models.RefreshToken{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return token, nil
}

// RotateRefreshToken enforces single use: the presented token is revoked and
// replaced in one transactional unit. Presenting it a second time fails.
func (service *TokenService) RotateRefreshToken(ctx context.Context, presented string) (models.RefreshToken, error) {
	record, err := service.tokens.FindByToken(ctx, presented)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RefreshToken{}, ErrRefreshTokenInvalid
		}
		return models.RefreshToken{}, fmt.Errorf("look up refresh token: %w", err)
	}

	now := time.Now().UTC()
	if !record.IsValidAt(now) {
		return models.RefreshToken{}, ErrRefreshTokenInvalid
	}

	opaque, err := security.OpaqueToken()
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}
	replacement := models.RefreshToken{
		UserID:    record.UserID,
		Token:     opaque,
		IssuedAt:  now,
		ExpiresAt: now.Add(service.config.RefreshTTL),
	}

	if err := service.tokens.Rotate(ctx, &record, &replacement, now); err != nil {
		// A concurrent rotation revoked the row between lookup and update;
		// the losing request must not receive a live replacement.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RefreshToken{}, ErrRefreshTokenInvalid
		}
		return models.RefreshToken{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return replacement, nil
}

// InvalidateRefreshToken revokes the matching token. Unknown values are a
// silent no-op so logout cannot be used to probe token existence.
func (service *TokenService) InvalidateRefreshToken(ctx context.Context, token string) error {
	return service.tokens.RevokeByToken(ctx, token, time.Now().UTC())
}

func (service *TokenService) InvalidateAllUserRefreshTokens(ctx context.Context, userID uint) error {
	return service.tokens.RevokeAllForUser(ctx, userID, time.Now().UTC())
}
