package api

import (
	"github.com/zabotahq/zabota/internal/config"
	"github.com/zabotahq/zabota/internal/db"
	"github.com/zabotahq/zabota/internal/services"
	"gorm.io/gorm"
)

const contextUserIDKey = "current_user_id"
const contextClaimsKey = "current_claims"

type Handler struct {
	repositories  *db.Repositories
	authService   *services.AuthService
	tokenService  *services.TokenService
	familyService *services.FamilyService
	chatService   *services.ChatService
}

func NewHandler(database *gorm.DB, cfg config.Config) *Handler {
	repositories := db.NewRepositories(database)
	throttle := services.NewLoginThrottle(
		services.NewMemoryAttemptStore(),
		cfg.LoginAttemptLimit,
		cfg.LoginAttemptWindow,
	)

	return &Handler{
		repositories: repositories,
		authService:  services.NewAuthService(repositories.Users, throttle),
		tokenService: services.NewTokenService(repositories.RefreshTokens, services.TokenConfig{
			Secret:     []byte(cfg.JWTSecret),
			Issuer:     cfg.JWTIssuer,
			Audience:   cfg.JWTAudience,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		}),
		familyService: services.NewFamilyService(repositories.Families, repositories.Users),
		chatService:   services.NewChatService(repositories.ChatMessages, repositories.Families, repositories.Users),
	}
}
