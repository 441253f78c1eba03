package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/services"
)

// AuthRequired validates the bearer access token statelessly (signature and
// expiry only, no database hit) and exposes the caller's identity via
// request locals. Handlers thread the user id into services explicitly.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if after, found := strings.CutPrefix(raw, "Bearer "); found {
		raw = strings.TrimSpace(after)
	}
	if raw == "" {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}

	claims, err := handler.tokenService.ParseAccessToken(raw)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Недействительный или просроченный токен.")
	}

	userID, err := claims.UserID()
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Недействительный или просроченный токен.")
	}

	c.Locals(contextUserIDKey, userID)
	c.Locals(contextClaimsKey, claims)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(contextUserIDKey).(uint)
	return userID, ok
}

func currentClaims(c *fiber.Ctx) (*services.AccessClaims, bool) {
	claims, ok := c.Locals(contextClaimsKey).(*services.AccessClaims)
	return claims, ok
}
