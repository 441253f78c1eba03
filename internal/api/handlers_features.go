package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/db"
	"github.com/zabotahq/zabota/internal/services"
)

// Features returns the static client feature catalog with per-user
// enablement; nothing about the list is persisted.
func (handler *Handler) Features(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}

	user, err := handler.authService.FindByID(c.UserContext(), userID)
	if err != nil {
		if db.IsNotFound(err) {
			return respondError(c, fiber.StatusNotFound, CodeNotFound, "Пользователь не найден.")
		}
		return handler.internalError(c, "load user features", err)
	}

	return respondData(c, fiber.StatusOK, "Список функций.", fiber.Map{
		"featureList": services.FeaturesFor(user),
	})
}
