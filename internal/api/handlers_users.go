package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/models"
	"github.com/zabotahq/zabota/internal/services"
)

type updateInfoRequest struct {
	Role      string `json:"role"`
	BirthDate string `json:"birthDate"`
}

type roleItem struct {
	Name string `json:"name"`
}

// Roles enumerates the fixed kinship-role catalog by display label.
func (handler *Handler) Roles(c *fiber.Ctx) error {
	roles := models.AllFamilyRoles()
	items := make([]roleItem, 0, len(roles))
	for _, role := range roles {
		items = append(items, roleItem{Name: role.Label()})
	}
	return respondData(c, fiber.StatusOK, "Список ролей.", fiber.Map{"roleList": items})
}

// UpdateInfo lets the caller change their own kinship role and birth date.
func (handler *Handler) UpdateInfo(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}

	var request updateInfoRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}

	var role *models.FamilyRole
	if raw := strings.TrimSpace(request.Role); raw != "" {
		parsed, ok := models.ParseFamilyRole(raw)
		if !ok {
			return respondValidation(c, map[string][]string{"role": {"Неизвестная роль."}})
		}
		role = &parsed
	}

	var birthDate *time.Time
	if raw := strings.TrimSpace(request.BirthDate); raw != "" {
		parsed, err := services.ParseBirthDate(raw)
		if err != nil {
			return respondValidation(c, map[string][]string{"birthDate": {err.Error()}})
		}
		birthDate = &parsed
	}

	user, err := handler.authService.UpdateInfo(c.UserContext(), userID, role, birthDate)
	if err != nil {
		return handler.internalError(c, "update info", err)
	}
	return respondData(c, fiber.StatusOK, "Данные пользователя обновлены.", newUserSummary(user))
}
