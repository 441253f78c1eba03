package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/services"
)

type createFamilyRequest struct {
	Name string `json:"name"`
}

type joinByCodeRequest struct {
	InviteCode   string `json:"inviteCode"`
	UserID       uint   `json:"userId"`
	RoleInFamily string `json:"roleInFamily"`
	IsAdmin      bool   `json:"isAdmin"`
}

type updateMemberRequest struct {
	RoleInFamily *string `json:"roleInFamily"`
	IsAdmin      *bool   `json:"isAdmin"`
}

type leaveFamilyRequest struct {
	UserID uint `json:"userId"`
}

func (handler *Handler) CreateFamily(c *fiber.Ctx) error {
	actorID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}

	var request createFamilyRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}

	family, founder, err := handler.familyService.CreateFamily(c.UserContext(), actorID, request.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFamilyNameInvalid):
			return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Название семьи обязательно.")
		case errors.Is(err, services.ErrAlreadyInFamily):
			return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Пользователь уже состоит в семье.")
		case errors.Is(err, services.ErrUserNotFound):
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Пользователь не найден.")
		case errors.Is(err, services.ErrInviteCodeExhausted):
			return handler.internalError(c, "create family", err)
		default:
			return handler.internalError(c, "create family", err)
		}
	}

	return respondData(c, fiber.StatusCreated, "Семья создана.", fiber.Map{
		"id":           family.ID,
		"name":         family.Name,
		"inviteCode":   family.InviteCode,
		"createdAtUtc": family.CreatedAt,
		"founder":      newFamilyMemberDTO(family.ID, founder),
	})
}

func (handler *Handler) JoinByCode(c *fiber.Ctx) error {
	var request joinByCodeRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}
	if request.InviteCode == "" {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Код приглашения обязателен.")
	}
	if request.UserID == 0 {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "UserId обязателен.")
	}

	family, member, err := handler.familyService.JoinByCode(
		c.UserContext(), request.InviteCode, request.UserID, request.RoleInFamily, request.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFamilyNotFound):
			return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья с таким кодом не найдена.")
		case errors.Is(err, services.ErrUserNotFound):
			return respondError(c, fiber.StatusNotFound, CodeNotFound, "Пользователь не найден.")
		case errors.Is(err, services.ErrAlreadyInFamily):
			return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Пользователь уже состоит в семье.")
		default:
			return handler.internalError(c, "join by code", err)
		}
	}

	return respondData(c, fiber.StatusOK, "Пользователь добавлен в семью.", fiber.Map{
		"familyId":     family.ID,
		"familyName":   family.Name,
		"userId":       member.ID,
		"roleInFamily": member.RoleInFamily,
		"isAdmin":      member.IsFamilyAdmin,
	})
}

func (handler *Handler) FamilyMembers(c *fiber.Ctx) error {
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья не найдена.")
	}

	members, err := handler.familyService.Members(c.UserContext(), familyID)
	if err != nil {
		if errors.Is(err, services.ErrFamilyNotFound) {
			return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья не найдена.")
		}
		return handler.internalError(c, "list members", err)
	}

	items := make([]familyMemberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, newFamilyMemberDTO(familyID, member))
	}
	return respondData(c, fiber.StatusOK, "Список участников.", items)
}

func (handler *Handler) UpdateMember(c *fiber.Ctx) error {
	actorID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Участник не найден.")
	}
	memberID, err := parseIDParam(c, "memberId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Участник не найден.")
	}

	var request updateMemberRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}

	member, err := handler.familyService.UpdateMember(
		c.UserContext(), actorID, familyID, memberID, request.RoleInFamily, request.IsAdmin)
	if err != nil {
		return handler.membershipError(c, "update member", err)
	}
	return respondData(c, fiber.StatusOK, "Данные участника обновлены.", newFamilyMemberDTO(familyID, member))
}

func (handler *Handler) RemoveMember(c *fiber.Ctx) error {
	actorID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Участник не найден.")
	}
	memberID, err := parseIDParam(c, "memberId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Участник не найден.")
	}

	if err := handler.familyService.RemoveMember(c.UserContext(), actorID, familyID, memberID); err != nil {
		return handler.membershipError(c, "remove member", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) LeaveFamily(c *fiber.Ctx) error {
	actorID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья не найдена.")
	}

	var request leaveFamilyRequest
	if err := c.BodyParser(&request); err != nil || request.UserID == 0 {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "UserId обязателен.")
	}

	if err := handler.familyService.Leave(c.UserContext(), actorID, familyID, request.UserID); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return respondError(c, fiber.StatusNotFound, CodeNotFound, "Пользователь не состоит в семье.")
		}
		return handler.membershipError(c, "leave family", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) membershipError(c *fiber.Ctx, operation string, err error) error {
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Участник не найден.")
	case errors.Is(err, services.ErrNotFamilyAdmin):
		return respondError(c, fiber.StatusForbidden, CodeForbidden, "Требуются права администратора семьи.")
	default:
		return handler.internalError(c, operation, err)
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := c.ParamsInt(name)
	if err != nil || value <= 0 {
		return 0, errors.New("invalid id parameter")
	}
	return uint(value), nil
}
