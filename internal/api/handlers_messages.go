package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/services"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

type editMessageRequest struct {
	Text string `json:"text"`
}

// ListMessages pages backwards with ?beforeUtc=<RFC3339>&take=<n>; the
// response is chronological regardless.
func (handler *Handler) ListMessages(c *fiber.Ctx) error {
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья не найдена.")
	}

	var before *time.Time
	if raw := strings.TrimSpace(c.Query("beforeUtc")); raw != "" {
		cursor, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, CodeValidationError,
				"Параметр beforeUtc должен быть в формате RFC3339.")
		}
		before = &cursor
	}
	take := c.QueryInt("take")

	messages, err := handler.chatService.List(c.UserContext(), familyID, before, take)
	if err != nil {
		if errors.Is(err, services.ErrFamilyNotFound) {
			return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья не найдена.")
		}
		return handler.internalError(c, "list messages", err)
	}
	return respondData(c, fiber.StatusOK, "Сообщения семьи.", messages)
}

func (handler *Handler) SendMessage(c *fiber.Ctx) error {
	authorID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья не найдена.")
	}

	var request sendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}

	message, err := handler.chatService.Send(c.UserContext(), familyID, authorID, request.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMessageTextInvalid):
			return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Текст сообщения обязателен.")
		case errors.Is(err, services.ErrFamilyNotFound):
			return respondError(c, fiber.StatusNotFound, CodeNotFound, "Семья не найдена.")
		case errors.Is(err, services.ErrNotFamilyMember):
			return respondError(c, fiber.StatusForbidden, CodeForbidden, "Отправлять сообщения могут только участники семьи.")
		default:
			return handler.internalError(c, "send message", err)
		}
	}
	return respondData(c, fiber.StatusCreated, "Сообщение отправлено.", message)
}

func (handler *Handler) EditMessage(c *fiber.Ctx) error {
	actorID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Сообщение не найдено.")
	}
	messageID, err := parseIDParam(c, "messageId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Сообщение не найдено.")
	}

	var request editMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}

	message, err := handler.chatService.Edit(c.UserContext(), familyID, messageID, actorID, request.Text)
	if err != nil {
		return handler.messageError(c, "edit message", err)
	}
	return respondData(c, fiber.StatusOK, "Сообщение обновлено.", message)
}

func (handler *Handler) DeleteMessage(c *fiber.Ctx) error {
	actorID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}
	familyID, err := parseIDParam(c, "familyId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Сообщение не найдено.")
	}
	messageID, err := parseIDParam(c, "messageId")
	if err != nil {
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Сообщение не найдено.")
	}

	if err := handler.chatService.Delete(c.UserContext(), familyID, messageID, actorID); err != nil {
		return handler.messageError(c, "delete message", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) messageError(c *fiber.Ctx, operation string, err error) error {
	switch {
	case errors.Is(err, services.ErrMessageTextInvalid):
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Текст обязателен.")
	case errors.Is(err, services.ErrMessageNotFound):
		return respondError(c, fiber.StatusNotFound, CodeNotFound, "Сообщение не найдено.")
	case errors.Is(err, services.ErrNotMessageAuthor):
		return respondError(c, fiber.StatusForbidden, CodeForbidden, "Изменять сообщение может только его автор.")
	default:
		return handler.internalError(c, operation, err)
	}
}
