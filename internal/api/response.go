package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ResponseCode is the machine-readable half of the response envelope. The
// mobile client switches on it; values are part of the wire contract.
type ResponseCode int

const (
	CodeOk ResponseCode = iota
	CodeNotFound
	CodeInvalidCredentials
	CodeValidationError
	CodeError
	CodeConflict
	CodeUnauthorized
	CodeForbidden
	CodeRateLimited
)

func (code ResponseCode) Title() string {
	if code == CodeOk {
		return "Ok"
	}
	return "Error"
}

// Every endpoint, success or failure, answers with this envelope.
type apiResponse struct {
	Code        ResponseCode        `json:"code"`
	CodeTitle   string              `json:"codeTitle"`
	Description string              `json:"description"`
	RequestID   string              `json:"requestId"`
	Errors      map[string][]string `json:"errors,omitempty"`
	Data        any                 `json:"data,omitempty"`
}

func respondData(c *fiber.Ctx, status int, description string, data any) error {
	return c.Status(status).JSON(apiResponse{
		Code:        CodeOk,
		CodeTitle:   CodeOk.Title(),
		Description: description,
		RequestID:   uuid.NewString(),
		Data:        data,
	})
}

func respondError(c *fiber.Ctx, status int, code ResponseCode, description string) error {
	return c.Status(status).JSON(apiResponse{
		Code:        code,
		CodeTitle:   code.Title(),
		Description: description,
		RequestID:   uuid.NewString(),
	})
}

func respondValidation(c *fiber.Ctx, fieldErrors map[string][]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(apiResponse{
		Code:        CodeValidationError,
		CodeTitle:   CodeValidationError.Title(),
		Description: "Ошибка валидации.",
		RequestID:   uuid.NewString(),
		Errors:      fieldErrors,
	})
}
