package api

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/models"
	"github.com/zabotahq/zabota/internal/services"
)

type registrationRequest struct {
	LastName   string `json:"lastName"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birthDate"`
	Role       string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Registration(c *fiber.Ctx) error {
	var request registrationRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}

	normalized, fieldErrors := services.ValidateRegistration(services.RegistrationInput{
		LastName:   request.LastName,
		FirstName:  request.FirstName,
		MiddleName: request.MiddleName,
		Email:      request.Email,
		Password:   request.Password,
		Phone:      request.Phone,
		BirthDate:  request.BirthDate,
		Role:       request.Role,
	})
	if len(fieldErrors) > 0 {
		return respondValidation(c, fieldErrors)
	}

	user, err := handler.authService.Register(c.UserContext(), normalized)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return respondError(c, fiber.StatusConflict, CodeConflict, "Такой email уже зарегистрирован.")
		}
		return handler.internalError(c, "registration", err)
	}

	pair, err := handler.issueTokenPair(c.UserContext(), user)
	if err != nil {
		return handler.internalError(c, "registration tokens", err)
	}
	return respondData(c, fiber.StatusCreated, "Пользователь создан.", pair)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var request loginRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Некорректное тело запроса.")
	}
	if request.Email == "" || request.Password == "" {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Email и пароль обязательны.")
	}

	outcome, err := handler.authService.Login(c.UserContext(), request.Email, request.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoginRateLimited):
			return respondError(c, fiber.StatusTooManyRequests, CodeRateLimited,
				"Слишком много неудачных попыток входа. Попробуйте позже.")
		case errors.Is(err, services.ErrInvalidCredentials):
			// Deliberately identical for unknown email and wrong password.
			// Attempts remaining is surfaced on purpose; see DESIGN.md.
			return respondError(c, fiber.StatusUnauthorized, CodeInvalidCredentials,
				fmt.Sprintf("Неверный email или пароль. Осталось попыток: %d.", outcome.AttemptsLeft))
		default:
			return handler.internalError(c, "login", err)
		}
	}

	pair, err := handler.issueTokenPair(c.UserContext(), outcome.User)
	if err != nil {
		return handler.internalError(c, "login tokens", err)
	}
	return respondData(c, fiber.StatusOK, "Успешный вход.", pair)
}

func (handler *Handler) Refresh(c *fiber.Ctx) error {
	var request refreshRequest
	if err := c.BodyParser(&request); err != nil || request.RefreshToken == "" {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Refresh-токен обязателен.")
	}

	rotated, err := handler.tokenService.RotateRefreshToken(c.UserContext(), request.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrRefreshTokenInvalid) {
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized,
				"Недействительный или просроченный токен.")
		}
		return handler.internalError(c, "refresh", err)
	}

	user, err := handler.authService.FindByID(c.UserContext(), rotated.UserID)
	if err != nil {
		return handler.internalError(c, "refresh user lookup", err)
	}

	accessToken, accessExpiresAt, err := handler.tokenService.CreateAccessToken(user)
	if err != nil {
		return handler.internalError(c, "refresh access token", err)
	}
	return respondData(c, fiber.StatusOK, "Токены обновлены.", authData{
		User:                  newUserSummary(user),
		Token:                 accessToken,
		TokenExpiresAt:        accessExpiresAt,
		RefreshToken:          rotated.Token,
		RefreshTokenExpiresAt: rotated.ExpiresAt,
	})
}

// Validate echoes the decoded identity claims so the client can confirm a
// stored access token is still usable.
func (handler *Handler) Validate(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}
	userID, _ := currentUserID(c)

	return respondData(c, fiber.StatusOK, "Токен действителен.", fiber.Map{
		"userId":    userID,
		"email":     claims.Email,
		"firstName": claims.FirstName,
		"lastName":  claims.LastName,
		"issuedAt":  claims.IssuedAt,
		"expiresAt": claims.ExpiresAt,
	})
}

// Logout revokes the specific refresh token when one is supplied, otherwise
// every live token of the caller ("log out everywhere").
func (handler *Handler) Logout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Требуется авторизация.")
	}

	var request logoutRequest
	_ = c.BodyParser(&request)

	if request.RefreshToken != "" {
		if err := handler.tokenService.InvalidateRefreshToken(c.UserContext(), request.RefreshToken); err != nil {
			return handler.internalError(c, "logout", err)
		}
	} else if err := handler.tokenService.InvalidateAllUserRefreshTokens(c.UserContext(), userID); err != nil {
		return handler.internalError(c, "logout all", err)
	}
	return respondData(c, fiber.StatusOK, "Выход выполнен.", nil)
}

func (handler *Handler) issueTokenPair(ctx context.Context, user models.User) (authData, error) {
	accessToken, accessExpiresAt, err := handler.tokenService.CreateAccessToken(user)
	if err != nil {
		return authData{}, err
	}
	refreshToken, err := handler.tokenService.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return authData{}, err
	}
	return authData{
		User:                  newUserSummary(user),
		Token:                 accessToken,
		TokenExpiresAt:        accessExpiresAt,
		RefreshToken:          refreshToken.Token,
		RefreshTokenExpiresAt: refreshToken.ExpiresAt,
	}, nil
}

// internalError logs the real cause and answers with a generic envelope;
// store internals never reach the client.
func (handler *Handler) internalError(c *fiber.Ctx, operation string, err error) error {
	log.Printf("%s failed: %v", operation, err)
	return respondError(c, fiber.StatusInternalServerError, CodeError, "Внутренняя ошибка сервера.")
}
