package services

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/zabotahq/zabota/internal/models"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 128
	nameMaxLength     = 100
)

var (
	phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{6,20}$`)
	birthDateMin = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// RegistrationInput is the raw request body; everything is a string so the
// policy owns all parsing and the handler stays a pass-through.
type RegistrationInput struct {
	LastName   string
	FirstName  string
	MiddleName string
	Email      string
	Password   string
	Phone      string
	BirthDate  string
	Role       string
}

type NormalizedRegistration struct {
	LastName   string
	FirstName  string
	MiddleName string
	Email      string
	Password   string
	Phone      string
	BirthDate  *time.Time
	Role       *models.FamilyRole
}

// FieldErrors maps a field name to its validation messages, the shape the
// client renders under each form field.
type FieldErrors map[string][]string

func (fieldErrors FieldErrors) add(field string, message string) {
	fieldErrors[field] = append(fieldErrors[field], message)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration resolves all input problems before any side effect.
// It returns either a fully normalized registration or a non-empty field
// error map, never both.
func ValidateRegistration(input RegistrationInput) (NormalizedRegistration, FieldErrors) {
	fieldErrors := FieldErrors{}
	normalized := NormalizedRegistration{
		LastName:   strings.TrimSpace(input.LastName),
		FirstName:  strings.TrimSpace(input.FirstName),
		MiddleName: strings.TrimSpace(input.MiddleName),
		Email:      NormalizeEmail(input.Email),
		Password:   input.Password,
		Phone:      strings.TrimSpace(input.Phone),
	}

	if normalized.LastName == "" {
		fieldErrors.add("lastName", "Фамилия обязательна.")
	} else if len([]rune(normalized.LastName)) > nameMaxLength {
		fieldErrors.add("lastName", "Фамилия слишком длинная.")
	}

	if normalized.FirstName == "" {
		fieldErrors.add("firstName", "Имя обязательно.")
	} else if len([]rune(normalized.FirstName)) > nameMaxLength {
		fieldErrors.add("firstName", "Имя слишком длинное.")
	}

	if len([]rune(normalized.MiddleName)) > nameMaxLength {
		fieldErrors.add("middleName", "Отчество слишком длинное.")
	}

	if normalized.Email == "" {
		fieldErrors.add("email", "Email обязателен.")
	} else if address, err := mail.ParseAddress(normalized.Email); err != nil || address.Address != normalized.Email {
		fieldErrors.add("email", "Некорректный формат email.")
	}

	if length := len([]rune(input.Password)); length < passwordMinLength || length > passwordMaxLength {
		fieldErrors.add("password", "Пароль должен быть 8–128 символов.")
	}

	if normalized.Phone != "" && !phonePattern.MatchString(normalized.Phone) {
		fieldErrors.add("phone", "Некорректный формат телефона.")
	}

	if birthDateRaw := strings.TrimSpace(input.BirthDate); birthDateRaw != "" {
		birthDate, err := ParseBirthDate(birthDateRaw)
		if err != nil {
			fieldErrors.add("birthDate", err.Error())
		} else {
			normalized.BirthDate = &birthDate
		}
	}

	if roleRaw := strings.TrimSpace(input.Role); roleRaw != "" {
		role, ok := models.ParseFamilyRole(roleRaw)
		if !ok {
			fieldErrors.add("role", "Неизвестная роль.")
		} else {
			normalized.Role = &role
		}
	}

	if len(fieldErrors) > 0 {
		return NormalizedRegistration{}, fieldErrors
	}
	return normalized, nil
}

// ParseBirthDate accepts ISO yyyy-MM-dd within [1900-01-01, today].
func ParseBirthDate(raw string) (time.Time, error) {
	birthDate, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errBirthDateFormat
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if birthDate.After(today) {
		return time.Time{}, errBirthDateFuture
	}
	if birthDate.Before(birthDateMin) {
		return time.Time{}, errBirthDateTooOld
	}
	return birthDate, nil
}

type birthDateError string

func (err birthDateError) Error() string { return string(err) }

const (
	errBirthDateFormat birthDateError = "Дата рождения должна быть в формате ГГГГ-ММ-ДД."
	errBirthDateFuture birthDateError = "Дата рождения не может быть в будущем."
	errBirthDateTooOld birthDateError = "Дата рождения не может быть раньше 1900-01-01."
)
