package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/config"
	"github.com/zabotahq/zabota/internal/db"
)

func testConfig() config.Config {
	return config.Config{
		Port:               "0",
		JWTSecret:          "api-test-secret",
		JWTIssuer:          "zabota-tests",
		JWTAudience:        "zabota-mobile",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    90 * 24 * time.Hour,
		LoginAttemptLimit:  3,
		LoginAttemptWindow: 10 * time.Minute,
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "zabota_api_test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, NewHandler(database, testConfig()))
	return app
}

// envelope mirrors the wire shape of every response; Data stays raw so each
// test decodes only the part it asserts on.
type envelope struct {
	Code        int                 `json:"code"`
	CodeTitle   string              `json:"codeTitle"`
	Description string              `json:"description"`
	RequestID   string              `json:"requestId"`
	Errors      map[string][]string `json:"errors"`
	Data        json.RawMessage     `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	var parsed envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("unmarshal envelope from %q: %v", raw, err)
		}
	}
	return response.StatusCode, parsed
}

func decodeData(t *testing.T, parsed envelope, target any) {
	t.Helper()
	if err := json.Unmarshal(parsed.Data, target); err != nil {
		t.Fatalf("decode data %q: %v", parsed.Data, err)
	}
}

// tokenPairData mirrors the authData payload of registration, login and
// refresh responses.
type tokenPairData struct {
	User struct {
		ID           uint   `json:"id"`
		Email        string `json:"email"`
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		Role         string `json:"role"`
		RoleInFamily string `json:"roleInFamily"`
	} `json:"user"`
	Token                 string    `json:"token"`
	TokenExpiresAt        time.Time `json:"tokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

func registerTestUser(t *testing.T, app *fiber.App, email string) tokenPairData {
	t.Helper()

	status, parsed := doJSON(t, app, http.MethodPost, "/Auth/Registration", "", fiber.Map{
		"lastName":  "Смирнова",
		"firstName": "Алиса",
		"email":     email,
		"password":  "Password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, envelope %+v", email, status, parsed)
	}

	var pair tokenPairData
	decodeData(t, parsed, &pair)
	if pair.Token == "" || pair.RefreshToken == "" {
		t.Fatalf("register %s: incomplete token pair %+v", email, pair)
	}
	return pair
}

type createdFamilyData struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	InviteCode   string    `json:"inviteCode"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
	Founder      struct {
		UserID       uint   `json:"userId"`
		RoleInFamily string `json:"roleInFamily"`
		IsAdmin      bool   `json:"isAdmin"`
	} `json:"founder"`
}

func createTestFamily(t *testing.T, app *fiber.App, token string, name string) createdFamilyData {
	t.Helper()

	status, parsed := doJSON(t, app, http.MethodPost, "/families", token, fiber.Map{"name": name})
	if status != http.StatusCreated {
		t.Fatalf("create family %s: status %d, envelope %+v", name, status, parsed)
	}

	var family createdFamilyData
	decodeData(t, parsed, &family)
	return family
}

func joinTestFamily(t *testing.T, app *fiber.App, token string, inviteCode string, userID uint) {
	t.Helper()

	status, parsed := doJSON(t, app, http.MethodPost, "/families/join-by-code", token, fiber.Map{
		"inviteCode": inviteCode,
		"userId":     userID,
	})
	if status != http.StatusOK {
		t.Fatalf("join family: status %d, envelope %+v", status, parsed)
	}
}
