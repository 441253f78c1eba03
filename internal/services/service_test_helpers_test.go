package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/zabotahq/zabota/internal/db"
	"github.com/zabotahq/zabota/internal/models"
)

func openTestRepositories(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "zabota_test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return db.NewRepositories(database)
}

func createTestUser(t *testing.T, repositories *db.Repositories, email string) models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		LastName:     "Тестова",
		FirstName:    "Анна",
		IsActive:     true,
		RoleInFamily: models.MembershipRoleDefault,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repositories.Users.Create(context.Background(), &user); err != nil {
		t.Fatalf("create test user %s: %v", email, err)
	}
	return user
}

func testTokenConfig() TokenConfig {
	return TokenConfig{
		Secret:     []byte("unit-test-secret"),
		Issuer:     "zabota-tests",
		Audience:   "zabota-app",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 90 * 24 * time.Hour,
	}
}

func testThrottle(limit int, window time.Duration) *LoginThrottle {
	return NewLoginThrottle(NewMemoryAttemptStore(), limit, window)
}
