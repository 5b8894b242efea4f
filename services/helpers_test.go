package services

import (
	"fmt"
	"testing"

	"github.com/thegovindkrishna/survey-app-sub000/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps all pooled connections on the same
	// in-memory store while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Survey{},
		&models.Question{},
		&models.SurveyResponse{},
		&models.QuestionResponse{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, AuthConfig{
		JWTSecret:          "test-secret",
		Issuer:             "survey-app-test",
		Audience:           "survey-app-test-clients",
		AccessTokenMinutes: 15,
		RefreshTokenDays:   7,
	})
}

func intPtr(n int) *int {
	return &n
}
