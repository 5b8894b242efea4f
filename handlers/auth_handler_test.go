package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thegovindkrishna/survey-app-sub000/models"
	"github.com/thegovindkrishna/survey-app-sub000/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	auth := services.NewAuthService(db, services.AuthConfig{
		JWTSecret:          "test-secret",
		AccessTokenMinutes: 15,
		RefreshTokenDays:   7,
	})
	handler := NewAuthHandler(auth)

	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterStatusCodes(t *testing.T) {
	router := newAuthRouter(t)

	if w := postJSON(router, "/api/auth/register", `{"email":"a@example.com","password":"secret"}`); w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a fresh registration, got %d: %s", w.Code, w.Body)
	}

	// Only a duplicate email is a conflict.
	if w := postJSON(router, "/api/auth/register", `{"email":"a@example.com","password":"other"}`); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate email, got %d: %s", w.Code, w.Body)
	}

	// Bad input is a plain bad request.
	if w := postJSON(router, "/api/auth/register", `{"email":"b@example.com","password":"secret","role":"SuperAdmin"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown role, got %d: %s", w.Code, w.Body)
	}
	if w := postJSON(router, "/api/auth/register", `{"email":"","password":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank credentials, got %d: %s", w.Code, w.Body)
	}
}
