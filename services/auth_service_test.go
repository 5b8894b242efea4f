package services

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/thegovindkrishna/survey-app-sub000/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestRegisterRejectsBlankCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"blank email", "", "secret"},
		{"blank password", "user@example.com", ""},
		{"both blank", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Register(tc.email, tc.password, "")
			if !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no users persisted, got %d", count)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.Register("user@example.com", "secret1", ""); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	// A different password does not make the duplicate acceptable, and the
	// failure is distinguishable from a malformed request.
	err := svc.Register("user@example.com", "secret2", "")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	err := svc.Register("user@example.com", "secret", "SuperAdmin")
	if !IsValidation(err) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.Register("user@example.com", "secret", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if tokens, err := svc.Login("user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) || tokens != nil {
		t.Fatalf("expected ErrInvalidCredentials and no tokens, got %v, %v", tokens, err)
	}
	if tokens, err := svc.Login("nobody@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) || tokens != nil {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v, %v", tokens, err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.Register("admin@example.com", "secret", models.RoleAdmin); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tokens, err := svc.Login("admin@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", tokens)
	}

	parsed, err := jwt.ParseWithClaims(tokens.AccessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("access token does not parse: %v", err)
	}
	var user models.User
	if err := db.Where("email = ?", "admin@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}

	claims := parsed.Claims.(*Claims)
	if claims.Email != "admin@example.com" || claims.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %d, got %d", user.ID, claims.UserID)
	}
	// The subject carries the user id, not the email.
	if want := strconv.FormatUint(uint64(user.ID), 10); claims.Subject != want {
		t.Fatalf("unexpected subject %q, want %q", claims.Subject, want)
	}

	var stored models.RefreshToken
	if err := db.Where("token = ?", tokens.RefreshToken).First(&stored).Error; err != nil {
		t.Fatalf("refresh token not persisted: %v", err)
	}
	if !stored.Active || stored.RevokedAt != nil {
		t.Fatalf("fresh refresh token should be active: %+v", stored)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.Register("user@example.com", "secret", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	first, err := svc.Login("user@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	second, err := svc.RefreshAccessToken(first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh must rotate the opaque token")
	}

	// The old token is revoked; replaying it must fail without issuing more.
	var before int64
	db.Model(&models.RefreshToken{}).Count(&before)
	if _, err := svc.RefreshAccessToken(first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken on replay, got %v", err)
	}
	var after int64
	db.Model(&models.RefreshToken{}).Count(&after)
	if before != after {
		t.Fatalf("replay must not mint tokens: %d -> %d", before, after)
	}

	// The rotated token still works.
	if _, err := svc.RefreshAccessToken(second.RefreshToken); err != nil {
		t.Fatalf("rotated token should be exchangeable: %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.Register("user@example.com", "secret", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	tokens, err := svc.Login("user@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Move the clock past the 7-day expiry.
	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	if _, err := svc.RefreshAccessToken(tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for expired token, got %v", err)
	}
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.Register("user@example.com", "secret", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	tokens, err := svc.Login("user@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.RevokeRefreshToken(tokens.RefreshToken); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, err := svc.RefreshAccessToken(tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for revoked token, got %v", err)
	}

	var stored models.RefreshToken
	if err := db.Where("token = ?", tokens.RefreshToken).First(&stored).Error; err != nil {
		t.Fatalf("token row missing: %v", err)
	}
	if stored.Active || stored.RevokedAt == nil {
		t.Fatalf("revoked token should be inactive with a revocation time: %+v", stored)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.RevokeRefreshToken("never-issued"); err != nil {
		t.Fatalf("revoking an unknown token must be a no-op, got %v", err)
	}

	if err := svc.Register("user@example.com", "secret", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	tokens, err := svc.Login("user@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.RevokeRefreshToken(tokens.RefreshToken); err != nil {
		t.Fatalf("first revoke failed: %v", err)
	}
	if err := svc.RevokeRefreshToken(tokens.RefreshToken); err != nil {
		t.Fatalf("second revoke should be a no-op, got %v", err)
	}
}

func TestRefreshTokenValidity(t *testing.T) {
	now := time.Now()
	revoked := now.Add(-time.Hour)

	cases := []struct {
		name  string
		token models.RefreshToken
		valid bool
	}{
		{"active and fresh", models.RefreshToken{Active: true, ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", models.RefreshToken{Active: true, ExpiresAt: now.Add(-time.Minute)}, false},
		{"expiring exactly now", models.RefreshToken{Active: true, ExpiresAt: now}, false},
		{"inactive", models.RefreshToken{Active: false, ExpiresAt: now.Add(time.Hour)}, false},
		{"revoked", models.RefreshToken{Active: true, ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.token.IsValid(now); got != tc.valid {
				t.Fatalf("IsValid = %v, want %v", got, tc.valid)
			}
		})
	}
}
