package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/thegovindkrishna/survey-app-sub000/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db           *gorm.DB
	jwtSecret    []byte
	issuer       string
	audience     string
	accessTTL    time.Duration
	refreshTTL   time.Duration
	allowedRoles map[string]bool
	now          func() time.Time
}

type AuthConfig struct {
	JWTSecret          string
	Issuer             string
	Audience           string
	AccessTokenMinutes int
	RefreshTokenDays   int
}

// Claims is the access-token payload shared with the auth middleware.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func NewAuthService(db *gorm.DB, cfg AuthConfig) *AuthService {
	return &AuthService{
		db:         db,
		jwtSecret:  []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  time.Duration(cfg.AccessTokenMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTokenDays) * 24 * time.Hour,
		allowedRoles: map[string]bool{
			models.RoleUser:  true,
			models.RoleAdmin: true,
		},
		now: time.Now,
	}
}

func (s *AuthService) Register(email, password, role string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return NewValidationError("email and password are required")
	}
	if role == "" {
		role = models.RoleUser
	}
	if !s.allowedRoles[role] {
		return NewValidationError("invalid role %q", role)
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	return s.db.Create(&user).Error
}

func (s *AuthService) Login(email, password string) (*TokenPair, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.GenerateTokens(&user)
}

// GenerateTokens issues a signed access token and persists a fresh refresh
// token for the user.
func (s *AuthService) GenerateTokens(user *models.User) (*TokenPair, error) {
	access, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	opaque, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	refresh := models.RefreshToken{
		UserID:    user.ID,
		Token:     opaque,
		ExpiresAt: now.Add(s.refreshTTL),
		Active:    true,
	}
	if err := s.db.Create(&refresh).Error; err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: opaque}, nil
}

// RefreshAccessToken rotates the refresh token: the old token is revoked with
// a single conditional update so two concurrent calls cannot both succeed,
// then a new pair is issued.
func (s *AuthService) RefreshAccessToken(token string) (*TokenPair, error) {
	now := s.now()
	res := s.db.Model(&models.RefreshToken{}).
		Where("token = ? AND active = ? AND revoked_at IS NULL AND expires_at > ?", token, true, now).
		Updates(map[string]interface{}{"active": false, "revoked_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidRefreshToken
	}

	var old models.RefreshToken
	if err := s.db.Where("token = ?", token).First(&old).Error; err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.First(&user, old.UserID).Error; err != nil {
		return nil, err
	}

	return s.GenerateTokens(&user)
}

// RevokeRefreshToken deactivates a still-active token. Unknown or already
// revoked tokens are a no-op.
func (s *AuthService) RevokeRefreshToken(token string) error {
	now := s.now()
	return s.db.Model(&models.RefreshToken{}).
		Where("token = ? AND active = ?", token, true).
		Updates(map[string]interface{}{"active": false, "revoked_at": now}).Error
}

func (s *AuthService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) signAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
