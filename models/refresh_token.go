package models

import (
	"time"
)

type RefreshToken struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Token     string     `json:"token" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	Active    bool       `json:"active" gorm:"not null;default:true"`
	RevokedAt *time.Time `json:"revoked_at"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// IsValid reports whether the token can still be exchanged.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return t.Active && now.Before(t.ExpiresAt) && t.RevokedAt == nil
}
