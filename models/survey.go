package models

import (
	"time"

	"gorm.io/gorm"
)

type Survey struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	CreatedBy   string         `json:"created_by"`
	ShareLink   string         `json:"share_link"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Questions []Question       `json:"questions,omitempty" gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE"`
	Responses []SurveyResponse `json:"-" gorm:"foreignKey:SurveyID"`
}

// IsActive reports whether the survey accepts responses at the given time.
func (s *Survey) IsActive(now time.Time) bool {
	return !now.Before(s.StartDate) && !now.After(s.EndDate)
}
