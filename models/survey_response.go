package models

import (
	"time"

	"gorm.io/gorm"
)

// SurveyResponse is one respondent's full submission. It is created once and
// never mutated afterwards.
type SurveyResponse struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	SurveyID        uint           `json:"survey_id" gorm:"not null;index"`
	RespondentEmail string         `json:"respondent_email" gorm:"not null"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Answers []QuestionResponse `json:"answers" gorm:"foreignKey:SurveyResponseID;constraint:OnDelete:CASCADE"`
}
