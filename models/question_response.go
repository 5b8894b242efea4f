package models

import (
	"time"
)

// QuestionResponse holds the raw string answer to one question. Ratings are
// stored as strings and parsed during aggregation.
type QuestionResponse struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	SurveyResponseID uint      `json:"survey_response_id" gorm:"not null;index"`
	QuestionID       uint      `json:"question_id" gorm:"not null"`
	Answer           string    `json:"answer"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
