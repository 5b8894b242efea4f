package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Question types. Options apply only to the choice types, MaxRating only to
// rating questions; Normalize clears whichever does not apply.
const (
	QuestionTypeText           = "text"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeCheckbox       = "checkbox"
	QuestionTypeRating         = "rating"
	QuestionTypeDate           = "date"
)

type Question struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SurveyID  uint           `json:"survey_id" gorm:"not null;index"`
	Text      string         `json:"text" gorm:"not null"`
	Type      string         `json:"type" gorm:"not null;default:'text'"`
	Required  bool           `json:"required" gorm:"not null;default:false"`
	Options   StringList     `json:"options,omitempty" gorm:"type:text"`
	MaxRating *int           `json:"max_rating,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// HasOptions reports whether the question type carries a list of choices.
func (q *Question) HasOptions() bool {
	return q.Type == QuestionTypeMultipleChoice || q.Type == QuestionTypeCheckbox
}

// Normalize clears the fields that do not apply to the question's type.
func (q *Question) Normalize() {
	if !q.HasOptions() {
		q.Options = nil
	}
	if q.Type != QuestionTypeRating {
		q.MaxRating = nil
	}
}

// StringList stores a list of strings as a JSON array in a single text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}
