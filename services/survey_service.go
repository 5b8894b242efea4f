package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/thegovindkrishna/survey-app-sub000/models"

	"gorm.io/gorm"
)

type SurveyService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSurveyService(db *gorm.DB) *SurveyService {
	return &SurveyService{db: db, now: time.Now}
}

type CreateSurveyRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description"`
	StartDate   time.Time               `json:"start_date"`
	EndDate     time.Time               `json:"end_date"`
	Questions   []CreateQuestionRequest `json:"questions"`
}

type CreateQuestionRequest struct {
	Text      string   `json:"text" binding:"required"`
	Type      string   `json:"type"`
	Required  bool     `json:"required"`
	Options   []string `json:"options"`
	MaxRating *int     `json:"max_rating"`
}

type SubmitResponseRequest struct {
	Answers []AnswerRequest `json:"answers" binding:"required"`
}

type AnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

type PaginationParams struct {
	PageNumber int
	PageSize   int
	SortBy     string
	SortOrder  string
}

type SurveyPage struct {
	Items      []models.Survey `json:"items"`
	TotalCount int64           `json:"total_count"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
}

// sortColumns whitelists the fields a paged listing may sort on.
var sortColumns = map[string]string{
	"title":      "title",
	"start_date": "start_date",
	"end_date":   "end_date",
	"created_at": "created_at",
}

func (s *SurveyService) Create(req *CreateSurveyRequest, creatorEmail string) (*models.Survey, error) {
	survey := models.Survey{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   creatorEmail,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&survey).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, qReq := range req.Questions {
		question := buildQuestion(survey.ID, &qReq)
		if err := tx.Create(question).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetByID(survey.ID)
}

func (s *SurveyService) GetAll() ([]models.Survey, error) {
	var surveys []models.Survey
	err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Order("created_at DESC").
		Find(&surveys).Error
	return surveys, err
}

func (s *SurveyService) GetAllPaged(p PaginationParams) (*SurveyPage, error) {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}

	column, ok := sortColumns[strings.ToLower(p.SortBy)]
	if !ok {
		column = "created_at"
	}
	// Newest-first unless the caller explicitly asks for ascending order.
	direction := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		direction = "ASC"
	}

	var total int64
	if err := s.db.Model(&models.Survey{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var surveys []models.Survey
	err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Order(column + " " + direction).
		Offset((p.PageNumber - 1) * p.PageSize).
		Limit(p.PageSize).
		Find(&surveys).Error
	if err != nil {
		return nil, err
	}

	return &SurveyPage{
		Items:      surveys,
		TotalCount: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (s *SurveyService) GetByID(id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		First(&survey, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &survey, nil
}

// Update overwrites the survey's properties and replaces the entire question
// list with the request's questions. Questions absent from the request are
// discarded even if responses reference them.
func (s *SurveyService) Update(id uint, req *CreateSurveyRequest) (*models.Survey, error) {
	survey, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	survey.Title = req.Title
	survey.Description = req.Description
	survey.StartDate = req.StartDate
	survey.EndDate = req.EndDate

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Omit("Questions").Save(survey).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Where("survey_id = ?", id).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, qReq := range req.Questions {
		question := buildQuestion(id, &qReq)
		if err := tx.Create(question).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

// UpdateProperties updates only the survey's own columns, leaving the
// question list untouched. Used by the share-link generator.
func (s *SurveyService) UpdateProperties(id uint, survey *models.Survey) error {
	res := s.db.Model(&models.Survey{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":       survey.Title,
		"description": survey.Description,
		"start_date":  survey.StartDate,
		"end_date":    survey.EndDate,
		"share_link":  survey.ShareLink,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SurveyService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("survey_id = ?", id).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Survey{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *SurveyService) AddQuestion(surveyID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if _, err := s.GetByID(surveyID); err != nil {
		return nil, err
	}

	question := buildQuestion(surveyID, req)
	if err := s.db.Create(question).Error; err != nil {
		return nil, err
	}
	return question, nil
}

func (s *SurveyService) UpdateQuestion(surveyID, questionID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if _, err := s.GetByID(surveyID); err != nil {
		return nil, err
	}

	var question models.Question
	if err := s.db.Where("id = ? AND survey_id = ?", questionID, surveyID).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	question.Text = req.Text
	question.Type = questionType(req.Type)
	question.Required = req.Required
	question.Options = req.Options
	question.MaxRating = req.MaxRating
	question.Normalize()

	if err := s.db.Save(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *SurveyService) DeleteQuestion(surveyID, questionID uint) error {
	if _, err := s.GetByID(surveyID); err != nil {
		return err
	}

	res := s.db.Where("id = ? AND survey_id = ?", questionID, surveyID).Delete(&models.Question{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitResponse validates required-question coverage and persists the
// response with its answers. The survey must exist and every question
// flagged required must appear among the answered question ids.
func (s *SurveyService) SubmitResponse(surveyID uint, respondentEmail string, req *SubmitResponseRequest) (*models.SurveyResponse, error) {
	survey, err := s.GetByID(surveyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewValidationError("survey %d does not exist", surveyID)
		}
		return nil, err
	}

	answered := make(map[uint]bool, len(req.Answers))
	for _, a := range req.Answers {
		answered[a.QuestionID] = true
	}

	var missing []string
	for _, q := range survey.Questions {
		if q.Required && !answered[q.ID] {
			missing = append(missing, q.Text)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, NewValidationError("missing answers for required questions: %s", strings.Join(missing, ", "))
	}

	response := models.SurveyResponse{
		SurveyID:        surveyID,
		RespondentEmail: respondentEmail,
		SubmittedAt:     s.now(),
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&response).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, a := range req.Answers {
		answer := models.QuestionResponse{
			SurveyResponseID: response.ID,
			QuestionID:       a.QuestionID,
			Answer:           a.Answer,
		}
		if err := tx.Create(&answer).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.loadResponse(response.ID)
}

func (s *SurveyService) GetResponses(surveyID uint) ([]models.SurveyResponse, error) {
	if _, err := s.GetByID(surveyID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewValidationError("survey %d does not exist", surveyID)
		}
		return nil, err
	}

	var responses []models.SurveyResponse
	err := s.db.Where("survey_id = ?", surveyID).
		Preload("Answers").
		Order("submitted_at").
		Find(&responses).Error
	return responses, err
}

// GetResponse returns nil without an error for a response that is simply not
// found, which is distinct from the survey itself being absent.
func (s *SurveyService) GetResponse(surveyID, responseID uint) (*models.SurveyResponse, error) {
	if _, err := s.GetByID(surveyID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewValidationError("survey %d does not exist", surveyID)
		}
		return nil, err
	}

	var response models.SurveyResponse
	err := s.db.Where("id = ? AND survey_id = ?", responseID, surveyID).
		Preload("Answers").
		First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

// GetActive returns surveys whose window contains the current time.
// GetActiveByID returns the survey only while its response window is open,
// matching the filter GetActive applies to the listing.
func (s *SurveyService) GetActiveByID(id uint) (*models.Survey, error) {
	survey, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive(s.now()) {
		return nil, ErrNotFound
	}
	return survey, nil
}

func (s *SurveyService) GetActive() ([]models.Survey, error) {
	now := s.now()
	var surveys []models.Survey
	err := s.db.
		Where("start_date <= ? AND end_date >= ?", now, now).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Order("end_date").
		Find(&surveys).Error
	return surveys, err
}

func (s *SurveyService) GetResponsesByEmail(email string) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	err := s.db.Where("respondent_email = ?", email).
		Preload("Answers").
		Order("submitted_at DESC").
		Find(&responses).Error
	return responses, err
}

func (s *SurveyService) loadResponse(id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := s.db.Preload("Answers").First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func buildQuestion(surveyID uint, req *CreateQuestionRequest) *models.Question {
	question := &models.Question{
		SurveyID:  surveyID,
		Text:      req.Text,
		Type:      questionType(req.Type),
		Required:  req.Required,
		Options:   req.Options,
		MaxRating: req.MaxRating,
	}
	question.Normalize()
	return question
}

func questionType(t string) string {
	if t == "" {
		return models.QuestionTypeText
	}
	return t
}
