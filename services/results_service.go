package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/thegovindkrishna/survey-app-sub000/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const resultsCacheTTL = time.Minute

type ResultsService struct {
	db      *gorm.DB
	redis   *redis.Client // optional; caching is skipped when nil
	surveys *SurveyService
	baseURL string
}

func NewResultsService(db *gorm.DB, redisClient *redis.Client, surveys *SurveyService, baseURL string) *ResultsService {
	return &ResultsService{
		db:      db,
		redis:   redisClient,
		surveys: surveys,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type SurveyResults struct {
	SurveyID       uint             `json:"survey_id"`
	Title          string           `json:"title"`
	TotalResponses int              `json:"total_responses"`
	Questions      []QuestionResult `json:"questions"`
}

// QuestionResult carries either an answer histogram or an average rating,
// depending on the question type. The other field stays at its zero value.
type QuestionResult struct {
	QuestionID    uint           `json:"question_id"`
	Text          string         `json:"text"`
	Type          string         `json:"type"`
	Counts        map[string]int `json:"counts,omitempty"`
	AverageRating float64        `json:"average_rating,omitempty"`
}

// GetSurveyResults aggregates all responses for the survey. Rating questions
// with a configured maximum are averaged; every other type gets a count per
// distinct answer string.
func (s *ResultsService) GetSurveyResults(surveyID uint) (*SurveyResults, error) {
	if cached := s.cachedResults(surveyID); cached != nil {
		return cached, nil
	}

	survey, err := s.surveys.GetByID(surveyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.loadResponses(surveyID)
	if err != nil {
		return nil, err
	}

	results := &SurveyResults{
		SurveyID:       survey.ID,
		Title:          survey.Title,
		TotalResponses: len(responses),
	}

	for _, q := range survey.Questions {
		result := QuestionResult{
			QuestionID: q.ID,
			Text:       q.Text,
			Type:       q.Type,
		}

		if q.Type == models.QuestionTypeRating && q.MaxRating != nil {
			result.AverageRating = averageRating(q.ID, responses)
		} else {
			result.Counts = answerCounts(q.ID, responses)
		}

		results.Questions = append(results.Questions, result)
	}

	s.storeResults(surveyID, results)
	return results, nil
}

// InvalidateCache drops the cached aggregate after a new submission.
func (s *ResultsService) InvalidateCache(surveyID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(context.Background(), resultsCacheKey(surveyID)).Err(); err != nil {
		log.Printf("Failed to invalidate results cache for survey %d: %v", surveyID, err)
	}
}

// ExportCSV renders one header row plus one row per response, with question
// columns in survey order and blank cells for unanswered questions.
func (s *ResultsService) ExportCSV(surveyID uint) ([]byte, error) {
	survey, err := s.surveys.GetByID(surveyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.loadResponses(surveyID)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"Respondent Email", "Submission Date"}
	for _, q := range survey.Questions {
		header = append(header, fmt.Sprintf("Q%d: %s", q.ID, q.Text))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, resp := range responses {
		byQuestion := answersByQuestion(&resp)
		row := []string{resp.RespondentEmail, resp.SubmittedAt.Format(time.RFC3339)}
		for _, q := range survey.Questions {
			row = append(row, byQuestion[q.ID])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportPDF renders a centered title followed by each response's respondent
// header and its question/answer pairs. Only answered questions appear.
func (s *ResultsService) ExportPDF(surveyID uint) ([]byte, error) {
	survey, err := s.surveys.GetByID(surveyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.loadResponses(surveyID)
	if err != nil {
		return nil, err
	}

	questionText := make(map[uint]string, len(survey.Questions))
	for _, q := range survey.Questions {
		questionText[q.ID] = q.Text
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, survey.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, resp := range responses {
		pdf.SetFont("Arial", "B", 11)
		header := fmt.Sprintf("%s - %s", resp.RespondentEmail, resp.SubmittedAt.Format("2006-01-02 15:04"))
		pdf.CellFormat(0, 8, header, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, a := range resp.Answers {
			text, ok := questionText[a.QuestionID]
			if !ok {
				continue
			}
			pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", text, a.Answer), "", "L", false)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateShareLink computes the survey's public URL, persists it on the
// survey and returns it. The value is deterministic and recomputed on every
// call rather than cached.
func (s *ResultsService) GenerateShareLink(surveyID uint) (string, error) {
	survey, err := s.surveys.GetByID(surveyID)
	if err != nil {
		return "", err
	}

	survey.ShareLink = fmt.Sprintf("%s/survey/%d", s.baseURL, surveyID)
	if err := s.surveys.UpdateProperties(surveyID, survey); err != nil {
		return "", err
	}
	return survey.ShareLink, nil
}

func (s *ResultsService) loadResponses(surveyID uint) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	err := s.db.Where("survey_id = ?", surveyID).
		Preload("Answers").
		Order("submitted_at").
		Find(&responses).Error
	return responses, err
}

func (s *ResultsService) cachedResults(surveyID uint) *SurveyResults {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(context.Background(), resultsCacheKey(surveyID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error reading results cache for survey %d: %v", surveyID, err)
		}
		return nil
	}

	var results SurveyResults
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		log.Printf("Failed to unmarshal cached results for survey %d: %v", surveyID, err)
		return nil
	}
	return &results
}

func (s *ResultsService) storeResults(surveyID uint, results *SurveyResults) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		log.Printf("Failed to marshal results for survey %d: %v", surveyID, err)
		return
	}
	if err := s.redis.Set(context.Background(), resultsCacheKey(surveyID), data, resultsCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache results for survey %d: %v", surveyID, err)
	}
}

func resultsCacheKey(surveyID uint) string {
	return fmt.Sprintf("results:%d", surveyID)
}

// averageRating averages the numeric answers for one question. Answers that
// do not parse as numbers are logged and skipped.
func averageRating(questionID uint, responses []models.SurveyResponse) float64 {
	sum := 0.0
	count := 0
	for _, resp := range responses {
		for _, a := range resp.Answers {
			if a.QuestionID != questionID {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(a.Answer), 64)
			if err != nil {
				log.Printf("Skipping malformed rating answer %q for question %d (response %d)", a.Answer, questionID, resp.ID)
				continue
			}
			sum += value
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func answerCounts(questionID uint, responses []models.SurveyResponse) map[string]int {
	counts := make(map[string]int)
	for _, resp := range responses {
		for _, a := range resp.Answers {
			if a.QuestionID == questionID {
				counts[a.Answer]++
			}
		}
	}
	return counts
}

func answersByQuestion(resp *models.SurveyResponse) map[uint]string {
	byQuestion := make(map[uint]string, len(resp.Answers))
	for _, a := range resp.Answers {
		byQuestion[a.QuestionID] = a.Answer
	}
	return byQuestion
}
