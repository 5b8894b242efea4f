package handlers

import (
	"net/http"

	"github.com/thegovindkrishna/survey-app-sub000/services"

	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	surveyService  *services.SurveyService
	resultsService *services.ResultsService
	hub            *services.Hub
}

func NewResponseHandler(surveyService *services.SurveyService, resultsService *services.ResultsService, hub *services.Hub) *ResponseHandler {
	return &ResponseHandler{
		surveyService:  surveyService,
		resultsService: resultsService,
		hub:            hub,
	}
}

func (h *ResponseHandler) Submit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.surveyService.SubmitResponse(id, c.GetString("email"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Cached aggregates are stale as of this submission.
	h.resultsService.InvalidateCache(id)

	// Notify admin dashboards watching this survey's results feed.
	if h.hub != nil {
		h.hub.BroadcastToSurvey(id, "response_received", gin.H{
			"response_id": response.ID,
			"respondent":  response.RespondentEmail,
			"submitted":   response.SubmittedAt,
		})
	}

	c.JSON(http.StatusCreated, response)
}

func (h *ResponseHandler) GetAll(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.surveyService.GetResponses(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

func (h *ResponseHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	responseID, ok := parseIDParam(c, "responseId")
	if !ok {
		return
	}

	response, err := h.surveyService.GetResponse(id, responseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if response == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Response not found"})
		return
	}

	c.JSON(http.StatusOK, response)
}
