package handlers

import (
	"fmt"
	"net/http"

	"github.com/thegovindkrishna/survey-app-sub000/services"

	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	resultsService *services.ResultsService
}

func NewResultsHandler(resultsService *services.ResultsService) *ResultsHandler {
	return &ResultsHandler{
		resultsService: resultsService,
	}
}

func (h *ResultsHandler) GetResults(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	results, err := h.resultsService.GetSurveyResults(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *ResultsHandler) ExportCSV(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	data, err := h.resultsService.ExportCSV(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("survey_%d_responses.csv", id)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *ResultsHandler) ExportPDF(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	data, err := h.resultsService.ExportPDF(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("survey_%d_responses.pdf", id)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *ResultsHandler) GetShareLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	link, err := h.resultsService.GenerateShareLink(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"share_link": link})
}
