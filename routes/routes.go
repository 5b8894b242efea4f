package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/thegovindkrishna/survey-app-sub000/handlers"
	"github.com/thegovindkrishna/survey-app-sub000/middleware"
	"github.com/thegovindkrishna/survey-app-sub000/models"
	"github.com/thegovindkrishna/survey-app-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the HTTP layer
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	surveyHandler *handlers.SurveyHandler,
	responseHandler *handlers.ResponseHandler,
	resultsHandler *handlers.ResultsHandler,
	userHandler *handlers.UserHandler,
	hub *services.Hub,
	surveyService *services.SurveyService,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/user", authHandler.GetCurrentUser)

			// Respondent-facing routes
			user := protected.Group("/user")
			{
				user.GET("/surveys", surveyHandler.GetActive)
				user.GET("/surveys/:id", surveyHandler.GetActiveByID)
				user.GET("/responses", surveyHandler.GetMyResponses)
			}

			surveys := protected.Group("/surveys")
			{
				// Any authenticated user may submit a response.
				surveys.POST("/:id/responses", responseHandler.Submit)

				// Everything else on a survey is admin territory.
				admin := surveys.Group("", middleware.RequireRole(models.RoleAdmin))
				{
					admin.GET("", surveyHandler.GetAll)
					admin.POST("", surveyHandler.Create)
					admin.GET("/:id", surveyHandler.GetByID)
					admin.PUT("/:id", surveyHandler.Update)
					admin.DELETE("/:id", surveyHandler.Delete)

					admin.POST("/:id/questions", surveyHandler.AddQuestion)
					admin.PUT("/:id/questions/:questionId", surveyHandler.UpdateQuestion)
					admin.DELETE("/:id/questions/:questionId", surveyHandler.DeleteQuestion)

					admin.GET("/:id/responses", responseHandler.GetAll)
					admin.GET("/:id/responses/:responseId", responseHandler.GetByID)

					admin.GET("/:id/results", resultsHandler.GetResults)
					admin.GET("/:id/export/csv", resultsHandler.ExportCSV)
					admin.GET("/:id/export/pdf", resultsHandler.ExportPDF)
					admin.GET("/:id/share-link", resultsHandler.GetShareLink)
				}
			}

			// User administration
			adminUsers := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
			{
				adminUsers.GET("/users", userHandler.GetAll)
				adminUsers.POST("/users/:id/promote", userHandler.Promote)
				adminUsers.DELETE("/users/:id", userHandler.Delete)
			}
		}
	}

	// Live results feed for admin dashboards. Browsers cannot set headers on
	// websocket requests, so the auth middleware also accepts ?token=.
	router.GET("/ws/surveys/:id/results",
		middleware.AuthMiddleware(jwtSecret),
		middleware.RequireRole(models.RoleAdmin),
		func(c *gin.Context) {
			surveyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid survey ID"})
				return
			}

			if _, err := surveyService.GetByID(uint(surveyID)); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Survey not found"})
				return
			}

			conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			if err != nil {
				log.Printf("WebSocket upgrade failed for survey %d: %v", surveyID, err)
				return
			}

			hub.RegisterClient(conn, uint(surveyID), c.GetString("email"))
		})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
