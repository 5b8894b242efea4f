package main

import (
	"fmt"
	"log"
	"time"

	"github.com/thegovindkrishna/survey-app-sub000/config"
	"github.com/thegovindkrishna/survey-app-sub000/handlers"
	"github.com/thegovindkrishna/survey-app-sub000/middleware"
	"github.com/thegovindkrishna/survey-app-sub000/models"
	"github.com/thegovindkrishna/survey-app-sub000/routes"
	"github.com/thegovindkrishna/survey-app-sub000/services"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	printStartUpBanner()

	// Load configuration
	cfg := config.Load()
	config.SetupLogging(cfg)

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Survey{},
		&models.Question{},
		&models.SurveyResponse{},
		&models.QuestionResponse{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, services.AuthConfig{
		JWTSecret:          cfg.JWTSecret,
		Issuer:             cfg.JWTIssuer,
		Audience:           cfg.JWTAudience,
		AccessTokenMinutes: cfg.AccessTokenMinutes,
		RefreshTokenDays:   cfg.RefreshTokenDays,
	})
	surveyService := services.NewSurveyService(db)
	resultsService := services.NewResultsService(db, redisClient, surveyService, cfg.ShareLinkBaseURL)
	userService := services.NewUserService(db)

	// Initialize the live results hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	surveyHandler := handlers.NewSurveyHandler(surveyService)
	responseHandler := handlers.NewResponseHandler(surveyService, resultsService, hub)
	resultsHandler := handlers.NewResultsHandler(resultsService)
	userHandler := handlers.NewUserHandler(userService)

	// Setup Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimit(100, 180))

	// Setup routes
	routes.SetupRoutes(router, authHandler, surveyHandler, responseHandler, resultsHandler, userHandler, hub, surveyService, cfg.JWTSecret)

	// Start server
	addr := cfg.BindAddress + ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func printStartUpBanner() {
	banner := figure.NewFigure("SURVEY APP", "", true)
	banner.Print()
	fmt.Println("======================================================")
}
