package api

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"esk/training-app/internal/config"
	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Invites  service.InviteService
	Training service.TrainingService
	Exercise service.ExerciseService
	Upload   service.UploadService
}

// Assets are the page templates and static files served by the router.
type Assets struct {
	Templates *template.Template
	Static    fs.FS
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg config.Config, logger *slog.Logger, svc Services, assets Assets) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(TraceIDMiddleware())
	router.Use(RequestLogger(logger))
	router.Use(SessionCookies(cfg.App, cfg.Session))

	SetupRoutes(router, cfg, logger, svc, assets)
	return router
}

func SetupRoutes(router *gin.Engine, cfg config.Config, logger *slog.Logger, svc Services, assets Assets) {
	authHandler := NewAuthHandler(svc.Auth, logger)
	adminHandler := NewAdminHandler(svc.Users, svc.Invites, logger)
	trainingHandler := NewTrainingHandler(svc.Training, logger)
	exerciseHandler := NewExerciseHandler(svc.Exercise, logger)
	uploadHandler := NewUploadHandler(svc.Upload, cfg.Upload.MaxBytes, logger)

	requireAuth := Guard(svc.Auth, logger)
	requireAdmin := Guard(svc.Auth, logger, service.AdminOnly)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// --- Pages ---
	if assets.Templates != nil {
		pageHandler := NewPageHandler(svc.Auth)
		router.SetHTMLTemplate(assets.Templates)
		router.GET("/login", pageHandler.Login)
		router.GET("/register", pageHandler.Register)
		router.GET("/", requireAuth, pageHandler.Calendar)
		router.GET("/admin", requireAdmin, pageHandler.Admin)
	}
	if assets.Static != nil {
		router.StaticFS("/static", http.FS(assets.Static))
	}

	// Uploaded media is public by path.
	router.GET("/uploads/*filepath", uploadHandler.Serve)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", requireAuth, authHandler.Me)
		}

		// --- Training Routes ---
		trainingGroup := api.Group("/trainings")
		{
			trainingGroup.GET("", requireAuth, trainingHandler.ListTrainings)
			trainingGroup.GET("/:id", requireAuth, trainingHandler.GetTraining)
			trainingGroup.POST("", requireAdmin, trainingHandler.CreateTraining)
			trainingGroup.PUT("/:id", requireAdmin, trainingHandler.UpdateTraining)
			trainingGroup.DELETE("/:id", requireAdmin, trainingHandler.DeleteTraining)
		}

		// --- Exercise Routes ---
		exerciseGroup := api.Group("/exercises")
		{
			exerciseGroup.GET("", requireAuth, exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", requireAuth, exerciseHandler.GetExercise)
			exerciseGroup.POST("", requireAdmin, exerciseHandler.CreateExercise)
			exerciseGroup.PUT("/:id", requireAdmin, exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", requireAdmin, exerciseHandler.DeleteExercise)
		}

		// --- Admin Routes ---
		admin := api.Group("")
		admin.Use(requireAdmin)
		{
			admin.GET("/invites", adminHandler.ListInvites)
			admin.POST("/invites", adminHandler.CreateInvite)
			admin.DELETE("/invites/:id", adminHandler.DeleteInvite)

			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/role", adminHandler.SetRole)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)

			admin.POST("/upload", uploadHandler.Upload)
		}
	}
}
