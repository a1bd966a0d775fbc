package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pneumoscan-server/internal/classifier"
	"pneumoscan-server/internal/config"
	"pneumoscan-server/internal/handlers"
	"pneumoscan-server/internal/middleware"
	"pneumoscan-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, clf classifier.Classifier, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	recordHandler := handlers.NewRecordHandler(db, clf, cfg)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Diagnostic record routes
		recordRoutes := private.Group("/records")
		{
			// Patients upload scans; a successful classification creates the record
			recordRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), recordHandler.UploadAndClassify)

			// Patients see their own timeline, doctors see all records
			recordRoutes.GET("", recordHandler.ListRecords)
			recordRoutes.GET("/:id", recordHandler.GetRecord)

			// Only doctors sign off on a pending record
			recordRoutes.POST("/:id/review", middleware.RoleAuthMiddleware(models.RoleDoctor), recordHandler.SubmitReview)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
