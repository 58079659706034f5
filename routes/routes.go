package routes

import (
	"github.com/AdityaCodess/FinStock-AI/controllers"
	"github.com/AdityaCodess/FinStock-AI/middleware"
	"github.com/AdityaCodess/FinStock-AI/services/artifacts"
	"github.com/AdityaCodess/FinStock-AI/services/datafetcher"
	"github.com/AdityaCodess/FinStock-AI/services/livefeed"
	"github.com/AdityaCodess/FinStock-AI/services/news"
	"github.com/AdityaCodess/FinStock-AI/services/prediction"
	"github.com/AdityaCodess/FinStock-AI/services/trainer"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services groups the long-lived service instances shared by handlers.
type Services struct {
	Fetcher   *datafetcher.DataFetcher
	Predictor *prediction.Predictor
	News      *news.Service
	Store     *artifacts.Store
	Trainer   *trainer.Trainer
	Hub       *livefeed.Hub
}

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, svc Services) {
	analysisController := controllers.NewAnalysisController(db, svc.Fetcher, svc.Predictor, svc.News)
	adminController := controllers.NewAdminController(db, svc.Trainer, svc.Store)

	api := router.Group("/api")
	{
		api.GET("/search", analysisController.Search)
		api.GET("/analyze", analysisController.Analyze)

		admin := api.Group("/admin")
		{
			admin.POST("/login", middleware.LoginRateLimitMiddleware(), adminController.Login)

			protected := admin.Group("")
			protected.Use(middleware.JWTAuthMiddleware())
			{
				protected.POST("/train", adminController.Train)
				protected.GET("/artifacts/:symbol", adminController.Artifacts)
			}
		}
	}

	// Live intraday feed
	router.GET("/ws/intraday", func(c *gin.Context) {
		svc.Hub.HandleWebSocket(c.Writer, c.Request)
	})
}
