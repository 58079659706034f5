package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/AdityaCodess/FinStock-AI/config"
	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/AdityaCodess/FinStock-AI/routes"
	"github.com/AdityaCodess/FinStock-AI/scheduler"
	"github.com/AdityaCodess/FinStock-AI/services/artifacts"
	"github.com/AdityaCodess/FinStock-AI/services/datafetcher"
	"github.com/AdityaCodess/FinStock-AI/services/livefeed"
	"github.com/AdityaCodess/FinStock-AI/services/news"
	"github.com/AdityaCodess/FinStock-AI/services/prediction"
	"github.com/AdityaCodess/FinStock-AI/services/trainer"

	"github.com/gin-gonic/gin"
)

// dbInitialized tracks whether the database has been successfully
// initialized. Guarded by dbInitMutex so the /ready endpoint can check
// status while initialization runs in the background.
var dbInitialized bool
var dbInitMutex sync.RWMutex

// long-lived components referenced at shutdown
var (
	shutdownMutex sync.Mutex
	jobScheduler  *scheduler.Scheduler
	liveHub       *livefeed.Hub
)

func main() {
	log.Println("==============================================")
	log.Println("  FinStock AI Backend - Starting...")
	log.Println("==============================================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Config load issue: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middlewares
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger())

	// Setup health check endpoints FIRST so the platform can detect the
	// service is up. Database is initialized in background.
	setupHealthEndpoints(router)

	// Create HTTP server with timeouts suited for container platforms
	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	// Start server IMMEDIATELY so the platform knows we're listening
	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		log.Println("==============================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Initialize database and setup routes in background
	go func() {
		// Initialize database connection
		db, err := config.InitDB()
		if err != nil {
			log.Printf("ERROR: Database connection failed: %v", err)
			log.Println("Service will continue in limited mode (health check only)")
			return
		}

		// Run database migrations
		log.Println("Running database migrations...")
		if err := runMigrations(); err != nil {
			log.Printf("ERROR: Migration failed: %v", err)
		} else {
			log.Println("Database migrations completed successfully")
		}

		// Seed the symbol directory and default admin user
		if err := models.SeedDefaultStocks(db); err != nil {
			log.Printf("Warning: Could not seed symbol directory: %v", err)
		}
		if err := models.SeedDefaultAdminUser(db); err != nil {
			log.Printf("Warning: Could not seed admin user: %v", err)
		}

		// Initialize the artifact store
		if err := artifacts.InitStore(cfg.ArtifactDBPath); err != nil {
			log.Printf("ERROR: Artifact store init failed: %v", err)
		} else if cfg.MongoDBURI != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := artifacts.GlobalStore.AttachMongo(ctx, cfg.MongoDBURI); err != nil {
				log.Printf("MongoDB mirror not attached: %v", err)
			}
			cancel()
		}

		// Build long-lived services
		fetcher := datafetcher.NewDataFetcher(db)
		predictor := prediction.NewPredictor(artifacts.GlobalStore)
		newsService := news.NewService(news.LoadFeedConfig(cfg.FeedsFile))
		hub := livefeed.NewHub(predictor)
		modelTrainer := trainer.NewTrainer(fetcher, artifacts.GlobalStore, db)

		// Mark database as ready
		dbInitMutex.Lock()
		dbInitialized = true
		dbInitMutex.Unlock()

		// Setup all API routes
		routes.SetupRoutes(router, db, routes.Services{
			Fetcher:   fetcher,
			Predictor: predictor,
			News:      newsService,
			Store:     artifacts.GlobalStore,
			Trainer:   modelTrainer,
			Hub:       hub,
		})

		// Start background scheduler
		sched := scheduler.NewScheduler(db, modelTrainer)
		go sched.Start()

		shutdownMutex.Lock()
		jobScheduler = sched
		liveHub = hub
		shutdownMutex.Unlock()

		log.Println("Application fully initialized with database")
	}()

	// Graceful shutdown
	gracefulShutdown(server)
}

// runMigrations runs all database migrations
func runMigrations() error {
	db := config.DB

	if err := models.MigrateStockModels(db); err != nil {
		return err
	}

	if err := models.MigrateAdminModels(db); err != nil {
		return err
	}

	return nil
}

// setupHealthEndpoints sets up health check endpoints
func setupHealthEndpoints(router *gin.Engine) {
	// Root endpoint
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "FinStock AI Backend",
			"version": "1.0.0",
		})
	})

	// Liveness probe - always returns OK if server is running
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Readiness probe - checks if service is ready to receive traffic
	router.GET("/ready", func(c *gin.Context) {
		dbInitMutex.RLock()
		isDBReady := dbInitialized
		dbInitMutex.RUnlock()

		if !isDBReady {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database not connected",
			})
			return
		}

		// Check database connection
		sqlDB, err := config.DB.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database connection error",
			})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database ping failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	})

	// Startup probe - can be used for initial health check
	router.GET("/startup", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "started",
		})
	})
}

// corsMiddleware returns a CORS middleware handler
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger returns a request logging middleware
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks to reduce noise
		path := c.Request.URL.Path
		if path == "/health" || path == "/ready" || path == "/startup" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Only log errors or slow requests
		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.Printf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}

// gracefulShutdown handles graceful shutdown of the server
func gracefulShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	// Stop background components first
	shutdownMutex.Lock()
	if jobScheduler != nil {
		jobScheduler.Stop()
	}
	if liveHub != nil {
		liveHub.Shutdown()
	}
	shutdownMutex.Unlock()

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Close the artifact store
	if artifacts.GlobalStore != nil {
		if err := artifacts.GlobalStore.Close(); err != nil {
			log.Printf("Artifact store close error: %v", err)
		}
	}

	// Close database connection
	if config.DB != nil {
		sqlDB, err := config.DB.DB()
		if err == nil {
			sqlDB.Close()
			log.Println("Database connection closed")
		}
	}

	log.Println("Server shutdown completed")
}
