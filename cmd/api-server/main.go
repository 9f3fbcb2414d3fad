package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"manhwahub/internal/auth"
	"manhwahub/internal/config"
	"manhwahub/internal/manga"
	"manhwahub/internal/scraper"
	"manhwahub/internal/user"
	"manhwahub/pkg/database"
)

func main() {
	// Configuration
	cfgPath := getEnv("CONFIG_PATH", "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	mangaRepo := manga.NewRepository(db)

	// Initialize services
	userService := user.NewService(userRepo, cfg.Auth.JWTSecret, cfg.TokenDuration())
	fetcher := scraper.NewClient(cfg.Source.BaseURL, cfg.RequestTimeout(), cfg.Source.RequestsPerSec)
	mangaService := manga.NewService(mangaRepo, fetcher, cfg.APIBase(), cfg.Source.MaxScrapeWorkers, scraper.AllowEmpty)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	mangaHandler := manga.NewHandler(mangaService)

	// Setup Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "ManhwaHub API",
		})
	})

	// Public routes
	public := router.Group("/api")
	{
		// Auth routes
		public.POST("/auth/register", userHandler.Register)
		public.POST("/auth/login", userHandler.Login)

		// Catalog routes
		public.GET("/mangas", mangaHandler.ListMangas)
		public.GET("/search/:query", mangaHandler.Search)
		public.GET("/image", mangaHandler.ProxyImage)

		// Per-title routes
		public.GET("/:name/details", mangaHandler.GetDetails)
		public.GET("/:name/chapters", mangaHandler.LiveChapters)
		public.GET("/:name/update-chapters", mangaHandler.UpdateChapters)
		public.GET("/:name/:chapter/images", mangaHandler.LiveImages)
		public.GET("/:name/:chapter/imagesDB", mangaHandler.CachedImages)
	}

	// Protected routes
	protected := router.Group("/api")
	protected.Use(auth.JWTMiddleware(cfg.Auth.JWTSecret))
	{
		protected.POST("/:name/chapter-status", mangaHandler.ChapterStatus)
	}

	// Start server
	log.Printf("ManhwaHub API server starting on %s", cfg.Addr())
	log.Printf("Database: %s", cfg.Database.Path)
	log.Printf("Source: %s", cfg.Source.BaseURL)

	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
