package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/config"
	"github.com/Mathumitha-create/grievance-cell/internal/handler"
	"github.com/Mathumitha-create/grievance-cell/internal/live"
	"github.com/Mathumitha-create/grievance-cell/internal/middleware"
	"github.com/Mathumitha-create/grievance-cell/internal/repository"
	"github.com/Mathumitha-create/grievance-cell/internal/service"
	"github.com/Mathumitha-create/grievance-cell/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	grievanceRepo := repository.NewGrievanceRepository(db)

	blobStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage unavailable, attachments disabled: %v", err)
		blobStorage = nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := service.NewSearchService(meiliClient, cfg.MeiliMasterKey)

	// Live fan-out: the hub mirrors the record set and the relay bridges
	// change events between instances through redis.
	hub := live.NewHub()
	relay := live.NewRelay(hub, redisClient)
	relay.Start(context.Background())

	if records, err := grievanceRepo.FindAll(context.Background()); err != nil {
		log.Printf("failed to seed live hub, starting empty: %v", err)
	} else {
		hub.Seed(records)
	}

	roleResolver := service.NewRoleResolver(userRepo)
	authSvc := service.NewAuthService(userRepo, roleResolver, cfg.JWTSecret, cfg.JWTTTL, cfg.EmailDomain)
	authHandler := handler.NewAuthHandler(authSvc)

	grievanceSvc := service.NewGrievanceService(
		grievanceRepo,
		blobStorage,
		searchSvc,
		relay,
		redisClient,
		cfg.SubmitRate,
		cfg.CloudinaryUploadFolder,
	)
	grievanceHandler := handler.NewGrievanceHandler(grievanceSvc)
	dashboardHandler := handler.NewDashboardHandler(hub, userRepo, searchSvc)
	liveHandler := handler.NewLiveHandler(hub)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/dashboard", dashboardHandler.Overview)
		protected.GET("/search/token", dashboardHandler.SearchToken)
		protected.GET("/meta", grievanceHandler.Meta)

		protected.POST("/grievances", grievanceHandler.Create)
		protected.GET("/grievances", grievanceHandler.List)
		protected.GET("/grievances/:id", grievanceHandler.Get)
		protected.POST("/classify", grievanceHandler.Classify)
		protected.GET("/live/ws", liveHandler.HandleWebSocket)

		staff := protected.Group("")
		staff.Use(authMiddleware.RequireStaff())
		{
			staff.PATCH("/grievances/:id/status", grievanceHandler.UpdateStatus)
		}

		admin := protected.Group("")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.DELETE("/grievances/:id", grievanceHandler.Delete)
			admin.GET("/export/grievances", grievanceHandler.Export)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
