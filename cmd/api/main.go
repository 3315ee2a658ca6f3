package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_shop/internal/cache"
	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/config"
	"github.com/GTDGit/gtd_shop/internal/database"
	"github.com/GTDGit/gtd_shop/internal/handler"
	"github.com/GTDGit/gtd_shop/internal/media"
	"github.com/GTDGit/gtd_shop/internal/middleware"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/sse"
	"github.com/GTDGit/gtd_shop/internal/utils"
	"github.com/GTDGit/gtd_shop/internal/worker"
)

const tokenTTL = 24 * time.Hour

// main is the application entrypoint for the GTD Shop admin API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting gtd shop api")

	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, "file://migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis. The newsletter page cache is optional.
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis connection failed - newsletter cache disabled")
	} else {
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
	}

	// 4. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Initialize media provider
	uploader, err := media.New(ctx, cfg.Media)
	if err != nil {
		log.Error().Err(err).Msg("media provider initialization failed")
		fmt.Fprintf(os.Stderr, "media provider initialization failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("provider", uploader.Provider()).Msg("media provider ready")

	// 6. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	newsletterRepo := repository.NewNewsletterRepository(db)
	assetRepo := repository.NewMediaAssetRepository(db)

	// 7. Initialize services
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, tokenTTL)
	hub := sse.NewHub()
	taxonomy := catalog.Default()

	adminAuthSvc := service.NewAdminAuthService(adminRepo, tokens)
	productSvc := service.NewProductService(productRepo, assetRepo, taxonomy, hub)
	mediaSvc := service.NewMediaService(uploader, assetRepo)
	newsletterSvc := service.NewNewsletterService(newsletterRepo, nil, cfg.Newsletter.DefaultLimit, cfg.Newsletter.MaxLimit)
	if redisClient != nil {
		pageCache := cache.NewNewsletterCache(redisClient, cfg.Newsletter.CacheTTL)
		newsletterSvc = service.NewNewsletterService(newsletterRepo, pageCache, cfg.Newsletter.DefaultLimit, cfg.Newsletter.MaxLimit)
	}

	if err := adminAuthSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Error().Err(err).Msg("failed to seed bootstrap admin")
	}

	// 8. Initialize handlers
	checks := map[string]handler.HealthCheck{
		"database": db.PingContext,
		"redis":    nil,
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}
	handlers := &Handlers{
		Health:     handler.NewHealthHandler(checks),
		Product:    handler.NewProductHandler(productSvc),
		Upload:     handler.NewUploadHandler(mediaSvc, cfg.Media.MaxUploadSize),
		Newsletter: handler.NewNewsletterHandler(newsletterSvc),
		Auth:       handler.NewAuthHandler(adminAuthSvc),
		SSE:        handler.NewSSEHandler(hub, tokens),
	}

	// 9. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(tokens)
	loginLimiter := middleware.NewLoginRateLimiter(5, time.Minute)
	go loginLimiter.Cleanup(5*time.Minute, ctx.Done())

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	corsHosts := cfg.CORSAllowedHosts
	if len(corsHosts) == 0 {
		corsHosts = middleware.DefaultCORSHosts
	}
	router.Use(middleware.CORSMiddleware(corsHosts))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 11. Start workers
	go worker.NewMediaSweepWorker(mediaSvc, cfg.Worker.MediaSweepInterval, cfg.Worker.MediaOrphanAfter).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers and end open SSE streams
	cancel()
	hub.Close()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Product    *handler.ProductHandler
	Upload     *handler.UploadHandler
	Newsletter *handler.NewsletterHandler
	Auth       *handler.AuthHandler
	SSE        *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.LoginRateLimiter) {
	router.GET("/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	// Public storefront routes
	api.GET("/categories", handlers.Product.ListCategories)
	api.POST("/newsletter", handlers.Newsletter.Subscribe)

	// Admin auth
	api.POST("/admin/auth/login", loginLimiter.Handle(), handlers.Auth.Login)

	// SSE authenticates with a query token
	api.GET("/admin/events", handlers.SSE.Stream)

	// Admin routes
	admin := api.Group("")
	admin.Use(jwtMiddleware.Handle())
	{
		// Product Management
		admin.GET("/products", handlers.Product.ListProducts)
		admin.POST("/products", handlers.Product.CreateProduct)
		admin.GET("/products/:id", handlers.Product.GetProduct)
		admin.PUT("/products/:id", handlers.Product.UpdateProduct)
		admin.DELETE("/products/:id", handlers.Product.DeleteProduct)

		// Media
		admin.POST("/upload", handlers.Upload.Upload)

		// Newsletter
		admin.GET("/admin/newsletter", handlers.Newsletter.List)
		admin.DELETE("/admin/newsletter/:id", handlers.Newsletter.Unsubscribe)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
