package server

import (
	"fmt"
	"net/http"
	"time"

	"food-catalog/internal/config"
	"food-catalog/internal/database"
	"food-catalog/internal/media"
	custommiddleware "food-catalog/internal/middleware"
	"food-catalog/internal/repository"
	"food-catalog/internal/service"
	"food-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      *database.Service
	redis   *redis.Client
	cleanup *media.BestEffort
}

// NewServer wires repositories, services and handlers onto one router.
// redisClient may be nil, in which case rate limiting is kept in process.
func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service, store media.Store, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger, !cfg.IsProduction()))
	router.Use(custommiddleware.CORSMiddleware(cfg.Frontend.Origins, !cfg.IsProduction()))

	// Set before any route so mounted subrouters inherit them
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondError(w, http.StatusNotFound, "Route not found", "")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	cleanup := media.NewBestEffort(store, logger)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())

		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, map[string]any{
			"status":   http.StatusText(status),
			"env":      cfg.Server.Env,
			"database": health,
			"media": map[string]int64{
				"delete_failures": cleanup.Failures(),
			},
		})
	})

	if disk, ok := store.(*media.DiskStore); ok {
		router.Handle(media.UploadsPath+"/*", http.StripPrefix(media.UploadsPath+"/", disk.Handler()))
	}

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo, productRepo, logger)
	productService := service.NewProductService(productRepo, categoryRepo, store, cleanup, logger)

	// Initialize handlers
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	productHandler := transport.NewProductHandler(productService, cfg.Media.MaxUploadBytes, logger)

	router.Group(func(r chi.Router) {
		if limit := rateLimiter(cfg.RateLimit, redisClient, logger); limit != nil {
			r.Use(limit)
		}

		categoryHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		cleanup: cleanup,
	}
}

// rateLimiter picks the shared Redis limiter when a client is available.
// A non-positive request count disables limiting.
func rateLimiter(cfg config.RateLimitConfig, redisClient *redis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return nil
	}

	limitCfg := custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.Requests,
		Window:            cfg.Window,
		KeyPrefix:         "food_catalog_rate_limit",
	}
	if redisClient != nil {
		return custommiddleware.RateLimitMiddleware(redisClient, limitCfg, logger)
	}
	return custommiddleware.NewLocalRateLimiter(limitCfg).Middleware(logger)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
