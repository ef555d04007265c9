package server

import (
	"fmt"
	"net/http"
	"time"

	"inventory-service/internal/config"
	"inventory-service/internal/database"
	"inventory-service/internal/events"
	custommiddleware "inventory-service/internal/middleware"
	"inventory-service/internal/service"
	"inventory-service/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies is everything the router needs besides configuration
type Dependencies struct {
	Transactor database.Transactor
	Repos      service.Repositories
	Publisher  events.OrderPublisher
	// Redis enables per-client rate limiting when set
	Redis *redis.Client
	// Health reports the state of the backing store
	Health func() map[string]string
}

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        database.Service
	redis     *redis.Client
	publisher events.OrderPublisher
}

// NewRouter builds the HTTP API on top of the given dependencies
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))
	if deps.Redis != nil {
		router.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit",
		}, logger))
	}
	router.Use(custommiddleware.ValidationMiddleware(logger))

	router.Get("/health", healthHandler(deps.Health))

	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}

	userService := service.NewUserService(deps.Transactor, deps.Repos, logger)
	categoryService := service.NewCategoryService(deps.Transactor, deps.Repos, logger)
	productService := service.NewProductService(deps.Transactor, deps.Repos, logger)
	cartService := service.NewCartService(deps.Transactor, deps.Repos, logger)
	orderService := service.NewOrderService(deps.Transactor, deps.Repos, publisher, logger)

	transport.NewUserHandler(userService, logger).RegisterRoutes(router)
	transport.NewCategoryHandler(categoryService, logger).RegisterRoutes(router)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router)

	return router
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, publisher events.OrderPublisher) *Server {
	deps := Dependencies{
		Transactor: database.NewTransactor(db.DB()),
		Repos:      service.NewRepositories(),
		Publisher:  publisher,
		Redis:      redisClient,
		Health: func() map[string]string {
			health := db.Health()
			if version, err := database.MigrationVersion(db.DB()); err == nil {
				health["migration_version"] = fmt.Sprintf("%d", version)
			}
			return health
		},
	}

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps),
			IdleTimeout:  time.Minute,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		publisher: publisher,
	}
}

func healthHandler(check func() map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check == nil {
			custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}

		db := check()
		status, code := "ok", http.StatusOK
		if db["status"] != "up" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		custommiddleware.RespondWithJSON(w, code, map[string]interface{}{
			"status":   status,
			"database": db,
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("Failed to close event publisher", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
