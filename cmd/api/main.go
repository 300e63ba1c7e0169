package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-login/internal/config"
	"github.com/prefeitura-rio/app-login/internal/events"
	"github.com/prefeitura-rio/app-login/internal/flow"
	"github.com/prefeitura-rio/app-login/internal/handlers"
	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/middleware"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prefeitura-rio/app-login/internal/session"
	"github.com/prefeitura-rio/app-login/internal/storage"
	"github.com/prefeitura-rio/app-login/internal/verification"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/prefeitura-rio/app-login/docs"
)

// @title           Login API
// @version         1.0
// @description     Phone number and one-time code login. Each device owns one login flow; the API exposes its state, the actions of every step and a server-sent event stream.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /v1

// @tag.name auth
// @tag.description Login flow operations

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize observability
	if err := observability.InitTracer(ctx, cfg); err != nil {
		logging.Logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer observability.ShutdownTracer()

	kv, err := storage.Open(cfg)
	if err != nil {
		logging.Logger.Fatal("failed to open session store",
			zap.String("backend", cfg.StoreBackend),
			zap.Error(err))
	}

	service, closeService := newVerificationService(cfg)
	defer closeService()

	bus := events.NewBus(64)
	publisher := newPublisher(ctx, cfg, bus)

	registry := flow.NewRegistry(flow.Options{
		Store:                 session.NewStore(kv, cfg.StoreKeyPrefix, cfg.VerificationSessionTTL),
		Service:               service,
		Events:                publisher,
		ResendWindow:          cfg.ResendWindow,
		CloseGraceDelay:       cfg.CloseGraceDelay,
		PostLoginDestination:  cfg.PostLoginDestination,
		AllowedCountryCodes:   cfg.AllowedCountryCodes,
		DefaultCountryCode:    cfg.DefaultCountryCode,
		StrictPhoneValidation: cfg.StrictPhoneValidation,
	})

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("X-Device-ID", "X-Request-ID")
	corsConfig.AddExposeHeaders("X-Device-ID", "X-Request-ID")

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.DeviceID(),
		middleware.RequestTiming(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.New(corsConfig),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.GET("/health", handlers.NewHealthHandlers(healthChecks(cfg), 2*time.Second).HealthCheck)
	handlers.NewAuthHandlers(registry, bus, logging.Logger).RegisterRoutes(v1)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WriteTimeout stays unset: the event stream is long-lived.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("store_backend", cfg.StoreBackend),
			zap.String("verification_mode", cfg.VerificationMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := registry.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Warn("login flows did not finish before shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}

func newVerificationService(cfg *config.Config) (verification.Service, func()) {
	if cfg.VerificationMode == config.VerificationModeFake {
		logging.Logger.Warn("using in-process verification service, codes are echoed to clients")
		return verification.NewFakeService(cfg.VerificationSessionTTL), func() {}
	}
	svc := verification.NewHTTPService(cfg.VerificationBaseURL, cfg.VerificationTimeout)
	return svc, svc.Close
}

// newPublisher returns the bus itself, or a Redis bridge in front of it when
// login events are shared between instances.
func newPublisher(ctx context.Context, cfg *config.Config, bus *events.Bus) events.Publisher {
	if cfg.LoginEventsChannel == "" {
		return bus
	}
	if config.Redis == nil {
		if err := config.InitRedis(); err != nil {
			logging.Logger.Error("login events stay local, redis unavailable", zap.Error(err))
			return bus
		}
	}

	bridge := events.NewRedisBridge(config.Redis, cfg.LoginEventsChannel, bus)
	go func() {
		if err := bridge.Run(ctx, nil); err != nil {
			logging.Logger.Error("login event bridge stopped", zap.Error(err))
		}
	}()
	return bridge
}

func healthChecks(cfg *config.Config) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if config.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return config.Redis.Ping(ctx).Err()
		}
	}
	if cfg.StoreBackend == config.StoreBackendMongo && config.MongoDB != nil {
		checks["mongodb"] = func(ctx context.Context) error {
			return config.MongoDB.Client().Ping(ctx, readpref.Primary())
		}
	}
	return checks
}
