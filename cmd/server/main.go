package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/config"
	"github.com/thewebvalue/task-management-api/internal/database"
	"github.com/thewebvalue/task-management-api/internal/handlers"
	"github.com/thewebvalue/task-management-api/internal/integrations"
	"github.com/thewebvalue/task-management-api/internal/middleware"
	"github.com/thewebvalue/task-management-api/internal/repository"
	"github.com/thewebvalue/task-management-api/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access connection pool: %w", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	// Run migrations
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := repository.NewStore(db)
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTExpiresIn,
		RefreshTTL:    cfg.JWTRefreshExpiresIn,
	}, time.Now)

	resilience := integrations.ResilienceConfig{
		Timeout:          cfg.AdapterTimeout,
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
		Logger:           logger,
	}

	// Initialize services
	authService := services.NewAuthService(store.Users(), tokens, cfg.AllowedEmailDomain, logger)
	taskService := services.NewTaskService(services.TaskServiceDeps{
		Store:     store,
		Calendars: newCalendars(ctx, cfg, resilience, logger),
		Notifier:  newNotifier(cfg, resilience, logger),
		Sink:      services.NewLogSink(logger),
		Logger:    logger,
	})
	adminService := services.NewAdminService(store, time.Now)

	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		if _, err := authService.BootstrapAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, cfg.BootstrapAdminName); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	router := newRouter(cfg, logger, handlers.Services{
		Tokens: tokens,
		Auth:   authService,
		Tasks:  taskService,
		Admin:  adminService,
	})

	reminders := services.NewReminderScheduler(taskService, cfg.ReminderInterval, cfg.ReminderLookahead, logger)
	go reminders.Run(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	// Start server
	logger.Info("server starting", "addr", server.Addr, "db_driver", cfg.DBDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newCalendars wires every configured calendar provider behind a timeout and
// circuit breaker. Providers without credentials are skipped.
func newCalendars(ctx context.Context, cfg *config.Config, resilience integrations.ResilienceConfig, logger *slog.Logger) *integrations.CalendarSet {
	var adapters []integrations.CalendarAdapter

	google := integrations.GoogleCalendarConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: cfg.GoogleRefreshToken,
		CalendarID:   cfg.GoogleCalendarID,
	}
	if google.Enabled() {
		adapters = append(adapters, integrations.NewResilientCalendar(integrations.NewGoogleCalendar(ctx, google), resilience))
	}
	if cfg.MSAccessToken != "" {
		adapters = append(adapters, integrations.NewResilientCalendar(integrations.NewMicrosoftCalendar(ctx, cfg.MSAccessToken), resilience))
	}

	set := integrations.NewCalendarSet(adapters...)
	if set.Empty() {
		logger.Warn("no calendar providers configured; calendar sync disabled")
	} else {
		logger.Info("calendar providers enabled", "providers", set.Providers())
	}
	return set
}

// newNotifier returns the SMTP notifier, or a log-only notifier when SMTP is
// not configured.
func newNotifier(cfg *config.Config, resilience integrations.ResilienceConfig, logger *slog.Logger) integrations.Notifier {
	smtp := integrations.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}
	if !smtp.Enabled() {
		logger.Warn("SMTP_HOST not set; notifications will only be logged")
		return integrations.NewLogNotifier(logger)
	}
	return integrations.NewResilientNotifier(integrations.NewSMTPNotifier(smtp), resilience)
}

func newRouter(cfg *config.Config, logger *slog.Logger, svc handlers.Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)))

	// Health check endpoint
	r.GET("/health", handlers.Health)

	// API routes
	handlers.RegisterRoutes(r.Group("/api"), svc)
	return r
}
