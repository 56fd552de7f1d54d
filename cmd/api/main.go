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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-labs/gatehouse/internal/auth"
	"github.com/gatehouse-labs/gatehouse/internal/background"
	"github.com/gatehouse-labs/gatehouse/internal/config"
	"github.com/gatehouse-labs/gatehouse/internal/database"
	"github.com/gatehouse-labs/gatehouse/internal/handlers"
	middlewareCustom "github.com/gatehouse-labs/gatehouse/internal/middleware"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/internal/repositories"
	"github.com/gatehouse-labs/gatehouse/internal/routes"
	"github.com/gatehouse-labs/gatehouse/internal/services"
	pkglogger "github.com/gatehouse-labs/gatehouse/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	approvalRepo := repositories.NewApprovalRepository(db)
	workflowRepo := repositories.NewWorkflowRepository(db, userRepo, approvalRepo)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(sessionRepo, logger, cfg.Auth.CleanupInterval)

	// Initialize token codec
	tokenCodec := auth.NewTokenCodec(
		cfg.Auth.JWTSecret,
		cfg.Auth.SessionTokenExpiry,
		cfg.Auth.MagicLinkExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Notifications go through SES when enabled, otherwise to the log.
	var notifier services.Notifier
	if cfg.Email.Enabled {
		notifier, err = services.NewAWSSESNotifier(
			cfg.Email.AWSRegion,
			cfg.Email.FromAddress,
			cfg.Server.BaseURL,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize email notifier", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		notifier = services.NewLogNotifier(logger)
	}

	// Initialize services
	registrationService := services.NewRegistrationService(
		userRepo, workflowRepo, notifier, cfg.Auth.AdminEmail, logger, auditLogger)
	adminService := services.NewAdminService(
		userRepo, approvalRepo, sessionRepo, workflowRepo, notifier, cfg.Approval.AllowRedecide, logger, auditLogger)
	authService := services.NewAuthService(
		userRepo, sessionRepo, tokenCodec, notifier,
		cfg.Auth.SessionTokenExpiry, cfg.Auth.MagicLinkExpiry, logger, auditLogger)

	// Session cookies are HTTPS-only outside development.
	cookieConfig := auth.CookieConfig{
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Initialize handlers
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, cfg.Auth.SessionTokenExpiry, cfg.Auth.SignInPath, cfg.Auth.ReportPath)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Provision the reserved admin account if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, cfg, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// The perimeter gate redirects unauthenticated browser navigation on
	// protected page prefixes. API routes do their own verification.
	router.Use(auth.AccessGate(auth.GateConfig{
		ProtectedPrefixes: cfg.Auth.ProtectedPrefixes,
		SignInPath:        cfg.Auth.SignInPath,
	}))

	// Register API routes
	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, registrationHandler, authHandler, adminHandler, tokenCodec, userRepo, sessionRepo)
	})

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the reserved admin account when ADMIN_PASSWORD is
// set. The account is born approved so it can sign in with its password
// without going through the registration workflow.
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Auth.AdminPassword == "" {
		logger.Info("no ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, cfg.Auth.AdminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:              cfg.Auth.AdminEmail,
		Name:               "Administrator",
		Title:              "Administrator",
		Phone:              "0000000000",
		Role:               models.RoleAdmin,
		RegistrationStatus: models.StatusApproved,
		PasswordHash:       string(hashedPassword),
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
