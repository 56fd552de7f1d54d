package integration

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse-labs/gatehouse/internal/auth"
	"github.com/gatehouse-labs/gatehouse/internal/database"
	"github.com/gatehouse-labs/gatehouse/internal/handlers"
	middlewareCustom "github.com/gatehouse-labs/gatehouse/internal/middleware"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/internal/repositories"
	"github.com/gatehouse-labs/gatehouse/internal/routes"
	"github.com/gatehouse-labs/gatehouse/internal/services"
	pkglogger "github.com/gatehouse-labs/gatehouse/pkg/logger"
)

const (
	TestJWTSecret  = "test-secret-32-characters-long!!"
	TestAdminEmail = "admin@example.com"
)

// SentNotification is one captured notification
type SentNotification struct {
	Kind      string
	To        string
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// CapturingNotifier records notifications for test assertions instead of
// sending email. Magic-link tokens are captured so tests can complete the
// sign-in flow.
type CapturingNotifier struct {
	mu   sync.Mutex
	Sent []SentNotification
}

func (n *CapturingNotifier) record(s SentNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, s)
}

func (n *CapturingNotifier) NotifyAdminOfNewRegistration(ctx context.Context, adminEmail string, applicant *models.User) error {
	n.record(SentNotification{Kind: "admin_new_registration", To: adminEmail, UserID: applicant.ID})
	return nil
}

func (n *CapturingNotifier) NotifyApplicantConfirmation(ctx context.Context, applicant *models.User) error {
	n.record(SentNotification{Kind: "applicant_confirmation", To: applicant.Email, UserID: applicant.ID})
	return nil
}

func (n *CapturingNotifier) NotifyAdminReminder(ctx context.Context, adminEmail string, applicant *models.User) error {
	n.record(SentNotification{Kind: "admin_reminder", To: adminEmail, UserID: applicant.ID})
	return nil
}

func (n *CapturingNotifier) NotifyApplicantDecision(ctx context.Context, applicant *models.User, status models.RegistrationStatus) error {
	n.record(SentNotification{Kind: "applicant_decision", To: applicant.Email, UserID: applicant.ID})
	return nil
}

func (n *CapturingNotifier) SendMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error {
	n.record(SentNotification{Kind: "magic_link", To: email, Token: token, ExpiresAt: expiresAt})
	return nil
}

// LastByKind returns the most recent notification of the given kind
func (n *CapturingNotifier) LastByKind(kind string) *SentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.Sent) - 1; i >= 0; i-- {
		if n.Sent[i].Kind == kind {
			return &n.Sent[i]
		}
	}
	return nil
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server     *httptest.Server
	DB         *database.DB
	Notifier   *CapturingNotifier
	TokenCodec *auth.TokenCodec
}

// NewTestServer initializes a complete HTTP server against a real database
// with a capturing notifier in place of SES.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo, sessionRepo, approvalRepo := InitializeRepositories(db)
	workflowRepo := repositories.NewWorkflowRepository(db, userRepo, approvalRepo)

	notifier := &CapturingNotifier{}
	auditLogger := pkglogger.NewAuditLogger(logger)

	tokenCodec := auth.NewTokenCodec(TestJWTSecret, 7*24*time.Hour, 15*time.Minute)

	registrationService := services.NewRegistrationService(
		userRepo, workflowRepo, notifier, TestAdminEmail, logger, auditLogger)
	adminService := services.NewAdminService(
		userRepo, approvalRepo, sessionRepo, workflowRepo, notifier, true, logger, auditLogger)
	authService := services.NewAuthService(
		userRepo, sessionRepo, tokenCodec, notifier,
		7*24*time.Hour, 15*time.Minute, logger, auditLogger)

	cookieConfig := auth.CookieConfig{SameSite: http.SameSiteLaxMode}

	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, 7*24*time.Hour, "/signin", "/report")
	adminHandler := handlers.NewAdminHandler(adminService)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(auth.AccessGate(auth.GateConfig{
		ProtectedPrefixes: []string{"/report", "/admin"},
		SignInPath:        "/signin",
	}))

	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, registrationHandler, authHandler, adminHandler, tokenCodec, userRepo, sessionRepo)
	})

	// Stand-in for a protected page behind the perimeter gate
	router.Get("/report", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("report"))
	})

	return &TestServer{
		Server:     httptest.NewServer(router),
		DB:         db,
		Notifier:   notifier,
		TokenCodec: tokenCodec,
	}
}

// Close shuts the test server down
func (ts *TestServer) Close() {
	ts.Server.Close()
}
