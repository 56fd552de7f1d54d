package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-labs/gatehouse/internal/auth"
	"github.com/gatehouse-labs/gatehouse/internal/handlers"
	"github.com/gatehouse-labs/gatehouse/internal/middleware"
	"github.com/gatehouse-labs/gatehouse/internal/repositories"
)

// RegisterRoutes registers all application routes under /api.
func RegisterRoutes(
	router chi.Router,
	registrationHandler *handlers.RegistrationHandler,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	tokenCodec *auth.TokenCodec,
	userRepo *repositories.UserRepository,
	sessionRepo *repositories.SessionRepository,
) {
	authRateLimit := middleware.DefaultAuthRateLimit()
	registrationRateLimit := middleware.DefaultRegistrationRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(registrationRateLimit)).Post("/register", registrationHandler.Register)
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/signin", authHandler.SignIn)

	// Clicked from the magic-link email; authenticates via the token in the
	// query string rather than a header or cookie.
	router.With(middleware.RateLimitByIP(authRateLimit)).Get("/auth/verify", authHandler.Verify)

	// Protected routes - a verified session token required
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(tokenCodec))
		r.Use(auth.RequireSession(sessionRepo))

		r.Post("/auth/logout", authHandler.Logout)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(userRepo))

			r.Get("/admin/users", adminHandler.ListUsers)
			r.Patch("/admin/users/{userID}/status", adminHandler.UpdateStatus)
			r.Delete("/admin/users/{userID}", adminHandler.DeleteUser)
			r.Post("/admin/users/{userID}/ban", adminHandler.BanUser)
			r.Delete("/admin/users/{userID}/ban", adminHandler.UnbanUser)
			r.Get("/admin/users/{userID}/approvals", adminHandler.ApprovalHistory)
		})
	})
}
