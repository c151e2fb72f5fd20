package rest

import (
	"log/slog"

	"github.com/go-chi/chi"

	"github.com/motorlot/dealerd/internal/auth"
	"github.com/motorlot/dealerd/internal/permission"
	"github.com/motorlot/dealerd/internal/store"
	"github.com/motorlot/dealerd/internal/transport/middleware"
	"github.com/motorlot/dealerd/internal/user"
)

// RegisterAllRoutes wires the API. Credential-carrying endpoints
// (login, password change, reset request) and the sandbox switch are
// open; everything under the authenticated group re-runs the login
// state machine per request from Basic credentials, so a locked or
// temp-password account is shut out everywhere at once.
func RegisterAllRoutes(
	router *chi.Mux,
	db *store.Handle,
	authSvc *auth.Service,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	permHandler *permission.Handler,
	sandboxHandler *store.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Recovery(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/logout", authHandler.Logout)
			sr.Post("/change-password", authHandler.ChangePassword)
			sr.Post("/reset-request", authHandler.RequestPasswordReset)
		})

		// Sandbox switch: reachable without credentials, mirroring the
		// original where the mode toggle lives on the login screen.
		r.Route("/sandbox", func(sr chi.Router) {
			sr.Get("/", sandboxHandler.Status)
			sr.Post("/enter", sandboxHandler.Enter)
			sr.Post("/exit", sandboxHandler.Exit)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.BasicAuth(authSvc, logger))

			pr.Group(func(sh chi.Router) {
				sh.Use(middleware.RequirePermission(permission.ViewSalesHistory, logger))
				sh.Get("/sales", userHandler.SalesHistory)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequireAdmin(logger))

				ar.Route("/users", func(ur chi.Router) {
					ur.Post("/", userHandler.Create)
					ur.Get("/", userHandler.List)
					ur.Post("/{username}/reset-password", userHandler.ResetPassword)
					ur.Post("/{username}/toggle-active", userHandler.ToggleActive)
					ur.Get("/{id}/permissions", permHandler.Get)
					ur.Put("/{id}/permissions", permHandler.Replace)
				})

				ar.Get("/password-reset-requests", userHandler.ResetRequests)
			})
		})
	})
}
