package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/discernment180-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/content
//	GET    /api/v1/content/current                 (user)
//	GET    /api/v1/content/day/{day}               (user)
//	GET    /api/v1/me                              (user)
//	GET    /api/v1/me/keys                         (user)
//	GET    /api/v1/progress                        (user)
//	GET    /api/v1/progress/stats                  (user)
//	PUT    /api/v1/progress/days/{day}             (user)
//	POST   /api/v1/progress/advance                (user)
//	POST   /api/v1/progress/begin                  (user)
//	GET    /api/v1/reviews/{week}                  (user)
//	PUT    /api/v1/reviews/{week}                  (user)
//	POST   /api/v1/reviews/{week}/plan             (user)
//	GET    /api/v1/rule-of-life                    (user)
//	PUT    /api/v1/rule-of-life                    (user)
//	GET    /api/v1/admin/users                     (admin)
//	POST   /api/v1/admin/users                     (admin)
//	POST   /api/v1/admin/users/{userID}/keys       (admin)
func SetupRoutes(h *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Get("/content", h.ListContent)

		// User routes (authenticated)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.db, logger))

			r.Get("/content/current", h.GetCurrentContent)
			r.Get("/content/day/{day}", h.GetDayContent)

			r.Get("/me", h.GetCurrentUser)
			r.Get("/me/keys", h.GetMyAPIKeys)

			r.Route("/progress", func(r chi.Router) {
				r.Get("/", h.GetProgress)
				r.Get("/stats", h.GetProgressStats)
				r.Put("/days/{day}", h.SetDayCompletion)
				r.Post("/advance", h.AdvanceProgress)
				r.Post("/begin", h.BeginProgress)
			})

			r.Route("/reviews/{week}", func(r chi.Router) {
				r.Get("/", h.GetWeeklyReview)
				r.Put("/", h.SaveWeeklyReview)
				r.Post("/plan", h.SaveWeeklyPlan)
			})

			r.Get("/rule-of-life", h.GetRuleOfLife)
			r.Put("/rule-of-life", h.SaveRuleOfLife)
		})

		// Admin routes (admin key only)
		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminOnlyMiddleware(cfg, logger))

			r.Get("/users", h.ListUsers)
			r.Post("/users", h.CreateUser)
			r.Post("/users/{userID}/keys", h.CreateAPIKey)
		})
	})

	return r
}
