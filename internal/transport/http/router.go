package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"moodcal/internal/handler"
	"moodcal/internal/httputil"
	authmw "moodcal/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler *handler.AuthHandler
	MoodHandler *handler.MoodHandler
	UserHandler *handler.UserHandler
	JWTSecret   string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public mood-history search
	r.Route("/users", func(r chi.Router) {
		r.Get("/{username}", cfg.UserHandler.Lookup)
		r.Get("/{username}/moods", cfg.UserHandler.Moods)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)

		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		r.Route("/moods", func(r chi.Router) {
			r.Get("/", cfg.MoodHandler.List)
			r.Get("/stats", cfg.MoodHandler.Stats)
			r.Get("/stream", cfg.MoodHandler.Stream)
			r.Put("/{date}", cfg.MoodHandler.Upsert)
			r.Delete("/{date}", cfg.MoodHandler.Delete)
		})
	})

	return r
}
