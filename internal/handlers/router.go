package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"aiscribble/internal/config"
	localMiddleware "aiscribble/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRequestLogger bool
	DisableRateLimiting  bool
	CustomMiddleware     []func(http.Handler) http.Handler
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(localMiddleware.SecurityHeaders())

	// Rate limiting (conditionally applied)
	if !opts.DisableRateLimiting && cfg.Server.RateLimit > 0 {
		rateLimiter := localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
	}

	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	// REST API
	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		api.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))

		api.Post("/api/rooms", h.CreateRoom)
		api.Get("/api/rooms/{roomID}", h.GetRoom)
		api.Post("/api/rooms/{roomID}/players", h.JoinRoom)
		api.Delete("/api/rooms/{roomID}/players/{playerID}", h.LeaveRoom)
		api.Post("/api/rooms/{roomID}/start", h.StartRound)
		api.Post("/api/rooms/{roomID}/guesses", h.SubmitGuess)
		api.Post("/api/rooms/{roomID}/reset", h.ResetRoom)
		api.Get("/api/rooms/{roomID}/qr", h.RoomQR)
	})

	// blocks on the upstream AI call, so the request timeout stays off
	r.Group(func(ai chi.Router) {
		ai.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
		ai.Post("/api/rooms/{roomID}/agent-guess", h.AgentGuess)
	})

	// long-lived connections live outside the request timeout
	r.Get("/ws/rooms/{roomID}", h.Socket)
	r.Get("/sse/rooms/{roomID}", ValidateStreamRequest(h.StreamRoom))

	// Health check endpoints
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
