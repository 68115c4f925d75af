package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatrelay/chatrelay-backend/internal/config"
	"github.com/chatrelay/chatrelay-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router
// setup, primarily handlers and configuration.
type RouterDependencies struct {
	HealthHandler *handlers.HealthHandler
	ThreadHandler *handlers.ThreadHandlers
	ChatHandler   *handlers.ChatHandlers
	Config        *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second)) // must outlive the relay timeout
	r.Use(countRequests)

	// --- CORS Configuration ---
	// The static UI is served by a separate process; its origin comes from
	// configuration.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", deps.HealthHandler.HandleHealth)

		r.Get("/threads", deps.ThreadHandler.HandleListThreads)
		r.Post("/threads", deps.ThreadHandler.HandleCreateThread)
		r.Patch("/threads/{threadID}", deps.ThreadHandler.HandleRenameThread)

		r.Get("/history", deps.ThreadHandler.HandleGetHistory)

		r.Post("/chat", deps.ChatHandler.HandleChat)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
