package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/deckgen/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Presentations *service.PresentationService
	// Optional: dependency probes served at /readyz.
	Readiness map[string]ReadinessCheck
	Logger    *slog.Logger
}

// NewRouter creates the API router wrapped in request id, recovery and logging middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Readiness, logger))

	if services.Presentations != nil {
		registerPresentationRoutes(mux, &PresentationHandlers{Svc: services.Presentations, Logger: logger})
	}

	return Chain(mux, RequestID(), Recover(logger), Logging(logger))
}

func registerPresentationRoutes(mux *http.ServeMux, h *PresentationHandlers) {
	mux.HandleFunc("POST /api/v1/suggestions", h.Suggestions)
	mux.HandleFunc("POST /api/v1/generate", h.Generate)
	mux.HandleFunc("GET /api/v1/status/{id}", h.Status)
	mux.HandleFunc("GET /api/v1/download/{id}", h.Download)
	mux.HandleFunc("GET /api/v1/user/{user_id}/stats", h.UserStats)
	mux.HandleFunc("GET /api/v1/presentations/{user_id}", h.List)
	mux.HandleFunc("DELETE /api/v1/presentation/{id}", h.Delete)
}
