// Package httpx exposes the deck generation API over HTTP.
package httpx

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/target/deckgen/internal/domain/model"
	"github.com/target/deckgen/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// PresentationHandlers serves the presentation API.
type PresentationHandlers struct {
	Svc    *service.PresentationService
	Logger *slog.Logger
}

type suggestionsRequest struct {
	Topic    string `json:"topic"`
	Industry string `json:"industry,omitempty"`
	Audience string `json:"audience,omitempty"`
	// Accepted for compatibility with older clients; ignored.
	SlideCount *int `json:"slide_count,omitempty"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggestions handles POST /api/v1/suggestions.
func (h *PresentationHandlers) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	out, err := h.Svc.Suggestions(r.Context(), service.SuggestionRequest{
		Topic:    req.Topic,
		Industry: req.Industry,
		Audience: req.Audience,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if out == nil {
		out = []string{}
	}
	WriteJSON(w, http.StatusOK, suggestionsResponse{Suggestions: out})
}

type generatePreferences struct {
	SlideCount int `json:"slide_count,omitempty"`
}

type generateRequest struct {
	SelectedTopic string              `json:"selected_topic"`
	UserID        string              `json:"user_id"`
	ClientID      string              `json:"client_id,omitempty"`
	Preferences   generatePreferences `json:"preferences"`
}

// presentationResponse is the body of generate and status responses.
type presentationResponse struct {
	PresentationID string          `json:"presentation_id"`
	Status         model.JobStatus `json:"status"`
	DownloadURL    string          `json:"download_url,omitempty"`
	SlideCount     int             `json:"slide_count,omitempty"`
	Error          string          `json:"error,omitempty"`
}

func toPresentationResponse(v *model.JobView) presentationResponse {
	resp := presentationResponse{PresentationID: v.ID, Status: v.Status, Error: v.Error}
	if v.Result != nil {
		resp.DownloadURL = v.Result.DownloadURL
		resp.SlideCount = v.Result.SlideCount
	}
	return resp
}

// Generate handles POST /api/v1/generate.
func (h *PresentationHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	view, err := h.Svc.Enqueue(r.Context(), service.GenerateRequest{
		Topic:      req.SelectedTopic,
		SlideCount: req.Preferences.SlideCount,
		UserID:     req.UserID,
		ClientID:   req.ClientID,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, toPresentationResponse(view))
}

// Status handles GET /api/v1/status/{id}.
func (h *PresentationHandlers) Status(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toPresentationResponse(view))
}

// Download handles GET /api/v1/download/{id}.
func (h *PresentationHandlers) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.Svc.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, dl.Body); err != nil {
		h.logger().WarnContext(r.Context(), "download interrupted", "presentation_id", r.PathValue("id"), "error", err)
	}
}

// UserStats handles GET /api/v1/user/{user_id}/stats.
func (h *PresentationHandlers) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.UserStats(r.Context(), r.PathValue("user_id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// List handles GET /api/v1/presentations/{user_id}.
func (h *PresentationHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}
	list, err := h.Svc.ListForUser(r.Context(), r.PathValue("user_id"), limit)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if list == nil {
		list = []*model.Presentation{}
	}
	WriteJSON(w, http.StatusOK, list)
}

type messageResponse struct {
	Message string `json:"message"`
}

// Delete handles DELETE /api/v1/presentation/{id}.
func (h *PresentationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Presentation deleted successfully"})
}

func (h *PresentationHandlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if status := statusFor(err); status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "status", status, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
	}
	WriteServiceError(w, err)
}

func (h *PresentationHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
