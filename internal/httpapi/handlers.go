package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"linkbrief/internal/apperror"
	"linkbrief/internal/domain"
)

type handler struct {
	svc Service
	log *slog.Logger
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		h.writeError(w, r, apperror.New(apperror.KindInvalidURL, "url query parameter is required"))
		return
	}

	summary, err := h.svc.SummarizeURL(r.Context(), rawURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, domain.Summary{URL: rawURL, Text: summary})
}

func (h *handler) clearCache(w http.ResponseWriter, r *http.Request) {
	c := h.svc.Cache()
	if c == nil {
		http.NotFound(w, r)
		return
	}

	if err := c.Clear(r.Context()); err != nil {
		h.log.ErrorContext(r.Context(), "Failed to clear cache",
			"error", err)
		h.writeError(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "Cache is cleared")

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	message := "Internal error"
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		message = "Request timed out"
	}

	h.writeJSON(w, r, status, errorBody{Error: errorDetail{
		Kind:      kind.String(),
		Message:   message,
		Retryable: apperror.Retryable(err),
	}})
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.ErrorContext(r.Context(), "Failed to write response",
			"error", err)
	}
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalidURL:
		return http.StatusBadRequest
	case apperror.KindEmptyContent:
		return http.StatusUnprocessableEntity
	case apperror.KindRateLimit:
		return http.StatusTooManyRequests
	case apperror.KindAuthentication, apperror.KindServer, apperror.KindAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
