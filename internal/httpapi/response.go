package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/apperror"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logging.Logger.Error("[writeJSON] Failed to encode response", zap.String("error", err.Error()))
	}
}

// writeError maps the apperror taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var upstreamErr *apperror.UpstreamError

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundMessage(err)})
	case errors.As(err, &upstreamErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:  "completion service request failed",
			Status: upstreamErr.StatusCode,
		})
	case errors.Is(err, apperror.ErrEmptyCompletion):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrConfiguration):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "request timed out"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func notFoundMessage(err error) string {
	var notFound *apperror.NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}

	return "not found"
}
