package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/naileon/karte-api/internal/entity"
	"github.com/naileon/karte-api/internal/infra/http/middleware"
	"github.com/naileon/karte-api/internal/usecase"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps use case errors onto the API's error bodies.
func writeError(w http.ResponseWriter, err error) {
	if usecase.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Karte not found"})
		return
	}

	var upErr *entity.UpstreamError
	if errors.As(err, &upErr) {
		middleware.RecordUpstreamError(upErr.Service)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Details: upErr.Details(),
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Details: err.Error(),
	})
}
