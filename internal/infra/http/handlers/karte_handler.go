package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/infra/http/middleware"
	"github.com/naileon/karte-api/internal/usecase"
)

type KarteHandler struct {
	UpsertUC  *usecase.UpsertKarteUseCase
	FetchUC   *usecase.FetchKarteUseCase
	ReplaceUC *usecase.ReplaceKarteUseCase
	Logger    *zap.Logger
}

func NewKarteHandler(
	upsert *usecase.UpsertKarteUseCase,
	fetch *usecase.FetchKarteUseCase,
	replace *usecase.ReplaceKarteUseCase,
	logger *zap.Logger,
) *KarteHandler {
	return &KarteHandler{
		UpsertUC:  upsert,
		FetchUC:   fetch,
		ReplaceUC: replace,
		Logger:    logger,
	}
}

// HandleUpsert (POST /api/karte)
func (h *KarteHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var input usecase.KarteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON", Details: err.Error()})
		return
	}

	output, err := h.UpsertUC.Execute(r.Context(), input)
	if err != nil {
		h.Logger.Error("karte upsert failed", zap.String("user_id", input.UserID), zap.Error(err))
		writeError(w, err)
		return
	}

	if output.Created {
		middleware.RecordKarteWrite("create")
	} else {
		middleware.RecordKarteWrite("update")
	}
	writeJSON(w, http.StatusOK, output)
}

// HandleFetch (GET /api/karte/{userId})
func (h *KarteHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	output, err := h.FetchUC.Execute(r.Context(), userID)
	if err != nil {
		if !usecase.IsNotFound(err) {
			h.Logger.Error("karte fetch failed", zap.String("user_id", userID), zap.Error(err))
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// HandleReplace (PUT /api/karte/{userId})
func (h *KarteHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var input usecase.KarteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON", Details: err.Error()})
		return
	}

	output, err := h.ReplaceUC.Execute(r.Context(), userID, input)
	if err != nil {
		if !usecase.IsNotFound(err) {
			h.Logger.Error("karte replace failed", zap.String("user_id", userID), zap.Error(err))
		}
		writeError(w, err)
		return
	}

	middleware.RecordKarteWrite("replace")
	writeJSON(w, http.StatusOK, output)
}
