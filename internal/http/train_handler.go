package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/train-scheduler/internal/application"
)

type trainService interface {
	ListTrains(ctx context.Context) ([]application.Train, error)
	GetTrain(ctx context.Context, trainIdentifier string) (application.Train, error)
}

type TrainHandler struct {
	service   trainService
	responder responder
}

func NewTrainHandler(service trainService, logger *slog.Logger) *TrainHandler {
	return &TrainHandler{service: service, responder: newResponder(logger)}
}

// List handles GET /trains.
func (h *TrainHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	trains, err := h.service.ListTrains(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	items := make([]trainDTO, 0, len(trains))
	for _, train := range trains {
		items = append(items, toTrainDTO(train))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, trainListResponse{Count: len(items), Items: items})
}

// Get handles GET /trains/{train}.
func (h *TrainHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, _ := TrainNameFromContext(r.Context())
	train, err := h.service.GetTrain(r.Context(), name)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTrainDTO(train))
}

type trainListResponse struct {
	Count int        `json:"count"`
	Items []trainDTO `json:"items"`
}
