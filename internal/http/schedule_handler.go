package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/train-scheduler/internal/application"
)

type scheduleService interface {
	AddSchedule(ctx context.Context, trainIdentifier string, arrivalTimes []string) error
	GetSchedule(ctx context.Context, trainIdentifier string) ([]application.ScheduleEntry, error)
	GetNextSchedule(ctx context.Context) ([]application.ScheduleEntry, error)
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

// Create handles POST /schedules.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.TrainName == nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTrainName)
		return
	}
	if req.ArrivalTimes == nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTimes)
		return
	}

	logger := handlerLogger(r.Context(), h.responder.logger, "ScheduleHandler", "Create")
	if err := h.service.AddSchedule(r.Context(), *req.TrainName, req.ArrivalTimes); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.DebugContext(r.Context(), "schedule created", "count", len(req.ArrivalTimes))

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleCreatedResponse{
		TrainName: strings.TrimSpace(*req.TrainName),
		Count:     len(req.ArrivalTimes),
	})
}

// Get handles GET /schedules/{train}.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	train, _ := TrainNameFromContext(r.Context())
	entries, err := h.service.GetSchedule(r.Context(), train)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleListResponse(entries))
}

// Next handles GET /next.
func (h *ScheduleHandler) Next(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entries, err := h.service.GetNextSchedule(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleListResponse(entries))
}

type scheduleRequest struct {
	TrainName    *string  `json:"train_name"`
	ArrivalTimes []string `json:"arrival_times"`
}

type scheduleCreatedResponse struct {
	TrainName string `json:"train_name"`
	Count     int    `json:"count"`
}

type trainDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type stationDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type scheduleEntryDTO struct {
	Train       trainDTO   `json:"train"`
	Station     stationDTO `json:"station"`
	ArrivalTime string     `json:"arrival_time"`
}

type scheduleListResponse struct {
	Count int                `json:"count"`
	Items []scheduleEntryDTO `json:"items"`
}

func toTrainDTO(train application.Train) trainDTO {
	return trainDTO{ID: train.ID, Name: train.Name}
}

func toScheduleListResponse(entries []application.ScheduleEntry) scheduleListResponse {
	items := make([]scheduleEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, scheduleEntryDTO{
			Train:       toTrainDTO(entry.Train),
			Station:     stationDTO{ID: entry.Station.ID, Name: entry.Station.Name},
			ArrivalTime: entry.ArrivalTime.Canonical(),
		})
	}
	return scheduleListResponse{Count: len(items), Items: items}
}
