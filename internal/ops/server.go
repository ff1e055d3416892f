// Package ops exposes a small read-only HTTP API for operators:
// health, the full event list, and per-event participants.
package ops

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"eventbot/internal/logger"
	"eventbot/internal/models"
	"eventbot/internal/store"

	"github.com/go-chi/chi/v5"
)

type DBLayer interface {
	Events() ([]models.Event, error)
	EventByID(id int64) (*models.Event, error)
	RegistrationsByEvent(eventID int64) ([]models.Registration, error)
}

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type Handler struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewHandler(db DBLayer, log *logger.Logger) *Handler {
	return &Handler{DB: db, Logger: log}
}

func (h *Handler) logError(message string) {
	if h.Logger != nil {
		h.Logger.Error("HTTP", message)
	}
}

// Router builds the ops API routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/events", h.ListEvents)
		r.Get("/events/{eventID}/registrations", h.ListRegistrations)
	})
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success:   true,
		Message:   "ok",
		Timestamp: time.Now(),
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.DB.Events()
	if err != nil {
		h.logError("failed to list events: " + err.Error())
		writeJSON(w, http.StatusInternalServerError, APIResponse{
			Success:   false,
			Message:   "failed to list events",
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success:   true,
		Message:   "events",
		Data:      events,
		Timestamp: time.Now(),
	})
}

func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success:   false,
			Message:   "invalid event id",
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	if _, err := h.DB.EventByID(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, APIResponse{
			Success:   false,
			Message:   "event not found",
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	regs, err := h.DB.RegistrationsByEvent(id)
	if err != nil {
		h.logError("failed to list registrations: " + err.Error())
		writeJSON(w, http.StatusInternalServerError, APIResponse{
			Success:   false,
			Message:   "failed to list registrations",
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	totalSeats := 0
	for _, reg := range regs {
		totalSeats += reg.Seats
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "registrations",
		Data: map[string]interface{}{
			"registrations": regs,
			"total_seats":   totalSeats,
		},
		Timestamp: time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
