package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
	results ports.ResultsService
}

func NewPollHandler(service ports.PollService, results ports.ResultsService) *PollHandler {
	return &PollHandler{
		service: service,
		results: results,
	}
}

type createPollRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Anonymous   bool      `json:"anonymous"`
	Notify      bool      `json:"notify"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Options     []string  `json:"options"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	input := ports.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.PollType(req.Type),
		Anonymous:   req.Anonymous,
		Notify:      req.Notify,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Options:     req.Options,
		CreatedBy:   userID,
	}

	poll, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, poll)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing poll id", http.StatusBadRequest)
		return
	}

	poll, err := h.service.GetPoll(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pollResponse(poll, time.Now()))
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	filter := ports.PollFilter{
		Type:   domain.PollType(r.URL.Query().Get("type")),
		Status: domain.PollStatus(r.URL.Query().Get("status")),
	}

	polls, err := h.service.ListPolls(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	out := make([]map[string]any, 0, len(polls))
	for _, poll := range polls {
		out = append(out, pollResponse(poll, now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PollHandler) PurgePoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Purge(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetResults serves per-option tallies. Access policy lives in the results
// service: admin-only while active, public once closed.
func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	tallies, err := h.results.Results(r.Context(), pollID, isAdmin(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tallies)
}

// pollResponse augments the stored poll with its derived status.
func pollResponse(poll *domain.Poll, now time.Time) map[string]any {
	return map[string]any{
		"id":          poll.ID,
		"title":       poll.Title,
		"description": poll.Description,
		"type":        poll.Type,
		"anonymous":   poll.Anonymous,
		"status":      poll.StatusAt(now),
		"starts_at":   poll.StartsAt,
		"ends_at":     poll.EndsAt,
		"options":     poll.Options,
	}
}
