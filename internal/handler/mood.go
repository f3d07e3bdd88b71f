package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moodcal/internal/httputil"
	"moodcal/internal/model"
	"moodcal/internal/service"
	"moodcal/internal/transport/http/middleware"
)

// MoodHandler serves the authenticated user's mood calendar.
type MoodHandler struct {
	moodService *service.MoodService
}

func NewMoodHandler(moodService *service.MoodService) *MoodHandler {
	return &MoodHandler{moodService: moodService}
}

// upsertMoodRequest is the body for PUT /moods/{date}
type upsertMoodRequest struct {
	Value int `json:"value"`
}

// List returns the full mood collection
// GET /moods
func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.moodService.GetAll(r.Context(), userID))
}

// Upsert saves the mood for one calendar date
// PUT /moods/{date}
func (h *MoodHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req upsertMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	rec, err := h.moodService.Save(r.Context(), userID, chi.URLParam(r, "date"), req.Value)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidDate):
			httputil.WriteBadRequest(w, "Date must be in YYYY-MM-DD form")
		case errors.Is(err, model.ErrInvalidMoodValue):
			httputil.WriteBadRequest(w, "Mood value must be between -3 and 3")
		default:
			httputil.WriteInternalError(w, "Failed to save mood")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, rec)
}

// Delete removes the mood for one calendar date
// DELETE /moods/{date}
func (h *MoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	err := h.moodService.Delete(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		if errors.Is(err, model.ErrInvalidDate) {
			httputil.WriteBadRequest(w, "Date must be in YYYY-MM-DD form")
			return
		}
		httputil.WriteInternalError(w, "Failed to delete mood")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats returns the week/month/all-time summaries
// GET /moods/stats
func (h *MoodHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.moodService.Summaries(r.Context(), userID))
}

// Stream pushes the live mood collection over Server-Sent Events. The first
// event carries the current state; every change under the user produces a
// fresh snapshot event. The stream ends when the client disconnects.
// GET /moods/stream
func (h *MoodHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteInternalError(w, "Streaming not supported")
		return
	}

	sub := h.moodService.Subscribe(r.Context(), userID)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case col, open := <-sub.C:
			if !open {
				return
			}
			payload, err := json.Marshal(col)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: moods\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
