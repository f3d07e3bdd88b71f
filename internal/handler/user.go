package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moodcal/internal/httputil"
	"moodcal/internal/model"
	"moodcal/internal/service"
	"moodcal/internal/stats"
)

// UserHandler serves public profile and mood-history search.
type UserHandler struct {
	accountService *service.AccountService
	moodService    *service.MoodService
}

func NewUserHandler(accountService *service.AccountService, moodService *service.MoodService) *UserHandler {
	return &UserHandler{
		accountService: accountService,
		moodService:    moodService,
	}
}

// publicMoodsResponse is the body for GET /users/{username}/moods
type publicMoodsResponse struct {
	Profile model.PublicProfile  `json:"profile"`
	Moods   model.MoodCollection `json:"moods"`
	Stats   stats.Overview       `json:"stats"`
}

// Lookup resolves a username to a public profile
// GET /users/{username}
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.accountService.Lookup(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to look up user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile.Public())
}

// Moods returns another user's public mood history with summaries
// GET /users/{username}/moods
func (h *UserHandler) Moods(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.accountService.Lookup(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to look up user")
		return
	}

	col := h.moodService.GetAll(r.Context(), profile.ID)
	httputil.WriteJSON(w, http.StatusOK, publicMoodsResponse{
		Profile: profile.Public(),
		Moods:   col,
		Stats:   h.moodService.SummariesFor(col),
	})
}
