package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/kittygram/internal/serializer"
	"github.com/sakif/kittygram/internal/service"
)

type AchievementHandler struct {
	achievements *service.AchievementService
}

func NewAchievementHandler(achievements *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

// HandleList handles GET /api/achievements.
func (h *AchievementHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievements.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.RepresentAchievements(achievements))
}

// HandleGet handles GET /api/achievements/{id}.
func (h *AchievementHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.achievements.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.RepresentAchievement(*a))
}
