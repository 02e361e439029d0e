package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/auth"
	"github.com/sakif/kittygram/internal/serializer"
	"github.com/sakif/kittygram/internal/service"
)

type CatHandler struct {
	cats       *service.CatService
	serializer *serializer.CatSerializer
	logger     *slog.Logger
}

func NewCatHandler(cats *service.CatService, s *serializer.CatSerializer, logger *slog.Logger) *CatHandler {
	return &CatHandler{cats: cats, serializer: s, logger: logger}
}

// HandleList handles GET /api/cats. ?owner=<user id> narrows the list.
func (h *CatHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cats, err := h.cats.List(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.serializer.RepresentMany(cats))
}

// HandleCreate handles POST /api/cats. The cat belongs to the caller.
func (h *CatHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("authentication required"))
		return
	}

	var in serializer.CatInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := h.cats.Create(r.Context(), in, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.serializer.Represent(cat))
}

// HandleGet handles GET /api/cats/{id}.
func (h *CatHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cat, err := h.cats.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.serializer.Represent(cat))
}

// HandleUpdate handles PUT /api/cats/{id}.
func (h *CatHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// HandlePatch handles PATCH /api/cats/{id}.
func (h *CatHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *CatHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("authentication required"))
		return
	}

	var in serializer.CatInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := h.cats.Update(r.Context(), chi.URLParam(r, "id"), in, userID, partial)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.serializer.Represent(cat))
}

// HandleDelete handles DELETE /api/cats/{id}.
func (h *CatHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("authentication required"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.cats.Delete(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}

	h.logger.Debug("cat delete served", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}
