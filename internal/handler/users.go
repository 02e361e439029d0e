package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/auth"
	"github.com/sakif/kittygram/internal/serializer"
	"github.com/sakif/kittygram/internal/service"
)

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	Access string `json:"access"`
}

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleRegister handles POST /api/users.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in serializer.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, serializer.RepresentUser(user, nil))
}

// HandleToken handles POST /api/auth/token.
func (h *UserHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var in serializer.CredentialsInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.users.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Access: token})
}

// HandleList handles GET /api/users.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]serializer.UserView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, serializer.RepresentUser(p.User, p.CatNames))
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /api/users/{id}.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, chi.URLParam(r, "id"))
}

// HandleMe handles GET /api/users/me.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("authentication required"))
		return
	}
	h.writeProfile(w, r, userID)
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.RepresentUser(p.User, p.CatNames))
}
