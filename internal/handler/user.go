package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/service"
	"conduit/internal/transport/http/middleware"
)

// ProfileHandler serves public profiles and follow changes.
type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile handles GET /profiles/{username}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	profile, err := h.profileService.Get(r.Context(), viewer, chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, "GetProfile handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ProfileResponse{Profile: *profile})
}
