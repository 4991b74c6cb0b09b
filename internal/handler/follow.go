package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/transport/http/middleware"
)

// Follow handles POST /profiles/{username}/follow
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	profile, err := h.profileService.Follow(r.Context(), actor, chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, "Follow handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ProfileResponse{Profile: *profile})
}

// Unfollow handles DELETE /profiles/{username}/follow
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	profile, err := h.profileService.Unfollow(r.Context(), actor, chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, "Unfollow handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ProfileResponse{Profile: *profile})
}
