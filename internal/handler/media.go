package handler

import (
	"errors"
	"net/http"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/service"
	"conduit/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadProfileImage handles POST /user/image
// Expects multipart/form-data with an "image" file field.
func (h *MediaHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	maxFormSize := int64(service.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			httputil.WriteDomainError(w, model.InvalidRequest("Body", "must be multipart/form-data"))
		case errors.As(err, &tooLarge):
			httputil.WriteDomainError(w, model.InvalidRequest("Image", "exceeds 5MB limit"))
		default:
			httputil.WriteDomainError(w, model.InvalidRequest("Body", "invalid form data"))
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteDomainError(w, model.InvalidRequest("Image", "can't be blank"))
		return
	}
	defer file.Close()

	user, err := h.mediaService.UploadProfileImage(r.Context(), session, file, header.Header.Get("Content-Type"))
	if err != nil {
		httputil.WriteServiceError(w, "UploadProfileImage handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.UserResponse{User: *user})
}
