package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/service"
	"conduit/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create handles POST /articles/{slug}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.Add(r.Context(), actor, chi.URLParam(r, "slug"), req.Comment)
	if err != nil {
		httputil.WriteServiceError(w, "CreateComment handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.CommentResponse{Comment: *comment})
}

// List handles GET /articles/{slug}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.List(r.Context(), middleware.GetViewerFromContext(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteServiceError(w, "ListComments handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.CommentListResponse{Comments: comments})
}

// Delete handles DELETE /articles/{slug}/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	if err := h.commentService.Delete(r.Context(), actor, chi.URLParam(r, "slug"), chi.URLParam(r, "id")); err != nil {
		httputil.WriteServiceError(w, "DeleteComment handler", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
