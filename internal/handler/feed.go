package handler

import (
	"net/http"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/transport/http/middleware"
)

// Feed handles GET /articles/feed
// Returns articles by authors the caller follows, newest first.
//
// Query params:
//   - offset: optional, default 0
//   - limit: optional, default 20, max 100
func (h *ArticleHandler) Feed(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())
	if viewer == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	offset, limit, err := parsePage(r)
	if err != nil {
		httputil.WriteServiceError(w, "GetFeed handler", err)
		return
	}

	views, err := h.query.Feed(r.Context(), viewer, offset, limit)
	if err != nil {
		httputil.WriteServiceError(w, "GetFeed handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.NewArticleListResponse(views))
}
