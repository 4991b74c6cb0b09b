package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/service"
	"conduit/internal/transport/http/middleware"
)

type ArticleHandler struct {
	articleService *service.ArticleService
	query          *service.ArticleQueryEngine
}

func NewArticleHandler(articleService *service.ArticleService, query *service.ArticleQueryEngine) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		query:          query,
	}
}

// List handles GET /articles
//
// Query params:
//   - tag, author, favorited: optional filters, all must match
//   - offset: optional, default 0
//   - limit: optional, default 20, max 100
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := parsePage(r)
	if err != nil {
		httputil.WriteServiceError(w, "ListArticles handler", err)
		return
	}

	q := r.URL.Query()
	views, err := h.query.List(r.Context(), model.ArticleQuery{
		Tag:         q.Get("tag"),
		Author:      q.Get("author"),
		FavoritedBy: q.Get("favorited"),
		Offset:      offset,
		Limit:       limit,
	}, middleware.GetViewerFromContext(r.Context()))
	if err != nil {
		httputil.WriteServiceError(w, "ListArticles handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.NewArticleListResponse(views))
}

// Get handles GET /articles/{slug}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.query.GetBySlug(r.Context(), chi.URLParam(r, "slug"), middleware.GetViewerFromContext(r.Context()))
	if err != nil {
		httputil.WriteServiceError(w, "GetArticle handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ArticleResponse{Article: *view})
}

// Create handles POST /articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	var req model.CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := h.articleService.Create(r.Context(), actor, req.Article)
	if err != nil {
		httputil.WriteServiceError(w, "CreateArticle handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.ArticleResponse{Article: *view})
}

// Update handles PUT /articles/{slug}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	var req model.UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := h.articleService.Update(r.Context(), actor, chi.URLParam(r, "slug"), req.Article)
	if err != nil {
		httputil.WriteServiceError(w, "UpdateArticle handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ArticleResponse{Article: *view})
}

// Delete handles DELETE /articles/{slug}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	if err := h.articleService.Delete(r.Context(), actor, chi.URLParam(r, "slug")); err != nil {
		httputil.WriteServiceError(w, "DeleteArticle handler", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Favorite handles POST /articles/{slug}/favorite
func (h *ArticleHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	view, err := h.articleService.Favorite(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteServiceError(w, "Favorite handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ArticleResponse{Article: *view})
}

// Unfavorite handles DELETE /articles/{slug}/favorite
func (h *ArticleHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetViewerFromContext(r.Context())
	if actor == nil {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	view, err := h.articleService.Unfavorite(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteServiceError(w, "Unfavorite handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ArticleResponse{Article: *view})
}
