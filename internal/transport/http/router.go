package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"conduit/internal/handler"
	"conduit/internal/httputil"
	"conduit/internal/observability"
	authmw "conduit/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	ArticleHandler *handler.ArticleHandler
	CommentHandler *handler.CommentHandler
	TagHandler     *handler.TagHandler
	MediaHandler   *handler.MediaHandler // nil when object storage is not configured
	Sessions       authmw.SessionResolver
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(observability.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", observability.Handler())

	optional := authmw.OptionalAuthMiddleware(cfg.Sessions)
	required := authmw.AuthMiddleware(cfg.Sessions)

	r.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.Post("/users", cfg.AuthHandler.Register)
		r.Post("/users/login", cfg.AuthHandler.Login)
		r.Get("/tags", cfg.TagHandler.List)

		// Public routes personalised when a token is present
		r.Group(func(r chi.Router) {
			r.Use(optional)

			r.Get("/profiles/{username}", cfg.ProfileHandler.GetProfile)
			r.Get("/articles", cfg.ArticleHandler.List)
			r.Get("/articles/{slug}", cfg.ArticleHandler.Get)
			r.Get("/articles/{slug}/comments", cfg.CommentHandler.List)
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(required)

			r.Get("/user", cfg.AuthHandler.Current)
			r.Put("/user", cfg.AuthHandler.Update)
			if cfg.MediaHandler != nil {
				r.Post("/user/image", cfg.MediaHandler.UploadProfileImage)
			}

			r.Post("/profiles/{username}/follow", cfg.ProfileHandler.Follow)
			r.Delete("/profiles/{username}/follow", cfg.ProfileHandler.Unfollow)

			r.Get("/articles/feed", cfg.ArticleHandler.Feed)
			r.Post("/articles", cfg.ArticleHandler.Create)
			r.Put("/articles/{slug}", cfg.ArticleHandler.Update)
			r.Delete("/articles/{slug}", cfg.ArticleHandler.Delete)
			r.Post("/articles/{slug}/favorite", cfg.ArticleHandler.Favorite)
			r.Delete("/articles/{slug}/favorite", cfg.ArticleHandler.Unfavorite)

			r.Post("/articles/{slug}/comments", cfg.CommentHandler.Create)
			r.Delete("/articles/{slug}/comments/{id}", cfg.CommentHandler.Delete)
		})
	})

	return r
}
