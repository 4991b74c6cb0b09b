package repository

import (
	"context"

	"conduit/internal/cache"
	"conduit/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// GetByID also loads the user's following set.
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *model.User) error
}

type FollowRepository interface {
	// Create reports false when the edge already existed.
	Create(ctx context.Context, followerID, followeeID string) (bool, error)
	// Delete reports false when there was no edge.
	Delete(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

type ArticleRepository interface {
	// Create stores the article and its tags in one transaction.
	Create(ctx context.Context, article *model.Article) error
	// Update rewrites slug, title, description and body.
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, articleID string) error
	// GetBySlug returns the article with its tags and favoriting set.
	GetBySlug(ctx context.Context, slug string) (*model.Article, error)
	// GetByIDs keeps the order of ids and skips missing articles.
	GetByIDs(ctx context.Context, ids []string) ([]*model.Article, error)
	// Find orders by creation time, newest first, then applies offset and limit.
	Find(ctx context.Context, criteria model.ArticleCriteria) ([]*model.Article, error)
	// GetFeedScores returns the newest limit articles by the given authors.
	GetFeedScores(ctx context.Context, authorIDs []string, limit int) ([]cache.ArticleScore, error)
	// AddFavorite reports false when the favorite already existed.
	AddFavorite(ctx context.Context, articleID, userID string) (bool, error)
	// RemoveFavorite reports false when there was nothing to remove.
	RemoveFavorite(ctx context.Context, articleID, userID string) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// GetByArticleID returns comments newest first.
	GetByArticleID(ctx context.Context, articleID string) ([]model.Comment, error)
	GetByID(ctx context.Context, articleID, commentID string) (*model.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

type TagRepository interface {
	// Create returns model.ErrTagExists when the name is already registered.
	Create(ctx context.Context, tag *model.Tag) error
	ListNames(ctx context.Context) ([]string, error)
}
