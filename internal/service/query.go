package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"conduit/internal/cache"
	"conduit/internal/model"
	"conduit/internal/observability"
	"conduit/internal/repository"
)

// NormalizePage clamps offset to >= 0 and limit to [1, MaxLimit]; a
// non-positive limit means the default.
func NormalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = model.DefaultLimit
	}
	if limit > model.MaxLimit {
		limit = model.MaxLimit
	}
	return offset, limit
}

// ArticleQueryEngine builds filtered, ordered and paginated article listings
// and renders them for a viewer.
type ArticleQueryEngine struct {
	users    repository.UserRepository
	articles repository.ArticleRepository
	feeds    cache.FeedCache // nil when caching is disabled
}

func NewArticleQueryEngine(users repository.UserRepository, articles repository.ArticleRepository, feeds cache.FeedCache) *ArticleQueryEngine {
	return &ArticleQueryEngine{
		users:    users,
		articles: articles,
		feeds:    feeds,
	}
}

// resolveUserID returns ("", false, nil) when username names nobody.
func (q *ArticleQueryEngine) resolveUserID(ctx context.Context, username string) (string, bool, error) {
	user, err := q.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to resolve %q: %w", username, err)
	}
	return user.ID, true, nil
}

// List returns articles matching every supplied criterion, newest first.
// An author or favoriting username that does not exist yields an empty list.
func (q *ArticleQueryEngine) List(ctx context.Context, query model.ArticleQuery, viewer *model.User) ([]model.ArticleView, error) {
	offset, limit := NormalizePage(query.Offset, query.Limit)
	criteria := model.ArticleCriteria{
		Tag:    query.Tag,
		Offset: offset,
		Limit:  limit,
	}

	if query.Author != "" {
		id, ok, err := q.resolveUserID(ctx, query.Author)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []model.ArticleView{}, nil
		}
		criteria.AuthorID = id
	}

	if query.FavoritedBy != "" {
		id, ok, err := q.resolveUserID(ctx, query.FavoritedBy)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []model.ArticleView{}, nil
		}
		criteria.FavoritedByID = id
	}

	articles, err := q.articles.Find(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return q.Views(ctx, articles, viewer)
}

// Feed lists articles by authors the viewer follows, newest first.
func (q *ArticleQueryEngine) Feed(ctx context.Context, viewer *model.User, offset, limit int) ([]model.ArticleView, error) {
	offset, limit = NormalizePage(offset, limit)
	if viewer.FollowingIDs.Len() == 0 {
		return []model.ArticleView{}, nil
	}

	var (
		articles []*model.Article
		err      error
	)
	if q.feeds != nil {
		articles, err = q.cachedFeed(ctx, viewer, offset, limit)
	} else {
		observability.FeedCacheReads.WithLabelValues("bypass").Inc()
		articles, err = q.articles.Find(ctx, model.ArticleCriteria{
			AuthorIDs: viewer.FollowingIDs.Slice(),
			Offset:    offset,
			Limit:     limit,
		})
	}
	if err != nil {
		return nil, err
	}
	return q.Views(ctx, articles, viewer)
}

// cachedFeed serves the page from the user's feed key when it covers the
// requested range. The key holds the newest FeedCacheCap entries, so it
// covers any page when it is not full, and otherwise pages ending inside it.
// Anything else falls back to the store; a missing key is warmed.
func (q *ArticleQueryEngine) cachedFeed(ctx context.Context, viewer *model.User, offset, limit int) ([]*model.Article, error) {
	startTime := time.Now()
	criteria := model.ArticleCriteria{
		AuthorIDs: viewer.FollowingIDs.Slice(),
		Offset:    offset,
		Limit:     limit,
	}

	exists, err := q.feeds.Exists(ctx, viewer.ID)
	if err != nil {
		log.Printf("[QueryEngine] Feed cache check failed for user=%s: %v", viewer.ID, err)
		observability.FeedCacheReads.WithLabelValues("error").Inc()
		return q.articles.Find(ctx, criteria)
	}

	if !exists {
		observability.FeedCacheReads.WithLabelValues("miss").Inc()
		q.warmFeed(ctx, viewer, criteria.AuthorIDs)
		return q.articles.Find(ctx, criteria)
	}

	size, err := q.feeds.Size(ctx, viewer.ID)
	if err != nil || (size >= cache.FeedCacheCap && int64(offset+limit) > size) {
		observability.FeedCacheReads.WithLabelValues("bypass").Inc()
		return q.articles.Find(ctx, criteria)
	}

	ids, err := q.feeds.GetPage(ctx, viewer.ID, offset, limit)
	if err != nil {
		observability.FeedCacheReads.WithLabelValues("error").Inc()
		return q.articles.Find(ctx, criteria)
	}
	observability.FeedCacheReads.WithLabelValues("hit").Inc()

	// Ids of deleted articles are skipped by GetByIDs
	articles, err := q.articles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	log.Printf("[QueryEngine] Feed from cache: user=%s offset=%d limit=%d returned=%d duration=%v",
		viewer.ID, offset, limit, len(articles), time.Since(startTime))
	return articles, nil
}

func (q *ArticleQueryEngine) warmFeed(ctx context.Context, viewer *model.User, authorIDs []string) {
	scores, err := q.articles.GetFeedScores(ctx, authorIDs, cache.FeedCacheCap)
	if err != nil {
		log.Printf("[QueryEngine] Feed warm failed for user=%s: %v", viewer.ID, err)
		return
	}
	if err := q.feeds.WarmCache(ctx, viewer.ID, scores); err != nil {
		log.Printf("[QueryEngine] Feed warm failed for user=%s: %v", viewer.ID, err)
		return
	}

	// An article committed after the snapshot may have been fanned out before
	// the key existed, so re-read once the key is visible to the workers.
	latest, err := q.articles.GetFeedScores(ctx, authorIDs, cache.FeedCacheCap)
	if err != nil {
		log.Printf("[QueryEngine] Feed catch-up failed for user=%s: %v", viewer.ID, err)
		if err := q.feeds.Invalidate(ctx, viewer.ID); err != nil {
			log.Printf("[QueryEngine] Feed invalidate failed for user=%s: %v", viewer.ID, err)
		}
		return
	}
	if err := q.feeds.Merge(ctx, viewer.ID, latest); err != nil {
		log.Printf("[QueryEngine] Feed catch-up failed for user=%s: %v", viewer.ID, err)
		if err := q.feeds.Invalidate(ctx, viewer.ID); err != nil {
			log.Printf("[QueryEngine] Feed invalidate failed for user=%s: %v", viewer.ID, err)
		}
	}
}

// GetBySlug renders one article for viewer.
func (q *ArticleQueryEngine) GetBySlug(ctx context.Context, slug string, viewer *model.User) (*model.ArticleView, error) {
	article, err := q.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	return q.View(ctx, article, viewer)
}

// load fetches an article, reporting absence as NotFound("Article").
func (q *ArticleQueryEngine) load(ctx context.Context, slug string) (*model.Article, error) {
	article, err := q.articles.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return nil, model.NotFound("Article")
		}
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	return article, nil
}

// View renders a single article for viewer.
func (q *ArticleQueryEngine) View(ctx context.Context, a *model.Article, viewer *model.User) (*model.ArticleView, error) {
	views, err := q.Views(ctx, []*model.Article{a}, viewer)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, model.NotFound("Article")
	}
	return &views[0], nil
}

// Views renders articles for viewer, loading all authors in one query.
// Articles whose author cannot be found are skipped.
func (q *ArticleQueryEngine) Views(ctx context.Context, articles []*model.Article, viewer *model.User) ([]model.ArticleView, error) {
	views := make([]model.ArticleView, 0, len(articles))
	if len(articles) == 0 {
		return views, nil
	}

	authorIDs := model.NewIDSet()
	for _, a := range articles {
		authorIDs.Add(a.AuthorID)
	}
	authors, err := q.users.GetByIDs(ctx, authorIDs.Slice())
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	for _, a := range articles {
		author, ok := authors[a.AuthorID]
		if !ok {
			log.Printf("[QueryEngine] author missing: article=%s author=%s", a.ID, a.AuthorID)
			continue
		}
		views = append(views, model.NewArticleView(a, author, viewer))
	}
	return views, nil
}
