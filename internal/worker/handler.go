package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"conduit/internal/cache"
	"conduit/internal/queue"
)

// FollowerProvider returns the ids of users following userID.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// Handler keeps followers' feed caches in step with article events.
type Handler struct {
	feedCache        cache.FeedCache
	followerProvider FollowerProvider
}

func NewHandler(feedCache cache.FeedCache, followerProvider FollowerProvider) *Handler {
	return &Handler{
		feedCache:        feedCache,
		followerProvider: followerProvider,
	}
}

// HandleEvent routes an event by type. Unknown types are an error so they
// show up in logs, but the caller still acknowledges them.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ArticleEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventArticleCreated:
		err = h.handleArticleCreated(ctx, event)
	case queue.EventArticleDeleted:
		err = h.handleArticleDeleted(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleArticleCreated adds the article to every follower feed that is
// currently cached. Cold feeds are built from the store on their next read.
func (h *Handler) handleArticleCreated(ctx context.Context, event queue.ArticleEvent) error {
	followers, err := h.followerProvider.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var added, failCount int
	for _, followerID := range followers {
		ok, err := h.feedCache.AddArticle(ctx, followerID, event.ArticleID, event.CreatedAt)
		if err != nil {
			log.Printf("[Worker] ArticleCreated: failed to add to user=%s err=%v", followerID, err)
			failCount++
			continue
		}
		if ok {
			added++
		}
	}

	log.Printf("[Worker] ArticleCreated DONE: article=%s followers=%d added=%d failed=%d",
		event.ArticleID, len(followers), added, failCount)
	return nil
}

func (h *Handler) handleArticleDeleted(ctx context.Context, event queue.ArticleEvent) error {
	followers, err := h.followerProvider.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.RemoveArticle(ctx, followerID, event.ArticleID); err != nil {
			log.Printf("[Worker] ArticleDeleted: failed to remove from user=%s err=%v", followerID, err)
			failCount++
		}
	}

	log.Printf("[Worker] ArticleDeleted DONE: article=%s followers=%d failed=%d",
		event.ArticleID, len(followers), failCount)
	return nil
}
