package service

import (
	"context"
	"fmt"
	"log"

	"conduit/internal/cache"
	"conduit/internal/model"
	"conduit/internal/observability"
	"conduit/internal/repository"
)

// MembershipToggle performs idempotent favorite and follow changes. Each
// change is one row insert or delete, so repeat calls never write twice and
// concurrent toggles by different users never overwrite each other.
type MembershipToggle struct {
	articles repository.ArticleRepository
	follows  repository.FollowRepository
	feeds    cache.FeedCache // nil when caching is disabled
}

func NewMembershipToggle(articles repository.ArticleRepository, follows repository.FollowRepository, feeds cache.FeedCache) *MembershipToggle {
	return &MembershipToggle{
		articles: articles,
		follows:  follows,
		feeds:    feeds,
	}
}

// Favorite adds user to the article's favoriting set and reports whether it changed.
func (m *MembershipToggle) Favorite(ctx context.Context, a *model.Article, user *model.User) (bool, error) {
	if !a.Favorite(user.ID) {
		observability.RecordToggle("favorite", false)
		return false, nil
	}

	changed, err := m.articles.AddFavorite(ctx, a.ID, user.ID)
	if err != nil {
		a.Unfavorite(user.ID)
		return false, fmt.Errorf("failed to favorite: %w", err)
	}

	observability.RecordToggle("favorite", changed)
	log.Printf("[Membership] Favorite: article=%s user=%s changed=%t", a.ID, user.ID, changed)
	return changed, nil
}

// Unfavorite is the mirror of Favorite.
func (m *MembershipToggle) Unfavorite(ctx context.Context, a *model.Article, user *model.User) (bool, error) {
	if !a.Unfavorite(user.ID) {
		observability.RecordToggle("unfavorite", false)
		return false, nil
	}

	changed, err := m.articles.RemoveFavorite(ctx, a.ID, user.ID)
	if err != nil {
		a.Favorite(user.ID)
		return false, fmt.Errorf("failed to unfavorite: %w", err)
	}

	observability.RecordToggle("unfavorite", changed)
	log.Printf("[Membership] Unfavorite: article=%s user=%s changed=%t", a.ID, user.ID, changed)
	return changed, nil
}

// Follow adds target to actor's following set. The follow row is always
// written (idempotently) so a stale in-memory set cannot skip it.
func (m *MembershipToggle) Follow(ctx context.Context, actor, target *model.User) (bool, error) {
	changed, err := m.follows.Create(ctx, actor.ID, target.ID)
	if err != nil {
		return false, fmt.Errorf("failed to follow: %w", err)
	}
	actor.Follow(target.ID)

	if changed {
		m.invalidateFeed(ctx, actor.ID)
	}
	log.Printf("[Membership] Follow: follower=%s followee=%s changed=%t", actor.ID, target.ID, changed)
	return changed, nil
}

// Unfollow removes target from actor's following set.
func (m *MembershipToggle) Unfollow(ctx context.Context, actor, target *model.User) (bool, error) {
	changed, err := m.follows.Delete(ctx, actor.ID, target.ID)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow: %w", err)
	}
	actor.Unfollow(target.ID)

	if changed {
		m.invalidateFeed(ctx, actor.ID)
	}
	log.Printf("[Membership] Unfollow: follower=%s followee=%s changed=%t", actor.ID, target.ID, changed)
	return changed, nil
}

// invalidateFeed drops the follower's cached feed; it is rebuilt on next read.
func (m *MembershipToggle) invalidateFeed(ctx context.Context, userID string) {
	if m.feeds == nil {
		return
	}
	if err := m.feeds.Invalidate(ctx, userID); err != nil {
		log.Printf("[Membership] feed invalidation failed: user=%s err=%v", userID, err)
	}
}
