package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"conduit/internal/cache"
	"conduit/internal/model"
	"conduit/internal/observability"
	"conduit/internal/repository"
)

// TagRegistry keeps the global set of tag names.
type TagRegistry struct {
	repo  repository.TagRepository
	cache cache.TagCache // nil when caching is disabled
}

func NewTagRegistry(repo repository.TagRepository, tagCache cache.TagCache) *TagRegistry {
	return &TagRegistry{repo: repo, cache: tagCache}
}

// RegisterAll inserts each distinct name. There is no prior existence check:
// a unique violation means another writer got there first, which is success.
func (r *TagRegistry) RegisterAll(ctx context.Context, names []string) error {
	names = model.NormalizeTags(names)
	if len(names) == 0 {
		return nil
	}

	for _, name := range names {
		err := r.repo.Create(ctx, &model.Tag{Name: name})
		switch {
		case err == nil:
			observability.TagRegistrations.WithLabelValues("created").Inc()
		case errors.Is(err, model.ErrTagExists):
			observability.TagRegistrations.WithLabelValues("existing").Inc()
		default:
			observability.TagRegistrations.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to register tag %q: %w", name, err)
		}
	}

	if r.cache != nil {
		if err := r.cache.Add(ctx, names...); err != nil {
			log.Printf("[TagRegistry] cache add failed: %v", err)
		}
	}
	return nil
}

// ListAllTagNames returns every registered name.
func (r *TagRegistry) ListAllTagNames(ctx context.Context) ([]string, error) {
	if r.cache != nil {
		names, found, err := r.cache.All(ctx)
		if err != nil {
			log.Printf("[TagRegistry] cache read failed: %v", err)
		} else if found {
			return names, nil
		}
	}

	names, err := r.repo.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Warm(ctx, names); err != nil {
			log.Printf("[TagRegistry] cache warm failed: %v", err)
		}
	}
	return names, nil
}
