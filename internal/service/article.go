package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"conduit/internal/auth"
	"conduit/internal/model"
	"conduit/internal/queue"
	"conduit/internal/repository"
)

// ArticleService owns article writes. Every mutation loads the article first,
// then checks ownership, then writes.
type ArticleService struct {
	articles  repository.ArticleRepository
	query     *ArticleQueryEngine
	tags      *TagRegistry
	toggle    *MembershipToggle
	publisher queue.Publisher // nil when events are disabled
}

func NewArticleService(
	articles repository.ArticleRepository,
	query *ArticleQueryEngine,
	tags *TagRegistry,
	toggle *MembershipToggle,
	publisher queue.Publisher,
) *ArticleService {
	return &ArticleService{
		articles:  articles,
		query:     query,
		tags:      tags,
		toggle:    toggle,
		publisher: publisher,
	}
}

func slugErr(err error) error {
	if errors.Is(err, model.ErrSlugTaken) {
		return model.InvalidRequest("Slug", "already in use")
	}
	return nil
}

func validTitle(title string) error {
	if err := required("Title", title); err != nil {
		return err
	}
	if model.Slugify(title) == "" {
		return model.InvalidRequest("Title", "must contain a letter or digit")
	}
	return nil
}

func (s *ArticleService) Create(ctx context.Context, author *model.User, in model.NewArticle) (*model.ArticleView, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validTitle(in.Title); err != nil {
		return nil, err
	}
	if err := required("Description", in.Description); err != nil {
		return nil, err
	}
	if err := required("Body", in.Body); err != nil {
		return nil, err
	}

	article := &model.Article{
		Description: in.Description,
		Body:        in.Body,
		AuthorID:    author.ID,
		Tags:        model.NormalizeTags(in.TagList),
		FavoritedBy: model.NewIDSet(),
	}
	article.SetTitle(in.Title)

	if err := s.articles.Create(ctx, article); err != nil {
		if e := slugErr(err); e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	log.Printf("[ArticleService] Create OK: article=%s slug=%s author=%s tags=%d",
		article.ID, article.Slug, author.ID, len(article.Tags))
	s.publish(ctx, queue.NewArticleCreatedEvent(article.ID, author.ID, article.CreatedAt))

	// Tags are registered only once an article carries them
	if err := s.tags.RegisterAll(ctx, article.Tags); err != nil {
		return nil, err
	}

	view := model.NewArticleView(article, author, author)
	return &view, nil
}

func (s *ArticleService) Update(ctx context.Context, actor *model.User, slug string, upd model.ArticleUpdate) (*model.ArticleView, error) {
	article, err := s.query.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !auth.CanMutateArticle(article, actor) {
		return nil, model.PermissionDenied("Article", "update article")
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if err := validTitle(title); err != nil {
			return nil, err
		}
		article.SetTitle(title)
	}
	if upd.Description != nil {
		if err := required("Description", *upd.Description); err != nil {
			return nil, err
		}
		article.Description = *upd.Description
	}
	if upd.Body != nil {
		if err := required("Body", *upd.Body); err != nil {
			return nil, err
		}
		article.Body = *upd.Body
	}

	if err := s.articles.Update(ctx, article); err != nil {
		if e := slugErr(err); e != nil {
			return nil, e
		}
		if errors.Is(err, model.ErrArticleNotFound) {
			return nil, model.NotFound("Article")
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	log.Printf("[ArticleService] Update OK: article=%s slug=%s", article.ID, article.Slug)
	view := model.NewArticleView(article, actor, actor)
	return &view, nil
}

func (s *ArticleService) Delete(ctx context.Context, actor *model.User, slug string) error {
	article, err := s.query.load(ctx, slug)
	if err != nil {
		return err
	}
	if !auth.CanMutateArticle(article, actor) {
		return model.PermissionDenied("Article", "delete article")
	}

	if err := s.articles.Delete(ctx, article.ID); err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return model.NotFound("Article")
		}
		return fmt.Errorf("failed to delete article: %w", err)
	}

	log.Printf("[ArticleService] Delete OK: article=%s slug=%s", article.ID, article.Slug)
	s.publish(ctx, queue.NewArticleDeletedEvent(article.ID, article.AuthorID))
	return nil
}

// Favorite marks the article as a favorite of actor; repeating it is a no-op.
func (s *ArticleService) Favorite(ctx context.Context, actor *model.User, slug string) (*model.ArticleView, error) {
	article, err := s.query.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.toggle.Favorite(ctx, article, actor); err != nil {
		return nil, err
	}
	return s.query.View(ctx, article, actor)
}

func (s *ArticleService) Unfavorite(ctx context.Context, actor *model.User, slug string) (*model.ArticleView, error) {
	article, err := s.query.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.toggle.Unfavorite(ctx, article, actor); err != nil {
		return nil, err
	}
	return s.query.View(ctx, article, actor)
}

// publish is best effort; the write has already committed.
func (s *ArticleService) publish(ctx context.Context, event queue.ArticleEvent) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[ArticleService] publish %s failed: article=%s err=%v", event.Type, event.ArticleID, err)
	}
}
