package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"conduit/internal/auth"
	"conduit/internal/model"
	"conduit/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	users    repository.UserRepository
	query    *ArticleQueryEngine
}

func NewCommentService(comments repository.CommentRepository, users repository.UserRepository, query *ArticleQueryEngine) *CommentService {
	return &CommentService{
		comments: comments,
		users:    users,
		query:    query,
	}
}

func (s *CommentService) Add(ctx context.Context, actor *model.User, slug string, in model.NewComment) (*model.CommentView, error) {
	article, err := s.query.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := required("Body", in.Body); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ArticleID: article.ID,
		AuthorID:  actor.ID,
		Body:      in.Body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	log.Printf("[CommentService] Add OK: comment=%s article=%s author=%s", comment.ID, article.ID, actor.ID)
	view := model.NewCommentView(comment, actor, actor)
	return &view, nil
}

// List returns the article's comments newest first, each with its author's
// profile as seen by viewer.
func (s *CommentService) List(ctx context.Context, viewer *model.User, slug string) ([]model.CommentView, error) {
	article, err := s.query.load(ctx, slug)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.GetByArticleID(ctx, article.ID)
	if err != nil {
		return nil, err
	}

	authorIDs := model.NewIDSet()
	for _, c := range comments {
		authorIDs.Add(c.AuthorID)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs.Slice())
	if err != nil {
		return nil, fmt.Errorf("failed to load comment authors: %w", err)
	}

	views := make([]model.CommentView, 0, len(comments))
	for i := range comments {
		author, ok := authors[comments[i].AuthorID]
		if !ok {
			continue
		}
		views = append(views, model.NewCommentView(&comments[i], author, viewer))
	}
	return views, nil
}

// Delete locates the article, then the comment within it, then checks ownership.
func (s *CommentService) Delete(ctx context.Context, actor *model.User, slug, commentID string) error {
	article, err := s.query.load(ctx, slug)
	if err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, article.ID, commentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			return model.NotFound("Comment")
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	if !auth.CanDeleteComment(comment, actor) {
		return model.PermissionDenied("Comment", "delete comment")
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			return model.NotFound("Comment")
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	log.Printf("[CommentService] Delete OK: comment=%s article=%s", comment.ID, article.ID)
	return nil
}
