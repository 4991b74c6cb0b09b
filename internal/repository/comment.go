package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"conduit/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO comments (id, article_id, author_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.ID, c.ArticleID, c.AuthorID, c.Body).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByArticleID(ctx context.Context, articleID string) ([]model.Comment, error) {
	query := `
		SELECT id, article_id, author_id, body, created_at, updated_at
		FROM comments
		WHERE article_id = $1
		ORDER BY created_at DESC, id DESC
	`

	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}

// GetByID only finds the comment through the article it belongs to.
func (r *commentRepository) GetByID(ctx context.Context, articleID, commentID string) (*model.Comment, error) {
	query := `
		SELECT id, article_id, author_id, body, created_at, updated_at
		FROM comments
		WHERE id = $1 AND article_id = $2
	`

	var c model.Comment
	if err := r.db.GetContext(ctx, &c, query, commentID, articleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}
