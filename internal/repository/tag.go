package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"conduit/internal/model"
)

type tagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) TagRepository {
	return &tagRepository{db: db}
}

// Create relies on the unique index on name; concurrent inserts of the same
// name leave exactly one row and the losers get model.ErrTagExists.
func (r *tagRepository) Create(ctx context.Context, t *model.Tag) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES ($1, $2)`, t.ID, t.Name)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return model.ErrTagExists
		}
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (r *tagRepository) ListNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM tags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return names, nil
}
