package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"conduit/internal/cache"
	"conduit/internal/model"
)

const articleColumns = `a.id, a.slug, a.title, a.description, a.body, a.author_id, a.created_at, a.updated_at`

type articleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Create inserts the article and its tag list in a transaction.
func (r *articleRepository) Create(ctx context.Context, a *model.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO articles (id, slug, title, description, body, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		a.ID, a.Slug, a.Title, a.Description, a.Body, a.AuthorID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("insert article: %w", err)
	}

	tagQuery := `INSERT INTO article_tags (article_id, tag_name, position) VALUES ($1, $2, $3)`
	for i, tag := range a.Tags {
		if _, err := tx.ExecContext(ctx, tagQuery, a.ID, tag, i); err != nil {
			return fmt.Errorf("insert tag %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if a.FavoritedBy == nil {
		a.FavoritedBy = model.NewIDSet()
	}
	return nil
}

func (r *articleRepository) Update(ctx context.Context, a *model.Article) error {
	query := `
		UPDATE articles
		SET slug = $2, title = $3, description = $4, body = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		a.ID, a.Slug, a.Title, a.Description, a.Body,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrArticleNotFound
		}
		if _, ok := uniqueConstraint(err); ok {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// Delete removes the article; tags, favorites and comments cascade.
func (r *articleRepository) Delete(ctx context.Context, articleID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, articleID)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles a WHERE a.slug = $1`

	var a model.Article
	if err := r.db.GetContext(ctx, &a, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article by slug: %w", err)
	}

	if err := r.hydrate(ctx, []*model.Article{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articleRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Article, error) {
	if len(ids) == 0 {
		return []*model.Article{}, nil
	}

	query := `SELECT ` + articleColumns + ` FROM articles a WHERE a.id = ANY($1)`

	var rows []model.Article
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get articles by ids: %w", err)
	}

	byID := make(map[string]*model.Article, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	// Preserve the caller's order
	articles := make([]*model.Article, 0, len(rows))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			articles = append(articles, a)
		}
	}

	if err := r.hydrate(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// Find builds a conjunctive filter from the non-empty criteria.
func (r *articleRepository) Find(ctx context.Context, c model.ArticleCriteria) ([]*model.Article, error) {
	if c.AuthorIDs != nil && len(c.AuthorIDs) == 0 {
		return []*model.Article{}, nil
	}

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.Tag != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM article_tags t WHERE t.article_id = a.id AND t.tag_name = `+arg(c.Tag)+`)`)
	}
	if c.AuthorID != "" {
		conds = append(conds, `a.author_id = `+arg(c.AuthorID))
	}
	if c.FavoritedByID != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM favorites f WHERE f.article_id = a.id AND f.user_id = `+arg(c.FavoritedByID)+`)`)
	}
	if c.AuthorIDs != nil {
		conds = append(conds, `a.author_id = ANY(`+arg(pq.Array(c.AuthorIDs))+`)`)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + articleColumns + ` FROM articles a`)
	if len(conds) > 0 {
		sb.WriteString(` WHERE `)
		sb.WriteString(strings.Join(conds, ` AND `))
	}
	sb.WriteString(` ORDER BY a.created_at DESC, a.id DESC`)
	sb.WriteString(` OFFSET ` + arg(c.Offset))
	sb.WriteString(` LIMIT ` + arg(c.Limit))

	var rows []model.Article
	if err := r.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}

	articles := make([]*model.Article, len(rows))
	for i := range rows {
		articles[i] = &rows[i]
	}
	if err := r.hydrate(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// GetFeedScores returns article ids with their creation time in unix millis
// for cache warming.
func (r *articleRepository) GetFeedScores(ctx context.Context, authorIDs []string, limit int) ([]cache.ArticleScore, error) {
	if len(authorIDs) == 0 {
		return []cache.ArticleScore{}, nil
	}

	query := `
		SELECT id, (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT AS created_ms
		FROM articles
		WHERE author_id = ANY($1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var scores []cache.ArticleScore
	if err := r.db.SelectContext(ctx, &scores, query, pq.Array(authorIDs), limit); err != nil {
		return nil, fmt.Errorf("get feed scores: %w", err)
	}
	return scores, nil
}

func (r *articleRepository) AddFavorite(ctx context.Context, articleID, userID string) (bool, error) {
	query := `
		INSERT INTO favorites (article_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (article_id, user_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, articleID, userID)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *articleRepository) RemoveFavorite(ctx context.Context, articleID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE article_id = $1 AND user_id = $2`, articleID, userID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

type articleTagRow struct {
	ArticleID string `db:"article_id"`
	TagName   string `db:"tag_name"`
}

type favoriteRow struct {
	ArticleID string `db:"article_id"`
	UserID    string `db:"user_id"`
}

// hydrate loads tags (in position order) and favoriting sets for articles.
func (r *articleRepository) hydrate(ctx context.Context, articles []*model.Article) error {
	if len(articles) == 0 {
		return nil
	}

	ids := make([]string, len(articles))
	byID := make(map[string]*model.Article, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
		a.Tags = []string{}
		a.FavoritedBy = model.NewIDSet()
		byID[a.ID] = a
	}

	var tags []articleTagRow
	err := r.db.SelectContext(ctx, &tags,
		`SELECT article_id, tag_name FROM article_tags WHERE article_id = ANY($1) ORDER BY article_id, position`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load article tags: %w", err)
	}
	for _, t := range tags {
		if a, ok := byID[t.ArticleID]; ok {
			a.Tags = append(a.Tags, t.TagName)
		}
	}

	var favs []favoriteRow
	err = r.db.SelectContext(ctx, &favs,
		`SELECT article_id, user_id FROM favorites WHERE article_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	for _, f := range favs {
		if a, ok := byID[f.ArticleID]; ok {
			a.FavoritedBy.Add(f.UserID)
		}
	}

	return nil
}
