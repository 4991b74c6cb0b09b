package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var articleCols = []string{"id", "slug", "title", "description", "body", "author_id", "created_at", "updated_at"}

func TestArticleFind_FiltersOrderingAndPaging(t *testing.T) {
	// ========== ARRANGE ==========
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(
		`WHERE EXISTS (SELECT 1 FROM article_tags t WHERE t.article_id = a.id AND t.tag_name = $1) AND a.author_id = $2 ORDER BY a.created_at DESC, a.id DESC OFFSET $3 LIMIT $4`)).
		WithArgs("go", "author-1", 10, 5).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow("a2", "second", "Second", "d", "b", "author-1", newer, newer).
			AddRow("a1", "first", "First", "d", "b", "author-1", older, older))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM article_tags WHERE article_id = ANY($1)`)).
		WithArgs(pq.Array([]string{"a2", "a1"})).
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "tag_name"}).
			AddRow("a1", "go").
			AddRow("a2", "go").
			AddRow("a2", "db"))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM favorites WHERE article_id = ANY($1)`)).
		WithArgs(pq.Array([]string{"a2", "a1"})).
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "user_id"}).
			AddRow("a2", "reader-1"))

	// ========== ACT ==========
	got, err := repo.Find(context.Background(), model.ArticleCriteria{
		Tag:      "go",
		AuthorID: "author-1",
		Offset:   10,
		Limit:    5,
	})

	// ========== ASSERT ==========
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, "a1", got[1].ID)
	assert.Equal(t, []string{"go", "db"}, got[0].Tags)
	assert.True(t, got[0].IsFavoritedBy("reader-1"))
	assert.Equal(t, 0, got[1].FavoritesCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleFind_NoFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM articles a ORDER BY a.created_at DESC, a.id DESC OFFSET $1 LIMIT $2`)).
		WithArgs(0, 20).
		WillReturnRows(sqlmock.NewRows(articleCols))

	got, err := repo.Find(context.Background(), model.ArticleCriteria{Limit: 20})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleFind_FeedWithNoFollowees(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	got, err := repo.Find(context.Background(), model.ArticleCriteria{AuthorIDs: []string{}, Limit: 20})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleCreate_SlugConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO articles`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "articles_slug_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Article{Slug: "taken", Title: "Taken", AuthorID: "u1"})

	assert.ErrorIs(t, err, model.ErrSlugTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleCreate_StoresTagsInOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO articles`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO article_tags`)).
		WithArgs(sqlmock.AnyArg(), "go", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO article_tags`)).
		WithArgs(sqlmock.AnyArg(), "sql", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a := &model.Article{Slug: "s", Title: "S", AuthorID: "u1", Tags: []string{"go", "sql"}}
	err := repo.Create(context.Background(), a)

	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, now, a.CreatedAt)
	assert.NotNil(t, a.FavoritedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleGetByIDs_PreservesOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.id = ANY($1)`)).
		WithArgs(pq.Array([]string{"x", "gone", "y"})).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow("y", "y", "Y", "", "", "u", now, now).
			AddRow("x", "x", "X", "", "", "u", now, now))
	mock.ExpectQuery(`FROM article_tags`).WillReturnRows(sqlmock.NewRows([]string{"article_id", "tag_name"}))
	mock.ExpectQuery(`FROM favorites`).WillReturnRows(sqlmock.NewRows([]string{"article_id", "user_id"}))

	got, err := repo.GetByIDs(context.Background(), []string{"x", "gone", "y"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, "y", got[1].ID)
}

func TestArticleFavorites_ReportChange(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "new row", affected: 1, want: true},
		{name: "already present", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewArticleRepository(db)

			mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (article_id, user_id) DO NOTHING`)).
				WithArgs("a1", "u1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM favorites`)).
				WithArgs("a1", "u1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			added, err := repo.AddFavorite(context.Background(), "a1", "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, added)

			removed, err := repo.RemoveFavorite(context.Background(), "a1", "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, removed)
		})
	}
}

func TestArticleDelete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM articles WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}
