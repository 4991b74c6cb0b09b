package model

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Article is a published post. Tags keeps display order; FavoritedBy is the
// set of user ids that favorited it. Neither is a column of articles.
type Article struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Body        string    `db:"body"`
	AuthorID    string    `db:"author_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	Tags        []string `db:"-"`
	FavoritedBy IDSet    `db:"-"`
}

// SetTitle changes the title and recomputes the slug from it.
func (a *Article) SetTitle(title string) {
	a.Title = title
	a.Slug = Slugify(title)
}

// HasTag reports exact membership of tag.
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Favorite adds userID to the favoriting set and reports whether it changed.
func (a *Article) Favorite(userID string) bool {
	if a.FavoritedBy == nil {
		a.FavoritedBy = NewIDSet()
	}
	return a.FavoritedBy.Add(userID)
}

// Unfavorite removes userID from the favoriting set and reports whether it changed.
func (a *Article) Unfavorite(userID string) bool {
	return a.FavoritedBy.Remove(userID)
}

func (a *Article) IsFavoritedBy(userID string) bool {
	return a.FavoritedBy.Contains(userID)
}

func (a *Article) FavoritesCount() int {
	return a.FavoritedBy.Len()
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify derives a URL-safe identifier from a title: diacritics are dropped,
// letters lower-cased, and every run of other characters becomes one hyphen.
// "Do It: now!" becomes "do-it-now".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	b.Grow(len(plain))
	pendingDash := false
	for _, r := range plain {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// NormalizeTags trims names, drops empties and duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// NewArticle is the article creation payload.
type NewArticle struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList"`
}

// ArticleUpdate carries optional changes; nil fields are left untouched.
type ArticleUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Body        *string `json:"body"`
}

type CreateArticleRequest struct {
	Article NewArticle `json:"article"`
}

type UpdateArticleRequest struct {
	Article ArticleUpdate `json:"article"`
}

// ArticleQuery is a listing request before usernames are resolved.
type ArticleQuery struct {
	Tag         string
	Author      string
	FavoritedBy string
	Offset      int
	Limit       int
}

// ArticleCriteria is a resolved store filter. Empty fields are unconstrained;
// a non-nil AuthorIDs restricts to that set (the feed).
type ArticleCriteria struct {
	Tag           string
	AuthorID      string
	FavoritedByID string
	AuthorIDs     []string
	Offset        int
	Limit         int
}

// Pagination defaults and bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrSlugTaken       = errors.New("slug already in use")
)
