package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"conduit/internal/cache"
	"conduit/internal/model"
	"conduit/internal/queue"
)

// =============================================================================
// MOCK USER REPOSITORY
// =============================================================================
//
// Each test wires only the functions it cares about. Unset functions behave
// like an empty store.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id string) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	getByIDsFn         func(ctx context.Context, ids []string) (map[string]*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	updateFn           func(ctx context.Context, user *model.User) error

	createCalls        int
	updateCalls        int
	existsByUsernameCt int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = "new-user"
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return map[string]*model.User{}, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	m.existsByUsernameCt++
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

// userDirectory wires lookups over a fixed set of users.
func userDirectory(users ...*model.User) *mockUserRepository {
	byID := make(map[string]*model.User, len(users))
	byName := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
		byName[u.Username] = u
	}
	return &mockUserRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			if u, ok := byID[id]; ok {
				return u, nil
			}
			return nil, model.ErrUserNotFound
		},
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if u, ok := byName[username]; ok {
				return u, nil
			}
			return nil, model.ErrUserNotFound
		},
		getByIDsFn: func(ctx context.Context, ids []string) (map[string]*model.User, error) {
			out := make(map[string]*model.User)
			for _, id := range ids {
				if u, ok := byID[id]; ok {
					out[id] = u
				}
			}
			return out, nil
		},
	}
}

// =============================================================================
// IN-MEMORY ARTICLE STORE
// =============================================================================

type memArticles struct {
	mu       sync.Mutex
	byID     map[string]*model.Article
	findCall int
	writes   int
}

func newMemArticles(articles ...*model.Article) *memArticles {
	m := &memArticles{byID: make(map[string]*model.Article)}
	for _, a := range articles {
		if a.FavoritedBy == nil {
			a.FavoritedBy = model.NewIDSet()
		}
		m.byID[a.ID] = a
	}
	return m
}

func cloneArticle(a *model.Article) *model.Article {
	c := *a
	c.Tags = append([]string{}, a.Tags...)
	c.FavoritedBy = model.NewIDSet(a.FavoritedBy.Slice()...)
	return &c
}

func (m *memArticles) Create(ctx context.Context, a *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Slug == a.Slug {
			return model.ErrSlugTaken
		}
	}
	if a.ID == "" {
		a.ID = "article-" + a.Slug
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.byID[a.ID] = cloneArticle(a)
	m.writes++
	return nil
}

func (m *memArticles) Update(ctx context.Context, a *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.byID {
		if existing.Slug == a.Slug && id != a.ID {
			return model.ErrSlugTaken
		}
	}
	if _, ok := m.byID[a.ID]; !ok {
		return model.ErrArticleNotFound
	}
	a.UpdatedAt = time.Now()
	m.byID[a.ID] = cloneArticle(a)
	m.writes++
	return nil
}

func (m *memArticles) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return model.ErrArticleNotFound
	}
	delete(m.byID, id)
	m.writes++
	return nil
}

func (m *memArticles) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Slug == slug {
			return cloneArticle(a), nil
		}
	}
	return nil, model.ErrArticleNotFound
}

func (m *memArticles) GetByIDs(ctx context.Context, ids []string) ([]*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Article{}
	for _, id := range ids {
		if a, ok := m.byID[id]; ok {
			out = append(out, cloneArticle(a))
		}
	}
	return out, nil
}

func (m *memArticles) sorted() []*model.Article {
	all := make([]*model.Article, 0, len(m.byID))
	for _, a := range m.byID {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func (m *memArticles) Find(ctx context.Context, c model.ArticleCriteria) ([]*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCall++

	var authors model.IDSet
	if c.AuthorIDs != nil {
		authors = model.NewIDSet(c.AuthorIDs...)
	}

	matched := []*model.Article{}
	for _, a := range m.sorted() {
		if c.Tag != "" && !a.HasTag(c.Tag) {
			continue
		}
		if c.AuthorID != "" && a.AuthorID != c.AuthorID {
			continue
		}
		if c.FavoritedByID != "" && !a.IsFavoritedBy(c.FavoritedByID) {
			continue
		}
		if authors != nil && !authors.Contains(a.AuthorID) {
			continue
		}
		matched = append(matched, cloneArticle(a))
	}

	if c.Offset >= len(matched) {
		return []*model.Article{}, nil
	}
	end := c.Offset + c.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[c.Offset:end], nil
}

func (m *memArticles) GetFeedScores(ctx context.Context, authorIDs []string, limit int) ([]cache.ArticleScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	authors := model.NewIDSet(authorIDs...)
	scores := []cache.ArticleScore{}
	for _, a := range m.sorted() {
		if authors.Contains(a.AuthorID) && len(scores) < limit {
			scores = append(scores, cache.ArticleScore{ArticleID: a.ID, CreatedAt: a.CreatedAt.UnixMilli()})
		}
	}
	return scores, nil
}

func (m *memArticles) AddFavorite(ctx context.Context, articleID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[articleID]
	if !ok {
		return false, model.ErrArticleNotFound
	}
	m.writes++
	return a.Favorite(userID), nil
}

func (m *memArticles) RemoveFavorite(ctx context.Context, articleID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[articleID]
	if !ok {
		return false, model.ErrArticleNotFound
	}
	m.writes++
	return a.Unfavorite(userID), nil
}

func (m *memArticles) stored(id string) *model.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneArticle(m.byID[id])
}

// =============================================================================
// IN-MEMORY FOLLOWS, TAGS, COMMENTS
// =============================================================================

type memFollows struct {
	mu    sync.Mutex
	edges map[[2]string]struct{}
}

func newMemFollows() *memFollows {
	return &memFollows{edges: make(map[[2]string]struct{})}
}

func (m *memFollows) Create(ctx context.Context, followerID, followeeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{followerID, followeeID}
	if _, ok := m.edges[key]; ok {
		return false, nil
	}
	m.edges[key] = struct{}{}
	return true, nil
}

func (m *memFollows) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{followerID, followeeID}
	if _, ok := m.edges[key]; !ok {
		return false, nil
	}
	delete(m.edges, key)
	return true, nil
}

func (m *memFollows) GetFolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for e := range m.edges {
		if e[0] == userID {
			ids = append(ids, e[1])
		}
	}
	return ids, nil
}

func (m *memFollows) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for e := range m.edges {
		if e[1] == userID {
			ids = append(ids, e[0])
		}
	}
	return ids, nil
}

// memTags enforces a unique name like the tags_name_key index.
type memTags struct {
	mu      sync.Mutex
	byName  map[string]model.Tag
	inserts int
}

func newMemTags() *memTags {
	return &memTags{byName: make(map[string]model.Tag)}
}

func (m *memTags) Create(ctx context.Context, t *model.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if _, ok := m.byName[t.Name]; ok {
		return model.ErrTagExists
	}
	t.ID = "tag-" + t.Name
	m.byName[t.Name] = *t
	return nil
}

func (m *memTags) ListNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := []string{}
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

type mockCommentRepository struct {
	createFn         func(ctx context.Context, c *model.Comment) error
	getByArticleIDFn func(ctx context.Context, articleID string) ([]model.Comment, error)
	getByIDFn        func(ctx context.Context, articleID, commentID string) (*model.Comment, error)
	deleteFn         func(ctx context.Context, commentID string) error

	deleteCalls int
}

func (m *mockCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = "comment-1"
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	return nil
}

func (m *mockCommentRepository) GetByArticleID(ctx context.Context, articleID string) ([]model.Comment, error) {
	if m.getByArticleIDFn != nil {
		return m.getByArticleIDFn(ctx, articleID)
	}
	return []model.Comment{}, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, articleID, commentID string) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, articleID, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID)
	}
	return nil
}

// =============================================================================
// PUBLISHER
// =============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ArticleEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event queue.ArticleEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return "0-1", nil
}
