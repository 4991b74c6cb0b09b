package model

import "time"

// ProfileView is a user as seen by a (possibly anonymous) viewer.
type ProfileView struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

// NewProfileView renders u for viewer; a nil viewer never follows anyone.
func NewProfileView(u *User, viewer *User) ProfileView {
	following := false
	if viewer != nil {
		following = viewer.IsFollowing(u.ID)
	}
	return ProfileView{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: following,
	}
}

// UserView is the authenticated user's own account with its token.
type UserView struct {
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

func NewUserView(u *User, token string) UserView {
	return UserView{
		Email:    u.Email,
		Token:    token,
		Username: u.Username,
		Bio:      u.Bio,
		Image:    u.Image,
	}
}

type ArticleView struct {
	Slug           string      `json:"slug"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Body           string      `json:"body"`
	TagList        []string    `json:"tagList"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	Favorited      bool        `json:"favorited"`
	FavoritesCount int         `json:"favoritesCount"`
	Author         ProfileView `json:"author"`
}

// NewArticleView personalises a for viewer; a nil viewer sees favorited=false.
func NewArticleView(a *Article, author *User, viewer *User) ArticleView {
	favorited := false
	if viewer != nil {
		favorited = a.IsFavoritedBy(viewer.ID)
	}
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	return ArticleView{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        tags,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favorited:      favorited,
		FavoritesCount: a.FavoritesCount(),
		Author:         NewProfileView(author, viewer),
	}
}

type CommentView struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Body      string      `json:"body"`
	Author    ProfileView `json:"author"`
}

func NewCommentView(c *Comment, author *User, viewer *User) CommentView {
	return CommentView{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Body:      c.Body,
		Author:    NewProfileView(author, viewer),
	}
}

// Response envelopes.

type UserResponse struct {
	User UserView `json:"user"`
}

type ProfileResponse struct {
	Profile ProfileView `json:"profile"`
}

type ArticleResponse struct {
	Article ArticleView `json:"article"`
}

type ArticleListResponse struct {
	Articles      []ArticleView `json:"articles"`
	ArticlesCount int           `json:"articlesCount"`
}

// NewArticleListResponse never renders a null list.
func NewArticleListResponse(views []ArticleView) ArticleListResponse {
	if views == nil {
		views = []ArticleView{}
	}
	return ArticleListResponse{Articles: views, ArticlesCount: len(views)}
}

type CommentResponse struct {
	Comment CommentView `json:"comment"`
}

type CommentListResponse struct {
	Comments []CommentView `json:"comments"`
}

type TagListResponse struct {
	Tags []string `json:"tags"`
}
