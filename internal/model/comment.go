package model

import (
	"errors"
	"time"
)

// Comment belongs to exactly one article and is only reachable through it.
type Comment struct {
	ID        string    `db:"id"`
	ArticleID string    `db:"article_id"`
	AuthorID  string    `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewComment is the comment creation payload.
type NewComment struct {
	Body string `json:"body"`
}

type CreateCommentRequest struct {
	Comment NewComment `json:"comment"`
}

var ErrCommentNotFound = errors.New("comment not found")
