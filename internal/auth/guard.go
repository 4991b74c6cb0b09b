package auth

import "conduit/internal/model"

// CanMutateArticle reports whether actor may update or delete a.
func CanMutateArticle(a *model.Article, actor *model.User) bool {
	return actor != nil && a.AuthorID == actor.ID
}

// CanDeleteComment reports whether actor may delete c.
func CanDeleteComment(c *model.Comment, actor *model.User) bool {
	return actor != nil && c.AuthorID == actor.ID
}
