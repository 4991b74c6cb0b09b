package auth

import (
	"testing"

	"conduit/internal/model"
)

func TestGuards(t *testing.T) {
	author := &model.User{ID: "author"}
	stranger := &model.User{ID: "stranger"}
	article := &model.Article{AuthorID: "author"}
	comment := &model.Comment{AuthorID: "author"}

	tests := []struct {
		name  string
		actor *model.User
		want  bool
	}{
		{"author", author, true},
		{"stranger", stranger, false},
		{"anonymous", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutateArticle(article, tt.actor); got != tt.want {
				t.Errorf("CanMutateArticle = %v, want %v", got, tt.want)
			}
			if got := CanDeleteComment(comment, tt.actor); got != tt.want {
				t.Errorf("CanDeleteComment = %v, want %v", got, tt.want)
			}
		})
	}
}
