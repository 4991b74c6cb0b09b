package model

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"punctuation and spaces collapse", "Do It: now!", "do-it-now"},
		{"already a slug", "hello-world", "hello-world"},
		{"leading and trailing noise", "  ...Hello, World?  ", "hello-world"},
		{"diacritics dropped", "Café Crème brûlée", "cafe-creme-brulee"},
		{"digits kept", "Top 10 Go tips", "top-10-go-tips"},
		{"curly quotes", "It’s “fine”", "it-s-fine"},
		{"ampersand and pipe", "Cats & Dogs | Pets", "cats-dogs-pets"},
		{"only punctuation", "?!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestArticle_SetTitleRecomputesSlug(t *testing.T) {
	a := &Article{}
	a.SetTitle("First Title")
	if a.Slug != "first-title" {
		t.Fatalf("slug = %q, want %q", a.Slug, "first-title")
	}

	a.SetTitle("Second: Title")
	if a.Slug != "second-title" {
		t.Errorf("slug = %q, want %q", a.Slug, "second-title")
	}
	if a.Title != "Second: Title" {
		t.Errorf("title = %q, want %q", a.Title, "Second: Title")
	}
}

func TestArticle_FavoriteIsIdempotent(t *testing.T) {
	a := &Article{ID: "a1"}

	if changed := a.Favorite("u1"); !changed {
		t.Error("first Favorite should report changed")
	}
	if changed := a.Favorite("u1"); changed {
		t.Error("second Favorite should report unchanged")
	}
	if got := a.FavoritesCount(); got != 1 {
		t.Errorf("FavoritesCount = %d, want 1", got)
	}

	if changed := a.Unfavorite("u1"); !changed {
		t.Error("first Unfavorite should report changed")
	}
	if changed := a.Unfavorite("u1"); changed {
		t.Error("second Unfavorite should report unchanged")
	}
	if got := a.FavoritesCount(); got != 0 {
		t.Errorf("FavoritesCount = %d, want 0", got)
	}
}

func TestArticle_UnfavoriteOnNilSet(t *testing.T) {
	a := &Article{}
	if a.Unfavorite("u1") {
		t.Error("Unfavorite on empty article should report unchanged")
	}
	if a.IsFavoritedBy("u1") {
		t.Error("empty article should not be favorited")
	}
}

func TestArticle_HasTag(t *testing.T) {
	a := &Article{Tags: []string{"go", "web"}}
	if !a.HasTag("go") {
		t.Error("expected tag go")
	}
	if a.HasTag("Go") {
		t.Error("tag membership must be exact")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"go", " web ", "", "go", "api"})
	want := []string{"go", "web", "api"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeTags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUser_FollowIsIdempotent(t *testing.T) {
	u := &User{ID: "a"}
	if !u.Follow("b") {
		t.Error("first Follow should report changed")
	}
	if u.Follow("b") {
		t.Error("second Follow should report unchanged")
	}
	if !u.IsFollowing("b") {
		t.Error("expected a to follow b")
	}
	if !u.Unfollow("b") {
		t.Error("Unfollow should report changed")
	}
	if u.IsFollowing("b") {
		t.Error("expected a to no longer follow b")
	}
}

func TestNewArticleView_Personalisation(t *testing.T) {
	author := &User{ID: "author", Username: "jake"}
	viewer := &User{ID: "viewer", FollowingIDs: NewIDSet("author")}
	a := &Article{ID: "a1", Slug: "s", AuthorID: "author", Tags: []string{"go"}, FavoritedBy: NewIDSet("viewer", "other")}

	anon := NewArticleView(a, author, nil)
	if anon.Favorited || anon.Author.Following {
		t.Errorf("anonymous view = favorited %v following %v, want false false", anon.Favorited, anon.Author.Following)
	}
	if anon.FavoritesCount != 2 {
		t.Errorf("FavoritesCount = %d, want 2", anon.FavoritesCount)
	}

	seen := NewArticleView(a, author, viewer)
	if !seen.Favorited || !seen.Author.Following {
		t.Errorf("viewer view = favorited %v following %v, want true true", seen.Favorited, seen.Author.Following)
	}
}
