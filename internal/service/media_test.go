package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/internal/auth"
	"conduit/internal/model"
)

type memObjectStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memObjectStore) Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	s.objects[key] = body
	s.types[key] = contentType
	return nil
}

func (s *memObjectStore) URL(key string) string {
	return "https://cdn.test/" + key
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaService_UploadProfileImage(t *testing.T) {
	// ARRANGE
	store := newMemObjectStore()
	users, _ := newTestUserService(&mockUserRepository{})
	svc := NewMediaService(store, users)
	session := &auth.Session{User: &model.User{ID: "u-jake", Username: "jake"}, Token: "tok"}

	// ACT
	view, err := svc.UploadProfileImage(context.Background(), session, bytes.NewReader(pngBytes(t, 400, 300)), "")

	// ASSERT
	require.NoError(t, err)
	require.NotNil(t, view.Image)
	assert.True(t, strings.HasPrefix(*view.Image, "https://cdn.test/avatars/"), "image = %s", *view.Image)
	assert.Equal(t, *view.Image, *session.User.Image)

	require.Len(t, store.objects, 1)
	for key, body := range store.objects {
		assert.Equal(t, "image/jpeg", store.types[key])
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, ImageSize, cfg.Width)
		assert.Equal(t, ImageSize, cfg.Height)
	}
}

func TestReadImage_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		wantViol    string
	}{
		{"empty", nil, "", "can't be blank"},
		{"too large", make([]byte, MaxImageSizeBytes+1), "image/png", "exceeds 5MB limit"},
		{"not an image", []byte("plain text body"), "", "unsupported type, allowed: jpeg, png, gif, webp"},
		{"declared svg", []byte("<svg/>"), "image/svg+xml", "unsupported type, allowed: jpeg, png, gif, webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readImage(bytes.NewReader(tt.data), tt.contentType)

			de, ok := model.AsDomainError(err)
			require.True(t, ok, "err = %v", err)
			assert.Equal(t, "Image", de.Subject)
			assert.Equal(t, tt.wantViol, de.Violation)
		})
	}
}

func TestResizeToJPEG_UndecodableIsInvalid(t *testing.T) {
	_, err := resizeToJPEG([]byte("\x89PNG\r\n\x1a\ngarbage"), 10, 10, 80)
	assert.True(t, model.IsKind(err, model.KindInvalidRequest), "err = %v", err)
}
