package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"conduit/internal/auth"
	"conduit/internal/model"
	"conduit/internal/storage"
)

const (
	MaxImageSizeBytes = 5 * 1024 * 1024
	ImageSize         = 256
	ImageFolder       = "avatars"
	imageQuality      = 85
	imageCacheControl = "public, max-age=31536000"
	contentTypeJPEG   = "image/jpeg"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// MediaService normalises profile images and stores them in object storage.
type MediaService struct {
	store storage.ObjectStore
	users *UserService
}

func NewMediaService(store storage.ObjectStore, users *UserService) *MediaService {
	return &MediaService{store: store, users: users}
}

// UploadProfileImage stores a square JPEG rendition of the upload and sets it
// as the session user's image.
func (s *MediaService) UploadProfileImage(ctx context.Context, session *auth.Session, file io.Reader, contentType string) (*model.UserView, error) {
	data, err := readImage(file, contentType)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, ImageSize, ImageSize, imageQuality)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.jpg", ImageFolder, uuid.NewString())
	if err := s.store.Put(ctx, key, jpegBytes, contentTypeJPEG, imageCacheControl); err != nil {
		return nil, err
	}

	url := s.store.URL(key)
	log.Printf("[MediaService] Upload OK: user=%s key=%s bytes=%d", session.User.ID, key, len(jpegBytes))
	return s.users.Update(ctx, session, model.UserUpdate{Image: &url})
}

// readImage loads the upload with a size cap and checks its sniffed type.
func readImage(file io.Reader, contentType string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, model.InvalidRequest("Image", "can't be blank")
	}
	if len(data) > MaxImageSizeBytes {
		return nil, model.InvalidRequest("Image", "exceeds 5MB limit")
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, model.InvalidRequest("Image", "unsupported type, allowed: jpeg, png, gif, webp")
	}
	return data, nil
}

// resizeToJPEG centre-crops to width x height and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, model.InvalidRequest("Image", "could not be decoded")
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
