package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/enum"
	"github.com/jersey-sale/api/internal/storage"
	"go.uber.org/zap"
)

// ImageStore defines the DB methods needed by the gallery service.
// Satisfied by *database.Queries.
type ImageStore interface {
	ListGalleryImages(ctx context.Context) ([]database.GalleryImage, error)
	GetGalleryImage(ctx context.Context, id uuid.UUID) (database.GalleryImage, error)
	GetMaxGalleryImageOrder(ctx context.Context) (int32, error)
	CreateGalleryImage(ctx context.Context, arg database.CreateGalleryImageParams) (database.GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id uuid.UUID) (int64, error)
}

// UploadImageRequest is an admin image upload.
type UploadImageRequest struct {
	Title     string
	ImageType string
	Filename  string
	Content   io.Reader
}

// GalleryService keeps gallery records and their binaries in step.
type GalleryService struct {
	store ImageStore
	blobs storage.BlobStore
	log   *zap.Logger
	now   func() time.Time
}

// NewGalleryService creates a new GalleryService.
func NewGalleryService(store ImageStore, blobs storage.BlobStore, log *zap.Logger) *GalleryService {
	return &GalleryService{store: store, blobs: blobs, log: log, now: time.Now}
}

// ListImages returns the gallery ascending by display order. Order keys may have gaps.
func (s *GalleryService) ListImages(ctx context.Context) ([]database.GalleryImage, error) {
	images, err := s.store.ListGalleryImages(ctx)
	if err != nil {
		return nil, storageError("list images", err)
	}
	return images, nil
}

// UploadImage stores the binary, then appends a record after the current highest
// order key (1 for an empty gallery). The max read and the insert are not atomic.
func (s *GalleryService) UploadImage(ctx context.Context, req UploadImageRequest) (database.GalleryImage, error) {
	if req.Content == nil {
		return database.GalleryImage{}, fieldError("file", ErrMissingImageFile)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return database.GalleryImage{}, fieldError("title", ErrMissingImageTitle)
	}
	imageType := strings.TrimSpace(req.ImageType)
	if imageType == "" {
		imageType = enum.ImageTypeJersey
	}

	key := storage.NewKey(req.Filename, s.now())
	if err := s.blobs.Save(ctx, key, req.Content); err != nil {
		return database.GalleryImage{}, storageError("save image blob", err)
	}

	maxOrder, err := s.store.GetMaxGalleryImageOrder(ctx)
	if err != nil {
		s.removeBlob(ctx, key)
		return database.GalleryImage{}, storageError("get max image order", err)
	}

	image, err := s.store.CreateGalleryImage(ctx, database.CreateGalleryImageParams{
		Title:      title,
		ImageUrl:   s.blobs.URL(key),
		ImageType:  imageType,
		StorageKey: key,
		SortOrder:  maxOrder + 1,
	})
	if err != nil {
		s.removeBlob(ctx, key)
		return database.GalleryImage{}, storageError("create image", err)
	}
	return image, nil
}

// DeleteImage removes the binary (best effort) and then the record. A failed
// binary removal is logged and does not stop the record deletion.
func (s *GalleryService) DeleteImage(ctx context.Context, id uuid.UUID) (database.GalleryImage, error) {
	image, err := s.store.GetGalleryImage(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.GalleryImage{}, ErrImageNotFound
		}
		return database.GalleryImage{}, storageError("get image", err)
	}

	if image.StorageKey != "" {
		s.removeBlob(ctx, image.StorageKey)
	}

	n, err := s.store.DeleteGalleryImage(ctx, id)
	if err != nil {
		return database.GalleryImage{}, storageError("delete image", err)
	}
	if n == 0 {
		return database.GalleryImage{}, ErrImageNotFound
	}
	return image, nil
}

func (s *GalleryService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Remove(ctx, key); err != nil {
		s.log.Warn("remove image blob", zap.String("key", key), zap.Error(err))
	}
}
