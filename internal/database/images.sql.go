package database

import (
	"context"

	"github.com/google/uuid"
)

const galleryImageColumns = `id, title, image_url, image_type, storage_key, sort_order, created_at`

func scanGalleryImage(row rowScanner, i *GalleryImage) error {
	return row.Scan(
		&i.ID,
		&i.Title,
		&i.ImageUrl,
		&i.ImageType,
		&i.StorageKey,
		&i.SortOrder,
		&i.CreatedAt,
	)
}

const listGalleryImages = `SELECT ` + galleryImageColumns + ` FROM gallery_images
ORDER BY sort_order ASC, created_at ASC`

func (q *Queries) ListGalleryImages(ctx context.Context) ([]GalleryImage, error) {
	rows, err := q.db.Query(ctx, listGalleryImages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GalleryImage{}
	for rows.Next() {
		var i GalleryImage
		if err := scanGalleryImage(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getGalleryImage = `SELECT ` + galleryImageColumns + ` FROM gallery_images WHERE id = $1`

func (q *Queries) GetGalleryImage(ctx context.Context, id uuid.UUID) (GalleryImage, error) {
	row := q.db.QueryRow(ctx, getGalleryImage, id)
	var i GalleryImage
	err := scanGalleryImage(row, &i)
	return i, err
}

const getMaxGalleryImageOrder = `SELECT COALESCE(MAX(sort_order), 0)::int FROM gallery_images`

// GetMaxGalleryImageOrder returns 0 for an empty gallery.
func (q *Queries) GetMaxGalleryImageOrder(ctx context.Context) (int32, error) {
	row := q.db.QueryRow(ctx, getMaxGalleryImageOrder)
	var maxOrder int32
	err := row.Scan(&maxOrder)
	return maxOrder, err
}

const createGalleryImage = `
INSERT INTO gallery_images (title, image_url, image_type, storage_key, sort_order)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + galleryImageColumns

type CreateGalleryImageParams struct {
	Title      string
	ImageUrl   string
	ImageType  string
	StorageKey string
	SortOrder  int32
}

func (q *Queries) CreateGalleryImage(ctx context.Context, arg CreateGalleryImageParams) (GalleryImage, error) {
	row := q.db.QueryRow(ctx, createGalleryImage,
		arg.Title,
		arg.ImageUrl,
		arg.ImageType,
		arg.StorageKey,
		arg.SortOrder,
	)
	var i GalleryImage
	err := scanGalleryImage(row, &i)
	return i, err
}

const deleteGalleryImage = `DELETE FROM gallery_images WHERE id = $1`

func (q *Queries) DeleteGalleryImage(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteGalleryImage, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countGalleryImages = `SELECT COUNT(*) FROM gallery_images`

func (q *Queries) CountGalleryImages(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countGalleryImages)
	var count int64
	err := row.Scan(&count)
	return count, err
}
