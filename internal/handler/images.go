package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/service"
	"github.com/jersey-sale/api/internal/ws"
	"go.uber.org/zap"
)

// GalleryServicer defines the service methods needed by gallery handlers.
// Satisfied by *service.GalleryService.
type GalleryServicer interface {
	ListImages(ctx context.Context) ([]database.GalleryImage, error)
	UploadImage(ctx context.Context, req service.UploadImageRequest) (database.GalleryImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) (database.GalleryImage, error)
}

// ImageHandler handles the public gallery and admin image management.
type ImageHandler struct {
	svc            GalleryServicer
	events         EventBroadcaster
	log            *zap.Logger
	maxUploadBytes int64
}

// NewImageHandler creates a new ImageHandler. Uploads larger than maxUploadBytes are rejected.
func NewImageHandler(svc GalleryServicer, events EventBroadcaster, log *zap.Logger, maxUploadBytes int64) *ImageHandler {
	return &ImageHandler{svc: svc, events: events, log: log, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes registers admin image endpoints, expected at /api/images.
func (h *ImageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Upload)
	r.Delete("/{id}", h.Delete)
}

type imageResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"imageUrl"`
	ImageType string    `json:"imageType"`
	Order     int32     `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// List handles GET /api/gallery and GET /api/images.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.ListImages(r.Context())
	if err != nil {
		writeServiceError(w, h.log, "list images", err)
		return
	}

	resp := make([]imageResponse, len(images))
	for i, img := range images {
		resp[i] = toImageResponse(img)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Upload handles POST /api/images (multipart: file, title, imageType).
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
			return
		}
		writeBadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := service.UploadImageRequest{
		Title:     r.FormValue("title"),
		ImageType: r.FormValue("imageType"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		req.Filename = header.Filename
		req.Content = file
	case !errors.Is(err, http.ErrMissingFile):
		writeBadRequest(w, "invalid file")
		return
	}

	img, err := h.svc.UploadImage(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, "upload image", err)
		return
	}

	resp := toImageResponse(img)
	broadcast(h.events, h.log, ws.EventImageCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// Delete handles DELETE /api/images/{id}.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: service.ErrImageNotFound.Error(), Code: service.ErrorCode(service.ErrImageNotFound)})
		return
	}

	if _, err := h.svc.DeleteImage(r.Context(), id); err != nil {
		writeServiceError(w, h.log, "delete image", err)
		return
	}

	broadcast(h.events, h.log, ws.EventImageDeleted, map[string]string{"id": id.String()})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}

func toImageResponse(img database.GalleryImage) imageResponse {
	return imageResponse{
		ID:        img.ID,
		Title:     img.Title,
		ImageURL:  img.ImageUrl,
		ImageType: img.ImageType,
		Order:     img.SortOrder,
		CreatedAt: img.CreatedAt,
	}
}
