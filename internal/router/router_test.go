package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jersey-sale/api/internal/config"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/router"
	"github.com/jersey-sale/api/internal/service"
	"github.com/jersey-sale/api/internal/ws"
	"go.uber.org/zap"
)

type stubOrders struct{}

func (stubOrders) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.JerseyOrder, error) {
	return database.JerseyOrder{ID: uuid.New(), Status: "pending"}, nil
}

func (stubOrders) ListOrders(ctx context.Context, status string) ([]database.JerseyOrder, error) {
	return []database.JerseyOrder{}, nil
}

func (stubOrders) UpdateOrder(ctx context.Context, id uuid.UUID, u service.OrderUpdate) (database.JerseyOrder, error) {
	return database.JerseyOrder{}, service.ErrOrderNotFound
}

func (stubOrders) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return service.ErrOrderNotFound
}

type stubGallery struct{}

func (stubGallery) ListImages(ctx context.Context) ([]database.GalleryImage, error) {
	return []database.GalleryImage{}, nil
}

func (stubGallery) UploadImage(ctx context.Context, req service.UploadImageRequest) (database.GalleryImage, error) {
	return database.GalleryImage{}, service.ErrMissingImageFile
}

func (stubGallery) DeleteImage(ctx context.Context, id uuid.UUID) (database.GalleryImage, error) {
	return database.GalleryImage{}, service.ErrImageNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		AdminPassword:      "secret",
		AllowedOrigins:     []string{"http://localhost:5173"},
		OrderRatePerMinute: 2,
		Storage:            config.StorageConfig{URLPrefix: "/uploads", MaxUploadMB: 1},
	}
}

func serve(h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Routes(t *testing.T) {
	hub := ws.NewHub(zap.NewNop())
	r := router.New(testConfig(), router.Deps{
		Orders:  stubOrders{},
		Gallery: stubGallery{},
		Hub:     hub,
		Log:     zap.NewNop(),
	})

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/gallery", http.StatusOK},
		{"GET", "/api/orders", http.StatusUnauthorized},
		{"GET", "/api/orders?password=secret", http.StatusOK},
		{"GET", "/api/images", http.StatusUnauthorized},
		{"GET", "/api/images?password=secret", http.StatusOK},
		{"DELETE", "/api/images/" + uuid.NewString() + "?password=secret", http.StatusNotFound},
		{"PATCH", "/api/orders/" + uuid.NewString() + "?password=secret", http.StatusNotFound},
		{"GET", "/ws/admin", http.StatusUnauthorized},
		{"GET", "/uploads/missing.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := serve(r, tt.method, tt.path, `{"status":"confirmed"}`)
		if rr.Code != tt.want {
			t.Errorf("%s %s: got %d, want %d; body: %s", tt.method, tt.path, rr.Code, tt.want, rr.Body.String())
		}
	}
}

func TestRouter_OrderSubmissionRateLimited(t *testing.T) {
	r := router.New(testConfig(), router.Deps{Orders: stubOrders{}, Gallery: stubGallery{}, Log: zap.NewNop()})

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, "POST", "/api/orders", `{}`).Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated {
		t.Errorf("first submissions: got %v, want 201s", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third submission: got %d, want %d", codes[2], http.StatusTooManyRequests)
	}
}

func TestRouter_ServesUploads(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1-front.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	r := router.New(testConfig(), router.Deps{
		Orders:    stubOrders{},
		Gallery:   stubGallery{},
		Log:       zap.NewNop(),
		UploadDir: dir,
	})

	rr := serve(r, "GET", "/uploads/1-front.png", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Body.String() != "png" {
		t.Errorf("body: got %q", rr.Body.String())
	}
}
