package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jersey-sale/api/internal/config"
	"github.com/jersey-sale/api/internal/handler"
	mw "github.com/jersey-sale/api/internal/middleware"
	"github.com/jersey-sale/api/internal/ws"
	"go.uber.org/zap"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Orders  handler.OrderServicer
	Gallery handler.GalleryServicer
	Hub     *ws.Hub
	Log     *zap.Logger

	// UploadDir is served under cfg.Storage.URLPrefix when set (local blob store).
	UploadDir string
}

// New creates a Chi router with all application routes wired up.
// Admin routes go through the shared-secret gate; order submission is rate limited.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(deps.Log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", mw.AdminPasswordHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	gate := mw.NewAdminGate(cfg.AdminPassword)
	limiter := mw.NewRateLimiter(cfg.OrderRatePerMinute)

	var events handler.EventBroadcaster
	if deps.Hub != nil {
		events = deps.Hub
		// WebSocket route (checks the admin secret itself via query param)
		r.Get("/ws/admin", ws.ServeWS(deps.Hub, gate))
	}

	orderHandler := handler.NewOrderHandler(deps.Orders, events, deps.Log)
	r.Route("/api/orders", func(r chi.Router) {
		orderHandler.RegisterRoutes(r, gate.Require, limiter.Limit)
	})

	imageHandler := handler.NewImageHandler(deps.Gallery, events, deps.Log, int64(cfg.Storage.MaxUploadMB)<<20)
	r.Get("/api/gallery", imageHandler.List)
	r.Route("/api/images", func(r chi.Router) {
		r.Use(gate.Require)
		imageHandler.RegisterRoutes(r)
	})

	if deps.UploadDir != "" {
		prefix := cfg.Storage.URLPrefix
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(deps.UploadDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	return r
}
