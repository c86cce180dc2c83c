package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jersey-sale/api/internal/config"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/logging"
	"github.com/jersey-sale/api/internal/router"
	"github.com/jersey-sale/api/internal/service"
	"github.com/jersey-sale/api/internal/storage"
	"github.com/jersey-sale/api/internal/ws"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	log.Info("migrations applied")

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	blobs, uploadDir, closeBlobs, err := openBlobStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeBlobs()
	log.Info("blob store ready", zap.String("driver", cfg.Storage.Driver))

	queries := database.New(pool)
	hub := ws.NewHub(log.Named("ws"))

	handler := router.New(cfg, router.Deps{
		Orders:    service.NewOrderService(queries),
		Gallery:   service.NewGalleryService(queries, blobs, log.Named("gallery")),
		Hub:       hub,
		Log:       log,
		UploadDir: uploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openBlobStore builds the configured blob store. uploadDir is non-empty only
// for the local store, whose files the server also serves.
func openBlobStore(cfg config.StorageConfig) (storage.BlobStore, string, func(), error) {
	switch cfg.Driver {
	case "sftp":
		store, err := storage.DialSFTP(storage.SFTPConfig{
			Addr:      cfg.SFTPAddr,
			User:      cfg.SFTPUser,
			Password:  cfg.SFTPPassword,
			HostKey:   cfg.SFTPHostKey,
			Dir:       cfg.SFTPDir,
			PublicURL: cfg.SFTPPublicURL,
		})
		if err != nil {
			return nil, "", nil, fmt.Errorf("open sftp store: %w", err)
		}
		return store, "", func() { store.Close() }, nil
	case "local", "":
		store := storage.NewLocalStore(cfg.UploadDir, cfg.URLPrefix)
		return store, store.Dir(), func() {}, nil
	}
	return nil, "", nil, fmt.Errorf("unknown IMAGE_STORE %q", cfg.Driver)
}
