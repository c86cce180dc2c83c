package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jersey-sale/api/internal/config"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/enum"
	"github.com/jersey-sale/api/internal/logging"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

var sampleImages = []database.CreateGalleryImageParams{
	{Title: "School Jersey Design", ImageUrl: "/jersey.jpg", ImageType: enum.ImageTypeJersey, SortOrder: 1},
	{Title: "Jersey Fabric Detail", ImageUrl: "/fabric.png", ImageType: enum.ImageTypeFabric, SortOrder: 2},
}

var sampleNames = []string{
	"Ahnaf", "Shahin", "Partho", "MASUM", "Reza", "AFIF", "Mohin Gazi", "Shahad", "BYZEED",
	"Mahim", "YAMIN", "Nijhum", "SINHA", "Ariyan", "ASHIK", "Z.I.NAHIAN", "Jihad", "Mahtaf",
}

func main() {
	withOrders := flag.Bool("orders", false, "Also insert sample orders")
	flag.Parse()

	if err := run(*withOrders); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(withOrders bool) error {
	cfg := config.Load()
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	// Seed in a transaction: all rows or none
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := database.New(pool).WithTx(tx)

	var rows [][]string
	images, err := seedImages(ctx, q, log)
	if err != nil {
		return fmt.Errorf("seed images: %w", err)
	}
	for _, img := range images {
		rows = append(rows, []string{"image", img.ID.String(), img.Title, fmt.Sprintf("%s #%d %s", img.ImageType, img.SortOrder, img.ImageUrl)})
	}

	if withOrders {
		orders, err := seedOrders(ctx, q, rand.New(rand.NewSource(rand.Int63())))
		if err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
		for _, o := range orders {
			rows = append(rows, []string{"order", o.ID.String(), o.Name, fmt.Sprintf("class %s-%s, %s, %s %s", o.Class, o.Section, o.MobileNumber, o.Size.String, o.JerseyColor.String)})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Kind", "ID", "Name", "Details")
	if err := table.Bulk(rows); err != nil {
		log.Warn("fill table", zap.Error(err))
	}
	if err := table.Render(); err != nil {
		log.Warn("render table", zap.Error(err))
	}
	log.Info("seed completed", zap.Int("images", len(images)), zap.Int("rows", len(rows)))
	return nil
}

// seedImages inserts the sample gallery only when the gallery is empty.
func seedImages(ctx context.Context, q *database.Queries, log *zap.Logger) ([]database.GalleryImage, error) {
	n, err := q.CountGalleryImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	if n > 0 {
		log.Info("gallery already has images, skipping", zap.Int64("count", n))
		return nil, nil
	}

	out := make([]database.GalleryImage, 0, len(sampleImages))
	for _, p := range sampleImages {
		img, err := q.CreateGalleryImage(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("insert image %q: %w", p.Title, err)
		}
		out = append(out, img)
	}
	return out, nil
}

func seedOrders(ctx context.Context, q *database.Queries, rng *rand.Rand) ([]database.JerseyOrder, error) {
	classes := []string{"6", "7", "8", "9", "10"}
	sections := []string{"A", "B", "C", "D"}
	colors := []string{enum.JerseyColorBlue, enum.JerseyColorGreen}

	out := make([]database.JerseyOrder, 0, len(sampleNames))
	for _, name := range sampleNames {
		o, err := q.CreateJerseyOrder(ctx, database.CreateJerseyOrderParams{
			Name:          name,
			Class:         classes[rng.Intn(len(classes))],
			Section:       sections[rng.Intn(len(sections))],
			MobileNumber:  fmt.Sprintf("01%d", rng.Intn(900000000)+100000000),
			Size:          text(enum.JerseySizes[rng.Intn(len(enum.JerseySizes))]),
			JerseyColor:   text(colors[rng.Intn(len(colors))]),
			PaymentMethod: enum.PaymentMethodCash,
			Location:      text(enum.LocationSchool),
			Status:        enum.OrderStatusPending,
		})
		if err != nil {
			return nil, fmt.Errorf("insert order %q: %w", name, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}
