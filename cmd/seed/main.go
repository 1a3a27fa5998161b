package main

import (
	"context"
	"flag"
	"log"
	"os"

	"dealradar/internal/config"
	"dealradar/internal/db"
	"dealradar/internal/db/repositories"
	"dealradar/internal/ingest"
	"dealradar/internal/logging"
	gormModels "dealradar/internal/models/gorm"
	"dealradar/internal/services"
)

// seed loads the reference catalog and the listings from CSV exports.
// Safe to re-run: all writes are natural-key upserts, ids are stable.
func main() {
	salesPath := flag.String("sales", "", "path to the sales reference CSV (makers/models)")
	pricesPath := flag.String("prices", "", "path to the historical price CSV")
	listingsPath := flag.String("listings", "", "path to the listings CSV")
	flag.Parse()

	cfg := config.Load()
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	gormDB, err := db.InitPostgresORM(cfg.DSN())
	if err != nil {
		logging.Fatal("Failed to connect to Postgres", "error", err.Error())
	}

	if err := gormDB.AutoMigrate(
		&gormModels.Maker{},
		&gormModels.Model{},
		&gormModels.PricePoint{},
		&gormModels.Listing{},
	); err != nil {
		logging.Fatal("Migration failed", "error", err.Error())
	}
	// Maker uniqueness is case-insensitive; AutoMigrate cannot express a
	// functional index.
	if err := gormDB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_makers_name_lower ON makers (LOWER(name))`,
	).Error; err != nil {
		logging.Fatal("Index creation failed", "error", err.Error())
	}

	ctx := context.Background()
	catalogRepo := repositories.NewCatalogGormRepository(gormDB)
	catalogIngest := services.NewCatalogIngestService(catalogRepo)
	runCache := services.NewRunCache()

	if *salesPath != "" {
		src := mustOpen(*salesPath, ingest.SalesColumns, []string{"maker", "genmodel", "genmodel_id"})
		stats, err := catalogIngest.IngestSales(ctx, src, runCache)
		src.Close()
		if err != nil {
			logging.Fatal("Sales ingestion failed", "error", err.Error())
		}
		logging.Info("Sales reference ingested", "rows", stats.Rows, "skipped", stats.Skipped)
	}

	if *pricesPath != "" {
		src := mustOpen(*pricesPath, ingest.PriceColumns, []string{"maker", "genmodel", "genmodel_id", "year"})
		stats, err := catalogIngest.IngestPrices(ctx, src, runCache)
		src.Close()
		if err != nil {
			logging.Fatal("Price ingestion failed", "error", err.Error())
		}
		logging.Info("Price history ingested", "rows", stats.Rows, "skipped", stats.Skipped)
	}

	if *listingsPath != "" {
		listingRepo := repositories.NewListingGormRepository(gormDB)
		reconciler := services.NewReconcileService(catalogRepo)
		listingIngest := services.NewListingIngestService(listingRepo, reconciler)

		src := mustOpen(*listingsPath, ingest.ListingColumns, []string{"url", "title"})
		stats, err := listingIngest.Ingest(ctx, src)
		src.Close()
		if err != nil {
			logging.Fatal("Listing ingestion failed", "error", err.Error())
		}
		logging.Info("Listings ingested",
			"rows", stats.Rows,
			"created", stats.Created,
			"updated", stats.Updated,
			"matched", stats.Matched,
			"unmatched", stats.Unmatched,
		)
	}

	if *salesPath == "" && *pricesPath == "" && *listingsPath == "" {
		flag.Usage()
		os.Exit(2)
	}
}

func mustOpen(path string, synonyms ingest.Synonyms, required []string) *ingest.Source {
	src, err := ingest.OpenSource(path, synonyms, required)
	if err != nil {
		logging.Fatal("Failed to open CSV source", "path", path, "error", err.Error())
	}
	return src
}
