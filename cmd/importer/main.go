package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"rotazap-backend/internal/config"
	"rotazap-backend/internal/db"
	"rotazap-backend/internal/importer"
	offerrepo "rotazap-backend/internal/repository/offer"
	skurepo "rotazap-backend/internal/repository/sku"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to supplier price-list CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, skurepo.NewPostgres(pool), offerrepo.NewPostgres(pool))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d offers in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
