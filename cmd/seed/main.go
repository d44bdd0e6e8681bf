package main

import (
	"context"
	"log"
	"os"

	"rotazap-backend/internal/config"
	"rotazap-backend/internal/db"
	"rotazap-backend/internal/domain"
	"rotazap-backend/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	catalog, err := domain.NewStatusCatalog(cfg.StatusChain, cfg.StatusTerminal, cfg.StatusDelay)
	if err != nil {
		logger.Fatalf("status configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, catalog); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
