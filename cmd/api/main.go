package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"rotazap-backend/internal/catalogapi"
	"rotazap-backend/internal/config"
	"rotazap-backend/internal/db"
	"rotazap-backend/internal/domain"
	"rotazap-backend/internal/httpserver"
	"rotazap-backend/internal/mailer"
	"rotazap-backend/internal/notify"
	basketrepo "rotazap-backend/internal/repository/basket"
	offerrepo "rotazap-backend/internal/repository/offer"
	orderrepo "rotazap-backend/internal/repository/order"
	skurepo "rotazap-backend/internal/repository/sku"
	statusrepo "rotazap-backend/internal/repository/status"
	userrepo "rotazap-backend/internal/repository/user"
	basketsvc "rotazap-backend/internal/service/basket"
	offersvc "rotazap-backend/internal/service/offer"
	ordersvc "rotazap-backend/internal/service/order"
	statussvc "rotazap-backend/internal/service/orderstatus"
	usersvc "rotazap-backend/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	catalog, err := domain.NewStatusCatalog(cfg.StatusChain, cfg.StatusTerminal, cfg.StatusDelay)
	if err != nil {
		logger.Fatalf("status configuration: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	redisClient, err := notify.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer redisClient.Close()

	mail, err := mailer.New(mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		From:        cfg.EmailFrom,
		FrontendURL: cfg.FrontendURL,
	})
	if err != nil {
		logger.Fatalf("init mailer: %v", err)
	}

	catalogClient := catalogapi.New(catalogapi.Config{
		Host:     cfg.CatalogHost,
		Login:    cfg.CatalogLogin,
		Password: cfg.CatalogPassword,
	}, nil)

	offerRepo := offerrepo.NewPostgres(dbpool)
	skuRepo := skurepo.NewPostgres(dbpool)
	basketRepo := basketrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	statusRepo := statusrepo.NewPostgres(dbpool, catalog)
	userRepo := userrepo.NewPostgres(dbpool)

	notifier := notify.NewRoleNotifier(redisClient, logger)

	searchService := offersvc.New(offerRepo, skuRepo, userRepo, catalogClient)
	basketService := basketsvc.New(basketRepo, offerRepo, skuRepo, userRepo, catalogClient)
	orderService := ordersvc.New(orderRepo, offerRepo, catalog)
	statusService := statussvc.New(statusRepo, catalog)
	userService := usersvc.New(userRepo, mail, notifier, cfg.ResetTokenTTL, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		BasketSvc:      basketService,
		OrderSvc:       orderService,
		StatusSvc:      statusService,
		SearchSvc:      searchService,
		UserSvc:        userService,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
