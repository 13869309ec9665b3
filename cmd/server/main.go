package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/cinexplorer/internal/cart"
	"github.com/iliyamo/cinexplorer/internal/catalog"
	"github.com/iliyamo/cinexplorer/internal/config"
	"github.com/iliyamo/cinexplorer/internal/database"
	"github.com/iliyamo/cinexplorer/internal/handler"
	"github.com/iliyamo/cinexplorer/internal/queue"
	"github.com/iliyamo/cinexplorer/internal/realtime"
	"github.com/iliyamo/cinexplorer/internal/repository"
	"github.com/iliyamo/cinexplorer/internal/router"
	"github.com/iliyamo/cinexplorer/internal/service"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Error("open mysql", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.SchemaPath != "" {
		if err := database.ApplySchema(ctx, db, cfg.SchemaPath); err != nil {
			logger.Error("apply schema", "error", err, "path", cfg.SchemaPath)
			os.Exit(1)
		}
	}
	ready := map[string]handler.Pinger{"mysql": db}

	provider, err := loadCatalog(ctx, cfg, db)
	if err != nil {
		logger.Error("load catalog", "error", err, "source", cfg.CatalogSource)
		os.Exit(1)
	}

	// Redis is optional: without it carts live in memory and neither the
	// response cache nor the rate limiter run.
	rdb := config.NewRedisClient(cfg.Redis)
	var carts cart.Store = cart.NewMemoryStore()
	if rdb != nil {
		defer rdb.Close()
		carts = cart.NewRedisStore(rdb, cfg.CartTTL, "cart")
		ready["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		logger.Warn("redis unavailable; carts are kept in memory", "addr", cfg.Redis.Addr)
	}

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	var publisher service.Publisher
	if cfg.RabbitMQURL != "" {
		publisher = service.NewAMQPPublisher(cfg.RabbitMQURL)
		sink, err := ticketSink(ctx, cfg, ready)
		if err != nil {
			logger.Error("ticket sink", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := queue.StartTicketConsumer(ctx, cfg.RabbitMQURL, sink, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("ticket consumer stopped", "error", err)
			}
		}()
	} else {
		logger.Info("RABBITMQ_URL not set; tickets.issued events are not published")
	}

	tickets := repository.NewTicketRepo(db)
	sold := service.NewDemoSold(repository.NewSoldSeatRepo(db), provider, cfg.DemoOccupancy)
	svc := service.NewTicketService(service.Deps{
		Catalog:   provider,
		Sold:      sold,
		Carts:     carts,
		Issuer:    service.NewSQLIssuer(db),
		History:   tickets,
		Publisher: publisher,
		Live:      hub,
		Logger:    logger,
	})

	e := router.New(router.Deps{
		Auth:      handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		Public:    &handler.PublicHandler{Finder: service.NewCinemaFinder(provider, sold), Tickets: svc, Hub: hub, Logger: logger},
		Customer:  &handler.CustomerHandler{Tickets: svc, Logger: logger},
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
		Ready:     ready,
		Logger:    logger,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("starting server", "addr", addr, "env", cfg.Env, "catalog", cfg.CatalogSource)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	svc.Wait()
}

// loadCatalog returns the catalog the API reads from. In file mode the YAML
// seed is served from memory and also imported into MySQL, which the
// ticket and sold seat tables reference.
func loadCatalog(ctx context.Context, cfg config.Config, db *sql.DB) (catalog.Provider, error) {
	if cfg.CatalogSource != config.CatalogFile {
		return repository.NewCatalogRepo(db), nil
	}
	fp, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	if err := repository.NewCatalogRepo(db).Import(ctx, fp.Seed()); err != nil {
		return nil, err
	}
	return fp, nil
}

// ticketSink picks where consumed tickets.issued events go: the analytics
// Postgres when configured, otherwise an append-only log file.
func ticketSink(ctx context.Context, cfg config.Config, ready map[string]handler.Pinger) (queue.Sink, error) {
	if cfg.AnalyticsDatabaseURL == "" {
		return queue.NewFileSink(cfg.TicketLogPath), nil
	}
	pool, err := database.OpenAnalytics(ctx, cfg.AnalyticsDatabaseURL)
	if err != nil {
		return nil, err
	}
	sink := queue.NewPostgresSink(pool)
	if err := sink.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	ready["analytics"] = handler.PingFunc(pool.Ping)
	return sink, nil
}
