package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/wieldyrabbit783/cherished-memories/internal/auth"
	"github.com/wieldyrabbit783/cherished-memories/internal/config"
	appdb "github.com/wieldyrabbit783/cherished-memories/internal/db"
	apphttp "github.com/wieldyrabbit783/cherished-memories/internal/http"
	applog "github.com/wieldyrabbit783/cherished-memories/internal/log"
	"github.com/wieldyrabbit783/cherished-memories/internal/memorial"
	"github.com/wieldyrabbit783/cherished-memories/internal/storage/alioss"
	"github.com/wieldyrabbit783/cherished-memories/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	dbConn, err := appdb.Open(appdb.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DBDSN,
	})
	if err != nil {
		return eris.Wrap(err, "opening database")
	}
	defer func() {
		if closeErr := appdb.Close(dbConn); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	if err := memorial.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running memorial migrations")
	}
	if err := store.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running store migrations")
	}

	objectStore, err := alioss.New(alioss.Options{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		AccessKeySecret: cfg.Storage.AccessKeySecret,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
		Logger:          logger,
	})
	if err != nil {
		return eris.Wrap(err, "connecting to object storage")
	}

	memorialRepo, err := memorial.NewRepository(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building memorial repository")
	}

	memorialService, err := memorial.NewService(memorialRepo, objectStore, objectStore.PublicBase(), logger, sentryHub)
	if err != nil {
		return eris.Wrap(err, "creating memorial service")
	}

	storeRepo, err := store.NewRepository(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building store repository")
	}

	storeService, err := store.NewService(storeRepo, logger)
	if err != nil {
		return eris.Wrap(err, "creating store service")
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return eris.Wrap(err, "creating token verifier")
	}

	transport, err := apphttp.NewServer(apphttp.Options{
		MemorialService: memorialService,
		StoreService:    storeService,
		Verifier:        verifier,
		Database:        dbConn,
		Logger:          logger,
		SentryHub:       sentryHub,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			ClientTTL:         cfg.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}

	httpServer := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler: transport.Handler(),
	}

	logger.WithFields(logrus.Fields{
		"addr": httpServer.Addr,
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	logger.Info("http server shut down cleanly")
	return nil
}
