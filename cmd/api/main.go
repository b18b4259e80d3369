package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AlonsoPV/baileApp-sub007/internal/app/apiapp"
	"github.com/AlonsoPV/baileApp-sub007/internal/config"
	"github.com/AlonsoPV/baileApp-sub007/internal/infra/logger"
	"github.com/AlonsoPV/baileApp-sub007/internal/jobs/cleanup"
	pgrepo "github.com/AlonsoPV/baileApp-sub007/internal/repo/postgres"
)

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := apiapp.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("create api app", zap.Error(err))
	}

	if pool := app.Pool(); pool != nil {
		job := cleanup.New(
			pgrepo.NewEventRepo(pool),
			pgrepo.NewVoteRepo(pool),
			cfg.Community.EventRetention,
			log,
		)
		go job.Start(ctx, time.Hour)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown api app", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api server failed", zap.Error(err))
		}
	}
}
