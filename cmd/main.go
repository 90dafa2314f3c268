package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhil/tsview/internal/config"
	"github.com/nikhil/tsview/internal/handlers"
	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/routes"
	statusService "github.com/nikhil/tsview/internal/service/status"
	"github.com/nikhil/tsview/internal/tsquery"
)

func main() {
	cfg, cfgErr := config.Load()

	log := logger.NewLogger("main")
	defer log.Sync()

	if cfgErr != nil {
		log.Fatal("invalid configuration", "error", cfgErr)
	}

	dial := func(ctx context.Context) (statusService.Querier, error) {
		c, err := tsquery.Dial(ctx, cfg.TS3.Addr(), tsquery.Options{
			IOTimeout: cfg.QueryTimeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	svc := statusService.NewService(dial, statusService.ServiceConfig{
		Username: cfg.TS3.Username,
		Password: cfg.TS3.Password,
		ServerID: cfg.TS3.ServerID,
	}, logger.NewLogger("status-service"))

	cache := statusService.NewCache(svc, cfg.CacheTTL, logger.NewLogger("status-cache"))

	hub := handlers.NewHub()
	go hub.Run()
	cache.OnRefresh(hub.BroadcastStatus)

	router := routes.RegisterAllRoutes(routes.Deps{
		Cache: cache,
		Hub:   hub,
		Log:   logger.NewLogger("http"),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr, "ts3", cfg.TS3.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
