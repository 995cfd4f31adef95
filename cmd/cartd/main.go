package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/shopcart/internal/bootstrap"
	"github.com/nikolayk812/shopcart/internal/config"
	"github.com/nikolayk812/shopcart/internal/handler"
	"github.com/nikolayk812/shopcart/internal/notify"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config.Load: %v", err)
	}

	log, err := bootstrap.NewLogger(cfg, os.Stdout)
	if err != nil {
		logrus.Fatalf("bootstrap.NewLogger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, shutdownTracing, err := bootstrap.NewTracerProvider(ctx, cfg, "cartd", os.Stderr)
	if err != nil {
		log.Fatalf("bootstrap.NewTracerProvider: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("tracer shutdown failed")
		}
	}()

	store, closeStore, err := bootstrap.NewStore(ctx, cfg, bootstrap.Deps{
		Log:            log,
		Notifier:       notify.NewLog(log),
		TracerProvider: tp,
	})
	if err != nil {
		log.Fatalf("bootstrap.NewStore: %v", err)
	}
	defer closeStore()

	log.WithFields(logrus.Fields{
		"driver": cfg.Storage.Driver,
		"slot":   cfg.Storage.Slot,
		"items":  store.Cart().Len(),
	}).Info("cart loaded")

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(store, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}
	log.Info("HTTP server stopped")
}
