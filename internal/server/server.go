// Package server boots the storefront process: connections, the HTTP
// kernel, the optional gRPC health endpoint and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/atomic"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

const shutdownTimeout = 15 * time.Second

// Boot connects the database and cache and builds the kernel. The returned
// cleanup releases what Boot opened.
func Boot(ctx context.Context, ready *atomic.Bool, feed *ws.Hub) (*kernel.Kernel, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, fmt.Errorf("server: config: %w", err)
	}

	cleanup := func() {}
	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.NewMongoHandler(ctx, uri, config.LogMongoDatabase(), "logs", slog.LevelInfo)
		if err != nil {
			logger.Warn("server: mongo log sink disabled", "error", err)
		} else {
			logger.Tee(h)
			cleanup = h.Close
		}
	}

	if err := database.Connect(); err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := cache.Connect(ctx); err != nil {
		logger.Warn("server: redis unavailable, using in-memory cache", "error", err)
	}

	disks, err := storage.FromConfig(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	rateMax, rateWindow := config.RateLimit()
	deps := kernel.Deps{
		DB:            database.DB,
		Cache:         cache.Default,
		Disk:          disks.Default(),
		Tokens:        auth.NewTokenService(config.JWTSecret(), config.JWTTTL()),
		Events:        event.New(),
		Feed:          feed,
		Ready:         ready,
		AuthCookie:    config.AuthCookie(),
		SecureCookies: config.IsProduction(),
		SessionTTL:    config.SessionTTL(),
		RateMax:       rateMax,
		RateWindow:    rateWindow,
	}
	if config.StorageDefault() == "local" {
		deps.StorageRoot = config.StorageLocalRoot()
	}

	k, err := kernel.New(deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return k, cleanup, nil
}

// Start serves until SIGINT/SIGTERM, then drains: readiness goes false,
// in-flight requests get shutdownTimeout to finish.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := atomic.NewBool(false)
	feed := ws.NewHub()

	k, cleanup, err := Boot(ctx, ready, feed)
	if err != nil {
		return err
	}
	defer cleanup()

	go feed.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var rpc *grpc.Server
	if port := config.GRPCPort(); port != "" {
		rpc = grpc.New()
		if err := rpc.Listen(":" + port); err != nil {
			return err
		}
		go func() {
			if err := rpc.Serve(); err != nil {
				logger.Error("server: grpc stopped", "error", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", srv.Addr, err)
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	ready.Store(true)
	if rpc != nil {
		rpc.SetServing(true)
	}

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	ready.Store(false)
	if rpc != nil {
		rpc.SetServing(false)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if rpc != nil {
		rpc.Stop()
	}
	logger.Info("server: stopped")
	return nil
}
