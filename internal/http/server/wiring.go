// Package server arma el Hub completo desde la configuración y lo sirve con
// apagado ordenado.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/fleethub/internal/app"
	"github.com/dropDatabas3/fleethub/internal/catalog"
	"github.com/dropDatabas3/fleethub/internal/config"
	"github.com/dropDatabas3/fleethub/internal/modules"
	"github.com/dropDatabas3/fleethub/internal/modules/hotel"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
	"github.com/dropDatabas3/fleethub/internal/rate"
	"github.com/dropDatabas3/fleethub/internal/store"
)

// Hub es el Hub cableado. Close libera limiter y DAL (en ese orden).
type Hub struct {
	App *app.App
	DAL store.DataAccessLayer

	cleanup []func() error
}

// HandlerSets son los módulos con implementación en este binario.
func HandlerSets() []modules.HandlerSet {
	return []modules.HandlerSet{
		hotel.New(),
	}
}

// BuildHub abre el DAL, siembra el catálogo y arma la app.
// Los adapters deben estar registrados (blank import de store/adapters/dal).
func BuildHub(ctx context.Context, cfg *config.Config, version string) (*Hub, error) {
	log := logger.L().With(logger.Component("wiring"))

	// 1. Data Store
	dal, err := store.Open(ctx, store.Config{
		Driver:       cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		SnapshotPath: cfg.Storage.SnapshotPath,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	h := &Hub{DAL: dal, cleanup: []func() error{dal.Close}}

	fail := func(err error) (*Hub, error) {
		_ = h.Close()
		return nil, err
	}

	// 2. Catálogo
	mods, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return fail(err)
	}
	if err := catalog.Seed(ctx, dal.Modules(), mods); err != nil {
		return fail(fmt.Errorf("catalog seed: %w", err))
	}

	// 3. Handler sets
	reg, err := modules.NewRegistry(HandlerSets()...)
	if err != nil {
		return fail(err)
	}

	// 4. Rate limiter de heartbeats
	limiter, err := rate.New(ctx, rate.Config{
		Kind:      cfg.Cache.Kind,
		RedisAddr: cfg.Cache.Redis.Addr,
		RedisDB:   cfg.Cache.Redis.DB,
		Prefix:    cfg.Cache.Redis.Prefix,
		Max:       cfg.Rate.Heartbeat.Limit,
		Window:    cfg.Rate.Heartbeat.Window,
	})
	if err != nil {
		return fail(err)
	}
	var redisCheck func(ctx context.Context) error
	if rl, ok := limiter.(*rate.RedisLimiter); ok {
		h.cleanup = append([]func() error{rl.Close}, h.cleanup...)
		redisCheck = rl.Ping
	}
	if limiter == nil {
		log.Info("heartbeat rate limit disabled")
	}

	// 5. App
	a, err := app.New(ctx, app.Config{
		Version:           version,
		HeartbeatInterval: cfg.Fleet.HeartbeatInterval,
		CatalogTTL:        cfg.Cache.CatalogTTL,
		AdminJWTSecret:    cfg.Auth.AdminJWTSecret,
		CORSOrigins:       cfg.Server.CORSAllowedOrigins,
	}, app.Deps{
		DAL:              dal,
		Modules:          reg,
		HeartbeatLimiter: limiter,
		RedisCheck:       redisCheck,
	})
	if err != nil {
		return fail(err)
	}
	h.App = a

	if cfg.Auth.AdminJWTSecret == "" {
		log.Warn("admin routes are not protected (auth.admin_jwt_secret empty)")
	}
	return h, nil
}

// Close libera recursos; seguro de llamar más de una vez.
func (h *Hub) Close() error {
	var errs []error
	for _, fn := range h.cleanup {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	h.cleanup = nil
	return errors.Join(errs...)
}

// NewHTTPServer arma el http.Server con timeouts razonables.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Serve corre srv hasta que ctx se cancela y luego drena con Shutdown.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", logger.Component("server"), logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("http server shutting down", logger.Component("server"))
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return <-errCh
}
