package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/fleethub/internal/observability/logger"
	"github.com/dropDatabas3/fleethub/internal/silo/heartbeat"
)

var version = "dev"

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envDur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

func main() {
	_ = godotenv.Load()

	logger.Init(logger.Config{
		Env:         envOr("APP_ENV", "dev"),
		Level:       envOr("LOG_LEVEL", "info"),
		ServiceName: "silo",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	siloVersion := envOr("SILO_VERSION", version)
	client, err := heartbeat.New(heartbeat.Config{
		HubURL:    envOr("HUB_URL", "http://localhost:8080"),
		TenantID:  os.Getenv("SILO_TENANT_ID"),
		Interval:  envDur("SILO_HEARTBEAT_INTERVAL", heartbeat.DefaultInterval),
		Timeout:   envDur("SILO_HEARTBEAT_TIMEOUT", 0),
		Collector: heartbeat.NewSystemCollector(os.Getenv("SILO_PROC_ROOT"), siloVersion),
	})
	if err != nil {
		// sin tenant los reportes no serían atribuibles: abortar
		log.Fatal("silo misconfigured", logger.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(gctx) })

	if addr := os.Getenv("SILO_STATUS_ADDR"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/status", client.StatusHandler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			log.Info("silo status endpoint listening", logger.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal("silo stopped with error", logger.Err(err))
	}
	log.Info("silo stopped")
}
