package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/fleethub/internal/config"
	"github.com/dropDatabas3/fleethub/internal/http/server"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"

	// Registra los adapters del store via init()
	_ "github.com/dropDatabas3/fleethub/internal/store/adapters/dal"
)

// version se setea con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "YAML de configuración (opcional)")
	flag.Parse()

	// .env es opcional
	envErr := godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.L().Fatal("invalid configuration", logger.Err(err))
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "fleethub",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()
	if envErr != nil {
		log.Debug("no .env file loaded", logger.Err(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub, err := server.BuildHub(ctx, cfg, version)
	if err != nil {
		log.Fatal("hub wiring failed", logger.Err(err))
	}

	srv := server.NewHTTPServer(cfg.Server.Addr, hub.App.Handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, srv, cfg.Server.ShutdownTimeout)
	})

	log.Info("fleethub ready",
		logger.String("addr", cfg.Server.Addr),
		logger.String("driver", hub.DAL.Driver()),
		logger.Interval(cfg.Fleet.HeartbeatInterval),
	)

	runErr := g.Wait()
	if err := hub.Close(); err != nil {
		log.Error("hub cleanup failed", logger.Err(err))
	}
	if runErr != nil {
		log.Fatal("hub stopped with error", logger.Err(runErr))
	}
	log.Info("fleethub stopped")
}
