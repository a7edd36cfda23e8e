package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dd0wney/threatloom/pkg/api"
	"github.com/dd0wney/threatloom/pkg/config"
	"github.com/dd0wney/threatloom/pkg/health"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/metrics"
	"github.com/dd0wney/threatloom/pkg/server"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/updates"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	listen := flag.String("listen", "", "Listen address (overrides config and PORT)")
	flag.Parse()

	if err := run(*configPath, *listen); err != nil {
		fmt.Fprintf(os.Stderr, "threatloom-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, listen string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)
	logging.SetDefaultLogger(logger)

	logger.Info("ThreatLoom server starting",
		logging.String("version", Version),
		logging.String("mode", cfg.Mode),
		logging.Duration("update_interval", cfg.UpdateInterval),
	)

	reg := metrics.NewRegistry()

	source, err := cfg.NewSource(logger, reg)
	if err != nil {
		return err
	}
	svc := service.New(source,
		service.WithLogger(logger),
		service.WithMetrics(reg),
	)

	// Simulated push updates
	registry := updates.NewRegistry(updates.WithLogger(logger), updates.WithMetrics(reg))
	ticker := updates.NewTicker(registry, svc, cfg.UpdateInterval, logger)
	subID := registry.Subscribe(func(e updates.Event) {
		logger.Debug("metrics update", logging.String("kind", e.Kind))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticker.Start(ctx)

	hc := health.NewHealthChecker(Version)
	hc.RegisterCheck("source", health.SourceCheck(svc.SourceName(), svc.Ping, api.DefaultSlowSource))
	hc.RegisterCheck("updates", health.UpdatesCheck(registry.Len, ticker.Running))
	hc.RegisterCheck("memory", health.MemoryCheck(nil))
	hc.RegisterReadinessCheck("source", health.SourceCheck(svc.SourceName(), svc.Ping, api.DefaultSlowSource))
	hc.RegisterLivenessCheck("process", health.SimpleCheck("process"))

	apiServer, err := api.NewServer(svc, cfg.HTTP,
		api.WithLogger(logger),
		api.WithMetrics(reg),
		api.WithHealthChecker(hc),
		api.WithVersion(Version),
		api.WithUpdates(registry, ticker),
	)
	if err != nil {
		return err
	}

	gs := server.NewGracefulServer(cfg.Listen, apiServer.Handler(), server.Options{
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		Logger:          logger,
	})

	// SIGHUP re-reads the config file; only the log level is applied live
	gs.SetConfigReloadFunc(func() error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger.SetLevel(next.LogLevel)
		logger.Info("log level reloaded", logging.String("level", next.LogLevel.String()))
		return nil
	})

	gs.OnShutdown(func() {
		registry.Unsubscribe(subID)
		ticker.Stop()
		apiServer.Close()
		cancel()
		logger.Info("server exited")
	})

	return gs.Start()
}
