package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/threatloom/pkg/config"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/snapshot"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	mode := flag.String("mode", "", "Data source mode: simulated or remote (overrides config)")
	output := flag.String("o", "-", "Output file, - for stdout")
	compress := flag.Bool("compress", false, "Compress with the snappy framing format")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall deadline")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, *configPath, *mode, *output, *compress); err != nil {
		fmt.Fprintf(os.Stderr, "threatloom-snapshot: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, mode, output string, compress bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if mode != "" {
		cfg.Mode = mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Logs go to stderr so stdout carries only the document
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel).With(logging.Component("snapshot"))

	source, err := cfg.NewSource(logger, nil)
	if err != nil {
		return err
	}
	svc := service.New(source, service.WithLogger(logger))

	snap, err := snapshot.Collect(ctx, svc)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	n, err := snapshot.Encode(w, snap, snapshot.Options{Compress: compress})
	if err != nil {
		return err
	}
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("sync output: %w", err)
		}
	}

	logger.Info("snapshot written",
		logging.String("source", snap.Source),
		logging.Int64("bytes", n),
		logging.Bool("compressed", compress),
		logging.Count(len(snap.Indicators)+len(snap.Alerts)+len(snap.Feeds)+len(snap.Playbooks)),
	)
	return nil
}
