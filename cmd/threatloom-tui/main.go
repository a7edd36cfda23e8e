package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/threatloom/pkg/config"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/updates"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	logPath := flag.String("log", "", "Write logs to this file (discarded when empty)")
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "threatloom-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere
	logger := logging.NewNopLogger()
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = logging.NewJSONLogger(f, cfg.LogLevel)
	}

	source, err := cfg.NewSource(logger, nil)
	if err != nil {
		return err
	}
	svc := service.New(source, service.WithLogger(logger))

	registry := updates.NewRegistry(updates.WithLogger(logger))
	ticker := updates.NewTicker(registry, svc, cfg.UpdateInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticker.Start(ctx)
	defer ticker.Stop()

	events, _ := registry.Listen(ctx, 1)

	p := tea.NewProgram(initialModel(svc, events, cancel), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
