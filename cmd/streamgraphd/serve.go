package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/streamgraph/config"
	"github.com/arung-agamani/streamgraph/internal/core/graph"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
	"github.com/arung-agamani/streamgraph/internal/demo"
	"github.com/arung-agamani/streamgraph/internal/httpapi"
	"github.com/arung-agamani/streamgraph/internal/httpapi/auth"
	"github.com/arung-agamani/streamgraph/internal/httpapi/service"
	"github.com/arung-agamani/streamgraph/internal/persistence"
	"github.com/arung-agamani/streamgraph/internal/runtime"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the graph management HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()

	reg := registry.New()
	if err := demo.Register(reg); err != nil {
		return fmt.Errorf("registering components: %w", err)
	}

	store := persistence.NewFileStore(cfg.GraphFile)
	g := graph.New(reg, store)

	doc, err := persistence.Load(cfg.GraphFile)
	if err != nil {
		return fmt.Errorf("loading graph document: %w", err)
	}
	if err := g.LoadDocument(doc); err != nil {
		return fmt.Errorf("applying graph document: %w", err)
	}
	g.StartAll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WatchGraphFile {
		watcher, err := persistence.NewWatcher(cfg.GraphFile)
		if err != nil {
			return fmt.Errorf("watching graph file: %w", err)
		}
		stop := make(chan struct{})
		go watcher.Watch(stop, func(doc graph.Document) {
			slog.Info("graph document changed on disk, reloading")
			if err := g.LoadDocument(doc); err != nil {
				slog.Error("failed to apply reloaded graph document", "error", err)
				return
			}
			g.StartAll()
		})
		go func() {
			<-ctx.Done()
			close(stop)
		}()
	}

	ticker := runtime.NewMetricsTicker(g, nil, cfg.MetricsInterval)
	go ticker.Run(ctx)

	svc := service.NewGraphService(g, reg)
	a := auth.New(auth.Config{
		Username:           cfg.AdminUsername,
		Password:           cfg.AdminPassword,
		Secret:             cfg.AuthSecret,
		MaxLoginAttempts:   cfg.LoginMaxFails,
		LoginWindowSeconds: cfg.LoginWindowSecs,
	})
	router := httpapi.NewRouter(svc, a)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutdown signal received")
		g.StopAll()
		cancel()
		os.Exit(0)
	}()

	slog.Info("starting streamgraph daemon", "port", cfg.Port, "graph_file", cfg.GraphFile)
	if err := router.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
