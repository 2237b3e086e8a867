package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"ai-notecanvas/internal/bootstrap"
	"ai-notecanvas/internal/config"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/server"
	"ai-notecanvas/internal/tracer"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and websocket push channel",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracer.InitTracer(ctx, cfg.Otel, sysLogger)
	defer shutdownTracer(context.Background())

	container, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		return err
	}

	srv := server.New(cfg, container)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		container.WebSocketHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return container.Bus.Consume(gctx, container.WebSocketHub.HandleEvent)
	})
	if container.Mirror != nil {
		g.Go(func() error {
			return container.Mirror.Mirror(gctx, container.Bus)
		})
	}
	g.Go(func() error {
		return srv.Run(gctx)
	})

	runErr := g.Wait()
	closeErr := container.Close()
	sysLogger.Info("Main", "Stopped", nil)
	return errors.Join(runErr, closeErr)
}
