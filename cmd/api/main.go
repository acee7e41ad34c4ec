package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse.transitlab.org/internal/app"
	"pulse.transitlab.org/internal/appconf"
	"pulse.transitlab.org/internal/dashboard"
	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/report"
	"pulse.transitlab.org/internal/restapi"
	"pulse.transitlab.org/internal/schedule"
	"pulse.transitlab.org/internal/webui"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logging.LogError(logger, "server stopped with error", err)
		os.Exit(1)
	}
}

// run wires the engine to its sinks, serves HTTP until ctx is cancelled and
// then shuts everything down in order.
func run(ctx context.Context, cfg appconf.Config, logger *slog.Logger) error {
	loop := schedule.NewLoop(logger)
	defer loop.Shutdown()

	board := render.NewBoard(render.BoardConfig{Now: loop.Now})
	hub := render.NewHub(logger, board.Replay)
	defer hub.Close()
	out := render.NewFanout(board, hub)
	reports := report.NewTextExporter(logger)

	seed := cfg.Simulation.Seed
	d, err := dashboard.New(dashboard.Options{
		Scheduler: loop,
		Sink:      out,
		Charts:    out,
		Notifier:  out,
		Exporter:  reports,
		Rand:      rand.New(rand.NewPCG(seed, seed)),
		Logger:    logger,
		Config:    cfg.Simulation.ToDashboard(),
	})
	if err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	err = d.Do(startCtx, d.Start)
	cancel()
	if err != nil {
		return fmt.Errorf("start dashboard: %w", err)
	}

	application := &app.Application{
		Config:    cfg,
		Logger:    logger,
		Dashboard: d,
		Board:     board,
		Hub:       hub,
		Reports:   reports,
	}
	api := restapi.NewRestAPI(application)
	defer api.Close()
	webUI := &webui.WebUI{Application: application}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(webUI.SetWebUIRoutes),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env.String()),
			slog.Uint64("seed", seed))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "http shutdown failed", err)
	}
	if err := d.Do(shutdownCtx, func() error { d.Stop(); return nil }); err != nil {
		logging.LogError(logger, "dashboard stop failed", err)
	}
	return nil
}
