package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/globalentry/slot-alerter/internal/engine"
	"github.com/globalentry/slot-alerter/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the slot watcher with scheduler, health, and metrics endpoints",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	st, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	client := newSchedulerClient(cfg)

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	locations := engine.ResolveLocations(ctx, client, cfg.Locations, log)
	for _, loc := range locations {
		log.Info("watching location", "id", loc.ID, "name", loc.Label())
	}

	eng := engine.NewEngine(st, client, notifier, locations,
		engine.WithLogger(log),
		engine.WithStaggerOffset(cfg.Schedule.StaggerOffset),
		engine.WithBatchThreshold(cfg.Alerts.BatchThreshold),
	)

	if cfg.Alerts.StartupTest {
		if err := eng.SendStartupTest(ctx); err != nil {
			log.Warn("startup test notification failed", "error", err)
		}
	}

	sched, err := engine.NewScheduler(eng, cfg.Schedule.CheckInterval, cfg.Schedule.PruneInterval, log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	// First check runs right away; cron only fires after the first interval.
	go func() {
		if err := eng.RunCheck(ctx); err != nil {
			log.Error("initial check failed", "error", err)
		}
	}()

	sched.Start()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/readyz", func(c echo.Context) error {
		if err := st.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server",
		"addr", addr,
		"check_interval", cfg.Schedule.CheckInterval,
		"locations", len(locations),
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	stopCtx := sched.Stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("stopped")
	return nil
}
