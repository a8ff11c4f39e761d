package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/edboard/edboard/internal/config"
	"github.com/edboard/edboard/internal/domain/patient"
	"github.com/edboard/edboard/internal/platform/alerts"
	"github.com/edboard/edboard/internal/platform/classifier"
	"github.com/edboard/edboard/internal/platform/db"
	"github.com/edboard/edboard/internal/platform/middleware"
	"github.com/edboard/edboard/internal/platform/websocket"
	"github.com/edboard/edboard/internal/widgets"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "edboard-server",
		Short: "Emergency department dashboard server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetInt("to")

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir())
			count, err := migrator.UpTo(ctx, target)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", count).Msg("migrations complete")
			return nil
		},
	}
	upCmd.Flags().Int("to", 0, "apply migrations up to this version (0 = all)")
	cmd.AddCommand(upCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir())
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}

			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return cmd
}

func migrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	// Remote prediction service clients
	surgeClassifier := classifier.New(cfg.ClassifierURL, 10*time.Second)
	waitPredictor := classifier.New(cfg.PredictorURL, 10*time.Second)

	// Patient intake API
	patientRepo := patient.NewRepoPG(pool)
	occupancyRepo := patient.NewOccupancyRepoPG(pool)
	patientSvc := patient.NewService(patientRepo, occupancyRepo, waitPredictor, logger)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	// WebSocket hub for live dashboard pushes
	hub := websocket.NewHub(logger)
	websocket.NewWebSocketHandler(hub).RegisterRoutes(e.Group(""))

	// Widgets publish every rendered snapshot to websocket subscribers.
	publisher := websocket.SnapshotBroadcaster{Hub: hub}
	registry := widgets.NewRegistry()
	registry.Register(widgets.NewSurge(patientRepo, occupancyRepo, surgeClassifier, publisher, widgets.SurgeOptions{
		Period:      cfg.SurgeRefresh(),
		Threshold:   cfg.SurgeThreshold,
		DefaultBeds: cfg.AvailableBedsDefault,
		Logger:      logger,
	}))
	registry.Register(widgets.NewPrediction(patientRepo, publisher, widgets.PredictionOptions{
		Period:    cfg.PredictionRefresh(),
		MaxPoints: cfg.MaxDataPoints,
		Logger:    logger,
	}))
	registry.Register(widgets.NewUrgency(patientRepo, publisher, cfg.SurgeRefresh(), logger))
	registry.Register(widgets.NewFlow(patientRepo, publisher, cfg.SurgeRefresh(), logger))
	registry.Register(widgets.NewStats(patientRepo, occupancyRepo, publisher, widgets.StatsOptions{
		Period:      cfg.SurgeRefresh(),
		DefaultBeds: cfg.AvailableBedsDefault,
		Logger:      logger,
	}))
	widgets.NewHandler(registry).RegisterRoutes(apiV1)

	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()
	registry.StartAll(bgCtx)
	logger.Info().Int("widgets", len(registry.All())).Msg("widgets started")

	// Alert channel: one standing connection to the alert source, fanned out
	// to the banner presenter and websocket subscribers.
	channel := alerts.New(cfg.AlertSourceURL, logger)
	go channel.Run(bgCtx)

	presenter := alerts.NewPresenter(cfg.AlertDismiss(), logger)
	presenter.Attach(channel.Subscribe())

	go forwardAlerts(channel.Subscribe(), hub)

	alerts.NewHandler(channel, presenter).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	bgCancel()
	registry.DisposeAll()
	presenter.Stop()
	channel.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// forwardAlerts relays every alert message to websocket clients subscribed
// to the alerts topic.
func forwardAlerts(sub *alerts.Subscription, hub *websocket.Hub) {
	for msg := range sub.C {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		hub.Broadcast("alerts", websocket.Event{
			Type:      "alert",
			Topic:     "alerts",
			Timestamp: time.Now(),
			Data:      data,
		})
	}
}
