package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cal-sync/core/config"
	"cal-sync/core/loader"
	"cal-sync/core/logger"
	"cal-sync/core/middleware/auth"
	"cal-sync/core/middleware/rayid"
	"cal-sync/core/server"
	"cal-sync/feature/calendars"
	"cal-sync/feature/integrity"
	"cal-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveFlags syncFlags

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the sync schedule",
	Long: `Starts the HTTP server exposing calendar discovery and sync runs. When
server.schedule is set, sync runs are also triggered on that cron schedule.`,
	RunE: runServe,
}

func init() {
	serveFlags.bind(serveCmd.Flags())
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logg, err := setup()
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)
	serveFlags.apply(cmd.Flags(), &cfg.Sync)

	if !cfg.Server.IsValidSchedule() {
		return fmt.Errorf("invalid server.schedule %q", cfg.Server.Schedule)
	}

	svc, backend, err := newService(cfg, logg)
	if err != nil {
		return err
	}
	checker := integrity.NewService(backend, cfg.Sync, logg, clockwork.NewRealClock())

	app, err := newServer(cfg, logg, svc, checker)
	if err != nil {
		return err
	}

	scheduler, err := newScheduler(cfg.Server.Schedule, svc, logg)
	if err != nil {
		return err
	}
	if scheduler != nil {
		scheduler.Start()
		logg.Info("Scheduled sync runs", zap.String("schedule", cfg.Server.Schedule))
	}

	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logg.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logg.Info("Shutting down server...")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	return app.Shutdown()
}

// newServer builds the fiber app with middleware and every enabled feature.
func newServer(cfg *config.Config, logg *zap.Logger, svc *sync.Service, checker *integrity.Service) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager()
	mgr.Register(calendars.NewFeature(svc, logg))
	mgr.Register(sync.NewFeature(svc))
	mgr.Register(integrity.NewFeature(checker))

	// RayID must be first to trace everything
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/health"}}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if err := mgr.LoadAll(app); err != nil {
		return nil, err
	}
	for _, f := range mgr.Features() {
		if !f.IsEnabled() {
			logg.Warn("Feature disabled", zap.String("feature", f.Name()))
		}
	}
	return app, nil
}

// newScheduler returns a cron scheduler running svc on schedule, or nil when
// schedule is empty.
func newScheduler(schedule string, svc *sync.Service, logg *zap.Logger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New(cron.WithParser(server.ScheduleParser))
	_, err := c.AddFunc(schedule, func() {
		report, err := svc.Run(context.Background())
		if err != nil {
			logg.Error("Scheduled sync failed", zap.Error(err))
			return
		}
		logg.Info("Scheduled sync finished",
			zap.Int("actions", len(report.Plan.Actions)),
			zap.Bool("up_to_date", report.UpToDate()),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return c, nil
}
