package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/handlers"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/notify"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository/db"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/server"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/service"
)

// Background loop cadences. Sensor polling comes from config; the rest are
// fixed: the scheduler matches minutes, the level switches and the
// connection table are cheap to read every second.
const (
	waterLevelTick = 1 * time.Second
	schedulerTick  = 60 * time.Second
	activityTick   = 1 * time.Second
)

func main() {
	// load configs/config.yml (defaults apply when absent)
	cfg, err := config.Load("configs")
	if err != nil {
		// Logger depends on config, so this one goes to stderr directly.
		panic(err)
	}

	log := logger.Get(cfg.LogLevel, cfg.LogFile)

	// open DB
	database, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// GPIO / sensors (fakes when hardware.mock is set)
	devices, err := hardware.Build(cfg.Hardware)
	if err != nil {
		log.Fatalw("failed to init hardware", "err", err)
	}
	defer func() {
		if devices.Close != nil {
			if cerr := devices.Close(); cerr != nil {
				log.Errorw("failed to release hardware", "err", cerr)
			}
		}
	}()

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Mail.Enabled {
		notifier = notify.NewMailNotifier(cfg.Mail, log)
	}

	// wire dependencies
	repos := repository.NewRepository(database)
	services := service.NewService(cfg, repos, devices, notifier, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// restore the feed cooldown across restarts
	services.Scheduler.SeedLastFeed(ctx)

	go services.Sensors.Run(ctx, cfg.Sensors.PollInterval)
	go services.WaterLevel.Run(ctx, waterLevelTick)
	go services.Scheduler.Run(ctx, schedulerTick)
	go services.Activity.Run(ctx, activityTick)

	// start HTTP server
	srv := &server.Server{}
	go func() {
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
	log.Infow("started", "port", cfg.Port, "mock_hardware", cfg.Hardware.Mock)

	waitForShutdown(cancel, srv, log)
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
