package service

import (
	"context"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/notify"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

// Monitoring exposes the read-only status snapshot for the API/WS layer.
type Monitoring interface {
	Status(ctx context.Context) (models.TankStatus, error)
	SensorHistory(ctx context.Context, from, to time.Time) ([]models.SensorReading, error)
}

// Actuators is the command surface over the relay channels and the pump
// auto-off timer.
type Actuators interface {
	SetActuator(ctx context.Context, name string, on bool) error
	RunWaterPumpFor(ctx context.Context, seconds int) error
	Beep(count int)
}

// Feeding exposes the manual feed operation and the log listing.
type Feeding interface {
	FeedNow(ctx context.Context, portion int) (models.FeedResult, error)
	Logs(ctx context.Context, limit int) ([]models.FeedingLogEntry, error)
	DeleteLog(ctx context.Context, id int64) error
}

// Schedules is the validated CRUD boundary for feeding schedules. Bad
// schedule fields are rejected here and never reach the scheduler.
type Schedules interface {
	Create(ctx context.Context, s models.FeedingSchedule) (int64, error)
	Update(ctx context.Context, s models.FeedingSchedule) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.FeedingSchedule, error)
}

// EventLog exposes the append-only system event log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SystemEvent, error)
}

// Service aggregates the command/query services plus the background
// runners started from main.
type Service struct {
	Monitoring
	Actuators
	Feeding
	Schedules
	EventLog

	// Background runners, started from main.
	Scheduler  *FeedingService
	Sensors    *SensorService
	WaterLevel *WaterLevelService
	Activity   *ActivityService
}

// NewService wires repositories, hardware and the shared state store into
// the concrete services.
func NewService(
	cfg *config.Config,
	repos *repository.Repository,
	devices *hardware.Devices,
	notifier notify.Notifier,
	log *logger.Logger,
) *Service {
	state := NewStateStore()

	actuators := NewActuatorService(cfg, devices, state, repos.Events, log)
	feeding := NewFeedingService(cfg, devices.Feeder, state, repos, log)

	return &Service{
		Monitoring: NewMonitoringService(state, repos.Sensors),
		Actuators:  actuators,
		Feeding:    feeding,
		Schedules:  NewScheduleService(repos.Schedules),
		EventLog:   NewEventLogService(repos.Events),

		Scheduler:  feeding,
		Sensors:    NewSensorService(devices, state, repos.Sensors, cfg.Sensors.PersistInterval, log),
		WaterLevel: NewWaterLevelService(devices.TopLevel, devices.BottomLevel, state, notifier, repos.Events, log),
		Activity:   NewActivityService(cfg.Activity, state, actuators, log),
	}
}
