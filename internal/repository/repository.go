package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
)

// ScheduleRepo owns the feeding_schedules table. The scheduler only reads
// schedules and updates last_feed_time (through FeedingLogRepo.RecordFeed);
// everything else is driven by the CRUD API.
type ScheduleRepo interface {
	Create(ctx context.Context, s models.FeedingSchedule) (int64, error)
	Update(ctx context.Context, s models.FeedingSchedule) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.FeedingSchedule, error)
	// Due returns enabled schedules matching the given "HH:MM" and weekday
	// code (0=Sunday).
	Due(ctx context.Context, feedTime string, weekday int) ([]models.FeedingSchedule, error)
}

// FeedingLogRepo owns the append-only feeding_logs table.
type FeedingLogRepo interface {
	// RecordFeed appends a log row and, for scheduled feeds, stamps the
	// schedule's last_feed_time — both in one transaction.
	RecordFeed(ctx context.Context, scheduleID *int64, portion int, fedAt time.Time) error
	List(ctx context.Context, limit int) ([]models.FeedingLogEntry, error)
	Delete(ctx context.Context, id int64) error
}

// SensorRepo persists periodic environment readings.
type SensorRepo interface {
	Insert(ctx context.Context, r models.SensorReading) error
	Range(ctx context.Context, from, to time.Time) ([]models.SensorReading, error)
}

// EventRepo owns the append-only system event log.
type EventRepo interface {
	Append(ctx context.Context, e models.SystemEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.SystemEvent, error)
}

type Repository struct {
	Schedules   ScheduleRepo
	FeedingLogs FeedingLogRepo
	Sensors     SensorRepo
	Events      EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Schedules:   NewScheduleSQLite(db),
		FeedingLogs: NewFeedingLogSQLite(db),
		Sensors:     NewSensorSQLite(db),
		Events:      NewEventSQLite(db),
	}
}
