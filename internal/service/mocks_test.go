package service

import (
	"context"
	"sync"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

// ---- Repo Mocks ----

type memSchedules struct {
	mu       sync.Mutex
	due      []models.FeedingSchedule
	dueErr   error
	list     []models.FeedingSchedule
	dueCalls []string // "HH:MM/weekday"
}

func (m *memSchedules) Create(ctx context.Context, s models.FeedingSchedule) (int64, error) {
	return 1, nil
}
func (m *memSchedules) Update(ctx context.Context, s models.FeedingSchedule) error      { return nil }
func (m *memSchedules) SetEnabled(ctx context.Context, id int64, enabled bool) error    { return nil }
func (m *memSchedules) Delete(ctx context.Context, id int64) error                      { return nil }
func (m *memSchedules) List(ctx context.Context) ([]models.FeedingSchedule, error)      { return m.list, nil }
func (m *memSchedules) Due(ctx context.Context, feedTime string, weekday int) ([]models.FeedingSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dueCalls = append(m.dueCalls, feedTime)
	if m.dueErr != nil {
		return nil, m.dueErr
	}
	// filter like the SQL does: exact time, weekday membership
	var out []models.FeedingSchedule
	for _, s := range m.due {
		if !s.Enabled || s.FeedTime != feedTime {
			continue
		}
		for _, d := range s.FeedDays {
			if d == weekday {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

type feedRecord struct {
	scheduleID *int64
	portion    int
	fedAt      time.Time
}

type memFeedLogs struct {
	mu        sync.Mutex
	recordErr error
	records   []feedRecord
	list      []models.FeedingLogEntry
}

func (m *memFeedLogs) RecordFeed(ctx context.Context, scheduleID *int64, portion int, fedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, feedRecord{scheduleID: scheduleID, portion: portion, fedAt: fedAt})
	return nil
}

func (m *memFeedLogs) List(ctx context.Context, limit int) ([]models.FeedingLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list, nil
}

func (m *memFeedLogs) Delete(ctx context.Context, id int64) error { return nil }

func (m *memFeedLogs) recorded() []feedRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]feedRecord, len(m.records))
	copy(out, m.records)
	return out
}

type memEvents struct {
	mu     sync.Mutex
	events []models.SystemEvent
}

func (m *memEvents) Append(ctx context.Context, e models.SystemEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) List(ctx context.Context, from, to time.Time, typ string) ([]models.SystemEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events, nil
}

func (m *memEvents) ofType(typ string) []models.SystemEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SystemEvent
	for _, e := range m.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type memSensors struct {
	mu       sync.Mutex
	inserted []models.SensorReading
	rangeOut []models.SensorReading
}

func (m *memSensors) Insert(ctx context.Context, r models.SensorReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, r)
	return nil
}

func (m *memSensors) Range(ctx context.Context, from, to time.Time) ([]models.SensorReading, error) {
	return m.rangeOut, nil
}

func (m *memSensors) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

func newMemRepos() (*repository.Repository, *memSchedules, *memFeedLogs, *memEvents, *memSensors) {
	schedules := &memSchedules{}
	logs := &memFeedLogs{}
	events := &memEvents{}
	sensors := &memSensors{}
	return &repository.Repository{
		Schedules:   schedules,
		FeedingLogs: logs,
		Sensors:     sensors,
		Events:      events,
	}, schedules, logs, events, sensors
}

// ---- Notifier Mock ----

type fakeNotifier struct {
	mu       sync.Mutex
	subjects []string
}

func (f *fakeNotifier) Send(subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.subjects))
	copy(out, f.subjects)
	return out
}

// ---- Connection Lister Mock ----

type fakeLister struct {
	mu        sync.Mutex
	endpoints []string
	err       error
}

func (f *fakeLister) set(endpoints ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endpoints = endpoints
}

func (f *fakeLister) Established(port uint32) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endpoints, f.err
}

func testLogger() *logger.Logger {
	return logger.Get(logger.ErrorLevel, "")
}
