package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/service"
)

// ---- Service Mocks ----

type mockMonitoring struct {
	status   models.TankStatus
	err      error
	history  []models.SensorReading
	histErr  error
	lastFrom time.Time
	lastTo   time.Time
}

func (m *mockMonitoring) Status(ctx context.Context) (models.TankStatus, error) {
	return m.status, m.err
}

func (m *mockMonitoring) SensorHistory(ctx context.Context, from, to time.Time) ([]models.SensorReading, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.history, m.histErr
}

type mockActuators struct {
	setErr  error
	pumpErr error

	lastName    string
	lastOn      bool
	lastSeconds int
	setCalls    int
	pumpCalls   int
	beepCount   int
}

func (m *mockActuators) SetActuator(ctx context.Context, name string, on bool) error {
	m.setCalls++
	m.lastName = name
	m.lastOn = on
	return m.setErr
}

func (m *mockActuators) RunWaterPumpFor(ctx context.Context, seconds int) error {
	m.pumpCalls++
	m.lastSeconds = seconds
	return m.pumpErr
}

func (m *mockActuators) Beep(count int) { m.beepCount = count }

type mockFeeding struct {
	result  models.FeedResult
	feedErr error
	logs    []models.FeedingLogEntry
	logsErr error
	delErr  error

	lastPortion int
	lastLimit   int
	lastDeleted int64
}

func (m *mockFeeding) FeedNow(ctx context.Context, portion int) (models.FeedResult, error) {
	m.lastPortion = portion
	return m.result, m.feedErr
}

func (m *mockFeeding) Logs(ctx context.Context, limit int) ([]models.FeedingLogEntry, error) {
	m.lastLimit = limit
	return m.logs, m.logsErr
}

func (m *mockFeeding) DeleteLog(ctx context.Context, id int64) error {
	m.lastDeleted = id
	return m.delErr
}

type mockSchedules struct {
	createID  int64
	createErr error
	updateErr error
	toggleErr error
	deleteErr error
	list      []models.FeedingSchedule
	listErr   error

	lastSchedule models.FeedingSchedule
	lastID       int64
	lastEnabled  bool
}

func (m *mockSchedules) Create(ctx context.Context, s models.FeedingSchedule) (int64, error) {
	m.lastSchedule = s
	return m.createID, m.createErr
}

func (m *mockSchedules) Update(ctx context.Context, s models.FeedingSchedule) error {
	m.lastSchedule = s
	return m.updateErr
}

func (m *mockSchedules) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	m.lastID = id
	m.lastEnabled = enabled
	return m.toggleErr
}

func (m *mockSchedules) Delete(ctx context.Context, id int64) error {
	m.lastID = id
	return m.deleteErr
}

func (m *mockSchedules) List(ctx context.Context) ([]models.FeedingSchedule, error) {
	return m.list, m.listErr
}

type mockEventLog struct {
	resp       []models.SystemEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SystemEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
