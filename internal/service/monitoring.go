package service

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

// MonitoringService assembles the status snapshot served by the API and
// the websocket stream, merging the in-memory state with host metrics.
type MonitoringService struct {
	state   *StateStore
	sensors repository.SensorRepo

	now func() time.Time
}

func NewMonitoringService(state *StateStore, repo repository.SensorRepo) *MonitoringService {
	return &MonitoringService{state: state, sensors: repo, now: time.Now}
}

// Status returns the current snapshot. Host metric failures degrade to
// omitted fields, never to an error: the tank data is the point.
func (m *MonitoringService) Status(ctx context.Context) (models.TankStatus, error) {
	snap := m.state.Snapshot()
	now := m.now()

	st := models.TankStatus{
		Active:         snap.Active,
		Connections:    snap.Connections,
		WaterLevel:     snap.WaterLevel,
		AirTempC:       snap.Reading.AirTempC,
		Humidity:       snap.Reading.Humidity,
		WaterTempC:     snap.Reading.WaterTempC,
		FanEnabled:     snap.Actuators[models.ActuatorFan],
		AirPumpEnabled: snap.Actuators[models.ActuatorAirPump],
		WaterPumpOn:    snap.Actuators[models.ActuatorWaterPump],
		GeneratedAt:    now,
	}
	if !snap.LastActivity.IsZero() {
		t := snap.LastActivity
		st.LastActivity = &t
	}
	if !snap.LastFeed.IsZero() {
		hours := now.Sub(snap.LastFeed).Hours()
		st.FeedHoursAgo = &hours
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		pct := vm.UsedPercent
		st.MemUsedPercent = &pct
	}
	if t, ok := cpuTemp(); ok {
		st.CPUTempC = &t
	}

	return st, nil
}

// cpuTemp finds the SoC thermal zone among the host temperature sensors.
func cpuTemp() (float64, bool) {
	temps, err := sensors.SensorsTemperatures()
	if err != nil {
		return 0, false
	}
	for _, t := range temps {
		key := strings.ToLower(t.SensorKey)
		if strings.Contains(key, "cpu") || strings.Contains(key, "cpu_thermal") || strings.Contains(key, "coretemp") {
			return t.Temperature, true
		}
	}
	if len(temps) > 0 {
		return temps[0].Temperature, true
	}
	return 0, false
}

// SensorHistory returns persisted readings in [from, to]. A zero `to`
// means now; a zero `from` means the last 24 hours.
func (m *MonitoringService) SensorHistory(ctx context.Context, from, to time.Time) ([]models.SensorReading, error) {
	if to.IsZero() {
		to = m.now()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}
	return m.sensors.Range(ctx, from, to)
}
