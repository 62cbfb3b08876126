package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
)

func TestSensorPoll_CachesAndPersists(t *testing.T) {
	t.Parallel()

	devices := hardware.NewFakeDevices()
	state := NewStateStore()
	repo := &memSensors{}
	svc := NewSensorService(devices, state, repo, 5*time.Minute, testLogger())
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Poll(context.Background())

	r := state.Reading()
	if r.AirTempC == nil || *r.AirTempC != 24.5 {
		t.Fatalf("air temp not cached: %+v", r)
	}
	if r.Humidity == nil || *r.Humidity != 55 {
		t.Fatalf("humidity not cached: %+v", r)
	}
	if r.WaterTempC == nil || *r.WaterTempC != 26.0 {
		t.Fatalf("water temp not cached: %+v", r)
	}
	if repo.count() != 1 {
		t.Fatalf("first poll must persist, got %d inserts", repo.count())
	}

	// within the persist interval nothing new is written
	now = now.Add(30 * time.Second)
	svc.Poll(context.Background())
	if repo.count() != 1 {
		t.Fatalf("persisted inside interval, got %d inserts", repo.count())
	}

	// after the interval a new row goes in
	now = now.Add(5 * time.Minute)
	svc.Poll(context.Background())
	if repo.count() != 2 {
		t.Fatalf("want 2 inserts after interval, got %d", repo.count())
	}
}

func TestSensorPoll_FailureKeepsLastReading(t *testing.T) {
	t.Parallel()

	devices := hardware.NewFakeDevices()
	air := devices.AirSensor.(*hardware.FakeAirSensor)
	water := devices.WaterTemp.(*hardware.FakeWaterTemp)
	state := NewStateStore()
	svc := NewSensorService(devices, state, &memSensors{}, time.Hour, testLogger())

	svc.Poll(context.Background())
	first := state.Reading()

	// both sensors go dark; cached values must survive
	air.Err = errors.New("dht timeout")
	water.Err = errors.New("no probe")
	svc.Poll(context.Background())

	second := state.Reading()
	if second.AirTempC == nil || *second.AirTempC != *first.AirTempC {
		t.Fatalf("air temp lost on failure: %+v", second)
	}
	if second.WaterTempC == nil || *second.WaterTempC != *first.WaterTempC {
		t.Fatalf("water temp lost on failure: %+v", second)
	}

	// partial recovery updates only what read back
	air.Err = nil
	air.Temp = 30.0
	svc.Poll(context.Background())
	third := state.Reading()
	if third.AirTempC == nil || *third.AirTempC != 30.0 {
		t.Fatalf("recovered air temp not updated: %+v", third)
	}
	if third.WaterTempC == nil || *third.WaterTempC != 26.0 {
		t.Fatalf("stale water temp dropped: %+v", third)
	}
}
