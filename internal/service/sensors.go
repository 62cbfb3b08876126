package service

import (
	"context"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

// SensorService polls the DHT11 and the submerged DS18B20 and keeps the
// cached reading fresh. A failed read keeps the previous value (stale
// beats absent on a flaky 1-wire bus); readings are persisted at a coarser
// cadence than they are polled.
type SensorService struct {
	air   hardware.TempHumiditySensor
	water hardware.WaterTempSensor
	state *StateStore
	repo  repository.SensorRepo
	log   *logger.Logger

	persistInterval time.Duration
	lastPersist     time.Time

	now func() time.Time
}

func NewSensorService(
	devices *hardware.Devices,
	state *StateStore,
	repo repository.SensorRepo,
	persistInterval time.Duration,
	log *logger.Logger,
) *SensorService {
	return &SensorService{
		air:             devices.AirSensor,
		water:           devices.WaterTemp,
		state:           state,
		repo:            repo,
		log:             log,
		persistInterval: persistInterval,
		now:             time.Now,
	}
}

// Poll reads both sensors once, merging results into the cached reading.
func (s *SensorService) Poll(ctx context.Context) {
	now := s.now()
	reading := s.state.Reading()
	reading.CapturedAt = now

	if temp, hum, err := s.air.Read(); err != nil {
		s.log.Warnw("air_sensor_read_failed", "err", err)
	} else {
		reading.AirTempC = &temp
		reading.Humidity = &hum
	}

	if wt, err := s.water.Read(); err != nil {
		s.log.Warnw("water_temp_read_failed", "err", err)
	} else {
		reading.WaterTempC = &wt
	}

	s.state.SetReading(reading)

	if s.lastPersist.IsZero() || now.Sub(s.lastPersist) >= s.persistInterval {
		if err := s.repo.Insert(ctx, reading); err != nil {
			s.log.Errorw("sensor_persist_failed", "err", err)
			return
		}
		s.lastPersist = now
	}
}

// Run polls at the given cadence until ctx is canceled. One immediate poll
// first so the status endpoint has data right after boot.
func (s *SensorService) Run(ctx context.Context, tick time.Duration) {
	s.log.Infow("sensor_poller_started", "tick", tick, "persist_interval", s.persistInterval)
	s.Poll(ctx)
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Poll(ctx)
		}
	}
}
