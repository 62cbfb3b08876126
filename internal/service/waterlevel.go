package service

import (
	"context"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/notify"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

// Alert texts mirror the mails the tank owner receives.
const (
	subjectHigh      = "[URGENT] Tank water level too high"
	bodyHigh         = "The water has reached the top sensor. Check the tank immediately. Current level: high"
	subjectLow       = "[URGENT] Tank water level too low"
	bodyLow          = "The water has dropped below the bottom sensor. Check the tank immediately. Current level: low"
	subjectRecovered = "[RECOVERED] Tank water level back to normal"
	bodyRecovered    = "The water level has returned to the normal range."
)

// WaterLevelService polls the two float switches, derives the discrete
// level from the hysteresis table and drives the edge-triggered alert
// machine. Poll is only ever called from the single Run loop, so the alert
// flags need no locking of their own.
type WaterLevelService struct {
	top      hardware.LevelSensor
	bottom   hardware.LevelSensor
	state    *StateStore
	notifier notify.Notifier
	events   repository.EventRepo
	log      *logger.Logger

	alerts models.AlertStatus
}

func NewWaterLevelService(
	top, bottom hardware.LevelSensor,
	state *StateStore,
	notifier notify.Notifier,
	events repository.EventRepo,
	log *logger.Logger,
) *WaterLevelService {
	return &WaterLevelService{
		top:      top,
		bottom:   bottom,
		state:    state,
		notifier: notifier,
		events:   events,
		log:      log,
	}
}

// classifyLevel is the hysteresis table. True means water present.
//
//	top   bottom  state
//	true  true    high
//	false true    normal
//	false false   low
//	true  false   unknown (top wet while bottom dry is physically odd)
func classifyLevel(top, bottom bool) models.WaterLevel {
	switch {
	case top && bottom:
		return models.WaterLevelHigh
	case !top && bottom:
		return models.WaterLevelNormal
	case !top && !bottom:
		return models.WaterLevelLow
	default:
		return models.WaterLevelUnknown
	}
}

// Poll reads both switches once, publishes the derived level to the state
// store and feeds the alert machine. A sensor read failure yields the
// error state and leaves the alert flags untouched.
func (s *WaterLevelService) Poll(ctx context.Context) models.WaterLevel {
	top, errTop := s.top.Read()
	bottom, errBottom := s.bottom.Read()

	level := models.WaterLevelError
	if errTop == nil && errBottom == nil {
		level = classifyLevel(top, bottom)
	} else {
		err := errTop
		if err == nil {
			err = errBottom
		}
		s.log.Errorw("water_level_read_failed", "err", err)
	}

	s.state.SetWaterLevel(level)
	s.checkAndAlert(ctx, level)
	return level
}

// checkAndAlert fires at most one notification per state transition.
// Sustained abnormal readings do not re-alert; unknown/error readings are
// treated as transient noise, not edges.
func (s *WaterLevelService) checkAndAlert(ctx context.Context, level models.WaterLevel) {
	switch level {
	case models.WaterLevelHigh:
		if s.alerts.HighActive {
			return
		}
		s.alerts.HighActive = true
		s.alerts.LowActive = false
		s.emit(ctx, models.EventAlert, subjectHigh, bodyHigh, level)

	case models.WaterLevelLow:
		if s.alerts.LowActive {
			return
		}
		s.alerts.LowActive = true
		s.alerts.HighActive = false
		s.emit(ctx, models.EventAlert, subjectLow, bodyLow, level)

	case models.WaterLevelNormal:
		if !s.alerts.HighActive && !s.alerts.LowActive {
			return
		}
		s.alerts.HighActive = false
		s.alerts.LowActive = false
		s.emit(ctx, models.EventRecovery, subjectRecovered, bodyRecovered, level)
	}
}

func (s *WaterLevelService) emit(ctx context.Context, eventType, subject, body string, level models.WaterLevel) {
	s.notifier.Send(subject, body)
	if err := s.events.Append(ctx, models.SystemEvent{
		Type:        eventType,
		Description: subject,
		Metadata:    map[string]any{"water_level": string(level)},
	}); err != nil {
		s.log.Errorw("water_level_event_append_failed", "err", err)
	}
}

// Run polls at the given cadence until ctx is canceled.
func (s *WaterLevelService) Run(ctx context.Context, tick time.Duration) {
	s.log.Infow("water_level_monitor_started", "tick", tick)
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
