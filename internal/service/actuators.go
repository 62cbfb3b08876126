package service

import (
	"context"
	"fmt"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

const (
	minPumpSeconds = 1
	maxPumpSeconds = 600
)

// ActuatorService switches the relay channels and drives the water-pump
// auto-off timer. Logical on/off here; the polarity mapping lives in the
// hardware layer.
type ActuatorService struct {
	switches map[string]hardware.Switch
	buzzer   hardware.Switch
	state    *StateStore
	events   repository.EventRepo
	log      *logger.Logger

	beepDuration time.Duration
	beepInterval time.Duration
	sleep        func(time.Duration)
}

func NewActuatorService(
	cfg *config.Config,
	devices *hardware.Devices,
	state *StateStore,
	events repository.EventRepo,
	log *logger.Logger,
) *ActuatorService {
	return &ActuatorService{
		switches: map[string]hardware.Switch{
			models.ActuatorFan:       devices.Fan,
			models.ActuatorAirPump:   devices.AirPump,
			models.ActuatorWaterPump: devices.WaterPump,
		},
		buzzer:       devices.Buzzer,
		state:        state,
		events:       events,
		log:          log,
		beepDuration: cfg.Buzzer.BeepDuration,
		beepInterval: cfg.Buzzer.BeepInterval,
		sleep:        time.Sleep,
	}
}

// SetActuator switches a named channel. Turning the water pump off by hand
// also cancels any pending auto-off timer so a stale callback cannot fire
// after a later manual turn-on.
func (s *ActuatorService) SetActuator(ctx context.Context, name string, on bool) error {
	sw, ok := s.switches[name]
	if !ok {
		return fmt.Errorf("unknown actuator %q", name)
	}

	if name == models.ActuatorWaterPump && !on {
		s.state.CancelPumpTimer()
	}

	if err := sw.Set(on); err != nil {
		s.log.Errorw("actuator_switch_failed", "actuator", name, "on", on, "err", err)
		return fmt.Errorf("switch %s: %w", name, err)
	}

	s.state.SetActuator(name, on)
	s.log.Infow("actuator_switched", "actuator", name, "on", on)
	if err := s.events.Append(ctx, models.SystemEvent{
		Type:        models.EventActuator,
		Description: fmt.Sprintf("Actuator %s switched %s", name, onOff(on)),
		Metadata:    map[string]any{"actuator": name, "on": on},
	}); err != nil {
		s.log.Errorw("actuator_event_append_failed", "err", err)
	}
	return nil
}

// RunWaterPumpFor turns the pump on and arms the auto-off timer. A second
// call re-arms the timer; only the latest deadline wins.
func (s *ActuatorService) RunWaterPumpFor(ctx context.Context, seconds int) error {
	if seconds < minPumpSeconds || seconds > maxPumpSeconds {
		return fmt.Errorf("pump duration must be %d-%d seconds, got %d", minPumpSeconds, maxPumpSeconds, seconds)
	}

	if err := s.SetActuator(ctx, models.ActuatorWaterPump, true); err != nil {
		return err
	}

	d := time.Duration(seconds) * time.Second
	s.state.ArmPumpTimer(d, func() {
		// Detached from the request; give the switch-off its own deadline.
		offCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.SetActuator(offCtx, models.ActuatorWaterPump, false); err != nil {
			s.log.Errorw("pump_auto_off_failed", "err", err)
		}
	})
	s.log.Infow("pump_timer_armed", "seconds", seconds)
	return nil
}

// Beep pulses the buzzer count times. Runs inline; callers wanting it
// non-blocking wrap it in a goroutine.
func (s *ActuatorService) Beep(count int) {
	if count < 1 {
		return
	}
	for i := 0; i < count; i++ {
		if i > 0 {
			s.sleep(s.beepInterval)
		}
		if err := s.buzzer.Set(true); err != nil {
			s.log.Errorw("buzzer_failed", "err", err)
			return
		}
		s.sleep(s.beepDuration)
		if err := s.buzzer.Set(false); err != nil {
			s.log.Errorw("buzzer_failed", "err", err)
			return
		}
	}
}

// AllOff forces every relay channel off; used during shutdown.
func (s *ActuatorService) AllOff(ctx context.Context) {
	s.state.CancelPumpTimer()
	for name, sw := range s.switches {
		if err := sw.Set(false); err != nil {
			s.log.Errorw("actuator_shutdown_off_failed", "actuator", name, "err", err)
			continue
		}
		s.state.SetActuator(name, false)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
