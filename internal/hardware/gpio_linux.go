//go:build linux

package hardware

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
)

// cdevLevelSensor reads a float switch through the GPIO character device.
// The switch pulls the line low when submerged.
type cdevLevelSensor struct {
	line *gpiocdev.Line
}

func (s *cdevLevelSensor) Read() (bool, error) {
	v, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read level line: %w", err)
	}
	return v == 0, nil
}

// cdevSwitch drives a relay channel or the buzzer.
type cdevSwitch struct {
	line     *gpiocdev.Line
	polarity Polarity
}

func pinLevel(on bool, p Polarity) int {
	if p == ActiveLow {
		if on {
			return 0
		}
		return 1
	}
	if on {
		return 1
	}
	return 0
}

func (s *cdevSwitch) Set(on bool) error {
	if err := s.line.SetValue(pinLevel(on, s.polarity)); err != nil {
		return fmt.Errorf("set output line: %w", err)
	}
	return nil
}

// newRealDevices requests every line from the GPIO chip and wires the
// remaining peripherals. All relay channels on the reference board are
// active-low; the buzzer is active-high.
func newRealDevices(cfg config.HardwareConfig) (*Devices, error) {
	chip, err := gpiocdev.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %q: %w", cfg.Chip, err)
	}

	var lines []*gpiocdev.Line
	closeAll := func() error {
		for _, l := range lines {
			_ = l.Close()
		}
		return chip.Close()
	}
	fail := func(err error) (*Devices, error) {
		_ = closeAll()
		return nil, err
	}

	input := func(pin int) (*gpiocdev.Line, error) {
		l, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			return nil, fmt.Errorf("request input pin %d: %w", pin, err)
		}
		lines = append(lines, l)
		return l, nil
	}
	output := func(pin int, p Polarity) (*cdevSwitch, error) {
		// Start with the device off.
		l, err := chip.RequestLine(pin, gpiocdev.AsOutput(pinLevel(false, p)))
		if err != nil {
			return nil, fmt.Errorf("request output pin %d: %w", pin, err)
		}
		lines = append(lines, l)
		return &cdevSwitch{line: l, polarity: p}, nil
	}

	top, err := input(cfg.TopSensorPin)
	if err != nil {
		return fail(err)
	}
	bottom, err := input(cfg.BottomSensorPin)
	if err != nil {
		return fail(err)
	}
	fan, err := output(cfg.FanPin, ActiveLow)
	if err != nil {
		return fail(err)
	}
	airPump, err := output(cfg.AirPumpPin, ActiveLow)
	if err != nil {
		return fail(err)
	}
	waterPump, err := output(cfg.WaterPumpPin, ActiveLow)
	if err != nil {
		return fail(err)
	}
	buzzer, err := output(cfg.BuzzerPin, ActiveHigh)
	if err != nil {
		return fail(err)
	}

	servo, err := newSysfsServo(0, 0)
	if err != nil {
		return fail(err)
	}

	return &Devices{
		TopLevel:    &cdevLevelSensor{line: top},
		BottomLevel: &cdevLevelSensor{line: bottom},
		Fan:         fan,
		AirPump:     airPump,
		WaterPump:   waterPump,
		Buzzer:      buzzer,
		Feeder:      NewServoFeeder(servo),
		AirSensor:   &dhtSensor{pin: cfg.DHT11Pin},
		WaterTemp:   &w1TempSensor{},
		Close:       closeAll,
	}, nil
}
