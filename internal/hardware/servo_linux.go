//go:build linux

package hardware

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SG90 timing: 50 Hz period, duty cycle (angle/18 + 2) percent.
const (
	servoPeriodNs = 20_000_000
	servoMinAngle = 0
	servoMaxAngle = 180
)

// sysfsServo drives the feeder servo through the kernel pwm sysfs
// interface (pwmchipN/pwmM). Requires the pwm overlay to be enabled.
type sysfsServo struct {
	dir string
}

func newSysfsServo(chip, channel int) (*sysfsServo, error) {
	chipDir := fmt.Sprintf("/sys/class/pwm/pwmchip%d", chip)
	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel))

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := writeSysfs(filepath.Join(chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
	}
	s := &sysfsServo{dir: dir}
	if err := writeSysfs(filepath.Join(dir, "period"), strconv.Itoa(servoPeriodNs)); err != nil {
		return nil, fmt.Errorf("set pwm period: %w", err)
	}
	if err := writeSysfs(filepath.Join(dir, "enable"), "1"); err != nil {
		return nil, fmt.Errorf("enable pwm: %w", err)
	}
	return s, nil
}

func (s *sysfsServo) SetAngle(deg float64) error {
	if deg < servoMinAngle {
		deg = servoMinAngle
	}
	if deg > servoMaxAngle {
		deg = servoMaxAngle
	}
	dutyPercent := deg/18 + 2
	dutyNs := int(float64(servoPeriodNs) * dutyPercent / 100)
	if err := writeSysfs(filepath.Join(s.dir, "duty_cycle"), strconv.Itoa(dutyNs)); err != nil {
		return fmt.Errorf("set servo angle %.0f: %w", deg, err)
	}
	return nil
}

func writeSysfs(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
