// Package hardware abstracts the tank's sensors and actuators.
// Real implementations drive Raspberry Pi peripherals through the Linux
// GPIO character device, the w1 sysfs interface and the pwm sysfs
// interface; fakes allow running and testing without hardware.
package hardware

import "time"

// Polarity describes how a logical "on" maps to the output pin level.
// Most of the relay channels on the reference board are active-low.
type Polarity int

const (
	ActiveHigh Polarity = iota
	ActiveLow
)

// LevelSensor reads one float switch. True means water present at the
// switch height. The raw pin is pull-up biased and reads low when wet;
// implementations return the logical value.
type LevelSensor interface {
	Read() (bool, error)
}

// Switch is a polarity-aware digital output (relay channel or buzzer).
type Switch interface {
	Set(on bool) error
}

// Servo positions the feeder arm.
type Servo interface {
	SetAngle(deg float64) error
}

// TempHumiditySensor reads air temperature (°C) and relative humidity (%).
type TempHumiditySensor interface {
	Read() (temp, humidity float64, err error)
}

// WaterTempSensor reads the submerged temperature probe in °C.
type WaterTempSensor interface {
	Read() (float64, error)
}

// Feeder performs one fixed dispense motion. The sequence is not
// interruptible once started.
type Feeder interface {
	DispenseOnce() error
}

// Devices bundles every peripheral the services touch.
type Devices struct {
	TopLevel    LevelSensor
	BottomLevel LevelSensor
	Fan         Switch
	AirPump     Switch
	WaterPump   Switch
	Buzzer      Switch
	Feeder      Feeder
	AirSensor   TempHumiditySensor
	WaterTemp   WaterTempSensor

	// Close releases pin requests. Nil when nothing needs releasing.
	Close func() error
}

// Feeder motion endpoints for the SG90 arm.
const (
	servoRestAngle = 180
	servoDropAngle = 15
	servoMovePause = 2 * time.Second
)

// ServoFeeder runs the fixed rest -> drop -> rest motion. The pause gives
// the arm time to travel and the food time to fall.
type ServoFeeder struct {
	servo Servo
	pause time.Duration
	sleep func(time.Duration)
}

// NewServoFeeder wraps a servo in the dispense sequence.
func NewServoFeeder(servo Servo) *ServoFeeder {
	return &ServoFeeder{servo: servo, pause: servoMovePause, sleep: time.Sleep}
}

// DispenseOnce moves the arm through one full drop cycle.
func (f *ServoFeeder) DispenseOnce() error {
	if err := f.servo.SetAngle(servoRestAngle); err != nil {
		return err
	}
	f.sleep(f.pause)
	if err := f.servo.SetAngle(servoDropAngle); err != nil {
		return err
	}
	f.sleep(f.pause)
	return f.servo.SetAngle(servoRestAngle)
}
