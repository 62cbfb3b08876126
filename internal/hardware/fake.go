package hardware

import "sync"

// FakeLevelSensor is a test double returning a settable wet/dry state.
type FakeLevelSensor struct {
	mu  sync.Mutex
	wet bool
	err error
}

func NewFakeLevelSensor(wet bool) *FakeLevelSensor {
	return &FakeLevelSensor{wet: wet}
}

func (f *FakeLevelSensor) SetWet(wet bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wet = wet
}

func (f *FakeLevelSensor) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeLevelSensor) Read() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.wet, nil
}

// FakeSwitch records the on/off values it was set to.
type FakeSwitch struct {
	mu     sync.Mutex
	on     bool
	SetErr error
	Calls  []bool
}

func (f *FakeSwitch) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.on = on
	f.Calls = append(f.Calls, on)
	return nil
}

func (f *FakeSwitch) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// FakeFeeder counts dispense calls and can fail on a chosen call.
type FakeFeeder struct {
	mu        sync.Mutex
	count     int
	FailOn    int // 1-based call number that returns FailErr; 0 disables
	FailErr   error
	PostSleep func() // optional hook invoked inside each call, for interleaving tests
}

func (f *FakeFeeder) DispenseOnce() error {
	f.mu.Lock()
	f.count++
	n := f.count
	hook := f.PostSleep
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if f.FailOn != 0 && n >= f.FailOn {
		return f.FailErr
	}
	return nil
}

func (f *FakeFeeder) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// FakeServo records commanded angles.
type FakeServo struct {
	mu     sync.Mutex
	Angles []float64
	Err    error
}

func (f *FakeServo) SetAngle(deg float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Angles = append(f.Angles, deg)
	return nil
}

// FakeAirSensor returns fixed readings.
type FakeAirSensor struct {
	Temp     float64
	Humidity float64
	Err      error
}

func (f *FakeAirSensor) Read() (float64, float64, error) {
	if f.Err != nil {
		return 0, 0, f.Err
	}
	return f.Temp, f.Humidity, nil
}

// FakeWaterTemp returns a fixed water temperature.
type FakeWaterTemp struct {
	Temp float64
	Err  error
}

func (f *FakeWaterTemp) Read() (float64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Temp, nil
}

// NewFakeDevices builds a complete in-memory device set with normal water
// level and room-ish readings. Used in mock hardware mode and tests.
func NewFakeDevices() *Devices {
	feeder := &FakeFeeder{}
	return &Devices{
		TopLevel:    NewFakeLevelSensor(false),
		BottomLevel: NewFakeLevelSensor(true),
		Fan:         &FakeSwitch{},
		AirPump:     &FakeSwitch{},
		WaterPump:   &FakeSwitch{},
		Buzzer:      &FakeSwitch{},
		Feeder:      feeder,
		AirSensor:   &FakeAirSensor{Temp: 24.5, Humidity: 55},
		WaterTemp:   &FakeWaterTemp{Temp: 26.0},
	}
}
