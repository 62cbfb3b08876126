package service

import (
	"sync"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
)

// StateStore is the single process-wide mutable snapshot shared by the
// background loops and the API layer. Every field is guarded by one mutex;
// readers get copies. The pump auto-off timer lives here so that arming a
// new one can atomically cancel the previous handle.
type StateStore struct {
	mu sync.Mutex

	active       bool
	lastActivity time.Time
	connections  map[string]struct{}

	actuators map[string]bool

	reading    models.SensorReading
	waterLevel models.WaterLevel

	lastFeed time.Time

	pumpTimer *time.Timer
}

func NewStateStore() *StateStore {
	return &StateStore{
		connections: make(map[string]struct{}),
		actuators: map[string]bool{
			models.ActuatorFan:       false,
			models.ActuatorAirPump:   false,
			models.ActuatorWaterPump: false,
		},
		waterLevel: models.WaterLevelUnknown,
	}
}

// Snapshot is a consistent copy of the store taken under the mutex.
type Snapshot struct {
	Active       bool
	LastActivity time.Time
	Connections  int
	Actuators    map[string]bool
	Reading      models.SensorReading
	WaterLevel   models.WaterLevel
	LastFeed     time.Time
}

func (s *StateStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	acts := make(map[string]bool, len(s.actuators))
	for k, v := range s.actuators {
		acts[k] = v
	}
	return Snapshot{
		Active:       s.active,
		LastActivity: s.lastActivity,
		Connections:  len(s.connections),
		Actuators:    acts,
		Reading:      s.reading,
		WaterLevel:   s.waterLevel,
		LastFeed:     s.lastFeed,
	}
}

// MarkActive records activity and returns whether the flag flipped from
// idle to active.
func (s *StateStore) MarkActive(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = now
	flipped := !s.active
	s.active = true
	return flipped
}

// ExpireActivity clears the active flag when the idle timeout has elapsed.
// Returns whether the flag was cleared by this call.
func (s *StateStore) ExpireActivity(now time.Time, idle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || now.Sub(s.lastActivity) <= idle {
		return false
	}
	s.active = false
	return true
}

func (s *StateStore) SetConnections(endpoints []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections = make(map[string]struct{}, len(endpoints))
	for _, e := range endpoints {
		s.connections[e] = struct{}{}
	}
}

func (s *StateStore) SetActuator(name string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actuators[name] = on
}

func (s *StateStore) ActuatorOn(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actuators[name]
}

// SetReading replaces the cached reading wholesale.
func (s *StateStore) SetReading(r models.SensorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = r
}

func (s *StateStore) Reading() models.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading
}

func (s *StateStore) SetWaterLevel(l models.WaterLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waterLevel = l
}

func (s *StateStore) SetLastFeed(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFeed = t
}

// LastFeed returns the last successful feed time; zero when never fed.
func (s *StateStore) LastFeed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFeed
}

// ArmPumpTimer installs the auto-off callback, cancelling any pending
// timer first. Only the most recent deadline is ever honored.
func (s *StateStore) ArmPumpTimer(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pumpTimer != nil {
		s.pumpTimer.Stop()
	}
	s.pumpTimer = time.AfterFunc(d, fn)
}

// CancelPumpTimer stops any pending auto-off timer.
func (s *StateStore) CancelPumpTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pumpTimer != nil {
		s.pumpTimer.Stop()
		s.pumpTimer = nil
	}
}
