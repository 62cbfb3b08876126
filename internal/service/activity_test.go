package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
)

type beepRecorder struct {
	mu    sync.Mutex
	beeps []int
}

func (b *beepRecorder) SetActuator(ctx context.Context, name string, on bool) error { return nil }
func (b *beepRecorder) RunWaterPumpFor(ctx context.Context, seconds int) error      { return nil }
func (b *beepRecorder) Beep(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.beeps = append(b.beeps, count)
}

func (b *beepRecorder) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.beeps)
}

func newActivityFixture() (*ActivityService, *fakeLister, *beepRecorder, *StateStore) {
	state := NewStateStore()
	beeper := &beepRecorder{}
	svc := NewActivityService(config.ActivityConfig{
		WatchedPort: 8081,
		IdleTimeout: 60 * time.Second,
	}, state, beeper, testLogger())
	lister := &fakeLister{}
	svc.lister = lister
	return svc, lister, beeper, state
}

func waitForBeeps(t *testing.T, b *beepRecorder, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for b.total() < want {
		if time.Now().After(deadline) {
			t.Fatalf("want %d beeps, got %d", want, b.total())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestActivity_NewViewerMarksActiveAndBeeps(t *testing.T) {
	t.Parallel()

	svc, lister, beeper, state := newActivityFixture()
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	lister.set("192.168.1.20:54321")
	svc.Poll(context.Background())

	snap := state.Snapshot()
	if !snap.Active || snap.Connections != 1 {
		t.Fatalf("want active with 1 connection, got %+v", snap)
	}
	waitForBeeps(t, beeper, 1)

	// same endpoint again: still active, no extra beep
	svc.Poll(context.Background())
	time.Sleep(20 * time.Millisecond)
	if got := beeper.total(); got != 1 {
		t.Fatalf("repeat endpoint must not re-beep, got %d", got)
	}
}

func TestActivity_SecondViewerBeepsAgain(t *testing.T) {
	t.Parallel()

	svc, lister, beeper, _ := newActivityFixture()

	lister.set("192.168.1.20:54321")
	svc.Poll(context.Background())
	waitForBeeps(t, beeper, 1)

	lister.set("192.168.1.20:54321", "192.168.1.30:40000")
	svc.Poll(context.Background())
	waitForBeeps(t, beeper, 2)
}

func TestActivity_IdleTimeoutClearsActive(t *testing.T) {
	t.Parallel()

	svc, lister, _, state := newActivityFixture()
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	lister.set("192.168.1.20:54321")
	svc.Poll(context.Background())

	// viewer leaves; before the timeout the flag holds
	lister.set()
	now = base.Add(30 * time.Second)
	svc.Poll(context.Background())
	if !state.Snapshot().Active {
		t.Fatalf("active cleared before idle timeout")
	}

	// past the timeout it drops
	now = base.Add(2 * time.Minute)
	svc.Poll(context.Background())
	snap := state.Snapshot()
	if snap.Active || snap.Connections != 0 {
		t.Fatalf("want idle with no connections, got %+v", snap)
	}
}

func TestActivity_ReconnectAfterIdle_BeepsAgain(t *testing.T) {
	t.Parallel()

	svc, lister, beeper, _ := newActivityFixture()
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	lister.set("192.168.1.20:54321")
	svc.Poll(context.Background())
	waitForBeeps(t, beeper, 1)

	lister.set()
	now = base.Add(2 * time.Minute)
	svc.Poll(context.Background())

	// the same remote reconnecting is a fresh endpoint in the diff
	lister.set("192.168.1.20:54321")
	now = base.Add(3 * time.Minute)
	svc.Poll(context.Background())
	waitForBeeps(t, beeper, 2)
}
