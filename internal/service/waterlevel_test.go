package service

import (
	"context"
	"errors"
	"testing"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
)

func TestClassifyLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		top, bottom bool
		want        models.WaterLevel
	}{
		{true, true, models.WaterLevelHigh},
		{false, true, models.WaterLevelNormal},
		{false, false, models.WaterLevelLow},
		{true, false, models.WaterLevelUnknown},
	}
	for _, tc := range cases {
		if got := classifyLevel(tc.top, tc.bottom); got != tc.want {
			t.Errorf("classifyLevel(%v, %v) = %v, want %v", tc.top, tc.bottom, got, tc.want)
		}
	}
}

func newWaterLevelFixture() (*WaterLevelService, *hardware.FakeLevelSensor, *hardware.FakeLevelSensor, *fakeNotifier, *memEvents) {
	top := hardware.NewFakeLevelSensor(false)
	bottom := hardware.NewFakeLevelSensor(true)
	notifier := &fakeNotifier{}
	events := &memEvents{}
	svc := NewWaterLevelService(top, bottom, NewStateStore(), notifier, events, testLogger())
	return svc, top, bottom, notifier, events
}

func TestWaterLevel_SustainedHigh_AlertsOnce(t *testing.T) {
	t.Parallel()

	svc, top, bottom, notifier, events := newWaterLevelFixture()
	top.SetWet(true)
	bottom.SetWet(true)

	for i := 0; i < 5; i++ {
		if got := svc.Poll(context.Background()); got != models.WaterLevelHigh {
			t.Fatalf("poll %d: want high, got %v", i, got)
		}
	}

	if got := notifier.sent(); len(got) != 1 || got[0] != subjectHigh {
		t.Fatalf("want exactly one high alert, got %v", got)
	}
	if got := events.ofType(models.EventAlert); len(got) != 1 {
		t.Fatalf("want one ALERT event, got %d", len(got))
	}
}

func TestWaterLevel_HighToLow_NewAlert(t *testing.T) {
	t.Parallel()

	svc, top, bottom, notifier, _ := newWaterLevelFixture()

	top.SetWet(true)
	bottom.SetWet(true)
	svc.Poll(context.Background())

	// drains past normal straight to low
	top.SetWet(false)
	bottom.SetWet(false)
	svc.Poll(context.Background())
	svc.Poll(context.Background())

	got := notifier.sent()
	if len(got) != 2 || got[0] != subjectHigh || got[1] != subjectLow {
		t.Fatalf("want high then low alert, got %v", got)
	}
}

func TestWaterLevel_Recovery_NotifiesOnce(t *testing.T) {
	t.Parallel()

	svc, top, bottom, notifier, events := newWaterLevelFixture()

	top.SetWet(false)
	bottom.SetWet(false)
	svc.Poll(context.Background())

	bottom.SetWet(true)
	svc.Poll(context.Background())
	svc.Poll(context.Background())

	got := notifier.sent()
	if len(got) != 2 || got[1] != subjectRecovered {
		t.Fatalf("want low alert then recovery, got %v", got)
	}
	if got := events.ofType(models.EventRecovery); len(got) != 1 {
		t.Fatalf("want one RECOVERY event, got %d", len(got))
	}
}

func TestWaterLevel_NormalSteadyState_NoNotifications(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier, _ := newWaterLevelFixture()

	for i := 0; i < 3; i++ {
		if got := svc.Poll(context.Background()); got != models.WaterLevelNormal {
			t.Fatalf("want normal, got %v", got)
		}
	}
	if got := notifier.sent(); len(got) != 0 {
		t.Fatalf("want no notifications, got %v", got)
	}
}

func TestWaterLevel_ReadFailure_ErrorStateNoAlert(t *testing.T) {
	t.Parallel()

	svc, top, _, notifier, _ := newWaterLevelFixture()

	top.SetError(errors.New("gpio read"))
	if got := svc.Poll(context.Background()); got != models.WaterLevelError {
		t.Fatalf("want error state, got %v", got)
	}
	if got := notifier.sent(); len(got) != 0 {
		t.Fatalf("read failure must not alert, got %v", got)
	}

	// once the sensor recovers, alerting resumes normally
	top.SetError(nil)
	top.SetWet(true)
	if got := svc.Poll(context.Background()); got != models.WaterLevelHigh {
		t.Fatalf("want high after sensor recovery, got %v", got)
	}
	if got := notifier.sent(); len(got) != 1 || got[0] != subjectHigh {
		t.Fatalf("want one high alert after recovery, got %v", got)
	}
}
