package service

import (
	"context"
	"testing"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
)

func validScheduleInput() models.FeedingSchedule {
	return models.FeedingSchedule{
		Enabled:     true,
		Name:        "morning",
		FeedTime:    "08:00",
		FeedDays:    []int{1, 3, 5},
		PortionSize: 2,
	}
}

func TestScheduleValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*models.FeedingSchedule)
		wantOK bool
	}{
		{"valid", func(s *models.FeedingSchedule) {}, true},
		{"midnight", func(s *models.FeedingSchedule) { s.FeedTime = "00:00" }, true},
		{"every day", func(s *models.FeedingSchedule) { s.FeedDays = []int{0, 1, 2, 3, 4, 5, 6} }, true},
		{"empty name", func(s *models.FeedingSchedule) { s.Name = "  " }, false},
		{"bad time format", func(s *models.FeedingSchedule) { s.FeedTime = "8am" }, false},
		{"hour out of range", func(s *models.FeedingSchedule) { s.FeedTime = "25:00" }, false},
		{"no days", func(s *models.FeedingSchedule) { s.FeedDays = nil }, false},
		{"day out of range", func(s *models.FeedingSchedule) { s.FeedDays = []int{7} }, false},
		{"negative day", func(s *models.FeedingSchedule) { s.FeedDays = []int{-1} }, false},
		{"duplicate days", func(s *models.FeedingSchedule) { s.FeedDays = []int{1, 1} }, false},
		{"portion zero", func(s *models.FeedingSchedule) { s.PortionSize = 0 }, false},
		{"portion too big", func(s *models.FeedingSchedule) { s.PortionSize = 4 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validScheduleInput()
			tc.mutate(&s)
			err := validateSchedule(s)
			if tc.wantOK && err != nil {
				t.Fatalf("want valid, got %v", err)
			}
			if !tc.wantOK && err == nil {
				t.Fatalf("want validation error")
			}
		})
	}
}

func TestScheduleService_RejectsBeforeRepo(t *testing.T) {
	t.Parallel()

	repos, _, _, _, _ := newMemRepos()
	svc := NewScheduleService(repos.Schedules)

	bad := validScheduleInput()
	bad.PortionSize = 9
	if _, err := svc.Create(context.Background(), bad); err == nil {
		t.Fatalf("invalid schedule accepted")
	}

	if err := svc.Update(context.Background(), validScheduleInput()); err == nil {
		t.Fatalf("update without id accepted")
	}
	if err := svc.SetEnabled(context.Background(), 0, true); err == nil {
		t.Fatalf("toggle without id accepted")
	}

	good := validScheduleInput()
	if _, err := svc.Create(context.Background(), good); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}
