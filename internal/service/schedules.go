package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

// ScheduleService is the validated CRUD boundary over feeding schedules.
// Every write path validates first, so the scheduler can trust what it
// reads back.
type ScheduleService struct {
	repo repository.ScheduleRepo
}

func NewScheduleService(repo repository.ScheduleRepo) *ScheduleService {
	return &ScheduleService{repo: repo}
}

func validateSchedule(s models.FeedingSchedule) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schedule name must not be empty")
	}
	if _, err := time.Parse("15:04", s.FeedTime); err != nil {
		return fmt.Errorf("feed_time must be HH:MM, got %q", s.FeedTime)
	}
	if len(s.FeedDays) == 0 {
		return fmt.Errorf("feed_days must name at least one weekday")
	}
	seen := make(map[int]struct{}, len(s.FeedDays))
	for _, d := range s.FeedDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("feed_days entries must be 0-6 (0=Sunday), got %d", d)
		}
		if _, dup := seen[d]; dup {
			return fmt.Errorf("feed_days contains duplicate weekday %d", d)
		}
		seen[d] = struct{}{}
	}
	if s.PortionSize < minPortion || s.PortionSize > maxPortion {
		return fmt.Errorf("portion_size must be %d-%d, got %d", minPortion, maxPortion, s.PortionSize)
	}
	return nil
}

func (s *ScheduleService) Create(ctx context.Context, sched models.FeedingSchedule) (int64, error) {
	if err := validateSchedule(sched); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, sched)
}

func (s *ScheduleService) Update(ctx context.Context, sched models.FeedingSchedule) error {
	if sched.ID <= 0 {
		return fmt.Errorf("schedule id must be positive")
	}
	if err := validateSchedule(sched); err != nil {
		return err
	}
	return s.repo.Update(ctx, sched)
}

func (s *ScheduleService) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	if id <= 0 {
		return fmt.Errorf("schedule id must be positive")
	}
	return s.repo.SetEnabled(ctx, id, enabled)
}

func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("schedule id must be positive")
	}
	return s.repo.Delete(ctx, id)
}

func (s *ScheduleService) List(ctx context.Context) ([]models.FeedingSchedule, error) {
	return s.repo.List(ctx)
}
