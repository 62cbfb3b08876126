package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/hardware"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

const (
	minPortion = 1
	maxPortion = 3
)

// CooldownError rejects a feed attempted before the global cooldown has
// elapsed. It is a precondition failure, not an internal error.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("fed too recently; try again in %.1f minutes", e.Remaining.Minutes())
}

// FeedingService owns both the once-per-minute schedule scan and the
// manual feed operation. The dispense mutex serializes every dispense
// sequence system-wide; the cooldown is keyed on the global last-feed time
// because there is only one feeder mechanism (per-schedule last_feed_time
// is informational history).
type FeedingService struct {
	schedules repository.ScheduleRepo
	logs      repository.FeedingLogRepo
	events    repository.EventRepo
	feeder    hardware.Feeder
	state     *StateStore
	log       *logger.Logger

	loc      *time.Location
	cooldown time.Duration
	settle   time.Duration

	dispenseMu sync.Mutex

	// fired maps schedule ID to the last "YYYY-MM-DD HH:MM" it ran in, so
	// a tick landing twice inside the same matching minute cannot
	// double-fire.
	fired map[int64]string

	now   func() time.Time
	sleep func(time.Duration)
}

func NewFeedingService(
	cfg *config.Config,
	feeder hardware.Feeder,
	state *StateStore,
	repos *repository.Repository,
	log *logger.Logger,
) *FeedingService {
	return &FeedingService{
		schedules: repos.Schedules,
		logs:      repos.FeedingLogs,
		events:    repos.Events,
		feeder:    feeder,
		state:     state,
		log:       log,
		loc:       cfg.Location(),
		cooldown:  cfg.Feeding.Cooldown,
		settle:    cfg.Feeding.SettleDelay,
		fired:     make(map[int64]string),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

const minuteLayout = "2006-01-02 15:04"

// Tick scans for due schedules once. Called every 60s by Run; exposed for
// tests. Errors are logged, never returned: the loop must survive every
// iteration.
func (s *FeedingService) Tick(ctx context.Context) {
	now := s.now().In(s.loc)
	feedTime := now.Format("15:04")
	weekday := int(now.Weekday()) // 0 = Sunday, matching the stored codes

	due, err := s.schedules.Due(ctx, feedTime, weekday)
	if err != nil {
		s.log.Errorw("schedule_scan_failed", "err", err)
		return
	}

	minute := now.Format(minuteLayout)
	for _, sched := range due {
		if s.fired[sched.ID] == minute {
			continue
		}
		if s.runScheduled(ctx, sched) {
			s.fired[sched.ID] = minute
		}
	}
}

// runScheduled performs one scheduled dispense. Returns true when the
// schedule should be marked as fired for this minute (dispensed, or
// skipped because of the cooldown — a cooldown skip must not retry within
// the same minute either).
func (s *FeedingService) runScheduled(ctx context.Context, sched models.FeedingSchedule) bool {
	s.dispenseMu.Lock()
	defer s.dispenseMu.Unlock()

	now := s.now()
	if remaining := s.cooldownRemaining(now); remaining > 0 {
		s.log.Infow("schedule_skipped_cooldown",
			"schedule_id", sched.ID, "remaining_min", remaining.Minutes())
		return true
	}

	portion := clampPortion(sched.PortionSize)
	if err := s.dispense(portion); err != nil {
		s.log.Errorw("scheduled_feed_failed", "schedule_id", sched.ID, "err", err)
		s.appendEvent(ctx, models.EventError, "Scheduled feed failed", map[string]any{
			"schedule_id": sched.ID, "error": err.Error(),
		})
		return false
	}

	id := sched.ID
	if err := s.logs.RecordFeed(ctx, &id, portion, now); err != nil {
		// Feed happened but nothing was recorded; leave timestamps alone so
		// the global guard still reflects the last recorded feed.
		s.log.Errorw("scheduled_feed_record_failed", "schedule_id", sched.ID, "err", err)
		return false
	}

	s.state.SetLastFeed(now)
	s.log.Infow("scheduled_feed_done", "schedule_id", sched.ID, "portion", portion)
	s.appendEvent(ctx, models.EventFeed, "Scheduled feed dispensed", map[string]any{
		"schedule_id": sched.ID, "portion_size": portion,
	})
	return true
}

// FeedNow dispenses immediately, honoring the same cooldown and dispense
// lock as the scheduler. Portion is clamped to [1,3].
func (s *FeedingService) FeedNow(ctx context.Context, portion int) (models.FeedResult, error) {
	portion = clampPortion(portion)

	s.dispenseMu.Lock()
	defer s.dispenseMu.Unlock()

	now := s.now()
	if remaining := s.cooldownRemaining(now); remaining > 0 {
		return models.FeedResult{}, &CooldownError{Remaining: remaining}
	}

	if err := s.dispense(portion); err != nil {
		s.log.Errorw("manual_feed_failed", "err", err)
		s.appendEvent(ctx, models.EventError, "Manual feed failed", map[string]any{
			"error": err.Error(),
		})
		return models.FeedResult{}, fmt.Errorf("dispense: %w", err)
	}

	if err := s.logs.RecordFeed(ctx, nil, portion, now); err != nil {
		s.log.Errorw("manual_feed_record_failed", "err", err)
		return models.FeedResult{}, fmt.Errorf("record feed: %w", err)
	}

	s.state.SetLastFeed(now)
	s.log.Infow("manual_feed_done", "portion", portion)
	s.appendEvent(ctx, models.EventFeed, "Manual feed dispensed", map[string]any{
		"portion_size": portion,
	})
	return models.FeedResult{PortionSize: portion, LastFeedTime: now}, nil
}

// cooldownRemaining returns how long until the next feed is allowed; zero
// or negative means feeding is permitted. A zero last-feed time (never
// fed) imposes no cooldown.
func (s *FeedingService) cooldownRemaining(now time.Time) time.Duration {
	last := s.state.LastFeed()
	if last.IsZero() {
		return 0
	}
	return s.cooldown - now.Sub(last)
}

// dispense runs the servo sequence portion times with the settle delay in
// between, aborting on the first failure. Not cancellable once started.
func (s *FeedingService) dispense(portion int) error {
	for i := 0; i < portion; i++ {
		if i > 0 {
			s.sleep(s.settle)
		}
		if err := s.feeder.DispenseOnce(); err != nil {
			return fmt.Errorf("portion %d/%d: %w", i+1, portion, err)
		}
	}
	return nil
}

func clampPortion(p int) int {
	if p < minPortion {
		return minPortion
	}
	if p > maxPortion {
		return maxPortion
	}
	return p
}

func (s *FeedingService) appendEvent(ctx context.Context, typ, msg string, meta map[string]any) {
	if err := s.events.Append(ctx, models.SystemEvent{Type: typ, Description: msg, Metadata: meta}); err != nil {
		s.log.Errorw("feed_event_append_failed", "err", err)
	}
}

// Logs lists recent feeding log entries, newest first.
func (s *FeedingService) Logs(ctx context.Context, limit int) ([]models.FeedingLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.logs.List(ctx, limit)
}

func (s *FeedingService) DeleteLog(ctx context.Context, id int64) error {
	return s.logs.Delete(ctx, id)
}

// SeedLastFeed initializes the global last-feed marker from the most
// recent persisted log entry so a restart does not reopen the cooldown.
func (s *FeedingService) SeedLastFeed(ctx context.Context) {
	entries, err := s.logs.List(ctx, 1)
	if err != nil {
		s.log.Errorw("seed_last_feed_failed", "err", err)
		return
	}
	if len(entries) > 0 {
		s.state.SetLastFeed(entries[0].FeedTime)
	}
}

// Run ticks once per interval until ctx is canceled.
func (s *FeedingService) Run(ctx context.Context, tick time.Duration) {
	s.log.Infow("feeding_scheduler_started", "tick", tick, "cooldown", s.cooldown)
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick(ctx)
		}
	}
}
