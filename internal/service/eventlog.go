package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/repository"
)

// LogFilter narrows an event log query. Zero times mean unbounded; an
// empty type matches every event class.
type LogFilter struct {
	From time.Time
	To   time.Time
	Type string
}

// EventLogService validates filters and reads the append-only event log.
type EventLogService struct {
	repo repository.EventRepo
}

func NewEventLogService(repo repository.EventRepo) *EventLogService {
	return &EventLogService{repo: repo}
}

var knownEventTypes = map[string]struct{}{
	models.EventAlert:    {},
	models.EventRecovery: {},
	models.EventFeed:     {},
	models.EventActuator: {},
	models.EventError:    {},
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.SystemEvent, error) {
	typ := strings.ToUpper(strings.TrimSpace(f.Type))
	if typ != "" {
		if _, ok := knownEventTypes[typ]; !ok {
			return nil, fmt.Errorf("unknown event type %q", f.Type)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, fmt.Errorf("invalid range: to %s precedes from %s", f.To.Format(time.RFC3339), f.From.Format(time.RFC3339))
	}
	return s.repo.List(ctx, f.From, f.To, typ)
}
