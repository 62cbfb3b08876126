package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/net"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
)

// ConnectionLister reports the remote endpoints currently connected to the
// watched local port. Backed by gopsutil in production, by a fake in tests.
type ConnectionLister interface {
	Established(port uint32) ([]string, error)
}

// PsutilLister walks the kernel TCP table via gopsutil.
type PsutilLister struct{}

func (PsutilLister) Established(port uint32) ([]string, error) {
	conns, err := net.Connections("tcp")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range conns {
		if c.Status == "ESTABLISHED" && c.Laddr.Port == port {
			out = append(out, fmt.Sprintf("%s:%d", c.Raddr.IP, c.Raddr.Port))
		}
	}
	return out, nil
}

// ActivityService watches the camera-stream port for viewer connections.
// A brand-new remote endpoint marks the system active and chirps the
// buzzer; the active flag decays after the idle timeout with no
// connections left.
type ActivityService struct {
	lister    ConnectionLister
	state     *StateStore
	actuators Actuators
	log       *logger.Logger

	port uint32
	idle time.Duration

	prev map[string]struct{}

	now func() time.Time
}

func NewActivityService(
	cfg config.ActivityConfig,
	state *StateStore,
	actuators Actuators,
	log *logger.Logger,
) *ActivityService {
	return &ActivityService{
		lister:    PsutilLister{},
		state:     state,
		actuators: actuators,
		log:       log,
		port:      cfg.WatchedPort,
		idle:      cfg.IdleTimeout,
		prev:      make(map[string]struct{}),
		now:       time.Now,
	}
}

// Poll diffs the connection set against the previous scan. New endpoints
// refresh the activity marker; an empty set lets the idle timeout run down.
func (s *ActivityService) Poll(ctx context.Context) {
	endpoints, err := s.lister.Established(s.port)
	if err != nil {
		s.log.Warnw("connection_scan_failed", "err", err)
		return
	}

	now := s.now()
	current := make(map[string]struct{}, len(endpoints))
	fresh := false
	for _, e := range endpoints {
		current[e] = struct{}{}
		if _, seen := s.prev[e]; !seen {
			fresh = true
			s.log.Infow("viewer_connected", "remote", e)
		}
	}
	s.prev = current
	s.state.SetConnections(endpoints)

	if len(endpoints) > 0 {
		if flipped := s.state.MarkActive(now); flipped {
			s.log.Infow("system_active")
		}
		if fresh {
			go s.actuators.Beep(2)
		}
		return
	}

	if s.state.ExpireActivity(now, s.idle) {
		s.log.Infow("system_idle", "idle_timeout", s.idle)
	}
}

// Run scans at the given cadence until ctx is canceled.
func (s *ActivityService) Run(ctx context.Context, tick time.Duration) {
	s.log.Infow("activity_monitor_started", "port", s.port, "idle_timeout", s.idle)
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Poll(ctx)
		}
	}
}
