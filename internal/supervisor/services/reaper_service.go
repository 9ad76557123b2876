// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package services

import (
	"context"
	"time"

	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/metrics"
)

// GroupReaper is satisfied by *group.Registry.
type GroupReaper interface {
	Reap(now time.Time) []string
}

// GaugeFunc refreshes registry gauges; it runs after every sweep.
type GaugeFunc func()

// ReaperService periodically removes groups that have stayed empty past their
// grace period and refreshes the registry gauges.
type ReaperService struct {
	reaper   GroupReaper
	interval time.Duration
	gauges   GaugeFunc
	now      func() time.Time
	name     string
}

// NewReaperService sweeps every interval (1 minute when non-positive). gauges may be nil.
func NewReaperService(reaper GroupReaper, interval time.Duration, gauges GaugeFunc) *ReaperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReaperService{
		reaper:   reaper,
		interval: interval,
		gauges:   gauges,
		now:      time.Now,
		name:     "group-reaper",
	}
}

// Serve implements suture.Service.
func (s *ReaperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *ReaperService) sweep() {
	reaped := s.reaper.Reap(s.now())
	if n := len(reaped); n > 0 {
		metrics.GroupsReaped.Add(float64(n))
		logging.Info().Int("count", n).Msg("Reaped empty groups")
	}
	s.refresh()
}

func (s *ReaperService) refresh() {
	if s.gauges != nil {
		s.gauges()
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *ReaperService) String() string {
	return s.name
}
