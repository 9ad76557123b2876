// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package services

import (
	"context"
	"errors"

	"github.com/tomtom215/xcrelay/internal/logging"
)

// ActivityRunner is satisfied by *activity.Publisher.
type ActivityRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// ActivityService drains the activity publisher's queue under supervision and
// closes the broker connection on shutdown.
type ActivityService struct {
	publisher ActivityRunner
	name      string
}

// NewActivityService wraps publisher.
func NewActivityService(publisher ActivityRunner) *ActivityService {
	return &ActivityService{
		publisher: publisher,
		name:      "activity-publisher",
	}
}

// Serve implements suture.Service. The publisher is closed only once ctx is
// canceled; a Run failure before that is returned so suture restarts it.
func (s *ActivityService) Serve(ctx context.Context) error {
	err := s.publisher.Run(ctx)
	if ctx.Err() == nil {
		return err
	}
	if closeErr := s.publisher.Close(); closeErr != nil {
		logging.Warn().Err(closeErr).Msg("Activity publisher close failed")
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *ActivityService) String() string {
	return s.name
}
