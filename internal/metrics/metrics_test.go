// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "health check",
			method:     "GET",
			endpoint:   "/api/v1/health/live",
			statusCode: "200",
			duration:   time.Millisecond,
		},
		{
			name:       "pilot status",
			method:     "GET",
			endpoint:   "/api/v1/pilots/status",
			statusCode: "200",
			duration:   3 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			method:     "GET",
			endpoint:   "/api/v1/stats",
			statusCode: "429",
			duration:   time.Millisecond,
		},
		{
			name:       "not found request",
			method:     "GET",
			endpoint:   "/api/v1/unknown",
			statusCode: "404",
			duration:   2 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after != before+1 {
				t.Errorf("counter went from %v to %v", before, after)
			}
		})
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates a realistic request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 4; i++ {
		TrackActiveRequest(false)
	}
	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 6 {
		t.Errorf("active requests delta = %v, want 6", got)
	}
	for i := 0; i < 6; i++ {
		TrackActiveRequest(false)
	}
}

func TestRecordRelayEvent(t *testing.T) {
	before := testutil.ToFloat64(RelayEventsTotal.WithLabelValues("LoginRequest", "invalid_secret_id"))
	RecordRelayEvent("LoginRequest", "invalid_secret_id", 200*time.Microsecond)
	after := testutil.ToFloat64(RelayEventsTotal.WithLabelValues("LoginRequest", "invalid_secret_id"))
	if after != before+1 {
		t.Errorf("relay_events_total went from %v to %v", before, after)
	}
}

func TestRecordPlanUpdate(t *testing.T) {
	resyncBefore := testutil.ToFloat64(PlanSyncsTotal.WithLabelValues("resync"))

	RecordPlanUpdate("new", "accepted")
	RecordPlanUpdate("new", "rejected")
	RecordPlanUpdate("none", "unchanged")

	if got := testutil.ToFloat64(PlanSyncsTotal.WithLabelValues("resync")) - resyncBefore; got != 1 {
		t.Errorf("resyncs recorded = %v, want 1", got)
	}
}

func TestRecordActivityPublish(t *testing.T) {
	okBefore := testutil.ToFloat64(ActivityPublished.WithLabelValues("chat"))
	errBefore := testutil.ToFloat64(ActivityPublishErrors.WithLabelValues("chat"))

	RecordActivityPublish("chat", nil)
	RecordActivityPublish("chat", errors.New("nats: connection closed"))

	if testutil.ToFloat64(ActivityPublished.WithLabelValues("chat")) != okBefore+1 {
		t.Error("successful publish not counted")
	}
	if testutil.ToFloat64(ActivityPublishErrors.WithLabelValues("chat")) != errBefore+1 {
		t.Error("failed publish not counted")
	}
}

func TestUpdateRegistryGauges(t *testing.T) {
	UpdateRegistryGauges(12, 3, 7)
	if v := testutil.ToFloat64(PilotsRegistered); v != 12 {
		t.Errorf("pilots = %v", v)
	}
	if v := testutil.ToFloat64(GroupsActive); v != 3 {
		t.Errorf("groups = %v", v)
	}
	if v := testutil.ToFloat64(SessionsAuthenticated); v != 7 {
		t.Errorf("sessions = %v", v)
	}
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	RecordCircuitBreakerTransition("activity-test", 2, "closed", "open")
	if v := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("activity-test")); v != 2 {
		t.Errorf("state = %v, want 2", v)
	}
	RecordCircuitBreakerTransition("activity-test", 1, "open", "half-open")
	if v := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("activity-test", "open", "half-open")); v != 1 {
		t.Errorf("transitions = %v, want 1", v)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 50
	operationsPerGoroutine := 50

	wg.Add(numGoroutines * 3)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordAPIRequest("GET", "/api/v1/test", "200", time.Duration(j)*time.Millisecond)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordFanout("TextMessage", j%8)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordDropped("buffer_full")
			}
		}()
	}
	wg.Wait()
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		WSConnections,
		WSMessagesSent,
		WSMessagesReceived,
		WSMessagesDropped,
		WSErrors,
		RelayEventsTotal,
		RelayDispatchDuration,
		RelayFanoutRecipients,
		RelayEmergencyMessages,
		PlanUpdatesTotal,
		PlanSyncsTotal,
		PilotsRegistered,
		LoginsTotal,
		GroupsActive,
		GroupsReaped,
		SessionsAuthenticated,
		ActivityPublished,
		ActivityPublishErrors,
		CircuitBreakerState,
		CircuitBreakerTransitions,
		AppInfo,
		AppUptime,
	}

	for _, m := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)
	SetAppInfo("test", "go1.24")

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/stats", "200", 25*time.Millisecond)
	}
}

func BenchmarkRecordFanout(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordFanout("PilotTelemetry", 5)
	}
}
