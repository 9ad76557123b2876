// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSecurityLogger_Events(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewSecurityLoggerWithLogger(NewTestLogger(&buf))

	l.LogRegistration("p-1", "Johanna", "10.0.0.1", false)
	l.LogLoginSuccess("p-1", 42, "10.0.0.1")
	l.LogLoginFailure("p-2", "10.0.0.2", "invalid_secret_id")
	l.LogProfileUpdate("p-1", false, "missing_data")
	l.LogSessionReplaced("p-1", 42, 43)

	out := buf.String()
	for _, want := range []string{
		`"component":"auth"`,
		`"event":"pilot_registered"`,
		`"name":"Jo***"`,
		`"event":"login_success"`,
		`"conn_id":42`,
		`"event":"login_failed"`,
		`"reason":"invalid_secret_id"`,
		`"event":"profile_update"`,
		`"event":"session_replaced"`,
		`"new_conn_id":43`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in output", want)
		}
	}
	if strings.Contains(out, "Johanna") {
		t.Error("full name leaked into log")
	}
}

func TestSanitizeSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "***"},
		{"0b6f2f4c-8e1a-4c57-9d0e-5a4b3c2d1e0f", "0b6f...1e0f"},
	}
	for _, tt := range tests {
		if got := SanitizeSecret(tt.in); got != tt.want {
			t.Errorf("SanitizeSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Al", "***"},
		{"Johanna", "Jo***"},
		{"Émilie", "Ém***"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError("bad secret_id=abc"); got != "authentication error" {
		t.Errorf("credential-looking error not masked: %q", got)
	}
	if got := SanitizeError("invalid_id"); got != "invalid_id" {
		t.Errorf("plain error altered: %q", got)
	}
	long := strings.Repeat("x", 300)
	if got := SanitizeError(long); len(got) != 203 {
		t.Errorf("long error not truncated: %d", len(got))
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("secret_id", "0b6f2f4c-8e1a-4c57-9d0e-5a4b3c2d1e0f"); got != "0b6f...1e0f" {
		t.Errorf("secret not masked: %q", got)
	}
	if got := SanitizeValue("name", "Johanna"); got != "Jo***" {
		t.Errorf("name not masked: %q", got)
	}
	if got := SanitizeValue("group_id", "XK42PQ"); got != "XK42PQ" {
		t.Errorf("plain value altered: %q", got)
	}
}
