// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package identity

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/xcrelay/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func newTestRegistry(allowChosen bool) *Registry {
	return NewRegistry(Config{
		AllowClientChosenID: allowChosen,
		SecretHashCost:      bcrypt.MinCost,
		MaxAvatarBytes:      1024,
	})
}

func strPtr(s string) *string { return &s }

func TestRegister_ThenLogin(t *testing.T) {
	r := newTestRegistry(false)

	creds, err := r.Register("  Alice ", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if creds.PilotID == "" || creds.SecretID == "" {
		t.Fatalf("empty credentials: %+v", creds)
	}

	pilot, err := r.Login(creds.PilotID, creds.SecretID)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pilot.Name != "Alice" {
		t.Errorf("name = %q, want trimmed Alice", pilot.Name)
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
}

func TestRegister_Errors(t *testing.T) {
	r := newTestRegistry(true)
	if _, err := r.Register("Taken", "", "taken-id"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, pilotName, avatar, requested string
		want                               error
	}{
		{"empty name", "   ", "", "", ErrMissingName},
		{"long name", strings.Repeat("x", MaxNameLength+1), "", "", ErrInvalidProfile},
		{"large avatar", "Bob", strings.Repeat("a", 1025), "", ErrInvalidProfile},
		{"id taken", "Bob", "", "taken-id", ErrAlreadyRegistered},
		{"id with space", "Bob", "", "bad id", ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Register(tt.pilotName, tt.avatar, tt.requested)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegister_ClientChosenIDPolicy(t *testing.T) {
	allow := newTestRegistry(true)
	creds, err := allow.Register("Carol", "", "carol-1")
	if err != nil {
		t.Fatal(err)
	}
	if creds.PilotID != "carol-1" {
		t.Errorf("allowed policy: id = %q, want carol-1", creds.PilotID)
	}

	deny := newTestRegistry(false)
	creds, err = deny.Register("Carol", "", "carol-1")
	if err != nil {
		t.Fatal(err)
	}
	if creds.PilotID == "carol-1" {
		t.Error("denied policy must not honor the requested id")
	}
	// Taken is reported even when the policy would ignore the request.
	if _, err := deny.Register("Dave", "", creds.PilotID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	r := newTestRegistry(false)
	creds, err := r.Register("Eve", "", "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Login("nobody", creds.SecretID); !errors.Is(err, ErrUnknownPilot) {
		t.Errorf("unknown pilot: err = %v", err)
	}
	if _, err := r.Login(creds.PilotID, "wrong"); !errors.Is(err, ErrBadSecret) {
		t.Errorf("bad secret: err = %v", err)
	}
}

func TestSecretNotStoredInClear(t *testing.T) {
	r := newTestRegistry(false)
	creds, err := r.Register("Frank", "", "")
	if err != nil {
		t.Fatal(err)
	}
	r.mu.RLock()
	rec := r.pilots[creds.PilotID]
	r.mu.RUnlock()
	if strings.Contains(string(rec.secretHash), creds.SecretID) {
		t.Error("secret stored in clear")
	}
}

func TestUpdateProfile(t *testing.T) {
	r := newTestRegistry(false)
	creds, err := r.Register("Gina", "old.png", "")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("name only", func(t *testing.T) {
		p, err := r.UpdateProfile(creds.PilotID, creds.SecretID, ProfileUpdate{Name: strPtr("Gina B")})
		if err != nil {
			t.Fatal(err)
		}
		if p.Name != "Gina B" || p.Avatar != "old.png" {
			t.Errorf("profile = %+v", p)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := r.UpdateProfile(creds.PilotID, creds.SecretID, ProfileUpdate{Name: strPtr(" ")})
		if !errors.Is(err, ErrMissingName) {
			t.Errorf("err = %v", err)
		}
		if p, _ := r.Get(creds.PilotID); p.Name != "Gina B" {
			t.Errorf("rejected update changed name to %q", p.Name)
		}
	})

	t.Run("oversize avatar leaves name untouched", func(t *testing.T) {
		_, err := r.UpdateProfile(creds.PilotID, creds.SecretID, ProfileUpdate{
			Name:   strPtr("Other"),
			Avatar: strPtr(strings.Repeat("a", 2048)),
		})
		if !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("err = %v", err)
		}
		if p, _ := r.Get(creds.PilotID); p.Name != "Gina B" {
			t.Errorf("partial update applied: %+v", p)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := r.UpdateProfile(creds.PilotID, "nope", ProfileUpdate{Name: strPtr("X")})
		if !errors.Is(err, ErrBadSecret) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestRegister_ConcurrentSameID(t *testing.T) {
	r := newTestRegistry(true)

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Register("Racer", "", "race-id"); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 1 {
		t.Errorf("%d registrations won the same id, want 1", success)
	}
}

func TestValidID(t *testing.T) {
	tests := map[string]bool{
		"":                        false,
		"abc":                     true,
		"with space":              false,
		"tab\t":                   false,
		strings.Repeat("a", 64):   true,
		strings.Repeat("a", 65):   false,
		"550e8400-e29b-41d4-a716": true,
	}
	for in, want := range tests {
		if got := ValidID(in); got != want {
			t.Errorf("ValidID(%q) = %v, want %v", in, got, want)
		}
	}
}
