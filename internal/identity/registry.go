// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package identity

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/models"
)

var (
	// ErrUnknownPilot is returned when no identity exists for a pilot ID.
	ErrUnknownPilot = errors.New("unknown pilot")

	// ErrBadSecret is returned when a secret does not match the pilot's credential.
	ErrBadSecret = errors.New("secret does not match")

	// ErrAlreadyRegistered is returned when a requested pilot ID is taken.
	ErrAlreadyRegistered = errors.New("pilot already registered")

	// ErrMissingName is returned when a registration or update carries an empty name.
	ErrMissingName = errors.New("pilot name is empty")

	// ErrInvalidProfile is returned when a profile field exceeds its limits.
	ErrInvalidProfile = errors.New("invalid profile field")

	// ErrInvalidID is returned when a client-chosen pilot ID is malformed.
	ErrInvalidID = errors.New("invalid pilot id")
)

const (
	// MaxNameLength is the longest accepted pilot name, in characters.
	MaxNameLength = 64

	// MaxIDLength is the longest accepted client-chosen pilot ID.
	MaxIDLength = 64
)

// Config controls registration policy.
type Config struct {
	// AllowClientChosenID honors the ID a client proposes at registration.
	// When false the server always allocates a UUID.
	AllowClientChosenID bool

	// SecretHashCost is the bcrypt cost for stored secrets.
	SecretHashCost int

	// MaxAvatarBytes bounds the avatar field. Zero disables the check.
	MaxAvatarBytes int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		AllowClientChosenID: false,
		SecretHashCost:      bcrypt.DefaultCost,
		MaxAvatarBytes:      256 * 1024,
	}
}

// Credentials are returned once by Register.
type Credentials struct {
	PilotID  string
	SecretID string
}

// ProfileUpdate lists the profile fields a pilot may change. Nil fields are left as is.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}

type record struct {
	pilot      models.Pilot
	secretHash []byte
}

// Registry maps pilot IDs to their public profile and secret hash.
// It is safe for concurrent use.
type Registry struct {
	cfg    Config
	logger zerolog.Logger

	mu     sync.RWMutex
	pilots map[string]*record
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.SecretHashCost < bcrypt.MinCost || cfg.SecretHashCost > bcrypt.MaxCost {
		cfg.SecretHashCost = bcrypt.DefaultCost
	}
	return &Registry{
		cfg:    cfg,
		logger: logging.WithComponent("identity"),
		pilots: make(map[string]*record),
	}
}

// Register creates a new identity and returns its credentials.
//
// A supplied requestedID that is already registered fails with ErrAlreadyRegistered
// regardless of policy. Otherwise requestedID is used only when the registry allows
// client-chosen IDs; the secret is always server-generated.
func (r *Registry) Register(name, avatar, requestedID string) (Credentials, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Credentials{}, ErrMissingName
	}
	if err := r.checkProfile(name, avatar); err != nil {
		return Credentials{}, err
	}

	pilotID := uuid.NewString()
	if requestedID != "" {
		if r.Exists(requestedID) {
			return Credentials{}, ErrAlreadyRegistered
		}
		if r.cfg.AllowClientChosenID {
			if !ValidID(requestedID) {
				return Credentials{}, fmt.Errorf("%q: %w", requestedID, ErrInvalidID)
			}
			pilotID = requestedID
		}
	}

	secret := uuid.NewString()
	hash, err := hashSecret(secret, r.cfg.SecretHashCost)
	if err != nil {
		return Credentials{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock: another registration may have raced us.
	if _, taken := r.pilots[pilotID]; taken {
		return Credentials{}, ErrAlreadyRegistered
	}
	r.pilots[pilotID] = &record{
		pilot:      models.Pilot{ID: pilotID, Name: name, Avatar: avatar},
		secretHash: hash,
	}

	r.logger.Debug().Str("pilot_id", pilotID).Bool("client_chosen", pilotID == requestedID).Msg("pilot registered")
	return Credentials{PilotID: pilotID, SecretID: secret}, nil
}

// Login verifies a pilot's secret and returns the pilot's profile.
func (r *Registry) Login(pilotID, secret string) (models.Pilot, error) {
	return r.verify(pilotID, secret)
}

// UpdateProfile changes the fields set in upd after verifying the secret. Each field
// is validated on its own; nothing is changed if any field is rejected.
func (r *Registry) UpdateProfile(pilotID, secret string, upd ProfileUpdate) (models.Pilot, error) {
	current, err := r.verify(pilotID, secret)
	if err != nil {
		return models.Pilot{}, err
	}

	next := current
	if upd.Name != nil {
		next.Name = strings.TrimSpace(*upd.Name)
		if next.Name == "" {
			return models.Pilot{}, ErrMissingName
		}
	}
	if upd.Avatar != nil {
		next.Avatar = *upd.Avatar
	}
	if err := r.checkProfile(next.Name, next.Avatar); err != nil {
		return models.Pilot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.pilots[pilotID]
	if !ok {
		return models.Pilot{}, ErrUnknownPilot
	}
	rec.pilot.Name = next.Name
	rec.pilot.Avatar = next.Avatar
	return rec.pilot, nil
}

// Get returns the public profile of a pilot.
func (r *Registry) Get(pilotID string) (models.Pilot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.pilots[pilotID]
	if !ok {
		return models.Pilot{}, false
	}
	return rec.pilot, true
}

// Exists reports whether pilotID is registered.
func (r *Registry) Exists(pilotID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pilots[pilotID]
	return ok
}

// Count returns the number of registered pilots.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pilots)
}

// verify checks the secret without holding the lock during the bcrypt comparison.
func (r *Registry) verify(pilotID, secret string) (models.Pilot, error) {
	r.mu.RLock()
	rec, ok := r.pilots[pilotID]
	var (
		pilot models.Pilot
		hash  []byte
	)
	if ok {
		pilot, hash = rec.pilot, rec.secretHash
	}
	r.mu.RUnlock()

	if !ok {
		return models.Pilot{}, ErrUnknownPilot
	}
	if !verifySecret(secret, hash) {
		return models.Pilot{}, ErrBadSecret
	}
	return pilot, nil
}

func (r *Registry) checkProfile(name, avatar string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name longer than %d characters: %w", MaxNameLength, ErrInvalidProfile)
	}
	if r.cfg.MaxAvatarBytes > 0 && len(avatar) > r.cfg.MaxAvatarBytes {
		return fmt.Errorf("avatar larger than %d bytes: %w", r.cfg.MaxAvatarBytes, ErrInvalidProfile)
	}
	return nil
}

// ValidID reports whether id is acceptable as a client-chosen pilot ID: non-empty,
// at most MaxIDLength bytes, printable and without whitespace.
func ValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength {
		return false
	}
	for _, c := range id {
		if !unicode.IsPrint(c) || unicode.IsSpace(c) {
			return false
		}
	}
	return true
}

// hashSecret bcrypts the SHA-256 of the secret; bcrypt only reads 72 bytes.
func hashSecret(secret string, cost int) ([]byte, error) {
	sum := sha256.Sum256([]byte(secret))
	hash, err := bcrypt.GenerateFromPassword(sum[:], cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return hash, nil
}

func verifySecret(secret string, hash []byte) bool {
	sum := sha256.Sum256([]byte(secret))
	return bcrypt.CompareHashAndPassword(hash, sum[:]) == nil
}
