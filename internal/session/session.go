// Package session holds the per-visitor interaction state that the
// original widget kept in page-scoped globals: the current landmark, the
// display language, whether chat input is enabled and whether the remote
// store is authoritative. One State exists per process; its lifecycle
// matches one widget page load.
package session

import (
	"log/slog"
	"sync"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

// State is an explicit session-state object. Switching the current
// landmark overwrites rather than stacks; only one landmark is "current"
// at a time.
type State struct {
	mu                sync.RWMutex
	currentLandmarkID string
	language          string
	chatEnabled       bool
	connected         bool
	tier              types.Tier

	logger *slog.Logger
}

// Snapshot is a read-only copy of the session state for API responses.
type Snapshot struct {
	CurrentLandmarkID *string    `json:"currentLandmarkId"`
	Language          string     `json:"language"`
	ChatEnabled       bool       `json:"chatEnabled"`
	Connected         bool       `json:"connected"`
	Tier              types.Tier `json:"tier"`
}

func NewState(logger *slog.Logger) *State {
	return &State{
		language: types.DefaultLanguage,
		logger:   logger,
	}
}

// SetCurrentLandmark records the scanned/selected landmark and enables
// chat input.
func (s *State) SetCurrentLandmark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentLandmarkID = id
	s.chatEnabled = true
}

// CurrentLandmarkID returns the current landmark id, empty when none has
// been resolved yet.
func (s *State) CurrentLandmarkID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLandmarkID
}

// SetLanguage switches the display language. Unrecognized codes are
// ignored, not rejected with an error.
func (s *State) SetLanguage(code string) {
	if !types.IsSupportedLanguage(code) {
		s.logger.Warn("Ignoring unsupported language code", slog.String("code", code))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = code
}

// Language returns the active display language.
func (s *State) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// IsChatEnabled reports whether a landmark has been resolved and chat
// input is active.
func (s *State) IsChatEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatEnabled
}

// SetDataTier records which data source ended up authoritative for this
// session; Remote means live connectivity.
func (s *State) SetDataTier(tier types.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tier = tier
	s.connected = tier == types.TierRemote
}

// IsConnected reports whether the remote tier is authoritative.
func (s *State) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Snapshot returns a copy of the state for the status endpoints.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Language:    s.language,
		ChatEnabled: s.chatEnabled,
		Connected:   s.connected,
		Tier:        s.tier,
	}
	if s.currentLandmarkID != "" {
		id := s.currentLandmarkID
		snap.CurrentLandmarkID = &id
	}
	return snap
}
