// ABOUTME: Client-side session store holding the signed-in identity and tokens
// ABOUTME: Derives authentication flags on write and persists through storage.Storage

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/storage"
)

// State is a snapshot of the session.
// IsAuthenticated and IsAdmin are derived from User and AccessToken and are
// only ever computed by the store.
type State struct {
	User            *models.User `json:"user"`
	AccessToken     string       `json:"accessToken"`
	RefreshToken    string       `json:"refreshToken"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsAdmin         bool         `json:"isAdmin"`
}

// record is the persisted shape of auth-storage
type record struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

const recordVersion = 0

// Store is the single source of truth for who is signed in
type Store struct {
	mu      sync.RWMutex
	state   State
	storage storage.Storage
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for persistence warnings
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a store and rehydrates it once from the auth-storage record.
// A missing or unreadable record leaves the session empty.
// A nil backend keeps the session in memory only.
func New(backend storage.Storage, opts ...Option) *Store {
	if backend == nil {
		backend = storage.NewMemoryStore()
	}
	s := &Store{
		storage: backend,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

// SetAuth replaces the whole session. It performs no token validation.
func (s *Store) SetAuth(user *models.User, accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u *models.User
	if user != nil {
		copied := *user
		u = &copied
	}
	s.state = derive(State{User: u, AccessToken: accessToken, RefreshToken: refreshToken})
	s.save()
}

// Logout resets the session to empty defaults. Calling it on an empty
// session is harmless.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	s.save()
}

// IsTokenExpired reports whether the access token is missing, undecodable,
// lacks an exp claim, or expired. Only a decodable token with a future exp
// yields false. The signature is not verified here.
func (s *Store) IsTokenExpired() bool {
	s.mu.RLock()
	token := s.state.AccessToken
	s.mu.RUnlock()

	exp, ok := tokenExpiry(token)
	if !ok {
		return true
	}
	return exp.UnixMilli() < s.now().UnixMilli()
}

// ExpiresAt returns the access token's exp claim, if it can be decoded
func (s *Store) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tokenExpiry(s.state.AccessToken)
}

// State returns a copy of the current session
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// User returns a copy of the signed-in user, or nil
func (s *Store) User() *models.User {
	return s.State().User
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAdmin
}

// derive recomputes the flags from user and access token
func derive(st State) State {
	st.IsAuthenticated = st.User != nil && st.AccessToken != ""
	st.IsAdmin = st.User.IsAdmin()
	return st
}

// tokenExpiry decodes the exp claim from the payload segment. The header and
// signature are not inspected, so any alg is accepted.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// load must only be called from New
func (s *Store) load() {
	data, err := s.storage.Load(context.Background(), storage.AuthKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("Failed to read session, starting signed out", "error", err)
		return
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("Discarding corrupt session record", "error", err)
		return
	}
	s.state = derive(rec.State)
}

// save must be called with s.mu held
func (s *Store) save() {
	data, err := json.Marshal(record{State: s.state, Version: recordVersion})
	if err != nil {
		s.logger.Error("Failed to encode session", "error", err)
		return
	}
	if err := s.storage.Save(context.Background(), storage.AuthKey, data); err != nil {
		s.logger.Warn("Failed to persist session", "error", err)
	}
}
