// Package session owns the authenticated identity and its persistence.
//
// The store is the only writer of the session file. Views receive the store
// explicitly; there is no ambient global session state.
package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/mahara/internal/domain/model"
	"github.com/okian/mahara/pkg/logger"
	"github.com/okian/mahara/pkg/metrics"
)

// File permission constants.
const (
	stateFilePermission = 0o600
	stateDirPermission  = 0o750
)

// state is the on-disk shape of a persisted session.
type state struct {
	User  model.Identity `json:"user"`
	Token string         `json:"token,omitempty"`
}

// Store holds the in-memory identity and mirrors it to the state file.
type Store struct {
	mu sync.RWMutex

	path  string
	ident *model.Identity
	token string
	ready bool

	logger logger.Logger
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithPath sets the session file location.
func WithPath(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.path = path
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Store. Load must be called before the session is usable.
func New(opts ...Option) *Store {
	s := &Store{
		path: "mahara_session.json",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Load reads the persisted identity, if any. A missing file or malformed
// payload is treated as "no session"; Load never fails for those cases.
// After Load returns, Ready reports true so callers can distinguish
// "still loading" from "confirmed unauthenticated".
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() { s.ready = true }()
	s.ident = nil
	s.token = ""

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug(ctx, "session file unreadable", logger.Error(err))
		}
		return
	}

	var st state
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.Debug(ctx, "discarding malformed session state", logger.Error(err))
		return
	}
	if !st.User.Role.Valid() || st.User.ID == "" {
		s.logger.Debug(ctx, "discarding session with invalid identity",
			logger.String("role", string(st.User.Role)))
		return
	}

	s.ident = &st.User
	s.token = st.Token
	metrics.RecordSessionEvent("restore")
}

// Login sets the in-memory identity and persists it.
func (s *Store) Login(ctx context.Context, ident model.Identity) error {
	if !ident.Role.Valid() {
		return ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(state{User: ident, Token: s.token}); err != nil {
		return err
	}
	s.ident = &ident
	s.ready = true
	metrics.RecordSessionEvent("login")
	s.logger.Info(ctx, "session established",
		logger.String("user", ident.ID),
		logger.String("role", string(ident.Role)))
	return nil
}

// SetToken stores an opaque auth token alongside the identity.
func (s *Store) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	if s.ident == nil {
		return nil
	}
	return s.persist(state{User: *s.ident, Token: token})
}

// Logout clears both in-memory and persisted state.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ident = nil
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn(ctx, "failed to remove session file", logger.Error(err))
	}
	metrics.RecordSessionEvent("logout")
}

// Current returns the identity and whether a session is active.
func (s *Store) Current() (model.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ident == nil {
		return model.Identity{}, false
	}
	return *s.ident, true
}

// Token returns the persisted auth token, if any.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Ready reports whether Load has completed at least once.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// persist writes the state file, creating the parent directory when needed.
func (s *Store) persist(st state) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, stateDirPermission); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, stateFilePermission)
}
