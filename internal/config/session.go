// Package config provides session persistence and runtime settings for the
// code-checkout CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SessionFileName is the name of the session file kept in the project directory.
const SessionFileName = ".code-checkout"

var (
	// ErrConfigRead is returned when the session file exists but cannot be read or parsed.
	ErrConfigRead = errors.New("failed to read config")
	// ErrConfigWrite is returned when the session file cannot be written.
	ErrConfigWrite = errors.New("failed to save config")
)

// Session is the persisted CLI state for one project directory.
//
// Key names match the files written by earlier releases, which stored the
// same record as JSON; YAML reads those files unchanged.
type Session struct {
	PublisherID   string `yaml:"publisherId,omitempty"`
	AuthToken     string `yaml:"jwt,omitempty"`
	Username      string `yaml:"username,omitempty"`
	SoftwareID    string `yaml:"softwareId,omitempty"`
	ExtensionID   string `yaml:"extensionId,omitempty"`
	PublisherName string `yaml:"publisher,omitempty"`
	PaymentLinked *bool  `yaml:"stripeIntegrated,omitempty"`

	// Extra keeps keys this version does not know about so a save never drops them.
	Extra map[string]any `yaml:",inline"`
}

// IsAuthenticated reports whether both the identity token and the publisher id are present.
func (s Session) IsAuthenticated() bool {
	return s.AuthToken != "" && s.PublisherID != ""
}

// HasSoftware reports whether a software package has been registered.
func (s Session) HasSoftware() bool {
	return s.SoftwareID != ""
}

// IsPaymentLinked reports whether payment onboarding was confirmed.
func (s Session) IsPaymentLinked() bool {
	return s.PaymentLinked != nil && *s.PaymentLinked
}

// IsZero reports whether the session carries no fields at all.
func (s Session) IsZero() bool {
	return s.PublisherID == "" && s.AuthToken == "" && s.Username == "" &&
		s.SoftwareID == "" && s.ExtensionID == "" && s.PublisherName == "" &&
		s.PaymentLinked == nil && len(s.Extra) == 0
}

// ExtensionQuery returns the fully qualified extension identifier used by
// the analytics endpoints ("publisher.extension").
func (s Session) ExtensionQuery() string {
	if s.PublisherName == "" {
		return s.ExtensionID
	}
	return s.PublisherName + "." + s.ExtensionID
}

// Merge returns a copy of s with every field present in patch applied on top.
// Empty strings and a nil PaymentLinked count as absent, so a patch cannot
// clear a field. Clear the store to drop the record instead.
func (s Session) Merge(patch Session) Session {
	merged := s
	if patch.PublisherID != "" {
		merged.PublisherID = patch.PublisherID
	}
	if patch.AuthToken != "" {
		merged.AuthToken = patch.AuthToken
	}
	if patch.Username != "" {
		merged.Username = patch.Username
	}
	if patch.SoftwareID != "" {
		merged.SoftwareID = patch.SoftwareID
	}
	if patch.ExtensionID != "" {
		merged.ExtensionID = patch.ExtensionID
	}
	if patch.PublisherName != "" {
		merged.PublisherName = patch.PublisherName
	}
	if patch.PaymentLinked != nil {
		linked := *patch.PaymentLinked
		merged.PaymentLinked = &linked
	}
	if len(s.Extra) > 0 || len(patch.Extra) > 0 {
		merged.Extra = make(map[string]any, len(s.Extra)+len(patch.Extra))
		for k, v := range s.Extra {
			merged.Extra[k] = v
		}
		for k, v := range patch.Extra {
			merged.Extra[k] = v
		}
	}
	return merged
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool {
	return &b
}

// SessionStore loads and saves the session record.
type SessionStore interface {
	// Load returns the current session. A missing record yields an empty session.
	Load() (*Session, error)
	// Save merges patch into the stored session and persists the result.
	Save(patch Session) error
	// IsAuthenticated re-reads the store and reports Session.IsAuthenticated.
	IsAuthenticated() bool
	// HasSoftware re-reads the store and reports Session.HasSoftware.
	HasSoftware() bool
	// Clear removes the stored session and reports whether one existed.
	Clear() (bool, error)
	// Token returns the stored identity token.
	Token() (string, error)
}

// FileStore keeps the session in a YAML file. Every operation goes back to
// disk, so edits made by another process are picked up on the next call.
// Concurrent writers are not coordinated.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore returns a store for the session file inside dir.
func NewFileStore(dir string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   filepath.Join(dir, SessionFileName),
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the session file. If the file does not exist, an empty session is returned.
func (s *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}

	s.logger.Debug().
		Str("path", s.path).
		Bool("authenticated", sess.IsAuthenticated()).
		Bool("has_software", sess.HasSoftware()).
		Msg("session loaded")

	return &sess, nil
}

// Save merges patch over the stored session and rewrites the file.
func (s *FileStore) Save(patch Session) error {
	current, err := s.Load()
	if err != nil {
		return err
	}

	merged := current.Merge(patch)
	data, err := yaml.Marshal(&merged)
	if err != nil {
		return fmt.Errorf("%w: marshal session: %v", ErrConfigWrite, err)
	}

	// Write with restricted permissions (user-only read/write)
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}

	s.logger.Debug().Str("path", s.path).Msg("session saved")
	return nil
}

// IsAuthenticated reports whether the stored session holds a token and publisher id.
func (s *FileStore) IsAuthenticated() bool {
	sess, err := s.Load()
	if err != nil {
		s.logger.Debug().Err(err).Msg("session unreadable")
		return false
	}
	return sess.IsAuthenticated()
}

// HasSoftware reports whether the stored session references a software package.
func (s *FileStore) HasSoftware() bool {
	sess, err := s.Load()
	if err != nil {
		s.logger.Debug().Err(err).Msg("session unreadable")
		return false
	}
	return sess.HasSoftware()
}

// Clear deletes the session file.
func (s *FileStore) Clear() (bool, error) {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: remove session: %v", ErrConfigWrite, err)
	}
	return true, nil
}

// Token returns the stored identity token, or an empty string when logged out.
func (s *FileStore) Token() (string, error) {
	sess, err := s.Load()
	if err != nil {
		return "", err
	}
	return sess.AuthToken, nil
}

// MemoryStore is a SessionStore held in memory.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session

	// LoadErr and SaveErr, when set, are returned by Load and Save.
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns a store seeded with initial, which may be nil.
func NewMemoryStore(initial *Session) *MemoryStore {
	m := &MemoryStore{}
	if initial != nil {
		cp := initial.Merge(Session{})
		m.session = &cp
	}
	return m
}

// Load returns a copy of the held session.
func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.session == nil {
		return &Session{}, nil
	}
	cp := m.session.Merge(Session{})
	return &cp, nil
}

// Save merges patch into the held session.
func (m *MemoryStore) Save(patch Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	var current Session
	if m.session != nil {
		current = *m.session
	}
	merged := current.Merge(patch)
	m.session = &merged
	return nil
}

// IsAuthenticated reports Session.IsAuthenticated for the held session.
func (m *MemoryStore) IsAuthenticated() bool {
	sess, err := m.Load()
	return err == nil && sess.IsAuthenticated()
}

// HasSoftware reports Session.HasSoftware for the held session.
func (m *MemoryStore) HasSoftware() bool {
	sess, err := m.Load()
	return err == nil && sess.HasSoftware()
}

// Clear drops the held session.
func (m *MemoryStore) Clear() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existed := m.session != nil
	m.session = nil
	return existed, nil
}

// Token returns the held identity token.
func (m *MemoryStore) Token() (string, error) {
	sess, err := m.Load()
	if err != nil {
		return "", err
	}
	return sess.AuthToken, nil
}
