package admin

import (
	"sync"
	"time"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

// Snapshot is a copy of the current settings.
type Snapshot struct {
	Style    style.Style
	SheetURL string
	CacheTTL time.Duration
}

// Settings is the mutable runtime configuration. The zero value is not
// usable; call [NewSettings].
type Settings struct {
	mu       sync.RWMutex
	defaults Snapshot
	current  Snapshot
}

// NewSettings returns settings initialized to defaults, which are also what
// Reset and ResetStyle restore.
func NewSettings(defaults Snapshot) *Settings {
	return &Settings{defaults: defaults, current: defaults}
}

// Get returns a copy of the current settings.
func (s *Settings) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Style returns the current label style.
func (s *Settings) Style() style.Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Style
}

// Defaults returns the startup settings.
func (s *Settings) Defaults() Snapshot {
	return s.defaults
}

// SetStyle validates st and makes it current.
func (s *Settings) SetStyle(st style.Style) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Style = st
	return nil
}

// SetSource validates and stores a new sheet URL and cache duration. A
// non-positive ttl keeps the current duration.
func (s *Settings) SetSource(url string, ttl time.Duration) error {
	if err := errors.ValidateURL(url); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.SheetURL = url
	if ttl > 0 {
		s.current.CacheTTL = ttl
	}
	return nil
}

// ResetStyle restores the default style. Admin logout calls this.
func (s *Settings) ResetStyle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Style = s.defaults.Style
}

// Reset restores every setting to its default.
func (s *Settings) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.defaults
}
