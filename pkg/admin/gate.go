package admin

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// DefaultPasswordHash is the SHA-256 of "password". Deployments are expected
// to replace it via admin.password_hash.
const DefaultPasswordHash = "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"

// HashPassword returns the lowercase SHA-256 hex digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// ValidHash reports whether h looks like a SHA-256 hex digest.
func ValidHash(h string) bool {
	if len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

// Session is an authenticated admin session.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time // zero means no expiry
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Gate checks the admin password and tracks sessions.
type Gate struct {
	hash []byte
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithSessionTTL expires sessions after ttl. Zero keeps them until logout.
func WithSessionTTL(ttl time.Duration) GateOption {
	return func(g *Gate) { g.ttl = ttl }
}

// WithClock sets the time source used for session expiry.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// NewGate returns a gate for the given SHA-256 hex digest. An empty hash
// uses [DefaultPasswordHash].
func NewGate(passwordHash string, opts ...GateOption) (*Gate, error) {
	passwordHash = strings.ToLower(strings.TrimSpace(passwordHash))
	if passwordHash == "" {
		passwordHash = DefaultPasswordHash
	}
	if !ValidHash(passwordHash) {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "admin password hash must be 64 hex characters")
	}
	g := &Gate{
		hash:     []byte(passwordHash),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Authorize reports whether password matches the stored hash.
func (g *Gate) Authorize(password string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), g.hash) == 1
}

// Login checks password and starts a session.
func (g *Gate) Login(password string) (*Session, error) {
	if !g.Authorize(password) {
		return nil, errors.New(errors.ErrCodeUnauthorized, "invalid password")
	}
	now := g.now()
	s := &Session{ID: uuid.NewString(), CreatedAt: now}
	if g.ttl > 0 {
		s.ExpiresAt = now.Add(g.ttl)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[s.ID] = s
	return s, nil
}

// Check reports whether id names a live session. Expired sessions are
// removed.
func (g *Gate) Check(id string) bool {
	if id == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[id]
	if !ok {
		return false
	}
	if s.IsExpired(g.now()) {
		delete(g.sessions, id)
		return false
	}
	return true
}

// Logout ends the session and reports whether it existed.
func (g *Gate) Logout(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.sessions[id]
	delete(g.sessions, id)
	return ok
}

// Active returns the number of live sessions.
func (g *Gate) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	n := 0
	for id, s := range g.sessions {
		if s.IsExpired(now) {
			delete(g.sessions, id)
			continue
		}
		n++
	}
	return n
}
