package admin

import (
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

func TestHashPassword(t *testing.T) {
	if got := HashPassword("password"); got != DefaultPasswordHash {
		t.Errorf("HashPassword(password) = %s", got)
	}
	if HashPassword("Password") == DefaultPasswordHash {
		t.Error("hash should be case sensitive")
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"default hash", "", "password", true},
		{"default hash wrong password", "", "letmein", false},
		{"empty password", "", "", false},
		{"custom hash", HashPassword("s3cret"), "s3cret", true},
		{"custom hash uppercase", "  " + upper(HashPassword("s3cret")) + "\n", "s3cret", true},
		{"custom hash rejects default", HashPassword("s3cret"), "password", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGate(tt.hash)
			if err != nil {
				t.Fatalf("NewGate: %v", err)
			}
			if got := g.Authorize(tt.password); got != tt.want {
				t.Errorf("Authorize(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func TestNewGateInvalidHash(t *testing.T) {
	for _, h := range []string{"abc", "zz" + DefaultPasswordHash[2:]} {
		if _, err := NewGate(h); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("NewGate(%q) err = %v, want INVALID_CONFIG", h, err)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	g, _ := NewGate("")

	if _, err := g.Login("wrong"); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("Login(wrong) err = %v, want UNAUTHORIZED", err)
	}
	s, err := g.Login("password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !g.Check(s.ID) {
		t.Error("new session should be valid")
	}
	if g.Check("") || g.Check("not-a-session") {
		t.Error("unknown ids should not be valid")
	}
	if g.Active() != 1 {
		t.Errorf("Active = %d, want 1", g.Active())
	}
	if !g.Logout(s.ID) {
		t.Error("Logout should report the session existed")
	}
	if g.Check(s.ID) {
		t.Error("session should be gone after logout")
	}
	if g.Logout(s.ID) {
		t.Error("second Logout should report false")
	}
}

func TestSessionTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g, _ := NewGate("", WithSessionTTL(30*time.Minute), WithClock(func() time.Time { return now }))

	s, err := g.Login("password")
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(29 * time.Minute)
	if !g.Check(s.ID) {
		t.Error("session should be valid before its TTL")
	}
	now = now.Add(time.Minute)
	if g.Check(s.ID) {
		t.Error("session should expire at its TTL")
	}
	if g.Active() != 0 {
		t.Error("expired session should be removed")
	}
}

func TestSessionWithoutTTL(t *testing.T) {
	now := time.Now()
	g, _ := NewGate("", WithClock(func() time.Time { return now }))
	s, _ := g.Login("password")
	now = now.Add(365 * 24 * time.Hour)
	if !g.Check(s.ID) {
		t.Error("sessions without a TTL should not expire")
	}
}

func TestSettings(t *testing.T) {
	defaults := Snapshot{Style: style.Default(), SheetURL: "https://example.com/sheet.csv", CacheTTL: 5 * time.Minute}
	s := NewSettings(defaults)

	st := style.Default()
	st.TitleSize = 30
	if err := s.SetStyle(st); err != nil {
		t.Fatalf("SetStyle: %v", err)
	}
	if s.Style().TitleSize != 30 {
		t.Error("style change not applied")
	}

	bad := style.Default()
	bad.DPI = 0
	if err := s.SetStyle(bad); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("SetStyle(bad) err = %v, want INVALID_STYLE", err)
	}
	if s.Style().TitleSize != 30 {
		t.Error("invalid style should leave the current style untouched")
	}

	if err := s.SetSource("ftp://example.com/x", time.Minute); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetSource(ftp) err = %v, want INVALID_INPUT", err)
	}
	if err := s.SetSource("https://example.com/other.csv", 0); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	got := s.Get()
	if got.SheetURL != "https://example.com/other.csv" || got.CacheTTL != 5*time.Minute {
		t.Errorf("Get = %+v", got)
	}

	s.ResetStyle()
	if s.Style() != defaults.Style {
		t.Error("ResetStyle should restore the default style")
	}
	if s.Get().SheetURL != "https://example.com/other.csv" {
		t.Error("ResetStyle should keep the source")
	}

	s.Reset()
	if s.Get() != defaults {
		t.Errorf("Reset = %+v, want defaults", s.Get())
	}
}

func TestSettingsConcurrent(t *testing.T) {
	s := NewSettings(Snapshot{Style: style.Default()})
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := style.Default()
			st.TitleSize = float64(20 + i)
			_ = s.SetStyle(st)
			_ = s.Style()
			if i%4 == 0 {
				s.ResetStyle()
			}
		}()
	}
	wg.Wait()
	if err := s.Style().Validate(); err != nil {
		t.Errorf("style after concurrent updates is invalid: %v", err)
	}
}
