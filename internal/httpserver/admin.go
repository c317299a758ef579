package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			writeError(w, errors.New(errors.ErrCodeUnauthorized, "admin login required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, err := s.gate.Login(r.PostFormValue("password"))
	if err != nil {
		s.logger.Warn("admin login failed", "remote", r.RemoteAddr)
		s.renderProblem(w, r, err)
		return
	}
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	}
	if !sess.ExpiresAt.IsZero() {
		cookie.Expires = sess.ExpiresAt
	}
	http.SetCookie(w, cookie)
	s.logger.Info("admin login", "remote", r.RemoteAddr)
	redirect(w, r, "login", "")
}

// handleLogout ends the session and resets the label design, matching the
// admin panel's "reset on logout" behavior.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil && s.gate.Logout(c.Value) {
		s.settings.ResetStyle()
		s.logger.Info("admin logout")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	redirect(w, r, "logout", "")
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	st, err := parseStyle(r, s.settings.Style())
	if err == nil {
		err = s.settings.SetStyle(st)
	}
	if err != nil {
		s.renderProblem(w, r, err)
		return
	}
	s.logger.Info("label style updated")
	redirect(w, r, "style", r.PostFormValue("product"))
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.PostFormValue("url"))
	var ttl time.Duration
	if raw := strings.TrimSpace(r.PostFormValue("cache_seconds")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.renderProblem(w, r, errors.New(errors.ErrCodeInvalidInput, "cache duration must be a positive number of seconds"))
			return
		}
		ttl = time.Duration(n) * time.Second
	}
	if err := s.settings.SetSource(url, ttl); err != nil {
		s.renderProblem(w, r, err)
		return
	}
	snap := s.settings.Get()
	s.loader.Configure(snap.SheetURL, snap.CacheTTL)
	s.logger.Info("data source updated", "url", snap.SheetURL, "ttl", snap.CacheTTL)
	redirect(w, r, "source", "")
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.settings.Reset()
	snap := s.settings.Get()
	s.loader.Configure(snap.SheetURL, snap.CacheTTL)
	s.loader.Invalidate()
	s.logger.Info("settings reset")
	redirect(w, r, "reset", "")
}
