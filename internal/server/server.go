// Package server exposes the REST API: unlock and session management,
// vendor and reference-data CRUD, assessment calculation and OSINT scans.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/BriarPort/TILT/internal/auth"
	"github.com/BriarPort/TILT/internal/config"
	"github.com/BriarPort/TILT/internal/observability"
	"github.com/BriarPort/TILT/internal/osint"
	"github.com/BriarPort/TILT/internal/vault"
)

// Server holds the API dependencies. The vault session is nil until the
// first successful unlock; handlers that need storage go through session().
type Server struct {
	cfg      *config.Config
	vaultCfg vault.Config
	logger   *slog.Logger
	tokens   *auth.TokenService
	scanner  *osint.Scanner
	metrics  *observability.Metrics

	mu   sync.RWMutex
	sess *vault.Session
}

// New assembles a Server. The scanner may be nil in tests that never hit
// the scan endpoint.
func New(cfg *config.Config, tokens *auth.TokenService, scanner *osint.Scanner, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		vaultCfg: vault.Config{DataDir: cfg.DataDir},
		logger:   logger,
		tokens:   tokens,
		scanner:  scanner,
		metrics:  metrics,
	}
}

// session returns the live vault session, or nil while locked.
func (s *Server) session() *vault.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// swapSession installs a new session, closing any previous one.
func (s *Server) swapSession(next *vault.Session) {
	s.mu.Lock()
	prev := s.sess
	s.sess = next
	s.mu.Unlock()
	if prev != nil {
		if err := prev.Close(); err != nil {
			s.logger.Warn("closing previous vault session", "error", err)
		}
	}
}

// Close releases the vault session if one is open.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil
	}
	err := s.sess.Close()
	s.sess = nil
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// requireSession writes a 401 and returns nil when the vault is locked.
func (s *Server) requireSession(w http.ResponseWriter) *vault.Session {
	sess := s.session()
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "vault is locked")
	}
	return sess
}
