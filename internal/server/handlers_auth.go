package server

import (
	"errors"
	"net/http"

	"github.com/BriarPort/TILT/internal/vault"
)

type unlockRequest struct {
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleUnlock verifies the master password, opens the vault and issues a
// session token. Unlocking while already open re-verifies the password and
// swaps in a fresh session.
func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password required")
		return
	}

	sess, err := vault.Unlock(s.vaultCfg, req.Password, s.logger)
	switch {
	case errors.Is(err, vault.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	case errors.Is(err, vault.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("unlock failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unlock failed")
		return
	}
	s.swapSession(sess)

	token, err := s.tokens.Issue()
	if err != nil {
		s.logger.Error("issuing session token", "error", err)
		writeError(w, http.StatusInternalServerError, "issuing session token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleLockStatus reports whether the vault is open and whether a master
// password exists yet. Open route so the UI can render the right prompt.
func (s *Server) handleLockStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"locked":        s.session() == nil,
		"needsPassword": vault.NeedsPassword(s.vaultCfg),
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "current and new passwords required")
		return
	}

	err := sess.ChangePassword(req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, vault.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "invalid password")
	case errors.Is(err, vault.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("changing password", "error", err)
		writeError(w, http.StatusInternalServerError, "changing password failed")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
