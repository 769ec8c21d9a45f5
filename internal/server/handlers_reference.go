package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/BriarPort/TILT/internal/vault"
)

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

func (s *Server) handleListQuestions(w http.ResponseWriter, _ *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	questions, err := sess.ListQuestions()
	if err != nil {
		s.logger.Error("listing questions", "error", err)
		writeError(w, http.StatusInternalServerError, "listing questions failed")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// handleSaveQuestion creates or updates a question: a zero ID creates.
func (s *Server) handleSaveQuestion(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	var q vault.Question
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if q.Text == "" {
		writeError(w, http.StatusBadRequest, "question text required")
		return
	}
	if err := sess.SaveQuestion(&q); err != nil {
		s.logger.Error("saving question", "error", err)
		writeError(w, http.StatusInternalServerError, "saving question failed")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	err = sess.DeleteQuestion(id)
	if errors.Is(err, vault.ErrNotFound) {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	if err != nil {
		s.logger.Error("deleting question", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "deleting question failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListCriteria(w http.ResponseWriter, _ *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	criteria, err := sess.ListCriteria()
	if err != nil {
		s.logger.Error("listing criteria", "error", err)
		writeError(w, http.StatusInternalServerError, "listing criteria failed")
		return
	}
	writeJSON(w, http.StatusOK, criteria)
}

func (s *Server) handleSaveCriterion(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	var c vault.CloudCriterion
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Criterion == "" {
		writeError(w, http.StatusBadRequest, "criterion name required")
		return
	}
	if err := sess.SaveCriterion(&c); err != nil {
		s.logger.Error("saving criterion", "error", err)
		writeError(w, http.StatusInternalServerError, "saving criterion failed")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCriterion(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid criterion id")
		return
	}
	err = sess.DeleteCriterion(id)
	if errors.Is(err, vault.ErrNotFound) {
		writeError(w, http.StatusNotFound, "criterion not found")
		return
	}
	if err != nil {
		s.logger.Error("deleting criterion", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "deleting criterion failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	settings, err := sess.Settings()
	if err != nil {
		s.logger.Error("listing settings", "error", err)
		writeError(w, http.StatusInternalServerError, "listing settings failed")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleSaveSettings upserts every key in the request body.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	var settings map[string]string
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for key, value := range settings {
		if err := sess.SetSetting(key, value); err != nil {
			s.logger.Error("saving setting", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "saving settings failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
