package server

import (
	"net/http"

	"github.com/BriarPort/TILT/internal/risk"
)

type calculateRequest struct {
	AssessmentType string             `json:"assessment_type"`
	Answers        risk.Answers       `json:"answers"`
	Questions      []risk.Question    `json:"questions"`
	CloudScores    risk.Answers       `json:"cloudScores"`
	Criteria       []risk.Criterion   `json:"criteria"`
	OSINTResults   *risk.OSINTResults `json:"osintResults"`
}

// handleCalculate runs the scoring engine over the submitted answers.
// Questions and criteria default to the stored reference data when the
// request omits them.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	var req calculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.AssessmentType {
	case "standard":
		if req.Answers == nil {
			writeError(w, http.StatusBadRequest, "answers required for standard assessment")
			return
		}
		questions := req.Questions
		if len(questions) == 0 {
			stored, err := sess.ListQuestions()
			if err != nil {
				s.logger.Error("loading questions", "error", err)
				writeError(w, http.StatusInternalServerError, "loading questions failed")
				return
			}
			for _, q := range stored {
				questions = append(questions, q.ScoringQuestion())
			}
		}

		impact, likelihood := risk.ImpactLikelihood(req.Answers, req.OSINTResults)
		rating := risk.Rating{
			Vulnerability: risk.Vulnerability(req.Answers, questions, req.OSINTResults),
			Impact:        impact,
			Likelihood:    likelihood,
		}
		if s.metrics != nil {
			s.metrics.AssessmentsCalculated.WithLabelValues("standard").Inc()
		}
		writeJSON(w, http.StatusOK, rating)

	case "cloud":
		if req.CloudScores == nil {
			writeError(w, http.StatusBadRequest, "cloudScores required for cloud assessment")
			return
		}
		criteria := req.Criteria
		if len(criteria) == 0 {
			stored, err := sess.ListCriteria()
			if err != nil {
				s.logger.Error("loading criteria", "error", err)
				writeError(w, http.StatusInternalServerError, "loading criteria failed")
				return
			}
			for _, c := range stored {
				criteria = append(criteria, c.ScoringCriterion())
			}
		}
		if total := risk.CriteriaPointsTotal(criteria); total != risk.CloudMaxScore {
			s.logger.Warn("criteria points diverge from scorecard maximum",
				"points_total", total, "max_score", risk.CloudMaxScore)
		}

		rating := risk.CloudVulnerability(req.CloudScores, criteria, req.OSINTResults)
		if s.metrics != nil {
			s.metrics.AssessmentsCalculated.WithLabelValues("cloud").Inc()
		}
		writeJSON(w, http.StatusOK, rating)

	default:
		writeError(w, http.StatusBadRequest, "assessment_type must be standard or cloud")
	}
}
