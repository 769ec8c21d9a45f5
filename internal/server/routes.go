package server

import (
	"encoding/json"
	"net/http"
)

// Routes builds the full HTTP handler: API routes wrapped in session auth
// and request logging. Unlock, lock-status, health and metrics stay open.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthz)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Auth
	mux.HandleFunc("POST /api/v1/unlock", s.handleUnlock)
	mux.HandleFunc("GET /api/v1/lock-status", s.handleLockStatus)
	mux.HandleFunc("POST /api/v1/change-password", s.handleChangePassword)

	// Vendors
	mux.HandleFunc("GET /api/v1/vendors", s.handleListVendors)
	mux.HandleFunc("POST /api/v1/vendors", s.handleCreateVendor)
	mux.HandleFunc("GET /api/v1/vendors/{id}", s.handleGetVendor)
	mux.HandleFunc("PUT /api/v1/vendors/{id}", s.handleUpdateVendor)
	mux.HandleFunc("DELETE /api/v1/vendors/{id}", s.handleDeleteVendor)

	// Reference data
	mux.HandleFunc("GET /api/v1/questions/standard", s.handleListQuestions)
	mux.HandleFunc("POST /api/v1/questions/standard", s.handleSaveQuestion)
	mux.HandleFunc("DELETE /api/v1/questions/standard/{id}", s.handleDeleteQuestion)
	mux.HandleFunc("GET /api/v1/questions/cloud", s.handleListCriteria)
	mux.HandleFunc("POST /api/v1/questions/cloud", s.handleSaveCriterion)
	mux.HandleFunc("DELETE /api/v1/questions/cloud/{id}", s.handleDeleteCriterion)

	// Settings
	mux.HandleFunc("GET /api/v1/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/v1/settings", s.handleSaveSettings)

	// Scoring and OSINT
	mux.HandleFunc("POST /api/v1/assessment/calculate", s.handleCalculate)
	mux.HandleFunc("POST /api/v1/osint/scan/{id}", s.handleScanVendor)

	return LoggingMiddleware(s.logger)(s.authMiddleware(mux))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
