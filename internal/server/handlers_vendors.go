package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/BriarPort/TILT/internal/osint"
	"github.com/BriarPort/TILT/internal/risk"
	"github.com/BriarPort/TILT/internal/vault"
)

// vendorResponse is a vendor record plus osintResults reconstructed from
// its stored warnings, so the client sees the same signal shape the
// calculator consumes without a separate scan.
type vendorResponse struct {
	vault.Vendor
	OSINTResults risk.OSINTResults `json:"osintResults"`
}

// resultsFromWarnings rebuilds the negative OSINT signals implied by stored
// warnings. Absent warnings leave a signal unset rather than healthy, since
// warnings only record findings.
func resultsFromWarnings(warnings []osint.Warning) risk.OSINTResults {
	var results risk.OSINTResults
	for _, warning := range warnings {
		switch warning.Type {
		case osint.CheckRansomware:
			hit := true
			results.Ransomware = &hit
		case osint.CheckSSL:
			if warning.Severity == osint.SeverityHigh {
				results.SSL = "F"
			} else if results.SSL == "" {
				results.SSL = "C"
			}
		case osint.CheckDMARC:
			missing := false
			results.DMARC = &missing
		}
	}
	return results
}

func vendorID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	return uint(id), err
}

func (s *Server) handleListVendors(w http.ResponseWriter, _ *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	vendors, err := sess.ListVendors()
	if err != nil {
		s.logger.Error("listing vendors", "error", err)
		writeError(w, http.StatusInternalServerError, "listing vendors failed")
		return
	}

	out := make([]vendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, vendorResponse{Vendor: v, OSINTResults: resultsFromWarnings(v.OSINTWarnings)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	id, err := vendorID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vendor id")
		return
	}

	vendor, err := sess.GetVendor(id)
	if errors.Is(err, vault.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vendor not found")
		return
	}
	if err != nil {
		s.logger.Error("loading vendor", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "loading vendor failed")
		return
	}
	writeJSON(w, http.StatusOK, vendorResponse{Vendor: vendor, OSINTResults: resultsFromWarnings(vendor.OSINTWarnings)})
}

func (s *Server) handleCreateVendor(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	var vendor vault.Vendor
	if err := decodeJSON(r, &vendor); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if vendor.Name == "" {
		writeError(w, http.StatusBadRequest, "vendor name required")
		return
	}
	vendor.ID = 0

	if err := sess.CreateVendor(&vendor); err != nil {
		s.logger.Error("creating vendor", "error", err)
		writeError(w, http.StatusInternalServerError, "creating vendor failed")
		return
	}
	writeJSON(w, http.StatusCreated, vendor)
}

func (s *Server) handleUpdateVendor(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	id, err := vendorID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vendor id")
		return
	}

	var vendor vault.Vendor
	if err := decodeJSON(r, &vendor); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	vendor.ID = id

	err = sess.UpdateVendor(&vendor)
	if errors.Is(err, vault.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vendor not found")
		return
	}
	if err != nil {
		s.logger.Error("updating vendor", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "updating vendor failed")
		return
	}

	updated, err := sess.GetVendor(id)
	if err != nil {
		s.logger.Error("reloading vendor", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "reloading vendor failed")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteVendor(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	id, err := vendorID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vendor id")
		return
	}

	err = sess.DeleteVendor(id)
	if errors.Is(err, vault.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vendor not found")
		return
	}
	if err != nil {
		s.logger.Error("deleting vendor", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "deleting vendor failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
