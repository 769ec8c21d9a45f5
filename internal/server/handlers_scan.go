package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/BriarPort/TILT/internal/osint"
	"github.com/BriarPort/TILT/internal/vault"
)

type scanResponse struct {
	osint.Report
	Vulnerability int `json:"vulnerability"`
}

// scanDomain derives the domain to probe. An explicit primary_domain wins;
// otherwise the vendor name is lowercased, stripped of spaces and suffixed
// with ".com" as a best-effort guess.
func scanDomain(vendor vault.Vendor) string {
	if d := strings.TrimSpace(vendor.OSINTURLs["primary_domain"]); d != "" {
		return d
	}
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(vendor.Name)), " ", "")
	if name == "" {
		return ""
	}
	return name + ".com"
}

func emailSubdomains(vendor vault.Vendor) []string {
	raw := vendor.OSINTURLs["email_domains"]
	if raw == "" {
		return nil
	}
	var domains []string
	for _, d := range strings.Split(raw, ",") {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

// handleScanVendor runs the OSINT checks for a stored vendor, persists the
// resulting warnings and re-applies the signal floors to the stored
// vulnerability score.
func (s *Server) handleScanVendor(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	if s.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not configured")
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

	domain := scanDomain(vendor)
	if domain == "" {
		writeError(w, http.StatusBadRequest, "vendor has no domain to scan")
		return
	}

	report := s.scanner.ScanVendor(r.Context(), osint.Target{
		VendorName:      vendor.Name,
		PrimaryDomain:   domain,
		DMARCSubdomains: emailSubdomains(vendor),
	})
	s.recordScanMetrics(report)

	vulnerability := vendor.Vulnerability
	switch {
	case report.Results.RansomwareHit():
		vulnerability = 100
	case report.Results.SSLFailing():
		if vulnerability < 80 {
			vulnerability = 80
		}
	}

	if err := sess.UpdateVendorOSINT(id, report.Warnings, vulnerability); err != nil {
		s.logger.Error("persisting scan results", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "persisting scan results failed")
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{Report: report, Vulnerability: vulnerability})
}

// recordScanMetrics counts the scan and any checks that fell back to their
// safe default.
func (s *Server) recordScanMetrics(report osint.Report) {
	if s.metrics == nil {
		return
	}
	s.metrics.ScansRun.Inc()
	for _, check := range report.Degraded {
		s.metrics.ChecksDegraded.WithLabelValues(check).Inc()
	}
}
