// Package osint aggregates the three external signal checks (ransomware
// leak-site mentions, TLS certificate health, DMARC posture) into the
// osint results structure consumed by the scoring engine.
//
// Every check is resilient: a network or parse failure degrades to that
// check's documented safe default and is logged with its cause, so a scan
// always produces a complete report. The checks run sequentially with a
// fixed delay between network calls to respect shared upstream rate limits;
// scans for different vendors may still run concurrently since the scanner
// keeps no per-scan state.
package osint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BriarPort/TILT/internal/risk"
	"github.com/BriarPort/TILT/internal/store"
	"github.com/BriarPort/TILT/modules/certcheck"
	"github.com/BriarPort/TILT/modules/dmarc"
	"github.com/BriarPort/TILT/modules/ransomwatch"
)

// DefaultScanDelay is the pause between consecutive network checks.
const DefaultScanDelay = 500 * time.Millisecond

// Target identifies the vendor to scan.
type Target struct {
	VendorName      string
	PrimaryDomain   string
	DMARCSubdomains []string // explicit email subdomains; empty falls back to the primary domain
}

// Report is the result of a full vendor scan. Degraded lists the checks
// that hit an upstream failure and left their fail-safe default in Results.
type Report struct {
	ScanID   string            `json:"scan_id"`
	Warnings []Warning         `json:"warnings"`
	Results  risk.OSINTResults `json:"osintResults"`
	Degraded []string          `json:"degraded,omitempty"`
}

// Scanner orchestrates the signal checks. The check functions are fields so
// tests can substitute fakes without touching the network.
type Scanner struct {
	feed       *ransomwatch.Client
	netCache   *store.Cache // short-TTL cache for DMARC/SSL lookups
	delay      time.Duration
	timeout    time.Duration
	logger     *slog.Logger
	sleep      func(time.Duration)
	checkCert  func(ctx context.Context, domain string, cfg certcheck.CheckConfig) (certcheck.Result, error)
	checkDMARC func(ctx context.Context, domain string, cfg dmarc.CheckConfig) (dmarc.Result, error)
}

// Config holds scanner construction options.
type Config struct {
	Feed      *ransomwatch.Client
	NetCache  *store.Cache
	ScanDelay time.Duration
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewScanner creates a Scanner wired to the real check modules.
func NewScanner(cfg Config) *Scanner {
	delay := cfg.ScanDelay
	if delay <= 0 {
		delay = DefaultScanDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		feed:       cfg.Feed,
		netCache:   cfg.NetCache,
		delay:      delay,
		timeout:    cfg.Timeout,
		logger:     logger,
		sleep:      time.Sleep,
		checkCert:  certcheck.Check,
		checkDMARC: dmarc.Check,
	}
}

// ScanVendor runs all checks for the target and merges their outputs. It
// never fails: degraded checks leave their safe default in the report.
func (s *Scanner) ScanVendor(ctx context.Context, target Target) Report {
	report := Report{
		ScanID:   uuid.NewString(),
		Warnings: []Warning{},
	}
	logger := s.logger.With("scan_id", report.ScanID, "domain", target.PrimaryDomain)

	if target.VendorName != "" || target.PrimaryDomain != "" {
		s.runRansomware(ctx, logger, target, &report)
		s.sleep(s.delay)
	}

	if target.PrimaryDomain != "" {
		s.runCertificate(ctx, logger, target.PrimaryDomain, &report)
		s.sleep(s.delay)
	}

	s.runDMARC(ctx, logger, target, &report)

	return report
}

// runRansomware checks the leak-site feed. Fetch failure degrades to a
// negative finding: absence of evidence, not evidence of compromise.
func (s *Scanner) runRansomware(ctx context.Context, logger *slog.Logger, target Target, report *Report) {
	found := false

	posts, err := s.feed.FetchPosts(ctx)
	if err != nil {
		logger.Warn("ransomware feed degraded", "error", err)
		report.Degraded = append(report.Degraded, CheckRansomware)
	}
	if len(posts) > 0 {
		found = ransomwatch.Match(posts, target.VendorName, target.PrimaryDomain)
	}

	report.Results.Ransomware = &found
	if found {
		report.Warnings = append(report.Warnings, Warning{
			Type:     CheckRansomware,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Vendor %q found in ransomware leak database", target.VendorName),
			Source:   "Ransomwatch GitHub",
		})
	}
}

// runCertificate grades the domain certificate, reusing a recent result
// from the short-TTL cache when available.
func (s *Scanner) runCertificate(ctx context.Context, logger *slog.Logger, domain string, report *Report) {
	cacheKey := "ssl_" + domain

	var result certcheck.Result
	if s.netCache == nil || !s.netCache.GetJSON(ctx, cacheKey, &result) {
		var err error
		result, err = s.checkCert(ctx, domain, certcheck.CheckConfig{Timeout: s.timeout})
		if err != nil {
			// Unreachable is graded F; the cause is only of interest here.
			logger.Warn("certificate check degraded", "error", err)
			report.Degraded = append(report.Degraded, CheckSSL)
		}
		if s.netCache != nil {
			_ = s.netCache.SetJSON(ctx, cacheKey, result)
		}
	}

	report.Results.SSL = result.Grade

	switch result.Grade {
	case "F":
		report.Warnings = append(report.Warnings, Warning{
			Type:     CheckSSL,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("SSL certificate expired or expiring soon (%d days)", result.DaysRemaining),
			Source:   "Certificate validation",
		})
	case "C":
		report.Warnings = append(report.Warnings, Warning{
			Type:     CheckSSL,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("SSL certificate expiring in %d days", result.DaysRemaining),
			Source:   "Certificate validation",
		})
	}
}

// runDMARC checks the explicit email subdomains when configured, falling
// back to the primary domain. The aggregate is positive when any checked
// domain publishes DMARC.
func (s *Scanner) runDMARC(ctx context.Context, logger *slog.Logger, target Target, report *Report) {
	domains := target.DMARCSubdomains
	if len(domains) == 0 {
		if target.PrimaryDomain == "" {
			return
		}
		domains = []string{target.PrimaryDomain}
	}

	results := make([]dmarc.Result, 0, len(domains))
	anyDegraded := false
	for i, domain := range domains {
		if i > 0 {
			s.sleep(s.delay)
		}
		result, degraded := s.lookupDMARC(ctx, logger, domain)
		results = append(results, result)
		anyDegraded = anyDegraded || degraded
	}
	if anyDegraded {
		report.Degraded = append(report.Degraded, CheckDMARC)
	}

	hasAny := false
	var missing []string
	for _, r := range results {
		if r.HasDMARC {
			hasAny = true
		} else {
			missing = append(missing, r.Domain)
		}
	}

	report.Results.DMARC = &hasAny

	checked := make([]string, len(results))
	for i, r := range results {
		checked[i] = r.Domain
	}
	checkedList := strings.Join(checked, ", ")

	switch {
	case !hasAny && len(target.DMARCSubdomains) > 0:
		report.Warnings = append(report.Warnings, Warning{
			Type:           CheckDMARC,
			Severity:       SeverityMedium,
			Message:        fmt.Sprintf("No DMARC record found on specified email subdomains (%s)", checkedList),
			Source:         "DNS TXT record check",
			CheckedDomains: checkedList,
		})
	case !hasAny:
		report.Warnings = append(report.Warnings, Warning{
			Type:           CheckDMARC,
			Severity:       SeverityMedium,
			Message:        fmt.Sprintf("No DMARC record found on primary domain (%s). Consider specifying email subdomains if emails are sent from subdomains.", target.PrimaryDomain),
			Source:         "DNS TXT record check",
			CheckedDomains: checkedList,
		})
	case len(missing) > 0:
		report.Warnings = append(report.Warnings, Warning{
			Type:           CheckDMARC,
			Severity:       SeverityLow,
			Message:        fmt.Sprintf("Some email subdomains missing DMARC: %s", strings.Join(missing, ", ")),
			Source:         "DNS TXT record check",
			CheckedDomains: checkedList,
		})
	}
}

// lookupDMARC resolves one domain through the short-TTL cache. The second
// return is true when the lookup itself failed rather than finding no
// record.
func (s *Scanner) lookupDMARC(ctx context.Context, logger *slog.Logger, domain string) (dmarc.Result, bool) {
	cacheKey := "dmarc_" + domain

	var result dmarc.Result
	if s.netCache != nil && s.netCache.GetJSON(ctx, cacheKey, &result) {
		return result, false
	}

	result, err := s.checkDMARC(ctx, domain, dmarc.CheckConfig{Timeout: s.timeout})
	if err != nil {
		// DNS errors mean no DMARC; already reflected in the zero result.
		logger.Debug("dmarc lookup degraded", "check_domain", domain, "error", err)
		return result, true
	}
	if s.netCache != nil {
		_ = s.netCache.SetJSON(ctx, cacheKey, result)
	}
	return result, false
}
