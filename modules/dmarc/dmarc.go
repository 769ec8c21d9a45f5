// Package dmarc checks a domain's DMARC posture by resolving the TXT record
// at _dmarc.<domain>. DNS failures of any kind are reported as "no DMARC":
// for risk purposes an unresolvable policy record and a missing one are the
// same finding.
package dmarc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds the DNS lookup.
const DefaultTimeout = 5 * time.Second

// Result holds the outcome of a DMARC check.
type Result struct {
	HasDMARC bool   `json:"has_dmarc"`
	Policy   string `json:"policy,omitempty"` // "none", "quarantine" or "reject"
	Domain   string `json:"domain"`
}

// Check is a function variable that can be overridden for testing.
var Check = checkImpl

// CheckConfig holds the configuration for the DMARC check.
type CheckConfig struct {
	Timeout  time.Duration
	Resolver *net.Resolver
}

// checkImpl resolves _dmarc.<domain> and looks for a record starting with
// v=DMARC1. The p= policy is extracted when present, defaulting to "none".
func checkImpl(ctx context.Context, domain string, config CheckConfig) (Result, error) {
	result := Result{Domain: domain}

	if strings.TrimSpace(domain) == "" {
		return result, fmt.Errorf("no domain provided")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	resolver := config.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	records, err := resolver.LookupTXT(lookupCtx, "_dmarc."+domain)
	if err != nil {
		return result, fmt.Errorf("dmarc lookup for %s failed: %w", domain, err)
	}

	for _, record := range records {
		txt := strings.ToLower(record)
		if !strings.HasPrefix(txt, "v=dmarc1") {
			continue
		}

		result.HasDMARC = true
		result.Policy = parsePolicy(txt)
		return result, nil
	}

	return result, nil
}

// parsePolicy extracts the p= policy from a lowercased DMARC record.
func parsePolicy(txt string) string {
	switch {
	case strings.Contains(txt, "p=reject"):
		return "reject"
	case strings.Contains(txt, "p=quarantine"):
		return "quarantine"
	default:
		return "none"
	}
}
