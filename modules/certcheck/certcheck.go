// Package certcheck grades a domain's TLS certificate by its remaining
// lifetime. An unreachable host or failed handshake is treated as a failing
// certificate rather than an unknown.
package certcheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// DefaultTimeout bounds the TCP connect plus TLS handshake.
const DefaultTimeout = 5 * time.Second

// Result holds the outcome of a certificate check.
type Result struct {
	Valid         bool   `json:"valid"`
	DaysRemaining int    `json:"daysRemaining"`
	Grade         string `json:"grade"` // "A", "B", "C" or "F"
}

// Check is a function variable that can be overridden for testing.
var Check = checkImpl

// CheckConfig holds the configuration for the certificate check.
type CheckConfig struct {
	Timeout time.Duration
	Port    string
}

// checkImpl connects to the domain over TLS and grades the peer certificate
// by days until expiry: F below 7 days (or expired), C below 30, B below 60,
// A otherwise. Any connection error yields {Valid:false, Grade:"F"} along
// with the cause so callers can log it.
func checkImpl(ctx context.Context, domain string, config CheckConfig) (Result, error) {
	failed := Result{Valid: false, DaysRemaining: 0, Grade: "F"}

	if domain == "" {
		return failed, fmt.Errorf("no domain provided")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	port := config.Port
	if port == "" {
		port = "443"
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(domain, port))
	if err != nil {
		return failed, fmt.Errorf("tls connection to %s failed: %w", domain, err)
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return failed, fmt.Errorf("no peer certificate presented by %s", domain)
	}

	days := int(time.Until(certs[0].NotAfter).Hours() / 24)
	return Result{
		Valid:         days > 0,
		DaysRemaining: days,
		Grade:         GradeForDays(days),
	}, nil
}

// GradeForDays maps remaining certificate lifetime to a letter grade.
func GradeForDays(days int) string {
	switch {
	case days < 7:
		return "F"
	case days < 30:
		return "C"
	case days < 60:
		return "B"
	default:
		return "A"
	}
}
