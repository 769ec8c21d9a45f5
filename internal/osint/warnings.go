package osint

// Warning severities, worst first.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// Check type identifiers used on warnings and stored with the vendor.
const (
	CheckRansomware = "ransomware"
	CheckSSL        = "ssl"
	CheckDMARC      = "dmarc"
)

// Warning is a human-readable finding attached to a vendor after a scan.
// Warnings are display-only; the scoring engine consumes the OSINTResults
// structure, not these.
type Warning struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Source         string `json:"source"`
	CheckedDomains string `json:"checked_domains,omitempty"`
}
