// Package risk implements the TILT scoring engine: pure functions that turn
// questionnaire answers and OSINT signals into vulnerability, impact and
// likelihood ratings. Nothing in this package performs I/O or holds state,
// so every function is safe to call concurrently.
package risk

import "encoding/json"

// Question is a standard-track questionnaire item. Answers reference
// questions by ID.
type Question struct {
	ID     int    `json:"id"`
	Weight string `json:"weight,omitempty"` // "Critical", "High", "Low" or empty
}

// Criterion is a cloud-track scorecard item. Points is the maximum score the
// criterion contributes when answered at full maturity.
type Criterion struct {
	ID          int     `json:"id"`
	Points      float64 `json:"points"`
	Criticality string  `json:"criticality,omitempty"` // "Critical" marks a hard gate
}

// Answers maps question or criterion IDs to maturity levels. Standard track
// uses 1 (worst) to 5 (best); cloud track uses 0 to 5 with missing entries
// treated as 0. JSON null entries mean unanswered and are dropped on
// decode, so they never reach the scoring functions as zeros.
type Answers map[int]int

// UnmarshalJSON decodes an answers object, discarding null-valued entries.
func (a *Answers) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw map[int]*int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	answers := make(Answers, len(raw))
	for id, val := range raw {
		if val != nil {
			answers[id] = *val
		}
	}
	*a = answers
	return nil
}

// OSINTResults carries the externally observed signals consumed by the
// scoring functions. Nil pointer fields mean the signal was not checked,
// which is distinct from a negative finding.
type OSINTResults struct {
	Ransomware *bool  `json:"ransomware"`
	SSL        string `json:"ssl,omitempty"` // "A", "B", "C", "F", "Expired" or empty
	DMARC      *bool  `json:"dmarc"`
}

// SSLFailing reports whether the certificate signal should floor the
// vulnerability score.
func (o *OSINTResults) SSLFailing() bool {
	return o != nil && (o.SSL == "F" || o.SSL == "Expired")
}

// DMARCMissing reports whether DMARC was checked and found absent.
func (o *OSINTResults) DMARCMissing() bool {
	return o != nil && o.DMARC != nil && !*o.DMARC
}

// RansomwareHit reports whether the vendor was found on a leak site.
func (o *OSINTResults) RansomwareHit() bool {
	return o != nil && o.Ransomware != nil && *o.Ransomware
}

// Rating is the standard-track risk output.
type Rating struct {
	Vulnerability int     `json:"vulnerability"`
	Impact        float64 `json:"impact"`
	Likelihood    float64 `json:"likelihood"`
}

// CloudRating is the cloud-track risk output. Impact and Likelihood are
// derived from the same score thresholds as Status, so the whole cloud
// scoring operation lives in one place.
type CloudRating struct {
	Score          int     `json:"score"`
	MaxScore       int     `json:"maxScore"`
	Vulnerability  int     `json:"vulnerability"`
	Status         string  `json:"status"`
	StatusColor    string  `json:"statusColor"`
	MissedCritical bool    `json:"missedCritical"`
	Impact         float64 `json:"impact"`
	Likelihood     float64 `json:"likelihood"`
}

// Cloud approval statuses, ordered worst to best.
const (
	StatusReject     = "REJECT (Critical Risk)"
	StatusRestricted = "Restricted (Deficient)"
	StatusStandard   = "Standard Approval"
	StatusElite      = "Elite (Pre-approved)"
)
