package risk

import "math"

// CloudMaxScore is the total points available on the reference cloud
// scorecard with every criterion answered at maturity 5. It is fixed rather
// than derived from the criteria list so that stored snapshots and status
// thresholds stay comparable across criteria edits; CriteriaPointsTotal lets
// callers detect when the live criteria have drifted from it.
const CloudMaxScore = 55

// Cloud score thresholds separating the approval tiers. Evaluated with
// strict less-than, so a score landing exactly on a threshold takes the
// higher tier.
const (
	cloudRejectBelow     = 15
	cloudRestrictedBelow = 30
	cloudStandardBelow   = 45
)

// CloudVulnerability scores a cloud scorecard. Maturity scores run 0-5 per
// criterion (missing entries count as 0) and are scaled by the criterion's
// points, so total score lands in [0, CloudMaxScore].
//
// A Critical criterion left at 0 or unanswered marks the whole assessment
// missedCritical, which forces REJECT regardless of the numeric score. The
// vulnerability percentage is the inverse of the score fraction with the
// same OSINT floors as the standard track. Impact and likelihood are derived
// from the rounded score on the same thresholds as the status tiers, with a
// ransomware hit forcing likelihood (and only likelihood) to 5.
func CloudVulnerability(scores Answers, criteria []Criterion, osint *OSINTResults) CloudRating {
	totalScore := 0.0
	missedCritical := false

	for _, c := range criteria {
		maturity, answered := scores[c.ID]
		totalScore += float64(maturity) / 5 * c.Points

		if c.Criticality == "Critical" && (!answered || maturity == 0) {
			missedCritical = true
		}
	}

	vuln := int(math.Round((1 - totalScore/CloudMaxScore) * 100))
	vuln = applyOSINTFloors(vuln, osint)

	var status, color string
	switch {
	case missedCritical || totalScore < cloudRejectBelow:
		status, color = StatusReject, "red"
	case totalScore < cloudRestrictedBelow:
		status, color = StatusRestricted, "amber"
	case totalScore < cloudStandardBelow:
		status, color = StatusStandard, "yellow"
	default:
		status, color = StatusElite, "green"
	}

	score := int(math.Round(totalScore))

	impact := cloudTier(score)
	likelihood := impact
	if osint.RansomwareHit() {
		likelihood = 5
	}

	return CloudRating{
		Score:          score,
		MaxScore:       CloudMaxScore,
		Vulnerability:  vuln,
		Status:         status,
		StatusColor:    color,
		MissedCritical: missedCritical,
		Impact:         impact,
		Likelihood:     likelihood,
	}
}

// cloudTier maps a rounded cloud score to the impact/likelihood value for
// its approval tier.
func cloudTier(score int) float64 {
	switch {
	case score < cloudRejectBelow:
		return 5
	case score < cloudRestrictedBelow:
		return 4
	case score < cloudStandardBelow:
		return 3
	default:
		return 2
	}
}

// CriteriaPointsTotal sums the points of the given criteria. When the result
// differs from CloudMaxScore the scorecard has been edited out of step with
// the status thresholds and scores will silently skew; callers should log
// the mismatch.
func CriteriaPointsTotal(criteria []Criterion) float64 {
	total := 0.0
	for _, c := range criteria {
		total += c.Points
	}
	return total
}
