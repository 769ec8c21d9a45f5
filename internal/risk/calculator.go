package risk

import "math"

// Vulnerability calculates the standard-track vulnerability percentage from
// assessment answers. Returns 0-100 where 100 means fully vulnerable.
//
// Maturity answers run 1 (worst) to 5 (best) and are inverted to a
// vulnerability contribution of (6-a)/5, so a perfect answer still carries
// 20% residual vulnerability. Contributions are combined as a weighted mean
// (Critical=3x, High=2x, else 1x) and scaled to a percentage. No answers, or
// no answer matching a known question, is treated as worst case.
func Vulnerability(answers Answers, questions []Question, osint *OSINTResults) int {
	if len(answers) == 0 {
		return 100
	}

	totalWeight := 0.0
	weightedScore := 0.0

	for _, q := range questions {
		val, ok := answers[q.ID]
		if !ok {
			continue
		}
		normalized := float64(6-val) / 5

		weight := 1.0
		switch q.Weight {
		case "Critical":
			weight = 3
		case "High":
			weight = 2
		}

		weightedScore += normalized * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 100
	}

	vuln := (weightedScore / totalWeight) * 100

	// Rounded before the floors so a floor value is returned exactly.
	// math.Round breaks ties away from zero.
	return applyOSINTFloors(int(math.Round(vuln)), osint)
}

// applyOSINTFloors raises the vulnerability score to the documented minimum
// for each adverse OSINT signal. Floors never lower the score; when several
// apply the highest wins.
func applyOSINTFloors(vuln int, osint *OSINTResults) int {
	if osint.SSLFailing() && vuln < 80 {
		vuln = 80
	}
	if osint.DMARCMissing() && vuln < 60 {
		vuln = 60
	}
	return vuln
}

// ImpactLikelihood calculates the standard-track impact and likelihood pair
// (each 1-5) from assessment answers. Both default to 3.0 when there are no
// answers.
//
// Unlike Vulnerability this uses a plain unweighted mean of the answer
// values; the asymmetry mirrors the reference questionnaire design, where
// question weights express exposure rather than business impact. A confirmed
// ransomware leak-site hit forces likelihood to the maximum while leaving
// impact untouched; SSL and DMARC signals never move this pair.
func ImpactLikelihood(answers Answers, osint *OSINTResults) (impact, likelihood float64) {
	impact, likelihood = 3.0, 3.0

	if len(answers) > 0 {
		sum := 0.0
		for _, v := range answers {
			sum += float64(v)
		}
		avg := sum / float64(len(answers))

		// High maturity means low impact and likelihood.
		derived := clamp(6-avg/1.2, 1, 5)
		impact, likelihood = derived, derived
	}

	if osint.RansomwareHit() {
		likelihood = 5
	}

	return impact, likelihood
}

// clamp bounds v to the [lo, hi] interval.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
