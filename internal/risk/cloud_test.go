package risk

import "testing"

// referenceCriteria returns a scorecard whose points sum to CloudMaxScore.
func referenceCriteria() []Criterion {
	return []Criterion{
		{ID: 1, Points: 10, Criticality: "Critical"},
		{ID: 2, Points: 10, Criticality: "Critical"},
		{ID: 3, Points: 10},
		{ID: 4, Points: 10},
		{ID: 5, Points: 10},
		{ID: 6, Points: 5},
	}
}

// TestCloudVulnerability_FullMarks verifies a perfect scorecard lands in the
// Elite tier with zero vulnerability.
func TestCloudVulnerability_FullMarks(t *testing.T) {
	scores := Answers{1: 5, 2: 5, 3: 5, 4: 5, 5: 5, 6: 5}

	got := CloudVulnerability(scores, referenceCriteria(), nil)

	if got.Score != 55 {
		t.Errorf("Score = %d; expected 55", got.Score)
	}
	if got.MaxScore != CloudMaxScore {
		t.Errorf("MaxScore = %d; expected %d", got.MaxScore, CloudMaxScore)
	}
	if got.Vulnerability != 0 {
		t.Errorf("Vulnerability = %d; expected 0", got.Vulnerability)
	}
	if got.Status != StatusElite || got.StatusColor != "green" {
		t.Errorf("Status = %q/%q; expected Elite/green", got.Status, got.StatusColor)
	}
	if got.MissedCritical {
		t.Error("MissedCritical = true; expected false")
	}
	if got.Impact != 2 || got.Likelihood != 2 {
		t.Errorf("Impact/Likelihood = %v/%v; expected 2/2", got.Impact, got.Likelihood)
	}
}

// TestCloudVulnerability_EmptyScores verifies the unanswered scorecard is
// maximally vulnerable and rejected.
func TestCloudVulnerability_EmptyScores(t *testing.T) {
	got := CloudVulnerability(nil, referenceCriteria(), nil)

	if got.Score != 0 {
		t.Errorf("Score = %d; expected 0", got.Score)
	}
	if got.Vulnerability != 100 {
		t.Errorf("Vulnerability = %d; expected 100", got.Vulnerability)
	}
	if got.Status != StatusReject {
		t.Errorf("Status = %q; expected %q", got.Status, StatusReject)
	}
	if !got.MissedCritical {
		t.Error("MissedCritical = false; expected true for unanswered Critical criteria")
	}
	if got.Impact != 5 || got.Likelihood != 5 {
		t.Errorf("Impact/Likelihood = %v/%v; expected 5/5", got.Impact, got.Likelihood)
	}
}

// TestCloudVulnerability_MissedCriticalForcesReject verifies the hard gate:
// a zeroed Critical criterion rejects even a near-perfect score.
func TestCloudVulnerability_MissedCriticalForcesReject(t *testing.T) {
	// Everything at 5 except one Critical criterion at 0: score 45/55.
	scores := Answers{1: 5, 2: 0, 3: 5, 4: 5, 5: 5, 6: 5}

	got := CloudVulnerability(scores, referenceCriteria(), nil)

	if got.Score != 45 {
		t.Errorf("Score = %d; expected 45", got.Score)
	}
	if !got.MissedCritical {
		t.Error("MissedCritical = false; expected true")
	}
	if got.Status != StatusReject || got.StatusColor != "red" {
		t.Errorf("Status = %q/%q; expected REJECT/red despite score >= 45", got.Status, got.StatusColor)
	}
}

// TestCloudVulnerability_StatusBoundaries verifies scores landing exactly on
// a threshold take the higher tier (strict less-than comparisons).
func TestCloudVulnerability_StatusBoundaries(t *testing.T) {
	// A single non-critical criterion worth 55 points lets the maturity
	// score steer the total directly.
	criteria := []Criterion{{ID: 1, Points: 55}}

	tests := []struct {
		name     string
		total    float64 // desired total score
		maturity int
		points   float64
		status   string
		color    string
		tier     float64
	}{
		{"just below reject cut", 14, 1, 70, StatusReject, "red", 5},
		{"exactly 15 is restricted", 15, 1, 75, StatusRestricted, "amber", 4},
		{"exactly 30 is standard", 30, 2, 75, StatusStandard, "yellow", 3},
		{"exactly 45 is elite", 45, 3, 75, StatusElite, "green", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// maturity/5 * points == tt.total by construction.
			criteria[0].Points = tt.points
			got := CloudVulnerability(Answers{1: tt.maturity}, criteria, nil)

			if got.Status != tt.status || got.StatusColor != tt.color {
				t.Errorf("total %.0f: Status = %q/%q; expected %q/%q",
					tt.total, got.Status, got.StatusColor, tt.status, tt.color)
			}
			if got.Impact != tt.tier || got.Likelihood != tt.tier {
				t.Errorf("total %.0f: Impact/Likelihood = %v/%v; expected %v",
					tt.total, got.Impact, got.Likelihood, tt.tier)
			}
		})
	}
}

// TestCloudVulnerability_OSINT verifies the floors and the ransomware
// likelihood override on the cloud track.
func TestCloudVulnerability_OSINT(t *testing.T) {
	scores := Answers{1: 5, 2: 5, 3: 5, 4: 5, 5: 5, 6: 5}

	got := CloudVulnerability(scores, referenceCriteria(), &OSINTResults{SSL: "Expired"})
	if got.Vulnerability != 80 {
		t.Errorf("Vulnerability = %d; expected floor 80 for expired certificate", got.Vulnerability)
	}

	got = CloudVulnerability(scores, referenceCriteria(), &OSINTResults{DMARC: boolPtr(false)})
	if got.Vulnerability != 60 {
		t.Errorf("Vulnerability = %d; expected floor 60 for missing DMARC", got.Vulnerability)
	}

	got = CloudVulnerability(scores, referenceCriteria(), &OSINTResults{Ransomware: boolPtr(true)})
	if got.Likelihood != 5 {
		t.Errorf("Likelihood = %v; expected 5 with ransomware hit", got.Likelihood)
	}
	if got.Impact != 2 {
		t.Errorf("Impact = %v; expected 2, untouched by ransomware", got.Impact)
	}
}

// TestCriteriaPointsTotal verifies drift detection against CloudMaxScore.
func TestCriteriaPointsTotal(t *testing.T) {
	if got := CriteriaPointsTotal(referenceCriteria()); got != CloudMaxScore {
		t.Errorf("CriteriaPointsTotal = %v; expected %d", got, CloudMaxScore)
	}

	edited := append(referenceCriteria(), Criterion{ID: 7, Points: 10})
	if got := CriteriaPointsTotal(edited); got != 65 {
		t.Errorf("CriteriaPointsTotal = %v; expected 65 after edit", got)
	}
}
