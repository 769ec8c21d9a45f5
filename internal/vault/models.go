package vault

import (
	"time"

	"github.com/BriarPort/TILT/internal/osint"
	"github.com/BriarPort/TILT/internal/risk"
)

// Vendor is a vendor record with its current risk snapshot. Recalculating
// an assessment overwrites the snapshot fields in place; there is no
// versioning. Map- and slice-valued fields are stored as JSON text columns.
type Vendor struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	Name               string            `gorm:"not null" json:"name"`
	Status             string            `gorm:"not null" json:"status"`
	DataClassification *int              `json:"data_classification"`
	Impact             float64           `gorm:"not null" json:"impact"`
	Likelihood         float64           `gorm:"not null" json:"likelihood"`
	Vulnerability      int               `gorm:"not null" json:"vulnerability"`
	Weakness           string            `json:"weakness,omitempty"`
	Strength           string            `json:"strength,omitempty"`
	AssessmentType     string            `json:"assessment_type,omitempty"` // "standard" or "cloud"
	Answers            risk.Answers      `gorm:"serializer:json" json:"answers"`
	CloudScores        risk.Answers      `gorm:"serializer:json" json:"cloudScores"`
	OSINTWarnings      []osint.Warning   `gorm:"serializer:json" json:"osint_warnings"`
	OSINTURLs          map[string]string `gorm:"serializer:json" json:"osint_urls"`
	OSINTAcknowledged  bool              `json:"osint_acknowledged"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Question is a standard-track reference question aligned with NIST CSF 2.0.
type Question struct {
	ID             int               `gorm:"primaryKey" json:"id"`
	NISTControl    string            `json:"nist_control,omitempty"`
	Category       string            `json:"category,omitempty"`
	PolicyRef      string            `json:"policy_ref,omitempty"`
	Text           string            `gorm:"column:question;not null" json:"question"`
	Weight         string            `json:"weight,omitempty"`
	MaturityLevels map[string]string `gorm:"serializer:json" json:"maturity_levels"`
	Notes          string            `json:"notes,omitempty"`
}

// CloudCriterion is a cloud-scorecard reference criterion.
type CloudCriterion struct {
	ID             int               `gorm:"primaryKey" json:"id"`
	Category       string            `json:"category,omitempty"`
	Criterion      string            `gorm:"not null" json:"criterion"`
	Description    string            `json:"description,omitempty"`
	Criticality    string            `json:"criticality,omitempty"`
	Points         float64           `json:"points"`
	OSINTSource    string            `json:"osint_source,omitempty"`
	MaturityLevels map[string]string `gorm:"serializer:json" json:"maturity_levels"`
	Notes          string            `json:"notes,omitempty"`
}

// Setting is a key-value application setting.
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `json:"value"`
}

// ScoringQuestion converts the stored question to its scoring-engine form.
func (q Question) ScoringQuestion() risk.Question {
	return risk.Question{ID: q.ID, Weight: q.Weight}
}

// ScoringCriterion converts the stored criterion to its scoring-engine form.
func (c CloudCriterion) ScoringCriterion() risk.Criterion {
	return risk.Criterion{ID: c.ID, Points: c.Points, Criticality: c.Criticality}
}
