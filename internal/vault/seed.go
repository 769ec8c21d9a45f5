package vault

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

//go:embed data/questions_standard.json
var seedStandardQuestions []byte

//go:embed data/questions_cloud.json
var seedCloudCriteria []byte

const defaultOrgName = "Your Organisation"

// seedDefaults populates reference tables on a fresh database. Each table
// is seeded only when empty, so edits made through the API survive restarts.
func (s *Session) seedDefaults() error {
	var count int64
	if err := s.db.Model(&Question{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting questions: %w", err)
	}
	if count == 0 {
		var questions []Question
		if err := json.Unmarshal(seedStandardQuestions, &questions); err != nil {
			return fmt.Errorf("parsing standard question seed: %w", err)
		}
		if err := s.db.Create(&questions).Error; err != nil {
			return fmt.Errorf("seeding questions: %w", err)
		}
		s.logger.Info("seeded standard questions", "count", len(questions))
	}

	if err := s.db.Model(&CloudCriterion{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting criteria: %w", err)
	}
	if count == 0 {
		var criteria []CloudCriterion
		if err := json.Unmarshal(seedCloudCriteria, &criteria); err != nil {
			return fmt.Errorf("parsing cloud criteria seed: %w", err)
		}
		if err := s.db.Create(&criteria).Error; err != nil {
			return fmt.Errorf("seeding criteria: %w", err)
		}
		s.logger.Info("seeded cloud criteria", "count", len(criteria))
	}

	var setting Setting
	switch err := s.db.First(&setting, "key = ?", "orgName").Error; {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&Setting{Key: "orgName", Value: defaultOrgName}).Error; err != nil {
			return fmt.Errorf("seeding settings: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading settings: %w", err)
	}
	return nil
}
