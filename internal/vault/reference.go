package vault

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ListQuestions returns all standard-track questions ordered by ID.
func (s *Session) ListQuestions() ([]Question, error) {
	var questions []Question
	if err := s.db.Order("id").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	return questions, nil
}

// SaveQuestion creates the question when its ID is zero, otherwise updates
// the existing row.
func (s *Session) SaveQuestion(q *Question) error {
	if q.ID == 0 {
		if err := s.db.Create(q).Error; err != nil {
			return fmt.Errorf("creating question: %w", err)
		}
		return nil
	}
	if err := s.db.Save(q).Error; err != nil {
		return fmt.Errorf("updating question %d: %w", q.ID, err)
	}
	return nil
}

// DeleteQuestion removes a question by ID.
func (s *Session) DeleteQuestion(id int) error {
	res := s.db.Delete(&Question{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting question %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCriteria returns all cloud-scorecard criteria ordered by ID.
func (s *Session) ListCriteria() ([]CloudCriterion, error) {
	var criteria []CloudCriterion
	if err := s.db.Order("id").Find(&criteria).Error; err != nil {
		return nil, fmt.Errorf("listing cloud criteria: %w", err)
	}
	return criteria, nil
}

// SaveCriterion creates the criterion when its ID is zero, otherwise
// updates the existing row.
func (s *Session) SaveCriterion(c *CloudCriterion) error {
	if c.ID == 0 {
		if err := s.db.Create(c).Error; err != nil {
			return fmt.Errorf("creating cloud criterion: %w", err)
		}
		return nil
	}
	if err := s.db.Save(c).Error; err != nil {
		return fmt.Errorf("updating cloud criterion %d: %w", c.ID, err)
	}
	return nil
}

// DeleteCriterion removes a criterion by ID.
func (s *Session) DeleteCriterion(id int) error {
	res := s.db.Delete(&CloudCriterion{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting cloud criterion %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Settings returns all settings as a map.
func (s *Session) Settings() (map[string]string, error) {
	var rows []Setting
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// SetSetting upserts a single setting.
func (s *Session) SetSetting(key, value string) error {
	setting := Setting{Key: key, Value: value}
	err := s.db.Save(&setting).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = s.db.Model(&Setting{}).Where("key = ?", key).Update("value", value).Error
	}
	if err != nil {
		return fmt.Errorf("saving setting %q: %w", key, err)
	}
	return nil
}
