package store

import (
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/google/uuid"
)

// LastDigestRun returns the most recent recorded digest fire, or nil when
// the digest has never fired.
func (s *Store) LastDigestRun() (*model.DigestRun, error) {
	var run model.DigestRun
	res := s.DB.Order("fired_at desc").First(&run)
	if res.RowsAffected == 0 {
		return nil, nil
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &run, nil
}

// RecordDigestRun persists a successful digest fire so the weekly trigger
// survives process restarts without re-firing within the same week.
func (s *Store) RecordDigestRun(firedAt time.Time, emailsSent int) error {
	run := model.DigestRun{
		Id:         uuid.New().String(),
		FiredAt:    firedAt,
		EmailsSent: emailsSent,
	}
	return s.DB.Create(&run).Error
}
