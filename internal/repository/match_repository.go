package repository

import (
	"errors"

	"gorm.io/gorm"

	"hirewise-backend/internal/db"
	"hirewise-backend/internal/model"
)

type MatchRepository interface {
	GetMatch(jobDescriptionID, resumeID uint) (*model.ATSMatch, error)
	GetMatchByID(id uint) (*model.ATSMatch, error)
	CreateMatch(match *model.ATSMatch) error
	UpdateMatch(match *model.ATSMatch) error
	ListMatches(jobDescriptionID uint, status string, minScore float64) ([]model.ATSMatch, error)
	MatchedResumeIDs(jobDescriptionID uint) ([]uint, error)
}

type matchRepository struct{}

func NewMatchRepository() MatchRepository {
	return &matchRepository{}
}

func (r *matchRepository) GetMatch(jobDescriptionID, resumeID uint) (*model.ATSMatch, error) {
	var match model.ATSMatch
	err := db.GetDB().
		Where("job_description_id = ? AND resume_id = ?", jobDescriptionID, resumeID).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) GetMatchByID(id uint) (*model.ATSMatch, error) {
	var match model.ATSMatch
	err := db.GetDB().First(&match, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) CreateMatch(match *model.ATSMatch) error {
	return db.GetDB().Create(match).Error
}

func (r *matchRepository) UpdateMatch(match *model.ATSMatch) error {
	return db.GetDB().Save(match).Error
}

// ListMatches returns matches sorted by overall score descending.
// jobDescriptionID 0 means all job descriptions.
func (r *matchRepository) ListMatches(jobDescriptionID uint, status string, minScore float64) ([]model.ATSMatch, error) {
	var matches []model.ATSMatch
	tx := db.GetDB().Order("overall_score DESC, matched_at DESC")
	if jobDescriptionID != 0 {
		tx = tx.Where("job_description_id = ?", jobDescriptionID)
	}
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if minScore > 0 {
		tx = tx.Where("overall_score >= ?", minScore)
	}
	err := tx.Find(&matches).Error
	return matches, err
}

func (r *matchRepository) MatchedResumeIDs(jobDescriptionID uint) ([]uint, error) {
	var ids []uint
	err := db.GetDB().Model(&model.ATSMatch{}).
		Where("job_description_id = ?", jobDescriptionID).
		Pluck("resume_id", &ids).Error
	return ids, err
}
