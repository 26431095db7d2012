package repository

import (
	"errors"

	"gorm.io/gorm"

	"hirewise-backend/internal/db"
	"hirewise-backend/internal/model"
)

type ResumeRepository interface {
	CreateResume(resume *model.Resume) error
	GetResumeByID(id uint) (*model.Resume, error)
	ListResumes() ([]model.Resume, error)
	ListExtractedResumes() ([]model.Resume, error)
}

type resumeRepository struct{}

func NewResumeRepository() ResumeRepository {
	return &resumeRepository{}
}

func (r *resumeRepository) CreateResume(resume *model.Resume) error {
	return db.GetDB().Create(resume).Error
}

func (r *resumeRepository) GetResumeByID(id uint) (*model.Resume, error) {
	var resume model.Resume
	err := db.GetDB().First(&resume, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepository) ListResumes() ([]model.Resume, error) {
	var resumes []model.Resume
	err := db.GetDB().Order("created_at DESC").Find(&resumes).Error
	return resumes, err
}

// ListExtractedResumes returns resumes eligible for matching: text
// extraction finished and non-empty.
func (r *resumeRepository) ListExtractedResumes() ([]model.Resume, error) {
	var resumes []model.Resume
	err := db.GetDB().
		Where("status = ? AND extracted_text <> ''", "extracted").
		Find(&resumes).Error
	return resumes, err
}
