package repository

import (
	"errors"

	"gorm.io/gorm"

	"hirewise-backend/internal/db"
	"hirewise-backend/internal/model"
)

type JobRepository interface {
	CreateJobDescription(jd *model.JobDescription) error
	GetJobDescriptionByID(id uint) (*model.JobDescription, error)
	ListJobDescriptions() ([]model.JobDescription, error)
	UpdateJobDescription(jd *model.JobDescription) error
	DeleteJobDescription(id uint) error
}

type jobRepository struct{}

func NewJobRepository() JobRepository {
	return &jobRepository{}
}

func (r *jobRepository) CreateJobDescription(jd *model.JobDescription) error {
	return db.GetDB().Create(jd).Error
}

func (r *jobRepository) GetJobDescriptionByID(id uint) (*model.JobDescription, error) {
	var jd model.JobDescription
	err := db.GetDB().First(&jd, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &jd, nil
}

func (r *jobRepository) ListJobDescriptions() ([]model.JobDescription, error) {
	var jds []model.JobDescription
	err := db.GetDB().Order("created_at DESC").Find(&jds).Error
	return jds, err
}

func (r *jobRepository) UpdateJobDescription(jd *model.JobDescription) error {
	return db.GetDB().Save(jd).Error
}

func (r *jobRepository) DeleteJobDescription(id uint) error {
	return db.GetDB().Delete(&model.JobDescription{}, id).Error
}
