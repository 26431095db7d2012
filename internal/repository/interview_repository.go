package repository

import (
	"errors"

	"gorm.io/gorm"

	"hirewise-backend/internal/db"
	"hirewise-backend/internal/model"
)

var ErrNotFound = errors.New("record not found")

type InterviewRepository interface {
	CreateInterview(interview *model.Interview) error
	GetInterviewByID(id uint) (*model.Interview, error)
	ListInterviews(resumeID, jobDescriptionID uint) ([]model.Interview, error)
	UpdateInterview(interview *model.Interview) error
	ReplaceQuestions(interviewID uint, questions []model.Question) error
	GetQuestionByID(questionID uint) (*model.Question, error)
	GetQuestions(interviewID uint) ([]model.Question, error)
	UpsertAnswer(answer *model.Answer) error
	GetAnswers(interviewID uint) ([]model.Answer, error)
	SaveReport(report *model.InterviewReport) error
	GetReportByInterviewID(interviewID uint) (*model.InterviewReport, error)
}

type interviewRepository struct{}

func NewInterviewRepository() InterviewRepository {
	return &interviewRepository{}
}

func (r *interviewRepository) CreateInterview(interview *model.Interview) error {
	return db.GetDB().Create(interview).Error
}

func (r *interviewRepository) GetInterviewByID(id uint) (*model.Interview, error) {
	var interview model.Interview
	err := db.GetDB().
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index ASC") }).
		Preload("Answers").
		First(&interview, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *interviewRepository) ListInterviews(resumeID, jobDescriptionID uint) ([]model.Interview, error) {
	var interviews []model.Interview
	tx := db.GetDB().Order("created_at DESC")
	if resumeID != 0 {
		tx = tx.Where("resume_id = ?", resumeID)
	}
	if jobDescriptionID != 0 {
		tx = tx.Where("job_description_id = ?", jobDescriptionID)
	}
	err := tx.Find(&interviews).Error
	return interviews, err
}

func (r *interviewRepository) UpdateInterview(interview *model.Interview) error {
	return db.GetDB().Omit("Questions", "Answers").Save(interview).Error
}

// ReplaceQuestions swaps the whole question set atomically; regeneration is
// all-or-nothing.
func (r *interviewRepository) ReplaceQuestions(interviewID uint, questions []model.Question) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("interview_id = ?", interviewID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].InterviewID = interviewID
			questions[i].OrderIndex = i
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.Create(&questions).Error
	})
}

func (r *interviewRepository) GetQuestionByID(questionID uint) (*model.Question, error) {
	var question model.Question
	err := db.GetDB().First(&question, questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *interviewRepository) GetQuestions(interviewID uint) ([]model.Question, error) {
	var questions []model.Question
	err := db.GetDB().Where("interview_id = ?", interviewID).Order("order_index ASC").Find(&questions).Error
	return questions, err
}

// UpsertAnswer keeps at most one answer per (interview, question);
// resubmission overwrites in place.
func (r *interviewRepository) UpsertAnswer(answer *model.Answer) error {
	var existing model.Answer
	err := db.GetDB().
		Where("interview_id = ? AND question_id = ?", answer.InterviewID, answer.QuestionID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.GetDB().Create(answer).Error
	}
	if err != nil {
		return err
	}
	answer.ID = existing.ID
	answer.CreatedAt = existing.CreatedAt
	return db.GetDB().Save(answer).Error
}

func (r *interviewRepository) GetAnswers(interviewID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := db.GetDB().Where("interview_id = ?", interviewID).Find(&answers).Error
	return answers, err
}

// SaveReport enforces one report per interview; re-generation overwrites.
func (r *interviewRepository) SaveReport(report *model.InterviewReport) error {
	var existing model.InterviewReport
	err := db.GetDB().Where("interview_id = ?", report.InterviewID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.GetDB().Create(report).Error
	}
	if err != nil {
		return err
	}
	report.ID = existing.ID
	report.GeneratedAt = existing.GeneratedAt
	return db.GetDB().Save(report).Error
}

func (r *interviewRepository) GetReportByInterviewID(interviewID uint) (*model.InterviewReport, error) {
	var report model.InterviewReport
	err := db.GetDB().Where("interview_id = ?", interviewID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
