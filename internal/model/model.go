package model

import "time"

// Interview lifecycle states. Transitions are monotonic:
// created -> in_progress -> {completed, cancelled}.
const (
	StatusCreated    = "created"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Question kinds.
const (
	QuestionTechnical     = "technical"
	QuestionBehavioral    = "behavioral"
	QuestionCommunication = "communication"
	QuestionGeneral       = "general"
)

// ATS match review states.
const (
	MatchPending  = "pending"
	MatchMatched  = "matched"
	MatchReviewed = "reviewed"
	MatchRejected = "rejected"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"password,omitempty"` // Exclude from JSON responses
	Role      string    `json:"role" gorm:"default:'recruiter'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resume holds the text already extracted by the external extraction
// service. The file itself never passes through this backend.
type Resume struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	OriginalFilename string    `json:"original_filename"`
	ExtractedText    string    `json:"extracted_text"`
	Status           string    `json:"status" gorm:"default:'extracted'"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type JobDescription struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"not null"`
	Company         string    `json:"company"`
	Description     string    `json:"description"`
	RequiredSkills  string    `json:"required_skills"`
	ExperienceLevel string    `json:"experience_level" gorm:"default:'mid'"` // entry, mid, senior, executive
	Location        string    `json:"location"`
	SalaryRange     string    `json:"salary_range"`
	ResumeID        *uint     `json:"resume_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Interview struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	SessionID        string     `json:"session_id" gorm:"not null;unique"`
	ResumeID         *uint      `json:"resume_id"`
	JobDescriptionID *uint      `json:"job_description_id"`
	Title            string     `json:"title"`
	Status           string     `json:"status" gorm:"default:'created'"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	QuestionCount    int        `json:"question_count"`
	CurrentQuestion  int        `json:"current_question_index" gorm:"default:0"`
	Questions        []Question `json:"questions" gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE"`
	Answers          []Answer   `json:"answers" gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Terminal reports whether the interview reached a final state.
func (i *Interview) Terminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusCancelled
}

// Deadline returns the wall-clock instant after which the interview
// auto-completes. Zero time when the interview has not started.
func (i *Interview) Deadline() time.Time {
	if i.StartedAt == nil || i.TimeLimitMinutes <= 0 {
		return time.Time{}
	}
	return i.StartedAt.Add(time.Duration(i.TimeLimitMinutes) * time.Minute)
}

type Question struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	InterviewID   uint      `json:"interview_id" gorm:"uniqueIndex:idx_interview_order,priority:1"`
	OrderIndex    int       `json:"order_index" gorm:"uniqueIndex:idx_interview_order,priority:2"`
	Text          string    `json:"text" gorm:"not null"`
	QuestionType  string    `json:"question_type" gorm:"default:'general'"`
	Difficulty    string    `json:"difficulty" gorm:"default:'medium'"`
	IsMCQ         bool      `json:"is_mcq"`
	Options       []string  `json:"options" gorm:"serializer:json"`
	CorrectOption int       `json:"-"` // never leaked to the candidate
	GeneratedByAI bool      `json:"generated_by_ai"`
	AIModel       string    `json:"ai_model"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Answer struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	InterviewID    uint      `json:"interview_id" gorm:"uniqueIndex:idx_interview_question,priority:1"`
	QuestionID     uint      `json:"question_id" gorm:"uniqueIndex:idx_interview_question,priority:2"`
	AnswerText     string    `json:"answer_text"`
	SelectedOption *int      `json:"selected_option"`
	IsCorrect      *bool     `json:"is_correct"`
	Score          float64   `json:"score"` // 0-10
	Evaluation     string    `json:"evaluation"`
	Strengths      string    `json:"strengths"`
	Improvements   string    `json:"improvements"`
	Evaluated      bool      `json:"evaluated"`
	AIEvaluated    bool      `json:"ai_evaluated"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type InterviewReport struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	InterviewID         uint      `json:"interview_id" gorm:"uniqueIndex"`
	OverallScore        float64   `json:"overall_score"`
	TechnicalScore      float64   `json:"technical_score"`
	BehavioralScore     float64   `json:"behavioral_score"`
	CommunicationScore  float64   `json:"communication_score"`
	Summary             string    `json:"summary"`
	Strengths           string    `json:"strengths"`
	AreasForImprovement string    `json:"areas_for_improvement"`
	Recommendations     string    `json:"recommendations"`
	TotalQuestions      int       `json:"total_questions"`
	QuestionsAnswered   int       `json:"questions_answered"`
	AverageAnswerLength float64   `json:"average_answer_length"`
	AIGenerated         bool      `json:"ai_generated"`
	GeneratedAt         time.Time `json:"generated_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ATSMatch struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	JobDescriptionID uint      `json:"job_description_id" gorm:"uniqueIndex:idx_job_resume,priority:1"`
	ResumeID         uint      `json:"resume_id" gorm:"uniqueIndex:idx_job_resume,priority:2"`
	OverallScore     float64   `json:"overall_score"` // 0-100
	SkillsScore      float64   `json:"skills_score"`
	ExperienceScore  float64   `json:"experience_score"`
	EducationScore   float64   `json:"education_score"`
	MatchAnalysis    string    `json:"match_analysis"`
	Strengths        string    `json:"strengths"`
	Gaps             string    `json:"gaps"`
	Recommendations  string    `json:"recommendations"`
	Status           string    `json:"status" gorm:"default:'matched'"`
	AIGenerated      bool      `json:"ai_generated"`
	MatchedAt        time.Time `json:"matched_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at"`
}
