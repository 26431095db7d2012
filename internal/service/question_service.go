package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hirewise-backend/internal/config"
	"hirewise-backend/internal/llm"
	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
	"hirewise-backend/utilities"
)

type QuestionService interface {
	// GenerateForInterview replaces the interview's question set with a
	// freshly generated one. Only permitted while the interview is in the
	// created state.
	GenerateForInterview(ctx context.Context, interviewID uint, count int) ([]model.Question, error)
}

type questionService struct {
	interviewRepo repository.InterviewRepository
	resumeRepo    repository.ResumeRepository
	jobRepo       repository.JobRepository
	llmClient     llm.Client
	cfg           config.AssessmentConfig
	modelName     string
}

func NewQuestionService(
	interviewRepo repository.InterviewRepository,
	resumeRepo repository.ResumeRepository,
	jobRepo repository.JobRepository,
	llmClient llm.Client,
	cfg config.AssessmentConfig,
	modelName string,
) QuestionService {
	return &questionService{
		interviewRepo: interviewRepo,
		resumeRepo:    resumeRepo,
		jobRepo:       jobRepo,
		llmClient:     llmClient,
		cfg:           cfg,
		modelName:     modelName,
	}
}

func (s *questionService) GenerateForInterview(ctx context.Context, interviewID uint, count int) ([]model.Question, error) {
	interview, err := s.interviewRepo.GetInterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status != model.StatusCreated {
		return nil, fmt.Errorf("%w: questions can only be generated before the interview starts", ErrInvalidState)
	}

	if count <= 0 {
		count = interview.QuestionCount
	}
	if count <= 0 {
		count = s.cfg.DefaultQuestions
	}
	if count < s.cfg.MinQuestions {
		count = s.cfg.MinQuestions
	}
	if count > s.cfg.MaxQuestions {
		count = s.cfg.MaxQuestions
	}

	genCtx := s.promptContext(interview)

	questions, err := s.generate(ctx, genCtx, count)
	if err != nil {
		utilities.Warn("question generation fell back to the canned bank: %v", err)
		questions = FallbackQuestions(count)
	}

	if err := s.interviewRepo.ReplaceQuestions(interview.ID, questions); err != nil {
		return nil, err
	}

	interview.QuestionCount = len(questions)
	if err := s.interviewRepo.UpdateInterview(interview); err != nil {
		return nil, err
	}

	return s.interviewRepo.GetQuestions(interview.ID)
}

type generationContext struct {
	JobTitle        string
	JobDescription  string
	RequiredSkills  string
	ExperienceLevel string
	ResumeText      string
}

func (s *questionService) promptContext(interview *model.Interview) generationContext {
	var genCtx generationContext
	if interview.JobDescriptionID != nil {
		if jd, err := s.jobRepo.GetJobDescriptionByID(*interview.JobDescriptionID); err == nil {
			genCtx.JobTitle = jd.Title
			genCtx.JobDescription = jd.Description
			genCtx.RequiredSkills = jd.RequiredSkills
			genCtx.ExperienceLevel = jd.ExperienceLevel
		}
	}
	if interview.ResumeID != nil {
		if resume, err := s.resumeRepo.GetResumeByID(*interview.ResumeID); err == nil {
			genCtx.ResumeText = resume.ExtractedText
		}
	}
	return genCtx
}

// generatedQuestion is the shape the model is instructed to return.
type generatedQuestion struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Difficulty    string   `json:"difficulty"`
	IsMCQ         bool     `json:"is_mcq"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

func (s *questionService) generate(ctx context.Context, genCtx generationContext, count int) ([]model.Question, error) {
	prompt := buildGenerationPrompt(genCtx, count)

	response, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed []generatedQuestion
	if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("unparseable question payload: %w", err)
	}

	// A malformed response is never partially trusted: wrong count or any
	// structurally invalid item discards the whole batch.
	if len(parsed) != count {
		return nil, fmt.Errorf("model returned %d questions, expected %d", len(parsed), count)
	}

	questions := make([]model.Question, 0, count)
	for i, q := range parsed {
		if strings.TrimSpace(q.QuestionText) == "" {
			return nil, fmt.Errorf("question %d has empty text", i)
		}
		if q.IsMCQ {
			if len(q.Options) < 2 {
				return nil, fmt.Errorf("question %d has too few options", i)
			}
			if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
				return nil, fmt.Errorf("question %d has correct option out of range", i)
			}
		}
		questions = append(questions, model.Question{
			OrderIndex:    i,
			Text:          strings.TrimSpace(q.QuestionText),
			QuestionType:  normalizeQuestionType(q.QuestionType),
			Difficulty:    normalizeDifficulty(q.Difficulty),
			IsMCQ:         q.IsMCQ,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			GeneratedByAI: true,
			AIModel:       s.modelName,
		})
	}
	return questions, nil
}

func buildGenerationPrompt(genCtx generationContext, count int) string {
	var b strings.Builder
	b.WriteString("Generate a set of professional interview questions for a candidate interview.\n")
	fmt.Fprintf(&b, "Generate exactly %d questions.\n\n", count)
	b.WriteString("Requirements:\n")
	b.WriteString("- Mix multiple-choice and open-ended questions, roughly half of each\n")
	b.WriteString("- Mix technical, behavioral and communication questions relevant to the role\n")
	b.WriteString("- Vary the difficulty levels (easy, medium, hard)\n")
	b.WriteString("- Multiple-choice questions must have exactly 4 options and a zero-based correct_option index\n")
	b.WriteString("- Return ONLY a JSON array with this structure, no additional text:\n\n")
	b.WriteString(`[
  {
    "question_text": "The question text",
    "question_type": "technical|behavioral|communication|general",
    "difficulty": "easy|medium|hard",
    "is_mcq": true,
    "options": ["A", "B", "C", "D"],
    "correct_option": 0
  }
]`)
	b.WriteString("\n")

	if genCtx.JobTitle != "" {
		fmt.Fprintf(&b, "\nJob Title: %s", genCtx.JobTitle)
	}
	if genCtx.ExperienceLevel != "" {
		fmt.Fprintf(&b, "\nExperience Level: %s", genCtx.ExperienceLevel)
	}
	if genCtx.RequiredSkills != "" {
		fmt.Fprintf(&b, "\nRequired Skills: %s", genCtx.RequiredSkills)
	}
	if genCtx.JobDescription != "" {
		fmt.Fprintf(&b, "\n\nJob Description:\n%s", truncate(genCtx.JobDescription, 1000))
	}
	if genCtx.ResumeText != "" {
		fmt.Fprintf(&b, "\n\nCandidate Resume Summary:\n%s", truncate(genCtx.ResumeText, 1000))
	}

	b.WriteString("\n\nGenerate the questions now:")
	return b.String()
}

func normalizeQuestionType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case model.QuestionTechnical:
		return model.QuestionTechnical
	case model.QuestionBehavioral:
		return model.QuestionBehavioral
	case model.QuestionCommunication:
		return model.QuestionCommunication
	default:
		return model.QuestionGeneral
	}
}

func normalizeDifficulty(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}
