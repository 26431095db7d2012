package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hirewise-backend/internal/config"
	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
	"hirewise-backend/utilities"
)

var (
	// ErrInvalidState rejects an operation not allowed in the interview's
	// current lifecycle state.
	ErrInvalidState = errors.New("invalid interview state")
	// ErrValidation rejects malformed input before any state is touched.
	ErrValidation = errors.New("validation error")
)

type CreateInterviewInput struct {
	ResumeID         *uint
	JobDescriptionID *uint
	Title            string
	TimeLimitMinutes int
	QuestionCount    int
}

type AnswerPayload struct {
	SelectedOption *int
	AnswerText     string
}

type InterviewService interface {
	CreateInterview(input CreateInterviewInput) (*model.Interview, error)
	GetInterview(id uint) (*model.Interview, error)
	ListInterviews(resumeID, jobDescriptionID uint) ([]model.Interview, error)
	StartInterview(id uint) (*model.Interview, error)
	UpdateProgress(id uint, currentIndex, totalQuestions *int) (*model.Interview, error)
	CurrentQuestion(id uint) (*model.Interview, *model.Question, error)
	CompleteInterview(id uint) (*model.Interview, error)
	CancelInterview(id uint) (*model.Interview, error)
	SubmitAnswer(ctx context.Context, interviewID, questionID uint, payload AnswerPayload) (*model.Answer, error)
	Shutdown()
}

type answerKey struct {
	interviewID uint
	questionID  uint
}

type interviewService struct {
	interviewRepo repository.InterviewRepository
	resumeRepo    repository.ResumeRepository
	jobRepo       repository.JobRepository
	evaluations   EvaluationService
	reports       ReportService
	cfg           config.AssessmentConfig

	// mu guards every lifecycle transition and the timer table. Model
	// calls never run under it.
	mu     sync.Mutex
	timers map[uint]*time.Timer

	lockMu      sync.Mutex
	answerLocks map[answerKey]*sync.Mutex
}

func NewInterviewService(
	interviewRepo repository.InterviewRepository,
	resumeRepo repository.ResumeRepository,
	jobRepo repository.JobRepository,
	evaluations EvaluationService,
	reports ReportService,
	cfg config.AssessmentConfig,
) InterviewService {
	return &interviewService{
		interviewRepo: interviewRepo,
		resumeRepo:    resumeRepo,
		jobRepo:       jobRepo,
		evaluations:   evaluations,
		reports:       reports,
		cfg:           cfg,
		timers:        make(map[uint]*time.Timer),
		answerLocks:   make(map[answerKey]*sync.Mutex),
	}
}

func (s *interviewService) CreateInterview(input CreateInterviewInput) (*model.Interview, error) {
	if input.TimeLimitMinutes == 0 {
		input.TimeLimitMinutes = s.cfg.DefaultTimeLimitMinutes
	}
	if input.TimeLimitMinutes < 0 || input.TimeLimitMinutes > s.cfg.MaxTimeLimitMinutes {
		return nil, fmt.Errorf("%w: time limit must be between 1 and %d minutes", ErrValidation, s.cfg.MaxTimeLimitMinutes)
	}
	if input.QuestionCount == 0 {
		input.QuestionCount = s.cfg.DefaultQuestions
	}
	if input.QuestionCount < s.cfg.MinQuestions {
		input.QuestionCount = s.cfg.MinQuestions
	}
	if input.QuestionCount > s.cfg.MaxQuestions {
		input.QuestionCount = s.cfg.MaxQuestions
	}

	interview := &model.Interview{
		SessionID:        uuid.New().String(),
		ResumeID:         input.ResumeID,
		JobDescriptionID: input.JobDescriptionID,
		Title:            input.Title,
		Status:           model.StatusCreated,
		TimeLimitMinutes: input.TimeLimitMinutes,
		QuestionCount:    input.QuestionCount,
	}
	if interview.Title == "" {
		interview.Title = s.autoTitle(interview)
	}

	if err := s.interviewRepo.CreateInterview(interview); err != nil {
		return nil, err
	}
	return interview, nil
}

func (s *interviewService) autoTitle(interview *model.Interview) string {
	if interview.JobDescriptionID != nil {
		if jd, err := s.jobRepo.GetJobDescriptionByID(*interview.JobDescriptionID); err == nil {
			return "Interview for " + jd.Title
		}
	}
	if interview.ResumeID != nil {
		if resume, err := s.resumeRepo.GetResumeByID(*interview.ResumeID); err == nil {
			return "Interview - " + resume.OriginalFilename
		}
	}
	return "Interview"
}

func (s *interviewService) GetInterview(id uint) (*model.Interview, error) {
	return s.interviewRepo.GetInterviewByID(id)
}

func (s *interviewService) ListInterviews(resumeID, jobDescriptionID uint) ([]model.Interview, error) {
	return s.interviewRepo.ListInterviews(resumeID, jobDescriptionID)
}

// StartInterview moves created -> in_progress, records the start timestamp
// and arms the deadline timer.
func (s *interviewService) StartInterview(id uint) (*model.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interview, err := s.interviewRepo.GetInterviewByID(id)
	if err != nil {
		return nil, err
	}
	if interview.Status != model.StatusCreated {
		return nil, fmt.Errorf("%w: only a newly created interview can be started", ErrInvalidState)
	}

	now := time.Now()
	interview.Status = model.StatusInProgress
	interview.StartedAt = &now
	if err := s.interviewRepo.UpdateInterview(interview); err != nil {
		return nil, err
	}

	s.timers[id] = time.AfterFunc(time.Until(interview.Deadline()), func() {
		s.autoComplete(id)
	})

	return interview, nil
}

// UpdateProgress records where the candidate is in the question sequence.
// Either field may be omitted; the other is left untouched.
func (s *interviewService) UpdateProgress(id uint, currentIndex, totalQuestions *int) (*model.Interview, error) {
	if currentIndex != nil && *currentIndex < 0 {
		return nil, fmt.Errorf("%w: current_question_index cannot be negative", ErrValidation)
	}
	if totalQuestions != nil && *totalQuestions < 0 {
		return nil, fmt.Errorf("%w: total_questions cannot be negative", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	interview, err := s.interviewRepo.GetInterviewByID(id)
	if err != nil {
		return nil, err
	}
	if currentIndex != nil {
		interview.CurrentQuestion = *currentIndex
	}
	if totalQuestions != nil {
		interview.QuestionCount = *totalQuestions
	}
	if err := s.interviewRepo.UpdateInterview(interview); err != nil {
		return nil, err
	}
	return interview, nil
}

// CurrentQuestion resolves the question at the interview's progress index.
// A nil question (without error) means the index points past the set.
func (s *interviewService) CurrentQuestion(id uint) (*model.Interview, *model.Question, error) {
	interview, err := s.interviewRepo.GetInterviewByID(id)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.interviewRepo.GetQuestions(id)
	if err != nil {
		return nil, nil, err
	}
	for i := range questions {
		if questions[i].OrderIndex == interview.CurrentQuestion {
			return interview, &questions[i], nil
		}
	}
	return interview, nil, nil
}

// CompleteInterview is idempotent: once the interview is terminal, repeated
// calls return the terminal state without side effects. The caller that
// wins the transition triggers report generation exactly once.
func (s *interviewService) CompleteInterview(id uint) (*model.Interview, error) {
	interview, transitioned, err := s.finish(id, model.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if transitioned {
		utilities.GlobalEventBus.Publish(utilities.EventInterviewCompleted, interview)
		if _, err := s.reports.GenerateReport(context.Background(), interview.ID); err != nil {
			utilities.Error("report generation after completion failed for interview %d: %v", interview.ID, err)
		}
	}
	return interview, nil
}

// CancelInterview is administrative: it stops the deadline timer
// synchronously and blocks any further answer intake or report generation.
func (s *interviewService) CancelInterview(id uint) (*model.Interview, error) {
	interview, transitioned, err := s.finish(id, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if transitioned {
		utilities.GlobalEventBus.Publish(utilities.EventInterviewCancelled, interview)
	}
	return interview, nil
}

// finish performs a terminal transition under the state mutex. The deadline
// timer is stopped, not merely ignored, so a stale fire cannot re-trigger
// report generation.
func (s *interviewService) finish(id uint, terminal string) (*model.Interview, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interview, err := s.interviewRepo.GetInterviewByID(id)
	if err != nil {
		return nil, false, err
	}
	if interview.Terminal() {
		return interview, false, nil
	}
	if terminal == model.StatusCompleted && interview.Status != model.StatusInProgress {
		return nil, false, fmt.Errorf("%w: cannot complete an interview that has not started", ErrInvalidState)
	}

	now := time.Now()
	interview.Status = terminal
	interview.CompletedAt = &now
	if err := s.interviewRepo.UpdateInterview(interview); err != nil {
		return nil, false, err
	}

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}

	return interview, true, nil
}

// autoComplete is the deadline timer callback.
func (s *interviewService) autoComplete(id uint) {
	if _, err := s.CompleteInterview(id); err != nil {
		utilities.Error("auto-completion of interview %d failed: %v", id, err)
	}
}

// SubmitAnswer evaluates and upserts the answer for one question.
// Submissions for the same question are serialized; different questions of
// the same interview may be processed concurrently.
func (s *interviewService) SubmitAnswer(ctx context.Context, interviewID, questionID uint, payload AnswerPayload) (*model.Answer, error) {
	interview, err := s.interviewRepo.GetInterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status != model.StatusInProgress {
		return nil, fmt.Errorf("%w: answers are only accepted while the interview is in progress", ErrInvalidState)
	}

	question, err := s.interviewRepo.GetQuestionByID(questionID)
	if err != nil {
		return nil, err
	}
	if question.InterviewID != interviewID {
		return nil, fmt.Errorf("%w: question does not belong to this interview", ErrValidation)
	}

	if question.IsMCQ {
		if payload.SelectedOption == nil {
			return nil, fmt.Errorf("%w: selected_option is required for a multiple-choice question", ErrValidation)
		}
		if *payload.SelectedOption < 0 || *payload.SelectedOption >= len(question.Options) {
			return nil, fmt.Errorf("%w: selected_option out of range", ErrValidation)
		}
	} else if payload.AnswerText == "" {
		return nil, fmt.Errorf("%w: answer_text is required for an open question", ErrValidation)
	}

	lock := s.answerLock(interviewID, questionID)
	lock.Lock()
	defer lock.Unlock()

	answer := &model.Answer{
		InterviewID: interviewID,
		QuestionID:  questionID,
		AnswerText:  payload.AnswerText,
		Evaluated:   true,
	}

	if question.IsMCQ {
		answer.SelectedOption = payload.SelectedOption
		correct, score := s.evaluations.EvaluateMCQ(question, *payload.SelectedOption)
		answer.IsCorrect = &correct
		answer.Score = score
	} else {
		evaluation := s.evaluations.EvaluateFreeForm(ctx, question, payload.AnswerText, s.evaluationContext(interview))
		answer.Score = evaluation.Score
		answer.Evaluation = evaluation.Evaluation
		answer.Strengths = evaluation.Strengths
		answer.Improvements = evaluation.Improvements
		answer.AIEvaluated = evaluation.AIEvaluated
	}

	if err := s.interviewRepo.UpsertAnswer(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *interviewService) evaluationContext(interview *model.Interview) EvaluationContext {
	var evalCtx EvaluationContext
	if interview.JobDescriptionID != nil {
		if jd, err := s.jobRepo.GetJobDescriptionByID(*interview.JobDescriptionID); err == nil {
			evalCtx.JobDescription = jd.Description
			evalCtx.RequiredSkills = jd.RequiredSkills
		}
	}
	if interview.ResumeID != nil {
		if resume, err := s.resumeRepo.GetResumeByID(*interview.ResumeID); err == nil {
			evalCtx.ResumeText = resume.ExtractedText
		}
	}
	return evalCtx
}

// answerLock hands out the mutex serializing submissions for one question.
// Locks are never dropped on a terminal transition: a submission that passed
// the in_progress check may still hold one, and handing a second submission a
// fresh mutex would let both enter the critical section at once. The table
// lives until Shutdown.
func (s *interviewService) answerLock(interviewID, questionID uint) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	key := answerKey{interviewID: interviewID, questionID: questionID}
	if lock, ok := s.answerLocks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.answerLocks[key] = lock
	return lock
}

// Shutdown stops all outstanding deadline timers and drops the answer locks.
func (s *interviewService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}

	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	s.answerLocks = make(map[answerKey]*sync.Mutex)
}

// hasTimer reports whether an interview still owns a live deadline timer.
func (s *interviewService) hasTimer(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}
