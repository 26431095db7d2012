package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
)

// fakeOracle scripts the language-model client. Responses are consumed in
// order; when the list runs dry the last one repeats.
type fakeOracle struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeOracle) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fake oracle has no scripted response")
	}
	response := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return response, nil
}

// memInterviewRepo is an in-memory InterviewRepository. Reads hand out
// copies the way a fresh database load would.
type memInterviewRepo struct {
	mu         sync.Mutex
	interviews map[uint]*model.Interview
	questions  map[uint]*model.Question
	answers    map[uint]*model.Answer
	reports    map[uint]*model.InterviewReport

	nextInterviewID uint
	nextQuestionID  uint
	nextAnswerID    uint
	nextReportID    uint

	saveReportCalls int
}

func newMemInterviewRepo() *memInterviewRepo {
	return &memInterviewRepo{
		interviews: map[uint]*model.Interview{},
		questions:  map[uint]*model.Question{},
		answers:    map[uint]*model.Answer{},
		reports:    map[uint]*model.InterviewReport{},
	}
}

func (r *memInterviewRepo) CreateInterview(interview *model.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextInterviewID++
	interview.ID = r.nextInterviewID
	stored := *interview
	r.interviews[interview.ID] = &stored
	return nil
}

func (r *memInterviewRepo) GetInterviewByID(id uint) (*model.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.interviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *stored
	out.Questions = r.questionsFor(id)
	out.Answers = r.answersFor(id)
	return &out, nil
}

func (r *memInterviewRepo) questionsFor(interviewID uint) []model.Question {
	var questions []model.Question
	for _, q := range r.questions {
		if q.InterviewID == interviewID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })
	return questions
}

func (r *memInterviewRepo) answersFor(interviewID uint) []model.Answer {
	var answers []model.Answer
	for _, a := range r.answers {
		if a.InterviewID == interviewID {
			answers = append(answers, *a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers
}

func (r *memInterviewRepo) ListInterviews(resumeID, jobDescriptionID uint) ([]model.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var interviews []model.Interview
	for _, iv := range r.interviews {
		if resumeID != 0 && (iv.ResumeID == nil || *iv.ResumeID != resumeID) {
			continue
		}
		if jobDescriptionID != 0 && (iv.JobDescriptionID == nil || *iv.JobDescriptionID != jobDescriptionID) {
			continue
		}
		interviews = append(interviews, *iv)
	}
	sort.Slice(interviews, func(i, j int) bool { return interviews[i].ID < interviews[j].ID })
	return interviews, nil
}

func (r *memInterviewRepo) UpdateInterview(interview *model.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interviews[interview.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *interview
	stored.Questions = nil
	stored.Answers = nil
	r.interviews[interview.ID] = &stored
	return nil
}

func (r *memInterviewRepo) ReplaceQuestions(interviewID uint, questions []model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, q := range r.questions {
		if q.InterviewID == interviewID {
			delete(r.questions, id)
		}
	}
	for i := range questions {
		r.nextQuestionID++
		questions[i].ID = r.nextQuestionID
		questions[i].InterviewID = interviewID
		questions[i].OrderIndex = i
		stored := questions[i]
		r.questions[stored.ID] = &stored
	}
	return nil
}

func (r *memInterviewRepo) GetQuestionByID(questionID uint) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[questionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *q
	return &out, nil
}

func (r *memInterviewRepo) GetQuestions(interviewID uint) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questionsFor(interviewID), nil
}

func (r *memInterviewRepo) UpsertAnswer(answer *model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.answers {
		if existing.InterviewID == answer.InterviewID && existing.QuestionID == answer.QuestionID {
			answer.ID = existing.ID
			stored := *answer
			r.answers[stored.ID] = &stored
			return nil
		}
	}
	r.nextAnswerID++
	answer.ID = r.nextAnswerID
	stored := *answer
	r.answers[stored.ID] = &stored
	return nil
}

func (r *memInterviewRepo) GetAnswers(interviewID uint) ([]model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.answersFor(interviewID), nil
}

func (r *memInterviewRepo) SaveReport(report *model.InterviewReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveReportCalls++
	if existing, ok := r.reports[report.InterviewID]; ok {
		report.ID = existing.ID
	} else {
		r.nextReportID++
		report.ID = r.nextReportID
	}
	stored := *report
	r.reports[report.InterviewID] = &stored
	return nil
}

func (r *memInterviewRepo) GetReportByInterviewID(interviewID uint) (*model.InterviewReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[interviewID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *report
	return &out, nil
}

type memResumeRepo struct {
	mu      sync.Mutex
	resumes map[uint]*model.Resume
	nextID  uint
}

func newMemResumeRepo() *memResumeRepo {
	return &memResumeRepo{resumes: map[uint]*model.Resume{}}
}

func (r *memResumeRepo) CreateResume(resume *model.Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	resume.ID = r.nextID
	stored := *resume
	r.resumes[resume.ID] = &stored
	return nil
}

func (r *memResumeRepo) GetResumeByID(id uint) (*model.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *resume
	return &out, nil
}

func (r *memResumeRepo) ListResumes() ([]model.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var resumes []model.Resume
	for _, resume := range r.resumes {
		resumes = append(resumes, *resume)
	}
	sort.Slice(resumes, func(i, j int) bool { return resumes[i].ID < resumes[j].ID })
	return resumes, nil
}

func (r *memResumeRepo) ListExtractedResumes() ([]model.Resume, error) {
	all, _ := r.ListResumes()
	var extracted []model.Resume
	for _, resume := range all {
		if resume.Status == "extracted" && resume.ExtractedText != "" {
			extracted = append(extracted, resume)
		}
	}
	return extracted, nil
}

type memJobRepo struct {
	mu     sync.Mutex
	jobs   map[uint]*model.JobDescription
	nextID uint
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[uint]*model.JobDescription{}}
}

func (r *memJobRepo) CreateJobDescription(jd *model.JobDescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	jd.ID = r.nextID
	stored := *jd
	r.jobs[jd.ID] = &stored
	return nil
}

func (r *memJobRepo) GetJobDescriptionByID(id uint) (*model.JobDescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jd, ok := r.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *jd
	return &out, nil
}

func (r *memJobRepo) ListJobDescriptions() ([]model.JobDescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jds []model.JobDescription
	for _, jd := range r.jobs {
		jds = append(jds, *jd)
	}
	sort.Slice(jds, func(i, j int) bool { return jds[i].ID < jds[j].ID })
	return jds, nil
}

func (r *memJobRepo) UpdateJobDescription(jd *model.JobDescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jd.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *jd
	r.jobs[jd.ID] = &stored
	return nil
}

func (r *memJobRepo) DeleteJobDescription(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

type memMatchRepo struct {
	mu      sync.Mutex
	matches map[uint]*model.ATSMatch
	nextID  uint
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{matches: map[uint]*model.ATSMatch{}}
}

func (r *memMatchRepo) GetMatch(jobDescriptionID, resumeID uint) (*model.ATSMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.JobDescriptionID == jobDescriptionID && m.ResumeID == resumeID {
			out := *m
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memMatchRepo) GetMatchByID(id uint) (*model.ATSMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (r *memMatchRepo) CreateMatch(match *model.ATSMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	match.ID = r.nextID
	stored := *match
	r.matches[match.ID] = &stored
	return nil
}

func (r *memMatchRepo) UpdateMatch(match *model.ATSMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *match
	r.matches[match.ID] = &stored
	return nil
}

func (r *memMatchRepo) ListMatches(jobDescriptionID uint, status string, minScore float64) ([]model.ATSMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []model.ATSMatch
	for _, m := range r.matches {
		if jobDescriptionID != 0 && m.JobDescriptionID != jobDescriptionID {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		if m.OverallScore < minScore {
			continue
		}
		matches = append(matches, *m)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].OverallScore > matches[j].OverallScore })
	return matches, nil
}

func (r *memMatchRepo) MatchedResumeIDs(jobDescriptionID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, m := range r.matches {
		if m.JobDescriptionID == jobDescriptionID {
			ids = append(ids, m.ResumeID)
		}
	}
	return ids, nil
}

// countingReportService records report generation triggers.
type countingReportService struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingReportService) GenerateReport(_ context.Context, interviewID uint) (*model.InterviewReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &model.InterviewReport{InterviewID: interviewID}, nil
}

func (s *countingReportService) GetReport(uint) (*model.InterviewReport, error) {
	return nil, repository.ErrNotFound
}

func (s *countingReportService) ExportPDF(uint) ([]byte, error) {
	return nil, repository.ErrNotFound
}

func (s *countingReportService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
