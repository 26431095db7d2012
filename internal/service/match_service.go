package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"hirewise-backend/internal/config"
	"hirewise-backend/internal/llm"
	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
	"hirewise-backend/utilities"
)

// MatchScores is what a single scoring pass produces, before the overall
// score is composed from the configured weights.
type MatchScores struct {
	SkillsScore     float64
	ExperienceScore float64
	EducationScore  float64
	MatchAnalysis   string
	Strengths       string
	Gaps            string
	Recommendations string
	AIGenerated     bool
}

// BatchMatchResult summarizes one MatchAllResumes run. Created counts pairs
// matched for the first time, Updated counts re-scored existing records.
type BatchMatchResult struct {
	JobDescriptionID uint             `json:"job_description_id"`
	Attempted        int              `json:"attempted"`
	Succeeded        int              `json:"succeeded"`
	Created          int              `json:"created"`
	Updated          int              `json:"updated"`
	Failed           int              `json:"failed"`
	Errors           map[uint]string  `json:"errors,omitempty"`
	Matches          []model.ATSMatch `json:"matches"`
}

type MatchService interface {
	MatchResume(ctx context.Context, jobDescriptionID, resumeID uint) (*model.ATSMatch, error)
	MatchAllResumes(ctx context.Context, jobDescriptionID uint, unmatchedOnly bool) (*BatchMatchResult, error)
	ListMatches(jobDescriptionID uint, status string, minScore float64) ([]model.ATSMatch, error)
	UpdateMatchStatus(matchID uint, status string) (*model.ATSMatch, error)
}

type matchService struct {
	matchRepo  repository.MatchRepository
	resumeRepo repository.ResumeRepository
	jobRepo    repository.JobRepository
	llmClient  llm.Client
	cfg        config.MatchingConfig
	limiter    *rate.Limiter
}

func NewMatchService(
	matchRepo repository.MatchRepository,
	resumeRepo repository.ResumeRepository,
	jobRepo repository.JobRepository,
	llmClient llm.Client,
	cfg config.MatchingConfig,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		resumeRepo: resumeRepo,
		jobRepo:    jobRepo,
		llmClient:  llmClient,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.OracleRPS), 1),
	}
}

// MatchResume scores one resume against one job description and upserts the
// single match record for that pair.
func (s *matchService) MatchResume(ctx context.Context, jobDescriptionID, resumeID uint) (*model.ATSMatch, error) {
	match, _, err := s.matchResume(ctx, jobDescriptionID, resumeID)
	return match, err
}

// matchResume reports, alongside the match, whether the record was created
// rather than re-scored.
func (s *matchService) matchResume(ctx context.Context, jobDescriptionID, resumeID uint) (*model.ATSMatch, bool, error) {
	jd, err := s.jobRepo.GetJobDescriptionByID(jobDescriptionID)
	if err != nil {
		return nil, false, err
	}
	resume, err := s.resumeRepo.GetResumeByID(resumeID)
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(resume.ExtractedText) == "" {
		return nil, false, fmt.Errorf("%w: resume %d has no extracted text to match against", ErrValidation, resumeID)
	}

	scores := s.score(ctx, jd, resume)
	overall := s.cfg.SkillsWeight*scores.SkillsScore +
		s.cfg.ExperienceWeight*scores.ExperienceScore +
		s.cfg.EducationWeight*scores.EducationScore

	match, err := s.matchRepo.GetMatch(jobDescriptionID, resumeID)
	if errors.Is(err, repository.ErrNotFound) {
		match = &model.ATSMatch{JobDescriptionID: jobDescriptionID, ResumeID: resumeID}
		err = nil
	}
	if err != nil {
		return nil, false, err
	}

	match.OverallScore = round2(clampScore(overall, 0, 100))
	match.SkillsScore = scores.SkillsScore
	match.ExperienceScore = scores.ExperienceScore
	match.EducationScore = scores.EducationScore
	match.MatchAnalysis = scores.MatchAnalysis
	match.Strengths = scores.Strengths
	match.Gaps = scores.Gaps
	match.Recommendations = scores.Recommendations
	match.AIGenerated = scores.AIGenerated
	match.Status = model.MatchMatched

	created := match.ID == 0
	if created {
		err = s.matchRepo.CreateMatch(match)
	} else {
		err = s.matchRepo.UpdateMatch(match)
	}
	if err != nil {
		return nil, false, err
	}

	utilities.GlobalEventBus.Publish(utilities.EventMatchCompleted, match)
	return match, created, nil
}

// score runs the model and falls back to keyword matching whenever the
// model is unavailable or its output cannot be parsed.
func (s *matchService) score(ctx context.Context, jd *model.JobDescription, resume *model.Resume) MatchScores {
	if err := s.limiter.Wait(ctx); err != nil {
		return KeywordMatch(jd.RequiredSkills, resume.ExtractedText)
	}

	response, err := s.llmClient.Generate(ctx, buildMatchPrompt(jd, resume))
	if err != nil {
		utilities.Warn("match scoring fell back to keyword matching for resume %d: %v", resume.ID, err)
		return KeywordMatch(jd.RequiredSkills, resume.ExtractedText)
	}

	var parsed struct {
		SkillsScore     *float64 `json:"skills_score"`
		ExperienceScore *float64 `json:"experience_score"`
		EducationScore  *float64 `json:"education_score"`
		MatchAnalysis   string   `json:"match_analysis"`
		Strengths       string   `json:"strengths"`
		Gaps            string   `json:"gaps"`
		Recommendations string   `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &parsed); err != nil {
		utilities.Warn("unparseable match scores for resume %d, using keyword matching", resume.ID)
		return KeywordMatch(jd.RequiredSkills, resume.ExtractedText)
	}

	// A missing sub-score counts as zero rather than invalidating the result.
	sub := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return clampScore(*v, 0, 100)
	}
	return MatchScores{
		SkillsScore:     sub(parsed.SkillsScore),
		ExperienceScore: sub(parsed.ExperienceScore),
		EducationScore:  sub(parsed.EducationScore),
		MatchAnalysis:   parsed.MatchAnalysis,
		Strengths:       parsed.Strengths,
		Gaps:            parsed.Gaps,
		Recommendations: parsed.Recommendations,
		AIGenerated:     true,
	}
}

func buildMatchPrompt(jd *model.JobDescription, resume *model.Resume) string {
	var b strings.Builder
	b.WriteString("You are an applicant tracking system. Score how well the resume below fits the job. ")
	b.WriteString("Respond with minimal JSON only, using the structure ")
	b.WriteString(`{"skills_score": 0-100, "experience_score": 0-100, "education_score": 0-100, "match_analysis": "...", "strengths": "...", "gaps": "...", "recommendations": "..."}.`)
	b.WriteString("\n\nJob: ")
	b.WriteString(jd.Title)
	if jd.Company != "" {
		b.WriteString(" at ")
		b.WriteString(jd.Company)
	}
	fmt.Fprintf(&b, " (%s level)\nRequired skills: %s\nDescription: %s\n\nResume:\n%s\n",
		jd.ExperienceLevel, jd.RequiredSkills, truncate(jd.Description, 2000), truncate(resume.ExtractedText, 4000))
	return b.String()
}

// MatchAllResumes matches every extracted resume against the job, a bounded
// number at a time. A failure for one resume never aborts the batch.
func (s *matchService) MatchAllResumes(ctx context.Context, jobDescriptionID uint, unmatchedOnly bool) (*BatchMatchResult, error) {
	if _, err := s.jobRepo.GetJobDescriptionByID(jobDescriptionID); err != nil {
		return nil, err
	}
	resumes, err := s.resumeRepo.ListExtractedResumes()
	if err != nil {
		return nil, err
	}

	if unmatchedOnly {
		matchedIDs, err := s.matchRepo.MatchedResumeIDs(jobDescriptionID)
		if err != nil {
			return nil, err
		}
		matched := make(map[uint]bool, len(matchedIDs))
		for _, id := range matchedIDs {
			matched[id] = true
		}
		filtered := resumes[:0]
		for _, r := range resumes {
			if !matched[r.ID] {
				filtered = append(filtered, r)
			}
		}
		resumes = filtered
	}

	result := &BatchMatchResult{
		JobDescriptionID: jobDescriptionID,
		Attempted:        len(resumes),
		Errors:           map[uint]string{},
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.MaxConcurrent)
	)
	for _, resume := range resumes {
		wg.Add(1)
		sem <- struct{}{}
		go func(resumeID uint) {
			defer wg.Done()
			defer func() { <-sem }()

			match, created, err := s.matchResume(ctx, jobDescriptionID, resumeID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[resumeID] = err.Error()
				return
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			result.Matches = append(result.Matches, *match)
		}(resume.ID)
	}
	wg.Wait()

	result.Succeeded = len(result.Matches)
	result.Failed = len(result.Errors)
	sort.Slice(result.Matches, func(i, j int) bool {
		return result.Matches[i].OverallScore > result.Matches[j].OverallScore
	})
	return result, nil
}

func (s *matchService) ListMatches(jobDescriptionID uint, status string, minScore float64) ([]model.ATSMatch, error) {
	return s.matchRepo.ListMatches(jobDescriptionID, status, minScore)
}

var validMatchStatuses = map[string]bool{
	model.MatchPending:  true,
	model.MatchMatched:  true,
	model.MatchReviewed: true,
	model.MatchRejected: true,
}

func (s *matchService) UpdateMatchStatus(matchID uint, status string) (*model.ATSMatch, error) {
	if !validMatchStatuses[status] {
		return nil, fmt.Errorf("%w: unknown match status %q", ErrValidation, status)
	}
	match, err := s.matchRepo.GetMatchByID(matchID)
	if err != nil {
		return nil, err
	}
	match.Status = status
	if err := s.matchRepo.UpdateMatch(match); err != nil {
		return nil, err
	}
	return match, nil
}
