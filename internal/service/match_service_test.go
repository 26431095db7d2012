package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirewise-backend/internal/config"
	"hirewise-backend/internal/model"
)

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		SkillsWeight:     0.5,
		ExperienceWeight: 0.3,
		EducationWeight:  0.2,
		MaxConcurrent:    1,
		OracleRPS:        1000,
	}
}

type matchFixture struct {
	svc     MatchService
	matches *memMatchRepo
	resumes *memResumeRepo
	jobs    *memJobRepo
}

func newMatchFixture(t *testing.T, oracle *fakeOracle) *matchFixture {
	t.Helper()
	f := &matchFixture{
		matches: newMemMatchRepo(),
		resumes: newMemResumeRepo(),
		jobs:    newMemJobRepo(),
	}
	f.svc = NewMatchService(f.matches, f.resumes, f.jobs, oracle, testMatchingConfig())
	return f
}

func (f *matchFixture) seedJob(t *testing.T) *model.JobDescription {
	t.Helper()
	jd := &model.JobDescription{Title: "Go Engineer", RequiredSkills: "go, postgres, docker"}
	require.NoError(t, f.jobs.CreateJobDescription(jd))
	return jd
}

func (f *matchFixture) seedResume(t *testing.T, text string) *model.Resume {
	t.Helper()
	resume := &model.Resume{OriginalFilename: "cv.pdf", ExtractedText: text, Status: "extracted"}
	require.NoError(t, f.resumes.CreateResume(resume))
	return resume
}

func TestMatchResumeComposesWeightedScore(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{
		`{"skills_score": 80, "experience_score": 60, "education_score": 40,
		  "match_analysis": "good fit", "strengths": "go", "gaps": "none", "recommendations": "interview"}`,
	}})
	jd := f.seedJob(t)
	resume := f.seedResume(t, "go developer")

	match, err := f.svc.MatchResume(context.Background(), jd.ID, resume.ID)
	require.NoError(t, err)

	// 0.5*80 + 0.3*60 + 0.2*40
	assert.Equal(t, 66.0, match.OverallScore)
	assert.Equal(t, 80.0, match.SkillsScore)
	assert.True(t, match.AIGenerated)
	assert.Equal(t, model.MatchMatched, match.Status)
	assert.Equal(t, "good fit", match.MatchAnalysis)
}

func TestMatchResumeClampsAndDefaultsSubScores(t *testing.T) {
	// education_score is absent and the others are out of range.
	f := newMatchFixture(t, &fakeOracle{responses: []string{
		`{"skills_score": 150, "experience_score": -10, "match_analysis": "odd output"}`,
	}})
	jd := f.seedJob(t)
	resume := f.seedResume(t, "go developer")

	match, err := f.svc.MatchResume(context.Background(), jd.ID, resume.ID)
	require.NoError(t, err)

	assert.Equal(t, 100.0, match.SkillsScore)
	assert.Equal(t, 0.0, match.ExperienceScore)
	assert.Equal(t, 0.0, match.EducationScore)
	assert.Equal(t, 50.0, match.OverallScore)
}

func TestMatchResumeFallsBackToKeywords(t *testing.T) {
	cases := []struct {
		name   string
		oracle *fakeOracle
	}{
		{"oracle down", &fakeOracle{err: errors.New("connection refused")}},
		{"garbage output", &fakeOracle{responses: []string{"the resume looks great to me"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newMatchFixture(t, tc.oracle)
			jd := f.seedJob(t)
			resume := f.seedResume(t, "Go and Postgres experience")

			match, err := f.svc.MatchResume(context.Background(), jd.ID, resume.ID)
			require.NoError(t, err, "the fallback path never errors")
			assert.False(t, match.AIGenerated)
			assert.InDelta(t, 66.67, match.SkillsScore, 0.01)
			assert.Equal(t, 50.0, match.ExperienceScore)
		})
	}
}

func TestMatchResumeUpserts(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{
		`{"skills_score": 10, "experience_score": 10, "education_score": 10}`,
		`{"skills_score": 90, "experience_score": 90, "education_score": 90}`,
	}})
	jd := f.seedJob(t)
	resume := f.seedResume(t, "go developer")

	first, err := f.svc.MatchResume(context.Background(), jd.ID, resume.ID)
	require.NoError(t, err)
	second, err := f.svc.MatchResume(context.Background(), jd.ID, resume.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-matching must overwrite the pair's single record")
	assert.Equal(t, 90.0, second.SkillsScore)

	all, err := f.svc.ListMatches(jd.ID, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMatchResumeRejectsEmptyResume(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{"{}"}})
	jd := f.seedJob(t)
	resume := f.seedResume(t, "   ")

	_, err := f.svc.MatchResume(context.Background(), jd.ID, resume.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMatchAllResumesCapturesPerItemErrors(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{
		`{"skills_score": 90, "experience_score": 90, "education_score": 90}`,
		`{"skills_score": 30, "experience_score": 30, "education_score": 30}`,
	}})
	jd := f.seedJob(t)
	first := f.seedResume(t, "junior developer")
	blank := f.seedResume(t, "  ") // listed as extracted, but unusable
	second := f.seedResume(t, "senior go developer")

	// MaxConcurrent of 1 serializes the batch, so the scripted responses
	// land on the resumes in creation order.
	result, err := f.svc.MatchAllResumes(context.Background(), jd.ID, false)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors[blank.ID], "extracted text")

	// The first resume drew the 90s response, so it sorts ahead of the
	// later, lower-scoring one.
	require.Len(t, result.Matches, 2)
	assert.Equal(t, first.ID, result.Matches[0].ResumeID)
	assert.Equal(t, second.ID, result.Matches[1].ResumeID)
	assert.Greater(t, result.Matches[0].OverallScore, result.Matches[1].OverallScore)
}

func TestMatchAllResumesCountsCreatedAndUpdated(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{
		`{"skills_score": 70, "experience_score": 70, "education_score": 70}`,
	}})
	jd := f.seedJob(t)
	seen := f.seedResume(t, "re-scored on the second pass")
	fresh := f.seedResume(t, "matched for the first time")

	_, err := f.svc.MatchResume(context.Background(), jd.ID, seen.ID)
	require.NoError(t, err)

	result, err := f.svc.MatchAllResumes(context.Background(), jd.ID, false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, result.Created+result.Updated, result.Succeeded)

	// The pre-matched pair keeps its single record.
	matches, err := f.svc.ListMatches(jd.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	got := map[uint]bool{}
	for _, m := range matches {
		got[m.ResumeID] = true
	}
	assert.True(t, got[seen.ID])
	assert.True(t, got[fresh.ID])
}

func TestMatchAllResumesUnmatchedOnly(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{
		`{"skills_score": 50, "experience_score": 50, "education_score": 50}`,
	}})
	jd := f.seedJob(t)
	already := f.seedResume(t, "already matched")
	fresh := f.seedResume(t, "not matched yet")

	require.NoError(t, f.matches.CreateMatch(&model.ATSMatch{
		JobDescriptionID: jd.ID,
		ResumeID:         already.ID,
		Status:           model.MatchMatched,
	}))

	result, err := f.svc.MatchAllResumes(context.Background(), jd.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Attempted)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, fresh.ID, result.Matches[0].ResumeID)
}

func TestMatchAllResumesUnknownJob(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{"{}"}})
	_, err := f.svc.MatchAllResumes(context.Background(), 99, false)
	assert.Error(t, err)
}

func TestUpdateMatchStatus(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{"{}"}})
	jd := f.seedJob(t)
	match := &model.ATSMatch{JobDescriptionID: jd.ID, ResumeID: 1, Status: model.MatchMatched}
	require.NoError(t, f.matches.CreateMatch(match))

	updated, err := f.svc.UpdateMatchStatus(match.ID, model.MatchReviewed)
	require.NoError(t, err)
	assert.Equal(t, model.MatchReviewed, updated.Status)

	_, err = f.svc.UpdateMatchStatus(match.ID, "archived")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListMatchesFilters(t *testing.T) {
	f := newMatchFixture(t, &fakeOracle{responses: []string{"{}"}})
	jd := f.seedJob(t)
	seed := []model.ATSMatch{
		{JobDescriptionID: jd.ID, ResumeID: 1, OverallScore: 80, Status: model.MatchMatched},
		{JobDescriptionID: jd.ID, ResumeID: 2, OverallScore: 40, Status: model.MatchRejected},
		{JobDescriptionID: jd.ID + 1, ResumeID: 3, OverallScore: 90, Status: model.MatchMatched},
	}
	for i := range seed {
		require.NoError(t, f.matches.CreateMatch(&seed[i]))
	}

	matches, err := f.svc.ListMatches(jd.ID, "", 0)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, 80.0, matches[0].OverallScore)

	matches, err = f.svc.ListMatches(jd.ID, model.MatchRejected, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = f.svc.ListMatches(0, "", 50)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
