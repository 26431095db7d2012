package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirewise-backend/internal/model"
)

const validQuestionPayload = `[
  {"question_text": "What is a goroutine?", "question_type": "technical", "difficulty": "easy", "is_mcq": false},
  {"question_text": "Pick the concurrency-safe option.", "question_type": "technical", "difficulty": "medium",
   "is_mcq": true, "options": ["A", "B", "C", "D"], "correct_option": 1}
]`

type questionFixture struct {
	svc    QuestionService
	repo   *memInterviewRepo
	oracle *fakeOracle
}

func newQuestionFixture(t *testing.T, oracle *fakeOracle) *questionFixture {
	t.Helper()
	repo := newMemInterviewRepo()
	return &questionFixture{
		svc:    NewQuestionService(repo, newMemResumeRepo(), newMemJobRepo(), oracle, testAssessmentConfig(), "mistral"),
		repo:   repo,
		oracle: oracle,
	}
}

func (f *questionFixture) createInterview(t *testing.T, status string, count int) *model.Interview {
	t.Helper()
	interview := &model.Interview{SessionID: "s", Status: status, QuestionCount: count, TimeLimitMinutes: 30}
	require.NoError(t, f.repo.CreateInterview(interview))
	return interview
}

func TestGenerateQuestionsFromOracle(t *testing.T) {
	f := newQuestionFixture(t, &fakeOracle{responses: []string{"```json\n" + validQuestionPayload + "\n```"}})
	interview := f.createInterview(t, model.StatusCreated, 2)

	questions, err := f.svc.GenerateForInterview(context.Background(), interview.ID, 2)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, "What is a goroutine?", questions[0].Text)
	assert.False(t, questions[0].IsMCQ)
	assert.True(t, questions[0].GeneratedByAI)
	assert.Equal(t, "mistral", questions[0].AIModel)

	assert.True(t, questions[1].IsMCQ)
	assert.Len(t, questions[1].Options, 4)
	assert.Equal(t, 1, questions[1].CorrectOption)
	assert.Equal(t, []int{0, 1}, []int{questions[0].OrderIndex, questions[1].OrderIndex})
}

func TestGenerateQuestionsFallsBackWhole(t *testing.T) {
	cases := []struct {
		name   string
		oracle *fakeOracle
	}{
		{"oracle down", &fakeOracle{err: errors.New("connection refused")}},
		{"not json", &fakeOracle{responses: []string{"Here are some questions for you!"}}},
		{"wrong count", &fakeOracle{responses: []string{`[{"question_text": "only one", "is_mcq": false}]`}}},
		{"empty text", &fakeOracle{responses: []string{`[{"question_text": "ok", "is_mcq": false}, {"question_text": "  ", "is_mcq": false}]`}}},
		{"mcq too few options", &fakeOracle{responses: []string{`[{"question_text": "a", "is_mcq": false}, {"question_text": "b", "is_mcq": true, "options": ["only"], "correct_option": 0}]`}}},
		{"mcq bad correct index", &fakeOracle{responses: []string{`[{"question_text": "a", "is_mcq": false}, {"question_text": "b", "is_mcq": true, "options": ["x", "y"], "correct_option": 5}]`}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newQuestionFixture(t, tc.oracle)
			interview := f.createInterview(t, model.StatusCreated, 2)

			// Never partial: any defect discards the batch and the whole
			// set comes from the canned bank instead.
			questions, err := f.svc.GenerateForInterview(context.Background(), interview.ID, 2)
			require.NoError(t, err)
			require.Len(t, questions, 2)
			for _, q := range questions {
				assert.False(t, q.GeneratedByAI)
				assert.NotEmpty(t, q.Text)
			}
		})
	}
}

func TestGenerateQuestionsClampsCount(t *testing.T) {
	f := newQuestionFixture(t, &fakeOracle{err: errors.New("down")})
	interview := f.createInterview(t, model.StatusCreated, 0)

	questions, err := f.svc.GenerateForInterview(context.Background(), interview.ID, 99)
	require.NoError(t, err)
	assert.Len(t, questions, 10)

	updated, err := f.repo.GetInterviewByID(interview.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.QuestionCount)
}

func TestGenerateQuestionsDefaultsCount(t *testing.T) {
	f := newQuestionFixture(t, &fakeOracle{err: errors.New("down")})
	interview := f.createInterview(t, model.StatusCreated, 0)

	questions, err := f.svc.GenerateForInterview(context.Background(), interview.ID, 0)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestGenerateQuestionsOnlyBeforeStart(t *testing.T) {
	f := newQuestionFixture(t, &fakeOracle{err: errors.New("down")})
	interview := f.createInterview(t, model.StatusInProgress, 2)

	_, err := f.svc.GenerateForInterview(context.Background(), interview.ID, 2)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGenerateQuestionsReplacesExisting(t *testing.T) {
	f := newQuestionFixture(t, &fakeOracle{responses: []string{validQuestionPayload}})
	interview := f.createInterview(t, model.StatusCreated, 2)
	require.NoError(t, f.repo.ReplaceQuestions(interview.ID, []model.Question{
		{Text: "old question one"}, {Text: "old question two"}, {Text: "old question three"},
	}))

	questions, err := f.svc.GenerateForInterview(context.Background(), interview.ID, 2)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.NotContains(t, q.Text, "old question")
	}
}
