package service

import (
	"fmt"
	"math"
	"strings"

	"hirewise-backend/internal/model"
)

// Deterministic fallbacks used whenever the language model is unavailable
// or returns unusable output. Everything in this file is a pure function of
// its inputs.

// A heuristic evaluation must never claim high confidence.
const fallbackScoreCeiling = 6.0

// Neutral sub-scores for dimensions a keyword match cannot infer from free
// text (seniority, degrees).
const neutralMatchScore = 50.0

var fallbackQuestionBank = []model.Question{
	{
		Text:         "Which of the following best describes your approach when production breaks and the cause is unknown?",
		QuestionType: model.QuestionTechnical,
		Difficulty:   "medium",
		IsMCQ:        true,
		Options: []string{
			"Restart everything and hope the issue clears",
			"Reproduce, isolate the failing component, then fix with a test",
			"Roll back immediately without investigating",
			"Escalate to a teammate before gathering any data",
		},
		CorrectOption: 1,
	},
	{
		Text:         "A teammate strongly disagrees with your design in a review. What is the most constructive first step?",
		QuestionType: model.QuestionBehavioral,
		Difficulty:   "easy",
		IsMCQ:        true,
		Options: []string{
			"Merge anyway since you wrote the code",
			"Ask them to walk you through their concern and the trade-offs they see",
			"Rewrite the design to match their preference without discussion",
			"Defer the decision to a manager",
		},
		CorrectOption: 1,
	},
	{
		Text:         "Which practice most improves the reliability of a change you are shipping?",
		QuestionType: model.QuestionTechnical,
		Difficulty:   "easy",
		IsMCQ:        true,
		Options: []string{
			"Writing automated tests that cover the changed behavior",
			"Increasing the deployment frequency",
			"Skipping code review to ship faster",
			"Testing only on your local machine",
		},
		CorrectOption: 0,
	},
	{
		Text:         "Please introduce yourself and tell us about your professional background.",
		QuestionType: model.QuestionGeneral,
		Difficulty:   "easy",
	},
	{
		Text:         "Describe a challenging project you worked on and how you overcame the obstacles.",
		QuestionType: model.QuestionBehavioral,
		Difficulty:   "medium",
	},
	{
		Text:         "How do you explain a complex technical decision to a non-technical stakeholder?",
		QuestionType: model.QuestionCommunication,
		Difficulty:   "medium",
	},
	{
		Text:         "Tell me about a time when you had to learn a new technology quickly.",
		QuestionType: model.QuestionBehavioral,
		Difficulty:   "medium",
	},
	{
		Text:         "What is your approach to problem-solving when requirements are ambiguous?",
		QuestionType: model.QuestionTechnical,
		Difficulty:   "medium",
	},
}

// FallbackQuestions returns n generic, role-agnostic questions, cycling the
// bank when n exceeds it. Questions are tagged as not AI-sourced.
func FallbackQuestions(n int) []model.Question {
	if n <= 0 {
		return nil
	}
	questions := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		q := fallbackQuestionBank[i%len(fallbackQuestionBank)]
		q.OrderIndex = i
		q.GeneratedByAI = false
		questions = append(questions, q)
	}
	return questions
}

// SplitSkills tokenizes a comma- or newline-separated skills string into
// lowercase keywords.
func SplitSkills(requiredSkills string) []string {
	raw := strings.FieldsFunc(requiredSkills, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	skills := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// HeuristicAnswerScore scores a free-form answer without the model: up to 4
// points for a developed answer by length, up to 2 for overlap with the
// required-skill keywords, capped well below a confident score.
func HeuristicAnswerScore(answerText, requiredSkills string) float64 {
	words := len(strings.Fields(answerText))
	lengthScore := math.Min(4.0, float64(words)/10.0)

	keywords := SplitSkills(requiredSkills)
	var overlapScore float64
	if len(keywords) > 0 {
		lower := strings.ToLower(answerText)
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		overlapScore = float64(matched) / float64(len(keywords)) * 2.0
	}

	score := lengthScore + overlapScore
	return math.Min(fallbackScoreCeiling, math.Round(score*10)/10)
}

// HeuristicAnswerEvaluation packages the heuristic score with a narrative
// that makes the non-AI provenance explicit.
func HeuristicAnswerEvaluation(answerText, requiredSkills string) AnswerEvaluation {
	return AnswerEvaluation{
		Score:        HeuristicAnswerScore(answerText, requiredSkills),
		Evaluation:   "Evaluated heuristically from answer length and keyword relevance; AI evaluation was not available.",
		Strengths:    "An answer was provided and recorded.",
		Improvements: "Consider providing more specific examples and details.",
		AIEvaluated:  false,
	}
}

// KeywordMatch computes an ATS match without the model: the skills score is
// the fraction of required-skill keywords present in the resume, the other
// dimensions stay neutral.
func KeywordMatch(requiredSkills, resumeText string) MatchScores {
	keywords := SplitSkills(requiredSkills)
	matched := 0
	if len(keywords) > 0 {
		lower := strings.ToLower(resumeText)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
	}

	var skillsScore float64
	if len(keywords) > 0 {
		skillsScore = math.Min(100, float64(matched)/float64(len(keywords))*100)
	}

	return MatchScores{
		SkillsScore:     math.Round(skillsScore*100) / 100,
		ExperienceScore: neutralMatchScore,
		EducationScore:  neutralMatchScore,
		MatchAnalysis: fmt.Sprintf(
			"Keyword matching: %d of %d required skills found in the resume. Experience and education were assigned neutral scores because they cannot be inferred reliably without AI analysis.",
			matched, len(keywords)),
		Strengths:       "Resume contains relevant keywords for the role.",
		Gaps:            "Detailed gap analysis requires AI processing.",
		Recommendations: "Re-run the match with the AI endpoint available for a full analysis.",
		AIGenerated:     false,
	}
}
