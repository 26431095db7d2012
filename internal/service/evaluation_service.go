package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"hirewise-backend/internal/llm"
	"hirewise-backend/internal/model"
	"hirewise-backend/utilities"
)

// Score awarded for a correct selectable-choice answer. This path is pure
// computation; the model is never consulted for it.
const mcqCorrectScore = 10.0

// AnswerEvaluation is the outcome of scoring one free-form answer.
type AnswerEvaluation struct {
	Score        float64
	Evaluation   string
	Strengths    string
	Improvements string
	AIEvaluated  bool
}

// EvaluationContext carries optional resume/job context into the prompt.
type EvaluationContext struct {
	ResumeText     string
	JobDescription string
	RequiredSkills string
}

type EvaluationService interface {
	EvaluateMCQ(question *model.Question, selectedOption int) (bool, float64)
	EvaluateFreeForm(ctx context.Context, question *model.Question, answerText string, evalCtx EvaluationContext) AnswerEvaluation
}

type evaluationService struct {
	llmClient llm.Client
}

func NewEvaluationService(llmClient llm.Client) EvaluationService {
	return &evaluationService{llmClient: llmClient}
}

// EvaluateMCQ derives correctness and score from the stored correct option.
// Client-supplied correctness is never trusted.
func (s *evaluationService) EvaluateMCQ(question *model.Question, selectedOption int) (bool, float64) {
	correct := selectedOption == question.CorrectOption
	if correct {
		return true, mcqCorrectScore
	}
	return false, 0
}

// EvaluateFreeForm asks the model for a 0-10 score plus narrative feedback.
// Any model or parse failure routes to the heuristic fallback; this method
// always returns a usable evaluation.
func (s *evaluationService) EvaluateFreeForm(ctx context.Context, question *model.Question, answerText string, evalCtx EvaluationContext) AnswerEvaluation {
	prompt := buildEvaluationPrompt(question, answerText, evalCtx)

	response, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		utilities.Warn("free-form evaluation fell back to heuristic: %v", err)
		return HeuristicAnswerEvaluation(answerText, evalCtx.RequiredSkills)
	}

	var parsed struct {
		Score        float64 `json:"score"`
		Evaluation   string  `json:"evaluation"`
		Strengths    string  `json:"strengths"`
		Improvements string  `json:"improvements"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &parsed); err != nil {
		utilities.Warn("unparseable evaluation response, falling back to heuristic: %v", err)
		return HeuristicAnswerEvaluation(answerText, evalCtx.RequiredSkills)
	}

	return AnswerEvaluation{
		Score:        clampScore(parsed.Score, 0, 10),
		Evaluation:   parsed.Evaluation,
		Strengths:    parsed.Strengths,
		Improvements: parsed.Improvements,
		AIEvaluated:  true,
	}
}

func buildEvaluationPrompt(question *model.Question, answerText string, evalCtx EvaluationContext) string {
	var b strings.Builder
	b.WriteString("Evaluate the following interview answer. Respond with minimal JSON only, ")
	b.WriteString(`using the structure {"score": <number 0-10>, "evaluation": "...", "strengths": "...", "improvements": "..."}.`)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Question Type: %s\n", question.QuestionType)
	fmt.Fprintf(&b, "Question: %s\n\n", question.Text)
	fmt.Fprintf(&b, "Answer: %s\n", answerText)

	if evalCtx.RequiredSkills != "" {
		fmt.Fprintf(&b, "\nRequired Skills: %s\n", evalCtx.RequiredSkills)
	}
	if evalCtx.JobDescription != "" {
		fmt.Fprintf(&b, "\nJob Description: %s\n", truncate(evalCtx.JobDescription, 500))
	}
	if evalCtx.ResumeText != "" {
		fmt.Fprintf(&b, "\nCandidate Resume Summary: %s\n", truncate(evalCtx.ResumeText, 500))
	}

	return b.String()
}

func clampScore(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// truncate cuts on a rune boundary so a multi-byte character is never split
// mid-sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
