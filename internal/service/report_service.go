package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"hirewise-backend/internal/llm"
	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
	"hirewise-backend/utilities"
)

type ReportService interface {
	// GenerateReport aggregates a completed interview into its report.
	// Re-invocation overwrites the existing report.
	GenerateReport(ctx context.Context, interviewID uint) (*model.InterviewReport, error)
	GetReport(interviewID uint) (*model.InterviewReport, error)
	ExportPDF(interviewID uint) ([]byte, error)
}

type reportService struct {
	interviewRepo repository.InterviewRepository
	llmClient     llm.Client
}

func NewReportService(interviewRepo repository.InterviewRepository, llmClient llm.Client) ReportService {
	return &reportService{interviewRepo: interviewRepo, llmClient: llmClient}
}

func (s *reportService) GenerateReport(ctx context.Context, interviewID uint) (*model.InterviewReport, error) {
	interview, err := s.interviewRepo.GetInterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status != model.StatusCompleted {
		return nil, fmt.Errorf("%w: a report requires a completed interview", ErrInvalidState)
	}

	report := s.aggregate(interview)

	summary, aiGenerated := s.narrative(ctx, interview, report)
	report.Summary = summary.Summary
	report.Strengths = summary.Strengths
	report.AreasForImprovement = summary.AreasForImprovement
	report.Recommendations = summary.Recommendations
	report.AIGenerated = aiGenerated

	if err := s.interviewRepo.SaveReport(report); err != nil {
		return nil, err
	}

	utilities.GlobalEventBus.Publish(utilities.EventReportGenerated, report)
	return report, nil
}

func (s *reportService) GetReport(interviewID uint) (*model.InterviewReport, error) {
	return s.interviewRepo.GetReportByInterviewID(interviewID)
}

// aggregate computes all numeric fields of the report from the answer set.
func (s *reportService) aggregate(interview *model.Interview) *model.InterviewReport {
	questionsByID := make(map[uint]*model.Question, len(interview.Questions))
	for i := range interview.Questions {
		questionsByID[interview.Questions[i].ID] = &interview.Questions[i]
	}

	var (
		total       float64
		byCategory  = map[string][]float64{}
		textLengths []float64
	)
	for i := range interview.Answers {
		answer := &interview.Answers[i]
		total += answer.Score

		category := model.QuestionTechnical // unclassified defaults to technical
		if q, ok := questionsByID[answer.QuestionID]; ok {
			switch q.QuestionType {
			case model.QuestionBehavioral:
				category = model.QuestionBehavioral
			case model.QuestionCommunication:
				category = model.QuestionCommunication
			}
			if !q.IsMCQ {
				textLengths = append(textLengths, float64(len(answer.AnswerText)))
			}
		}
		byCategory[category] = append(byCategory[category], answer.Score)
	}

	answered := len(interview.Answers)
	report := &model.InterviewReport{
		InterviewID:         interview.ID,
		TotalQuestions:      len(interview.Questions),
		QuestionsAnswered:   answered,
		TechnicalScore:      mean(byCategory[model.QuestionTechnical]),
		BehavioralScore:     mean(byCategory[model.QuestionBehavioral]),
		CommunicationScore:  mean(byCategory[model.QuestionCommunication]),
		AverageAnswerLength: mean(textLengths),
	}
	if answered > 0 {
		report.OverallScore = round2(total / float64(answered))
	}
	return report
}

type reportNarrative struct {
	Summary             string `json:"summary"`
	Strengths           string `json:"strengths"`
	AreasForImprovement string `json:"areas_for_improvement"`
	Recommendations     string `json:"recommendations"`
}

// narrative asks the model for a holistic summary over the full transcript
// and substitutes templated text on any failure.
func (s *reportService) narrative(ctx context.Context, interview *model.Interview, report *model.InterviewReport) (reportNarrative, bool) {
	prompt := buildReportPrompt(interview, report)

	response, err := s.llmClient.Generate(ctx, prompt)
	if err == nil {
		var parsed reportNarrative
		if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &parsed); err == nil && parsed.Summary != "" {
			return parsed, true
		}
		utilities.Warn("unparseable report narrative for interview %d, using templated text", interview.ID)
	} else {
		utilities.Warn("report narrative fell back to templated text: %v", err)
	}

	return templatedNarrative(report), false
}

func buildReportPrompt(interview *model.Interview, report *model.InterviewReport) string {
	questionsByID := make(map[uint]*model.Question, len(interview.Questions))
	for i := range interview.Questions {
		questionsByID[interview.Questions[i].ID] = &interview.Questions[i]
	}

	var b strings.Builder
	b.WriteString("You are reviewing a completed candidate interview. Based on the transcript below, ")
	b.WriteString("respond with minimal JSON only, using the structure ")
	b.WriteString(`{"summary": "...", "strengths": "...", "areas_for_improvement": "...", "recommendations": "..."}.`)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Questions answered: %d of %d. Average score: %.1f/10.\n\nTranscript:\n",
		report.QuestionsAnswered, report.TotalQuestions, report.OverallScore)

	for i := range interview.Answers {
		answer := &interview.Answers[i]
		if q, ok := questionsByID[answer.QuestionID]; ok {
			fmt.Fprintf(&b, "Q%d (%s): %s\n", q.OrderIndex+1, q.QuestionType, q.Text)
		}
		if answer.SelectedOption != nil {
			fmt.Fprintf(&b, "A: option %d (score %.1f/10)\n", *answer.SelectedOption, answer.Score)
		} else {
			fmt.Fprintf(&b, "A: %s (score %.1f/10)\n", truncate(answer.AnswerText, 400), answer.Score)
		}
	}

	return b.String()
}

// templatedNarrative derives canned text purely from the numeric scores.
func templatedNarrative(report *model.InterviewReport) reportNarrative {
	narrative := reportNarrative{
		Summary: fmt.Sprintf("Interview completed with %d of %d questions answered. Average score: %.1f/10.",
			report.QuestionsAnswered, report.TotalQuestions, report.OverallScore),
	}

	switch {
	case report.OverallScore >= 7:
		narrative.Strengths = "The candidate scored consistently well across the answered questions."
		narrative.AreasForImprovement = "Few weaknesses surfaced; a follow-up interview can dig deeper."
		narrative.Recommendations = "Strong performance. Recommend progressing to the next stage."
	case report.OverallScore >= 4:
		narrative.Strengths = "The candidate showed a workable grasp of several of the assessed areas."
		narrative.AreasForImprovement = "Scores were uneven; review the lowest-scoring answers for specific gaps."
		narrative.Recommendations = "Moderate performance. Consider a targeted follow-up on the weaker areas."
	default:
		narrative.Strengths = "The interview session was completed."
		narrative.AreasForImprovement = "Most answers scored low or questions were left unanswered."
		narrative.Recommendations = "Performance was below expectations for this session."
	}

	if report.QuestionsAnswered < report.TotalQuestions {
		narrative.AreasForImprovement += fmt.Sprintf(" %d question(s) were left unanswered.",
			report.TotalQuestions-report.QuestionsAnswered)
	}
	return narrative
}

// ExportPDF renders the stored report as a downloadable PDF.
func (s *reportService) ExportPDF(interviewID uint) ([]byte, error) {
	interview, err := s.interviewRepo.GetInterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	report, err := s.interviewRepo.GetReportByInterviewID(interviewID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, interview.Title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	scoreLine := func(label string, value float64) {
		pdf.CellFormat(60, 8, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("%.1f / 10", value), "", 1, "L", false, 0, "")
	}
	scoreLine("Overall score", report.OverallScore)
	scoreLine("Technical", report.TechnicalScore)
	scoreLine("Behavioral", report.BehavioralScore)
	scoreLine("Communication", report.CommunicationScore)
	pdf.CellFormat(60, 8, "Questions answered", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("%d / %d", report.QuestionsAnswered, report.TotalQuestions), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title, body string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, body, "", "L", false)
		pdf.Ln(2)
	}
	section("Summary", report.Summary)
	section("Strengths", report.Strengths)
	section("Areas for Improvement", report.AreasForImprovement)
	section("Recommendations", report.Recommendations)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return round2(sum / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
