package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hirewise-backend/internal/service"
)

type InterviewController struct {
	interviews service.InterviewService
	questions  service.QuestionService
	reports    service.ReportService
}

func NewInterviewController(
	interviews service.InterviewService,
	questions service.QuestionService,
	reports service.ReportService,
) *InterviewController {
	return &InterviewController{interviews: interviews, questions: questions, reports: reports}
}

func (ic *InterviewController) CreateInterview(c *gin.Context) {
	var req struct {
		ResumeID         *uint  `json:"resume_id"`
		JobDescriptionID *uint  `json:"job_description_id"`
		Title            string `json:"title"`
		TimeLimitMinutes int    `json:"time_limit_minutes"`
		QuestionCount    int    `json:"question_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	interview, err := ic.interviews.CreateInterview(service.CreateInterviewInput{
		ResumeID:         req.ResumeID,
		JobDescriptionID: req.JobDescriptionID,
		Title:            req.Title,
		TimeLimitMinutes: req.TimeLimitMinutes,
		QuestionCount:    req.QuestionCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interview)
}

func (ic *InterviewController) GetInterview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interview, err := ic.interviews.GetInterview(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (ic *InterviewController) ListInterviews(c *gin.Context) {
	resumeID := queryUint(c, "resume_id")
	jobID := queryUint(c, "job_description_id")
	interviews, err := ic.interviews.ListInterviews(resumeID, jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interviews)
}

func (ic *InterviewController) GenerateQuestions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Count int `json:"count"`
	}
	// Body is optional, count falls back to the interview's configured count.
	_ = c.ShouldBindJSON(&req)

	questions, err := ic.questions.GenerateForInterview(c.Request.Context(), id, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}

func (ic *InterviewController) ListQuestions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interview, err := ic.interviews.GetInterview(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview.Questions)
}

func (ic *InterviewController) ListAnswers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interview, err := ic.interviews.GetInterview(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview.Answers)
}

func (ic *InterviewController) StartInterview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interview, err := ic.interviews.StartInterview(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (ic *InterviewController) UpdateProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		CurrentQuestionIndex *int `json:"current_question_index"`
		TotalQuestions       *int `json:"total_questions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	interview, err := ic.interviews.UpdateProgress(id, req.CurrentQuestionIndex, req.TotalQuestions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (ic *InterviewController) GetCurrentQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interview, question, err := ic.interviews.CurrentQuestion(id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{
		"interview_id":           interview.ID,
		"current_question_index": interview.CurrentQuestion,
		"question":               question,
	}
	if question == nil {
		resp["message"] = "No question found at current index"
	}
	c.JSON(http.StatusOK, resp)
}

func (ic *InterviewController) CompleteInterview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interview, err := ic.interviews.CompleteInterview(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (ic *InterviewController) CancelInterview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interview, err := ic.interviews.CancelInterview(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (ic *InterviewController) SubmitAnswer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		QuestionID     uint   `json:"question_id" binding:"required"`
		SelectedOption *int   `json:"selected_option"`
		AnswerText     string `json:"answer_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: missing required fields"})
		return
	}
	answer, err := ic.interviews.SubmitAnswer(c.Request.Context(), id, req.QuestionID, service.AnswerPayload{
		SelectedOption: req.SelectedOption,
		AnswerText:     req.AnswerText,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (ic *InterviewController) GetReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := ic.reports.GetReport(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (ic *InterviewController) RegenerateReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := ic.reports.GenerateReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (ic *InterviewController) DownloadReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pdfBytes, err := ic.reports.ExportPDF(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=interview_report.pdf")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Query(name), 10, 32)
	return uint(v)
}
