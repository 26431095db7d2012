package controller

import (
	"github.com/gin-gonic/gin"

	"hirewise-backend/internal/repository"
	"hirewise-backend/internal/service"
	"hirewise-backend/utilities"
)

func RegisterRoutes(
	r *gin.Engine,
	authService service.AuthService,
	interviewService service.InterviewService,
	questionService service.QuestionService,
	reportService service.ReportService,
	matchService service.MatchService,
	jobRepo repository.JobRepository,
	resumeRepo repository.ResumeRepository,
) {
	// Auth routes.
	authCtrl := NewAuthController(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authCtrl.Register)
		authRoutes.POST("/login", authCtrl.Login)
		authRoutes.POST("/refresh", authCtrl.Refresh)
	}

	// Interview routes. Cancellation is administrative and sits behind the
	// token check.
	interviewCtrl := NewInterviewController(interviewService, questionService, reportService)
	interviewRoutes := r.Group("/interviews")
	{
		interviewRoutes.POST("", interviewCtrl.CreateInterview)
		interviewRoutes.GET("", interviewCtrl.ListInterviews)
		interviewRoutes.GET("/:id", interviewCtrl.GetInterview)
		interviewRoutes.POST("/:id/start", interviewCtrl.StartInterview)
		interviewRoutes.PATCH("/:id/progress", interviewCtrl.UpdateProgress)
		interviewRoutes.GET("/:id/current-question", interviewCtrl.GetCurrentQuestion)
		interviewRoutes.POST("/:id/complete", interviewCtrl.CompleteInterview)
		interviewRoutes.POST("/:id/cancel", utilities.AuthMiddleware(), interviewCtrl.CancelInterview)
		interviewRoutes.POST("/:id/generate-questions", interviewCtrl.GenerateQuestions)
		interviewRoutes.GET("/:id/questions", interviewCtrl.ListQuestions)
		interviewRoutes.POST("/:id/submit-answer", interviewCtrl.SubmitAnswer)
		interviewRoutes.GET("/:id/answers", interviewCtrl.ListAnswers)
		interviewRoutes.POST("/:id/generate-report", interviewCtrl.RegenerateReport)
		interviewRoutes.GET("/:id/report", interviewCtrl.GetReport)
		interviewRoutes.GET("/:id/report/pdf", interviewCtrl.DownloadReport)
	}

	// Job description routes, matching included.
	jobCtrl := NewJobController(jobRepo)
	matchCtrl := NewMatchController(matchService)
	jobRoutes := r.Group("/job-descriptions")
	{
		jobRoutes.POST("", jobCtrl.CreateJobDescription)
		jobRoutes.GET("", jobCtrl.ListJobDescriptions)
		jobRoutes.GET("/:id", jobCtrl.GetJobDescription)
		jobRoutes.PUT("/:id", jobCtrl.UpdateJobDescription)
		jobRoutes.DELETE("/:id", jobCtrl.DeleteJobDescription)
		jobRoutes.POST("/:id/match-resume", matchCtrl.MatchResume)
		jobRoutes.POST("/:id/match-all-resumes", matchCtrl.MatchAllResumes)
		jobRoutes.GET("/:id/matches", matchCtrl.ListJobMatches)
	}

	// Resume routes.
	resumeCtrl := NewResumeController(resumeRepo)
	resumeRoutes := r.Group("/resumes")
	{
		resumeRoutes.POST("", resumeCtrl.CreateResume)
		resumeRoutes.GET("", resumeCtrl.ListResumes)
		resumeRoutes.GET("/:id", resumeCtrl.GetResume)
	}

	// Cross-job match listing and review.
	matchRoutes := r.Group("/ats-matches")
	{
		matchRoutes.GET("", matchCtrl.ListMatches)
		matchRoutes.PATCH("/:id/status", utilities.AuthMiddleware(), matchCtrl.UpdateMatchStatus)
	}
}
