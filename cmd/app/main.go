package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hirewise-backend/internal/config"
	"hirewise-backend/internal/controller"
	"hirewise-backend/internal/db"
	"hirewise-backend/internal/llm"
	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
	"hirewise-backend/internal/service"
	"hirewise-backend/pkg/middleware"
	"hirewise-backend/utilities"
)

func main() {
	printStartUpBanner()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	// Load XML configuration from file.
	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	utilities.SetupLogging(cfg.Context.LogDir)

	// Initialize DB using the loaded config.
	db.InitDBFromConfig(cfg)
	// Run migrations.
	if err := db.GetDB().AutoMigrate(
		&model.User{},
		&model.Resume{},
		&model.JobDescription{},
		&model.Interview{},
		&model.Question{},
		&model.Answer{},
		&model.InterviewReport{},
		&model.ATSMatch{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Create repositories.
	userRepo := repository.NewUserRepository()
	resumeRepo := repository.NewResumeRepository()
	jobRepo := repository.NewJobRepository()
	interviewRepo := repository.NewInterviewRepository()
	matchRepo := repository.NewMatchRepository()

	// Shared language-model client.
	llmClient := llm.NewClientFromConfig(cfg.AI)

	// Create services.
	authService := service.NewAuthService(userRepo)
	evaluationService := service.NewEvaluationService(llmClient)
	questionService := service.NewQuestionService(interviewRepo, resumeRepo, jobRepo, llmClient, cfg.Assessment, cfg.AI.Model)
	reportService := service.NewReportService(interviewRepo, llmClient)
	interviewService := service.NewInterviewService(interviewRepo, resumeRepo, jobRepo, evaluationService, reportService, cfg.Assessment)
	matchService := service.NewMatchService(matchRepo, resumeRepo, jobRepo, llmClient, cfg.Matching)

	registerEventLogging()

	// Initialize Gin router.
	r := gin.Default()

	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	controller.RegisterRoutes(r, authService, interviewService, questionService, reportService, matchService, jobRepo, resumeRepo)

	// Start server on the host and port specified in the XML config.
	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		utilities.Info("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests and stop the
	// session deadline timers.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utilities.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utilities.Error("forced shutdown: %v", err)
	}
	interviewService.Shutdown()
}

func registerEventLogging() {
	utilities.GlobalEventBus.Subscribe(utilities.EventInterviewCompleted, func(data interface{}) {
		if iv, ok := data.(*model.Interview); ok {
			utilities.Info("interview %d completed (session %s)", iv.ID, iv.SessionID)
		}
	})
	utilities.GlobalEventBus.Subscribe(utilities.EventInterviewCancelled, func(data interface{}) {
		if iv, ok := data.(*model.Interview); ok {
			utilities.Info("interview %d cancelled (session %s)", iv.ID, iv.SessionID)
		}
	})
	utilities.GlobalEventBus.Subscribe(utilities.EventReportGenerated, func(data interface{}) {
		if report, ok := data.(*model.InterviewReport); ok {
			utilities.Info("report ready for interview %d (overall %.1f/10)", report.InterviewID, report.OverallScore)
		}
	})
	utilities.GlobalEventBus.Subscribe(utilities.EventMatchCompleted, func(data interface{}) {
		if match, ok := data.(*model.ATSMatch); ok {
			utilities.Info("match scored: job %d x resume %d = %.1f", match.JobDescriptionID, match.ResumeID, match.OverallScore)
		}
	})
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("HIREWISE", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("HIREWISE API (v%s)\n\n", "1.0.0")
}
