package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Hireflow/config"
	"github.com/lshigami/Hireflow/database"
	_ "github.com/lshigami/Hireflow/docs" // Swagger docs - auto-generated
	"github.com/lshigami/Hireflow/internal/controller"
	"github.com/lshigami/Hireflow/internal/logger"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/lshigami/Hireflow/internal/repository"
	"github.com/lshigami/Hireflow/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Hireflow API
// @version 1.0
// @description Hiring workflow orchestration: pipelines with ordered steps, assessment submissions with proctoring, scoring and notification fan-out.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewPipelineRepository,
			repository.NewApplicationRepository,
			repository.NewAssessmentRepository,
			repository.NewAssignmentRepository,
			repository.NewInterviewRepository,
			repository.NewSubmissionRepository,
			repository.NewMemberRepository,
			repository.NewAuditRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewPermissionService,
			service.NewScoringService,
			service.NewSmtpMailer,
			service.NewNotificationService,
			service.NewResumeScoringService,
			service.NewCodeExecutionService,
			service.NewWorkflowService,
			service.NewSubmissionService,
			service.NewAssessmentService,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewWorkflowController,
			controller.NewSubmissionController,
			controller.NewAssessmentController,
			controller.NewLiveController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	workflowCtrl *controller.WorkflowController,
	submissionCtrl *controller.SubmissionController,
	assessmentCtrl *controller.AssessmentController,
	liveCtrl *controller.LiveController,
) {
	apiV1 := router.Group("/api/v1")
	{
		pipelines := apiV1.Group("/pipelines")
		pipelines.GET("/:id", workflowCtrl.GetPipeline)
		pipelines.POST("/:id/advance", workflowCtrl.AdvanceWorkflow)

		assessments := apiV1.Group("/assessments")
		assessments.POST("", assessmentCtrl.CreateAssessment)
		assessments.GET("/:id", assessmentCtrl.GetAssessment)
		assessments.GET("/:assessment_id/submissions", submissionCtrl.GetSubmission)

		submissions := apiV1.Group("/submissions")
		submissions.POST("/start", submissionCtrl.StartSubmission)
		submissions.POST("/offense", submissionCtrl.RecordOffense)
		submissions.POST("/timer", submissionCtrl.SyncTimer)
		submissions.POST("/session-replay", submissionCtrl.SetSessionReplayURL)
		submissions.POST("/answers", submissionCtrl.SaveAnswer)
		submissions.POST("/run", submissionCtrl.RunProblem)
		submissions.POST("/complete", submissionCtrl.CompleteSubmission)

		grading := apiV1.Group("/grading")
		grading.POST("/override", submissionCtrl.OverrideItemGrade)

		apiV1.POST("/live", liveCtrl.Connect)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Hireflow API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Member{},
		&model.Pipeline{},
		&model.Step{},
		&model.Candidate{},
		&model.Application{},
		&model.Assessment{},
		&model.McqQuestion{},
		&model.McqOption{},
		&model.Problem{},
		&model.TestCase{},
		&model.Assignment{},
		&model.Interview{},
		&model.Submission{},
		&model.OffenseCounter{},
		&model.McqAnswer{},
		&model.CaseResult{},
		&model.ItemGrade{},
		&model.AuditLog{},
		&model.InAppNotification{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
