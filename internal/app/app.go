package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talent_assessment_backend/internal/config"
	"talent_assessment_backend/internal/controller"
	"talent_assessment_backend/internal/repository"
	"talent_assessment_backend/internal/service"
	"talent_assessment_backend/pkg/configwatcher"
	"talent_assessment_backend/pkg/database"
	"talent_assessment_backend/pkg/logger"
	"talent_assessment_backend/pkg/monitoring"
	"talent_assessment_backend/pkg/security"
	"talent_assessment_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	session     *repository.SessionRepository
	participant *repository.ParticipantRepository
	tbei        *repository.TbeiResponseRepository
	hipo        *repository.HipoRepository
	quiz        *repository.QuizRepository
	deadLetter  *repository.DeadLetterRepository
}

type services struct {
	storage    *service.StorageService
	scoring    *service.ScoringService
	session    *service.SessionService
	status     *service.ParticipantStatusService
	evaluation *service.EvaluationService
	batch      *service.BatchEvaluationService
	submission *service.SubmissionService
}

type controllers struct {
	session    *controller.SessionController
	interview  *controller.InterviewController
	evaluation *controller.EvaluationController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		session:     repository.NewSessionRepository(db),
		participant: repository.NewParticipantRepository(db),
		tbei:        repository.NewTbeiResponseRepository(db),
		hipo:        repository.NewHipoRepository(db),
		quiz:        repository.NewQuizRepository(db),
		deadLetter:  repository.NewDeadLetterRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.scoring = service.NewScoringService(cfg.Scoring)
	s.session = service.NewSessionService(repos.session)
	s.status = service.NewParticipantStatusService(repos.participant, repos.tbei, repos.hipo, repos.quiz)
	s.evaluation = service.NewEvaluationService(repos.tbei, s.scoring, repos.deadLetter, cfg.Evaluation)
	s.batch = service.NewBatchEvaluationService(s.evaluation)
	s.submission = service.NewSubmissionService(
		repos.participant,
		repos.tbei,
		repos.hipo,
		repos.quiz,
		s.status,
		s.evaluation,
		repos.deadLetter,
		cfg.Scoring.TimeoutSeconds,
	)

	return s
}

func (a *App) initControllers(s *services, repos *repositories) *controllers {
	return &controllers{
		session:    controller.NewSessionController(s.session),
		interview:  controller.NewInterviewController(s.submission, s.storage),
		evaluation: controller.NewEvaluationController(s.evaluation, s.batch, repos.deadLetter),
		health:     controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 监听配置文件，评估权重热更新不需要重启
func (a *App) startBackgroundTasks(s *services) {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		s.evaluation.SetWeights(cfg.Evaluation.CompetencyWeights)
		logger.Log.Info("evaluation weights reloaded",
			zap.Any("weights", cfg.Evaluation.CompetencyWeights))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, repos)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("talent-assessment", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
