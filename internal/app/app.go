package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduquiz_backend/internal/config"
	"eduquiz_backend/internal/controller"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/service"
	"eduquiz_backend/pkg/configwatcher"
	"eduquiz_backend/pkg/database"
	"eduquiz_backend/pkg/logger"
	"eduquiz_backend/pkg/monitoring"
	"eduquiz_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	tracerProvider *sdktrace.TracerProvider

	// repositories
	userRepo         *repository.UserRepository
	classRepo        *repository.ClassRepository
	enrollmentRepo   *repository.EnrollmentRepository
	quizRepo         *repository.QuizRepository
	questionRepo     *repository.QuestionRepository
	attemptRepo      *repository.AttemptRepository
	answerRepo       *repository.AnswerRepository
	notificationRepo *repository.NotificationRepository

	// services
	authService         *service.AuthService
	userService         *service.UserService
	classService        *service.ClassService
	quizService         *service.QuizService
	attemptService      *service.AttemptService
	accessPolicy        *service.AccessPolicyService
	notificationService *service.NotificationService
	resultService       *service.ResultService
	storageService      *service.StorageService

	// controllers
	authController         *controller.AuthController
	userController         *controller.UserController
	classController        *controller.ClassController
	quizController         *controller.QuizController
	attemptController      *controller.AttemptController
	resultController       *controller.ResultController
	notificationController *controller.NotificationController
	healthController       *controller.HealthController
}

func New(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.ForceMigrate || cfg.MigrateOnly {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		if cfg.MigrateOnly {
			logger.Log.Info("migration completed, exiting (migrate-only mode)")
			os.Exit(0)
		}
	}

	// Redis 不可用时降级运行，统计接口直查数据库
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("redis unavailable, running without cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("eduquiz-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Warn("tracer init failed, tracing disabled", zap.Error(err))
		} else {
			app.tracerProvider = tp
		}
	}

	monitoring.Init()

	app.initRepositories()
	app.initServices()
	app.initControllers()
	app.initEngine()

	return app, nil
}

func (a *App) initRepositories() {
	a.userRepo = repository.NewUserRepository(a.DB)
	a.classRepo = repository.NewClassRepository(a.DB)
	a.enrollmentRepo = repository.NewEnrollmentRepository(a.DB)
	a.quizRepo = repository.NewQuizRepository(a.DB)
	a.questionRepo = repository.NewQuestionRepository(a.DB)
	a.attemptRepo = repository.NewAttemptRepository(a.DB)
	a.answerRepo = repository.NewAnswerRepository(a.DB)
	a.notificationRepo = repository.NewNotificationRepository(a.DB)
}

func (a *App) initServices() {
	a.notificationService = service.NewNotificationService(a.notificationRepo, a.enrollmentRepo)
	a.authService = service.NewAuthService(a.userRepo, a.Config)
	a.userService = service.NewUserService(a.userRepo)
	a.classService = service.NewClassService(a.classRepo, a.enrollmentRepo, a.userRepo, a.notificationService)
	a.attemptService = service.NewAttemptService(a.quizRepo, a.attemptRepo, a.answerRepo, a.notificationService, a.DB)
	a.accessPolicy = service.NewAccessPolicyService(a.quizRepo, a.classRepo, a.enrollmentRepo, a.attemptRepo)
	a.quizService = service.NewQuizService(a.quizRepo, a.questionRepo, a.classRepo, a.attemptService, a.notificationService, a.DB)
	a.resultService = service.NewResultService(a.quizRepo, a.attemptRepo, a.answerRepo, a.Redis, a.DB)
	a.storageService = service.NewStorageService(a.Config)
}

func (a *App) initControllers() {
	a.authController = controller.NewAuthController(a.authService)
	a.userController = controller.NewUserController(a.userService, a.storageService)
	a.classController = controller.NewClassController(a.classService)
	a.quizController = controller.NewQuizController(a.quizService, a.accessPolicy, a.storageService)
	a.attemptController = controller.NewAttemptController(a.accessPolicy, a.attemptService)
	a.resultController = controller.NewResultController(a.resultService)
	a.notificationController = controller.NewNotificationController(a.notificationService)
	a.healthController = controller.NewHealthController(a.DB, a.Redis)
}

// Run 启动 HTTP 服务并阻塞至收到退出信号，带优雅停机
func (a *App) Run(configPath string) error {
	go configwatcher.WatchConfig(configPath, func(newCfg *config.Config) {
		// 热更新仅覆盖可安全切换的配置项
		a.Config.RateLimit = newCfg.RateLimit
		a.Config.CORS = newCfg.CORS
		logger.Log.Info("config reloaded")
	})

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Engine,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("server stopped")
	return nil
}
