package app

import (
	"context"
	"goal_pilot_backend/internal/config"
	"goal_pilot_backend/internal/controller"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/service"
	"goal_pilot_backend/pkg/configwatcher"
	"goal_pilot_backend/pkg/database"
	"goal_pilot_backend/pkg/logger"
	"goal_pilot_backend/pkg/monitoring"
	"goal_pilot_backend/pkg/security"
	"goal_pilot_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	// Redis 连接失败时为 nil，锁与令牌黑名单退化为进程内实现
	Redis *redis.Client

	services        *services
	limiter         *security.IPRateLimiter
	tracer          *sdktrace.TracerProvider
	cfgMu           sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	preference    *repository.PreferenceRepository
	goal          *repository.GoalRepository
	roadmap       *repository.RoadmapRepository
	progressStage *repository.ProgressStageRepository
	task          *repository.TaskRepository
}

type services struct {
	ai         *service.AIService
	storage    *service.StorageService
	locker     service.GenerationLocker
	blacklist  service.TokenBlacklist
	auth       *service.AuthService
	user       *service.UserService
	goal       *service.GoalService
	generation *service.GenerationService
	stage      *service.StageService
	task       *service.TaskService
	calendar   *service.CalendarService
	export     *service.ExportService
}

type controllers struct {
	auth          *controller.AuthController
	user          *controller.UserController
	goal          *controller.GoalController
	ai            *controller.AIController
	progressStage *controller.ProgressStageController
	task          *controller.TaskController
	calendar      *controller.CalendarController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.cfgMu.Lock()
	a.configCallbacks = append(a.configCallbacks, callback)
	a.cfgMu.Unlock()
}

// applyConfig 配置文件变更后依次调用回调
func (a *App) applyConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.cfgMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		preference:    repository.NewPreferenceRepository(db),
		goal:          repository.NewGoalRepository(db),
		roadmap:       repository.NewRoadmapRepository(db),
		progressStage: repository.NewProgressStageRepository(db),
		task:          repository.NewTaskRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.storage = service.NewStorageService(cfg)

	if rdb != nil {
		s.locker = service.NewRedisLocker(rdb, cfg.Generation.LockTTL())
		s.blacklist = service.NewRedisTokenBlacklist(rdb)
	} else {
		s.locker = service.NewMemoryLocker()
		s.blacklist = service.NewMemoryTokenBlacklist()
	}

	s.auth = service.NewAuthService(repos.user, s.blacklist, cfg)
	s.user = service.NewUserService(repos.user, repos.preference)
	s.goal = service.NewGoalService(repos.goal, repos.roadmap, s.storage)
	s.generation = service.NewGenerationService(
		repos.goal,
		repos.user,
		repos.roadmap,
		s.ai,
		s.ai.Config,
		s.locker,
		s.storage,
		cfg.Generation.ProgressInterval(),
	)
	s.stage = service.NewStageService(
		repos.goal,
		repos.roadmap,
		repos.progressStage,
		repos.task,
		s.ai,
		s.ai.Config,
	)
	s.task = service.NewTaskService(repos.task, cfg.Generation.TasksPageSize)
	s.calendar = service.NewCalendarService(repos.task)
	s.export = service.NewExportService(repos.task)

	// 模型与密钥支持热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.UpdateConfig(newCfg.AI)
		logger.L().Info("AI settings reloaded",
			zap.String("model", newCfg.AI.Model),
			zap.String("fast_model", newCfg.AI.FastModel),
		)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		user:          controller.NewUserController(s.user),
		goal:          controller.NewGoalController(s.goal),
		ai:            controller.NewAIController(s.generation),
		progressStage: controller.NewProgressStageController(s.stage),
		task:          controller.NewTaskController(s.task, s.stage),
		calendar:      controller.NewCalendarController(s.calendar, s.export),
		health:        controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.limiter.SetLimit(newCfg.RateLimit.MaxRequests, time.Duration(newCfg.RateLimit.WindowMinutes)*time.Minute)
	})

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	a.limiter.StartCleanup()

	go func() {
		path := filepath.Join(a.ConfigDir, "config.yaml")
		if err := configwatcher.WatchConfig(ctx, path, a.applyConfig); err != nil {
			logger.L().Warn("Config hot reload disabled", zap.String("path", path), zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, falling back to in-process locks", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, repos, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	a.startBackgroundTasks(bgCtx)

	// 启动服务器
	go func() {
		logger.L().Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info("Shutting down server...")

	stopBackground()
	a.limiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.L().Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.L().Info("Server exiting")
}
