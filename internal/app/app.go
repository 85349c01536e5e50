package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"codeshin_backend/internal/config"
	"codeshin_backend/internal/controller"
	"codeshin_backend/internal/repository"
	"codeshin_backend/internal/service"
	"codeshin_backend/pkg/configwatcher"
	"codeshin_backend/pkg/database"
	"codeshin_backend/pkg/logger"
	"codeshin_backend/pkg/monitoring"
	"codeshin_backend/pkg/security"
	"codeshin_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	problem        *repository.ProblemRepository
	mastery        *repository.MasteryRepository
	history        *repository.HistoryRepository
	recommendation *repository.RecommendationRepository
	window         *repository.WindowRepository
}

type services struct {
	recommendation *service.RecommendationService
	submission     *service.SubmissionService
	mastery        *service.MasteryService
}

type controllers struct {
	recommendation *controller.RecommendationController
	submission     *controller.SubmissionController
	mastery        *controller.MasteryController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 热更新：只替换可在运行中生效的部分
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		problem:        repository.NewProblemRepository(db, rdb, cfg.Redis.CacheTTL),
		mastery:        repository.NewMasteryRepository(db),
		history:        repository.NewHistoryRepository(db),
		recommendation: repository.NewRecommendationRepository(db),
		window:         repository.NewWindowRepository(db),
	}
}

// newEvaluator 配置了 API Key 时使用 OpenAI 评测，否则使用静态评测器
func newEvaluator(cfg config.AIConfig) service.Evaluator {
	if cfg.APIKey == "" {
		logger.Log.Warn("AI api_key 未配置，使用静态评测器")
		return service.NewStaticEvaluator(60)
	}
	ev, err := service.NewOpenAIEvaluator(cfg)
	if err != nil {
		logger.Log.Warn("初始化 OpenAI 评测器失败，使用静态评测器", zap.Error(err))
		return service.NewStaticEvaluator(60)
	}
	return ev
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	params, err := cfg.Recommend.Params()
	if err != nil {
		return nil, err
	}
	recs, err := service.NewRecommendationService(
		repos.problem,
		repos.mastery,
		repos.history,
		repos.recommendation,
		repos.window,
		params,
		cfg.Recommend.Timeout,
		logger.Log,
	)
	if err != nil {
		return nil, err
	}

	s := &services{
		recommendation: recs,
		mastery:        service.NewMasteryService(repos.mastery),
	}
	s.submission = service.NewSubmissionService(
		repos.problem,
		repos.mastery,
		repos.history,
		newEvaluator(cfg.AI),
		recs,
	)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		p, err := newCfg.Recommend.Params()
		if err != nil {
			logger.Log.Error("推荐参数无效，保持原配置", zap.Error(err))
			return
		}
		if err := recs.UpdateParams(p); err != nil {
			logger.Log.Error("更新推荐参数失败", zap.Error(err))
			return
		}
		logger.Log.Info("推荐参数已更新",
			zap.Int("windowSize", p.WindowSize),
			zap.Int("maxResults", p.MaxResults))
	})
	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		recommendation: controller.NewRecommendationController(s.recommendation),
		submission:     controller.NewSubmissionController(s.submission),
		mastery:        controller.NewMasteryController(s.mastery),
		health:         controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute, security.ByClientIP))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 初始化数据库、缓存与各层组件。cfg.MigrateOnly 时只执行迁移
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	// release 模式默认不迁移，需 -migrate 显式开启
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不可用时直接查库
		logger.Log.Warn("Failed to initialize redis, running without cache", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	if err := app.build(); err != nil {
		cancel()
		return nil, err
	}
	return app, nil
}

func (a *App) build() error {
	cfg := a.Config
	repos := a.initRepositories(a.DB, a.Redis, cfg)
	svcs, err := a.initServices(repos, cfg)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}
	a.services = svcs
	ctrls := a.initControllers(svcs, a.DB, a.Redis)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("codeshin-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return fmt.Errorf("initialize tracing: %w", err)
		}
		a.tracer = tp
	}

	router := gin.New()
	router.Use(gin.Logger())
	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, ctrls, cfg)
	a.Router = router
	return nil
}

// WatchConfig 监听配置文件，变化时触发已注册的回调
func (a *App) WatchConfig(configDir string) {
	path := filepath.Join(configDir, "config.yaml")
	go func() {
		if err := configwatcher.WatchConfig(a.ctx, path, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		a.Close()
		return fmt.Errorf("listen: %w", err)
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	a.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Log.Info("Server exiting")
	return nil
}

// Close 释放后台任务和连接
func (a *App) Close() {
	a.cancel()
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
