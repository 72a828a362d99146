package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/malharwork/agneez-poc/internal/config"
	"github.com/malharwork/agneez-poc/internal/controller"
	"github.com/malharwork/agneez-poc/internal/repository"
	"github.com/malharwork/agneez-poc/internal/service"
	"github.com/malharwork/agneez-poc/pkg/database"
	"github.com/malharwork/agneez-poc/pkg/logger"
	"github.com/malharwork/agneez-poc/pkg/monitoring"
	"github.com/malharwork/agneez-poc/pkg/tracing"
	"github.com/malharwork/agneez-poc/pkg/vectorstore"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	knowledgeBase *service.KnowledgeBaseService
}

type controllers struct {
	tutor    *controller.TutorController
	progress *controller.ProgressController
	topic    *controller.TopicController
	health   *controller.HealthController
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("logger initialized")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("database migrated")
	}

	app := &App{Config: cfg, DB: db}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	// One client per configured vector index, shared by retrieval and the
	// knowledge base builder.
	queryIndexes := map[string]service.VectorIndex{}
	namespaceIndexes := map[string]service.VectorNamespace{}
	for name, host := range cfg.Vector.Hosts {
		client := vectorstore.NewClient(host, cfg.Vector.APIKey, cfg.Vector.Timeout)
		queryIndexes[name] = client
		namespaceIndexes[name] = client
	}

	embedder := service.NewEmbeddingService(cfg.Embedding, rdb)
	generator := service.NewAIService(cfg.AI)

	sources := []service.ContentSource{}
	if cfg.Content.MinioEndpoint != "" {
		minioSource, err := service.NewMinioContentSource(cfg.Content)
		if err != nil {
			logger.Log.Warn("object store unavailable, using embedded curriculum", zap.Error(err))
		} else {
			sources = append(sources, minioSource)
		}
	}
	sources = append(sources, service.SeedContentSource{})

	app.knowledgeBase = service.NewKnowledgeBaseService(
		namespaceIndexes, embedder, service.NewLayeredContentSource(sources...))

	tracker := service.NewTrackerService(
		repository.NewStudentRepository(db),
		repository.NewMasteryRepository(db),
		repository.NewSessionRepository(db),
	)
	retrieval := service.NewRetrievalService(queryIndexes, embedder, generator)

	ctls := &controllers{
		tutor:    controller.NewTutorController(retrieval, tracker),
		progress: controller.NewProgressController(tracker, cfg.JWT),
		topic:    controller.NewTopicController(service.NewPathService(), tracker),
		health:   controller.NewHealthController(namespaceIndexes),
	}

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("agneez-tutor", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("failed to initialize tracing", zap.Error(err))
		}
		router.Use(tracing.GinMiddleware())
	}

	app.registerRoutes(router, ctls, cfg)

	if cfg.Content.Bootstrap {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := app.knowledgeBase.EnsurePopulated(ctx); err != nil {
				logger.Log.Error("knowledge base bootstrap incomplete", zap.Error(err))
			}
		}()
	}

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
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
