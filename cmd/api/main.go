package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/analysis"
	"github.com/reviewlens/backend/internal/api/handlers"
	"github.com/reviewlens/backend/internal/cache/redis"
	"github.com/reviewlens/backend/internal/catalog"
	"github.com/reviewlens/backend/internal/collector"
	"github.com/reviewlens/backend/internal/lexicon"
	"github.com/reviewlens/backend/internal/marketing"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/middleware/ratelimit"
	"github.com/reviewlens/backend/internal/middleware/security"
	"github.com/reviewlens/backend/internal/middleware/validation"
	"github.com/reviewlens/backend/internal/pipeline"
	"github.com/reviewlens/backend/internal/storage/sqlite"
	"github.com/reviewlens/backend/internal/usp"
	"github.com/reviewlens/backend/pkg/config"
	appLogger "github.com/reviewlens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ReviewLens API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	lex := lexicon.Load(cfg.Analysis.LexiconPath)
	dict := usp.Load(cfg.Taxonomy.TriggerPath, cfg.Taxonomy.ExclusionPath, cfg.Taxonomy.CandidatePath)
	dictMu := &sync.Mutex{}

	session, err := collector.NewChromeSession(
		context.Background(),
		cfg.Collector.Headless,
		time.Duration(cfg.Collector.NavTimeoutSec)*time.Second,
	)
	if err != nil {
		appLogger.Fatal("Failed to start browser session", zap.Error(err))
	}
	defer session.Close()

	reviewCollector := collector.NewCollector(session, cfg.Collector)
	scraper := catalog.NewScraper(cfg.Catalog)

	deps := pipeline.Deps{
		Collector: reviewCollector,
		Analyzer:  analysis.NewAnalyzer(lex),
		Miner:     marketing.NewMiner(lex, cfg.Analysis.MinKeywordCount),
		Dict:      dict,
		DictMu:    dictMu,
		Store:     sqliteClient,
		Analysis:  cfg.Analysis,
		CacheTTL:  cfg.Redis.TTL(),
	}
	if cache != nil {
		deps.Cache = cache
	}
	pipe := pipeline.New(deps)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, If-None-Match",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer limiter.Stop()
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	var analysisCache handlers.AnalysisCache
	if cache != nil {
		analysisCache = cache
	}
	analysisHandler := handlers.NewAnalysisHandler(pipe, sqliteClient, analysisCache)
	taxonomyHandler := handlers.NewTaxonomyHandler(dict, dictMu)
	candidatesHandler := handlers.NewCandidatesHandler(dict, dictMu)
	catalogHandler := handlers.NewCatalogHandler(scraper, sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(pipe)

	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api/v1")

	api.Post("/analyze", analysisHandler.StartAnalysis)
	api.Get("/analysis", analysisHandler.ListAnalyses)
	api.Get("/analysis/:code", analysisHandler.GetAnalysis)
	api.Get("/history", analysisHandler.GetCrawlHistory)
	api.Get("/statistics", analysisHandler.GetStatistics)

	api.Get("/taxonomy", taxonomyHandler.GetTaxonomy)
	api.Post("/taxonomy/:category/keywords", taxonomyHandler.AddKeyword)
	api.Delete("/taxonomy/:category/keywords/:word", taxonomyHandler.RemoveKeyword)
	api.Post("/taxonomy/highlight", taxonomyHandler.Highlight)

	api.Get("/candidates", candidatesHandler.ListCandidates)
	api.Post("/candidates/approve", candidatesHandler.ApproveCandidate)
	api.Post("/candidates/reject", candidatesHandler.RejectCandidate)
	api.Post("/candidates/detect", candidatesHandler.DetectCandidates)

	api.Get("/catalog/categories", catalogHandler.ListCategories)
	api.Get("/catalog/:category/bestsellers", catalogHandler.GetBestSellers)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/progress", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
