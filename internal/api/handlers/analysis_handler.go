package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/pipeline"
	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/logger"
	"github.com/reviewlens/backend/pkg/utils"
)

// AnalysisStore is the read side of the persistence layer the handler needs.
type AnalysisStore interface {
	GetReviewAnalysis(productCode string) (*models.ReviewAnalysis, error)
	GetAnalyzedProductCodes() ([]string, error)
	GetCrawlHistory(limit int) ([]models.CrawlHistory, error)
	Statistics() (*models.Statistics, error)
}

// AnalysisCache is the read side of the cache; nil disables it.
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, productCode string) (*models.ReviewAnalysis, bool, error)
}

type AnalysisHandler struct {
	pipeline *pipeline.Pipeline
	store    AnalysisStore
	cache    AnalysisCache
}

func NewAnalysisHandler(p *pipeline.Pipeline, store AnalysisStore, cache AnalysisCache) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline: p,
		store:    store,
		cache:    cache,
	}
}

func (h *AnalysisHandler) StartAnalysis(c *fiber.Ctx) error {
	var req struct {
		ProductCode string `json:"product_code"`
		MaxReviews  int    `json:"max_reviews"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ProductCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "product_code is required",
		})
	}
	if req.MaxReviews <= 0 {
		req.MaxReviews = 100
	}

	rec, err := h.pipeline.Run(c.Context(), req.ProductCode, req.MaxReviews, nil)
	if err != nil {
		logger.Error("Pipeline run failed",
			zap.String("product", req.ProductCode),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Analysis failed",
		})
	}

	return c.JSON(rec)
}

func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "product code is required",
		})
	}

	if h.cache != nil {
		rec, found, err := h.cache.GetAnalysis(c.Context(), code)
		if err != nil {
			logger.Warn("Cache lookup failed", zap.Error(err))
		}
		if found {
			metrics.CacheHits.WithLabelValues("analysis").Inc()
			return h.respondAnalysis(c, rec)
		}
		metrics.CacheMisses.WithLabelValues("analysis").Inc()
	}

	rec, err := h.store.GetReviewAnalysis(code)
	if err != nil {
		logger.Error("Failed to load analysis", zap.String("product", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis",
		})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No analysis for this product",
		})
	}

	return h.respondAnalysis(c, rec)
}

func (h *AnalysisHandler) respondAnalysis(c *fiber.Ctx, rec *models.ReviewAnalysis) error {
	etag := utils.HashFields(rec.ProductCode, fmt.Sprintf("%d", rec.UpdatedAt.Unix()))
	if c.Get("If-None-Match") == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}
	c.Set("ETag", etag)
	return c.JSON(rec)
}

func (h *AnalysisHandler) ListAnalyses(c *fiber.Ctx) error {
	codes, err := h.store.GetAnalyzedProductCodes()
	if err != nil {
		logger.Error("Failed to list analyses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list analyses",
		})
	}

	return c.JSON(fiber.Map{
		"products": codes,
		"count":    len(codes),
	})
}

func (h *AnalysisHandler) GetCrawlHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	history, err := h.store.GetCrawlHistory(limit)
	if err != nil {
		logger.Error("Failed to load crawl history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load crawl history",
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}

func (h *AnalysisHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.store.Statistics()
	if err != nil {
		logger.Error("Failed to load statistics", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load statistics",
		})
	}

	return c.JSON(fiber.Map{
		"products":       stats.Products,
		"analyses":       stats.Analyses,
		"reviews_stored": stats.ReviewsStored,
		"last_analyzed":  stats.LastAnalyzed,
		"time":           time.Now().Unix(),
	})
}
