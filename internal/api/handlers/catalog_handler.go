package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/catalog"
	"github.com/reviewlens/backend/pkg/logger"
)

type CatalogHandler struct {
	scraper *catalog.Scraper
	store   AnalysisStore
}

func NewCatalogHandler(scraper *catalog.Scraper, store AnalysisStore) *CatalogHandler {
	return &CatalogHandler{
		scraper: scraper,
		store:   store,
	}
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": catalog.Categories(),
	})
}

func (h *CatalogHandler) GetBestSellers(c *fiber.Ctx) error {
	category := c.Params("category")
	pages := c.QueryInt("pages", 1)
	if pages < 1 {
		pages = 1
	}
	if pages > 5 {
		pages = 5
	}

	products, err := h.scraper.FetchBestSellers(c.Context(), category, pages)
	if err != nil && len(products) == 0 {
		logger.Error("Best-seller fetch failed",
			zap.String("category", category),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch best sellers",
		})
	}
	if err != nil {
		logger.Warn("Best-seller fetch was partial",
			zap.String("category", category),
			zap.Int("products", len(products)),
			zap.Error(err))
	}

	known, storeErr := h.store.GetAnalyzedProductCodes()
	if storeErr != nil {
		logger.Warn("Failed to load analyzed codes", zap.Error(storeErr))
	}

	return c.JSON(fiber.Map{
		"category":     category,
		"products":     products,
		"count":        len(products),
		"new_products": catalog.NewProducts(products, known),
	})
}
