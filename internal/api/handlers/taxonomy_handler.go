package handlers

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/usp"
	"github.com/reviewlens/backend/pkg/logger"
)

// TaxonomyHandler serves the trigger-keyword dictionary. All mutation goes
// through mu, shared with the pipeline's candidate discovery.
type TaxonomyHandler struct {
	dict *usp.Dictionary
	mu   *sync.Mutex
}

func NewTaxonomyHandler(dict *usp.Dictionary, mu *sync.Mutex) *TaxonomyHandler {
	return &TaxonomyHandler{
		dict: dict,
		mu:   mu,
	}
}

func (h *TaxonomyHandler) GetTaxonomy(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return c.JSON(fiber.Map{
		"categories": h.dict.Taxonomy,
		"exclusions": h.dict.Exclusions,
	})
}

func (h *TaxonomyHandler) AddKeyword(c *fiber.Ctx) error {
	category := c.Params("category")

	var req struct {
		Word string `json:"word"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Word == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "word is required",
		})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dict.AddKeyword(category, req.Word) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Keyword already present or category unknown",
		})
	}

	if err := h.dict.SaveAll(); err != nil {
		logger.Error("Failed to persist taxonomy", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist taxonomy",
		})
	}

	logger.Info("Keyword added",
		zap.String("category", category),
		zap.String("word", req.Word))

	return c.JSON(fiber.Map{
		"category": category,
		"word":     req.Word,
		"status":   "added",
	})
}

func (h *TaxonomyHandler) RemoveKeyword(c *fiber.Ctx) error {
	category := c.Params("category")
	word := c.Params("word")

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dict.RemoveKeyword(category, word) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Keyword not found in category",
		})
	}

	if err := h.dict.SaveAll(); err != nil {
		logger.Error("Failed to persist taxonomy", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist taxonomy",
		})
	}

	return c.JSON(fiber.Map{
		"category": category,
		"word":     word,
		"status":   "removed",
	})
}

func (h *TaxonomyHandler) Highlight(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	h.mu.Lock()
	spans := h.dict.HighlightSpans(req.Text)
	h.mu.Unlock()

	return c.JSON(fiber.Map{
		"text":  req.Text,
		"spans": spans,
	})
}
