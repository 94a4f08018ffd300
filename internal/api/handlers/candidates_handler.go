package handlers

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/internal/usp"
	"github.com/reviewlens/backend/pkg/logger"
)

type CandidatesHandler struct {
	dict *usp.Dictionary
	mu   *sync.Mutex
}

func NewCandidatesHandler(dict *usp.Dictionary, mu *sync.Mutex) *CandidatesHandler {
	return &CandidatesHandler{
		dict: dict,
		mu:   mu,
	}
}

func (h *CandidatesHandler) ListCandidates(c *fiber.Ctx) error {
	h.mu.Lock()
	pending := h.dict.PendingCandidates()
	h.mu.Unlock()

	return c.JSON(fiber.Map{
		"candidates": pending,
		"count":      len(pending),
	})
}

func (h *CandidatesHandler) ApproveCandidate(c *fiber.Ctx) error {
	var req struct {
		Word     string `json:"word"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Word == "" || req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "word and category are required",
		})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.dict.ApproveCandidate(req.Word, req.Category); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.dict.SaveAll(); err != nil {
		logger.Error("Failed to persist candidate approval", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist dictionary",
		})
	}

	metrics.CandidateTransitions.WithLabelValues("approved").Inc()
	logger.Info("Candidate approved",
		zap.String("word", req.Word),
		zap.String("category", req.Category))

	return c.JSON(fiber.Map{
		"word":     req.Word,
		"category": req.Category,
		"status":   "approved",
	})
}

// DetectCandidates runs discovery over caller-supplied review texts and
// queues anything new for curation.
func (h *CandidatesHandler) DetectCandidates(c *fiber.Ctx) error {
	var req struct {
		Reviews []string `json:"reviews"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Reviews) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "reviews are required",
		})
	}

	reviews := make([]models.Review, len(req.Reviews))
	for i, text := range req.Reviews {
		reviews[i] = models.Review{Content: text}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sentences := h.dict.ExtractCandidates(reviews)
	detectInput := make([]models.Review, len(sentences))
	for i, s := range sentences {
		detectInput[i] = models.Review{Content: s.Sentence}
	}
	detected := h.dict.DetectNewCandidates(detectInput)

	queued := h.dict.QueueCandidates(detected, sentences, "manual")
	if queued > 0 {
		metrics.CandidateTransitions.WithLabelValues("discovered").Add(float64(queued))
		if err := h.dict.SaveAll(); err != nil {
			logger.Error("Failed to persist candidate queue", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to persist dictionary",
			})
		}
	}

	return c.JSON(fiber.Map{
		"detected":  detected,
		"queued":    queued,
		"sentences": len(sentences),
	})
}

func (h *CandidatesHandler) RejectCandidate(c *fiber.Ctx) error {
	var req struct {
		Word   string `json:"word"`
		Reason string `json:"reason"`
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

	if err := h.dict.RejectCandidate(req.Word, req.Reason); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.dict.SaveAll(); err != nil {
		logger.Error("Failed to persist candidate rejection", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist dictionary",
		})
	}

	metrics.CandidateTransitions.WithLabelValues("rejected").Inc()

	return c.JSON(fiber.Map{
		"word":   req.Word,
		"status": "rejected",
	})
}
