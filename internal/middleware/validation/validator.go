package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	productCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,40}$`)
	keywordPattern     = regexp.MustCompile(`^[a-z][a-z '-]{0,49}$`)
)

type Config struct {
	MaxReviewsCap int
	Logger        *zap.Logger
}

// Middleware validates the mutating endpoints before they reach a handler.
// Product codes are opaque retailer identifiers; dictionary keywords are
// lowercase phrases.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxReviewsCap == 0 {
		cfg.MaxReviewsCap = 2000
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != "POST" {
			return c.Next()
		}

		path := c.Path()

		if strings.HasSuffix(path, "/analyze") {
			var req struct {
				ProductCode string `json:"product_code"`
				MaxReviews  int    `json:"max_reviews"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if !productCodePattern.MatchString(req.ProductCode) {
				cfg.Logger.Warn("Rejected malformed product code",
					zap.String("ip", c.IP()),
					zap.String("product_code", req.ProductCode),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "product_code must be alphanumeric",
				})
			}

			if req.MaxReviews < 0 || req.MaxReviews > cfg.MaxReviewsCap {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "max_reviews out of range",
				})
			}
		}

		if strings.Contains(path, "/taxonomy/") || strings.Contains(path, "/candidates/") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if word, ok := req["word"].(string); ok && word != "" {
				if strings.Contains(path, "/taxonomy/") && !keywordPattern.MatchString(word) {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "word must be a lowercase phrase",
					})
				}
				if len(word) > 50 {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "word exceeds maximum length",
					})
				}
			}

			if reason, ok := req["reason"].(string); ok && len(reason) > 500 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "reason exceeds maximum length",
				})
			}
		}

		return c.Next()
	}
}
