package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/pipeline"
	"github.com/reviewlens/backend/pkg/logger"
)

// WebSocketHandler streams collection progress to the client while a
// pipeline run is in flight.
type WebSocketHandler struct {
	pipeline *pipeline.Pipeline
}

func NewWebSocketHandler(p *pipeline.Pipeline) *WebSocketHandler {
	return &WebSocketHandler{
		pipeline: p,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type        string `json:"type"`
			ProductCode string `json:"product_code"`
			MaxReviews  int    `json:"max_reviews"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "analyze" {
			continue
		}
		if msg.ProductCode == "" {
			h.sendError(c, "product_code is required")
			continue
		}
		if msg.MaxReviews <= 0 {
			msg.MaxReviews = 100
		}

		logger.Info("Processing WebSocket analysis request",
			zap.String("product", msg.ProductCode))

		err = h.runWithProgress(c, msg.ProductCode, msg.MaxReviews)
		if err != nil {
			logger.Error("Failed to run analysis", zap.Error(err))
			h.sendError(c, "Analysis failed")
		}
	}
}

func (h *WebSocketHandler) runWithProgress(c *websocket.Conn, productCode string, maxReviews int) error {
	ctx := context.Background()

	progress := func(current, target int, message string) {
		h.send(c, map[string]interface{}{
			"type":    "progress",
			"current": current,
			"target":  target,
			"message": message,
		})
	}

	rec, err := h.pipeline.Run(ctx, productCode, maxReviews, progress)
	if err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type":           "complete",
		"analysis_id":    rec.ID,
		"product_code":   rec.ProductCode,
		"review_count":   rec.Sentiment.ReviewCount,
		"positive_ratio": rec.Sentiment.PositiveRatio,
		"summary":        rec.Sentiment.Summary,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msg map[string]interface{}) {
	if err := c.WriteJSON(msg); err != nil {
		logger.Warn("Failed to write WebSocket message", zap.Error(err))
	}
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	h.send(c, map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
