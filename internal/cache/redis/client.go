package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetAnalysis caches a finished analysis under its product code.
func (c *Client) SetAnalysis(ctx context.Context, productCode string, rec *models.ReviewAnalysis, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	err = c.client.Set(ctx, analysisKey(productCode), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set analysis cache: %w", err)
	}

	logger.Debug("Analysis cached", zap.String("product_code", productCode), zap.Duration("ttl", ttl))
	return nil
}

// GetAnalysis reads a cached analysis. The bool reports a hit; a miss is
// not an error.
func (c *Client) GetAnalysis(ctx context.Context, productCode string) (*models.ReviewAnalysis, bool, error) {
	data, err := c.client.Get(ctx, analysisKey(productCode)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get analysis cache: %w", err)
	}

	var rec models.ReviewAnalysis
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	logger.Debug("Analysis cache hit", zap.String("product_code", productCode))
	return &rec, true, nil
}

// InvalidateAnalysis drops a product's cached analysis, used before a
// re-analysis run.
func (c *Client) InvalidateAnalysis(ctx context.Context, productCode string) error {
	if err := c.client.Del(ctx, analysisKey(productCode)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate analysis cache: %w", err)
	}
	return nil
}

func analysisKey(productCode string) string {
	return fmt.Sprintf("analysis:%s", productCode)
}
