package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/analysis"
	"github.com/reviewlens/backend/internal/collector"
	"github.com/reviewlens/backend/internal/marketing"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/internal/usp"
	"github.com/reviewlens/backend/pkg/config"
	"github.com/reviewlens/backend/pkg/logger"
)

// ReviewCollector abstracts the scroll-and-extract loop so tests can feed
// scripted batches.
type ReviewCollector interface {
	Collect(ctx context.Context, productCode string, target int, progress collector.Progress) (*collector.Result, error)
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	UpsertProduct(p *models.Product) (int64, bool, error)
	SaveReviewAnalysis(rec *models.ReviewAnalysis) error
	AddCrawlHistory(h *models.CrawlHistory) error
}

// Cache is optional; a nil Cache disables caching.
type Cache interface {
	SetAnalysis(ctx context.Context, productCode string, rec *models.ReviewAnalysis, ttl time.Duration) error
	InvalidateAnalysis(ctx context.Context, productCode string) error
}

// Deps wires the pipeline's collaborators. DictMu serializes dictionary
// mutation and saving with the administrative API handlers.
type Deps struct {
	Collector ReviewCollector
	Analyzer  *analysis.Analyzer
	Miner     *marketing.Miner
	Dict      *usp.Dictionary
	DictMu    *sync.Mutex
	Store     Store
	Cache     Cache
	Analysis  config.AnalysisConfig
	CacheTTL  time.Duration
}

// Pipeline runs collect, classify, analyze, mine, discover, persist as one
// flow for a single product.
type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	if deps.DictMu == nil {
		deps.DictMu = &sync.Mutex{}
	}
	return &Pipeline{deps: deps}
}

// Run executes the full pipeline for one product. A partial collection
// (session died mid-scroll) is still analyzed and persisted; only a
// collection that produced nothing at all fails the run.
func (p *Pipeline) Run(ctx context.Context, productCode string, target int, progress collector.Progress) (*models.ReviewAnalysis, error) {
	start := time.Now()

	res, collectErr := p.deps.Collector.Collect(ctx, productCode, target, progress)
	if collectErr != nil && (res == nil || len(res.Reviews) == 0) {
		metrics.AnalysisTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("collection failed for %s: %w", productCode, collectErr)
	}
	if collectErr != nil {
		logger.Warn("collection ended early, analyzing partial batch",
			zap.String("product", productCode),
			zap.Int("reviews", len(res.Reviews)),
			zap.Error(collectErr))
	}

	metrics.ReviewsCollected.Add(float64(len(res.Reviews)))
	metrics.CollectorIterations.Observe(float64(res.Iterations))
	if res.StallBy != "" {
		metrics.CollectorStalls.WithLabelValues(res.StallBy).Inc()
	}

	report := p.deps.Analyzer.Analyze(res.Reviews)
	metrics.SentimentLabels.WithLabelValues("positive").Add(float64(report.PositiveCount))
	metrics.SentimentLabels.WithLabelValues("negative").Add(float64(report.NegativeCount))

	signal := p.deps.Miner.Mine(res.Reviews, res.Product.Name, res.Product.Brand, report.Strengths)

	candidates, viral := p.discover(res.Reviews)

	rec := &models.ReviewAnalysis{
		ID:            uuid.NewString(),
		ProductCode:   productCode,
		Brand:         res.Product.Brand,
		ProductName:   res.Product.Name,
		Sentiment:     *report,
		Marketing:     *signal,
		USPCandidates: candidates,
		ViralKeywords: viral,
		Samples:       sampleReviews(res.Reviews, p.deps.Analysis.MaxSamples, p.deps.Analysis.SampleLength),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := p.persist(ctx, res, rec, time.Since(start)); err != nil {
		metrics.AnalysisTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	status := "ok"
	if collectErr != nil {
		status = "partial"
	}
	metrics.AnalysisTotal.WithLabelValues(status).Inc()
	metrics.AnalysisDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	logger.Info("pipeline run finished",
		zap.String("product", productCode),
		zap.String("status", status),
		zap.Int("reviews", report.ReviewCount),
		zap.Float64("positive_ratio", report.PositiveRatio),
		zap.Duration("took", time.Since(start)))

	return rec, nil
}

// discover runs USP sentence extraction, feeds those sentences into
// candidate detection, and queues new candidates for curator review.
func (p *Pipeline) discover(reviews []models.Review) ([]models.KeywordCount, []models.KeywordCount) {
	texts := make([]string, len(reviews))
	for i, r := range reviews {
		texts[i] = r.Content
	}

	p.deps.DictMu.Lock()
	defer p.deps.DictMu.Unlock()

	sentences := p.deps.Dict.ExtractCandidates(reviews)
	detectInput := make([]models.Review, len(sentences))
	for i, s := range sentences {
		detectInput[i] = models.Review{Content: s.Sentence}
	}

	candidates := p.deps.Dict.DetectNewCandidates(detectInput)
	queued := p.deps.Dict.QueueCandidates(candidates, sentences, "pipeline")
	if queued > 0 {
		metrics.CandidateTransitions.WithLabelValues("discovered").Add(float64(queued))
		if err := p.deps.Dict.SaveAll(); err != nil {
			logger.Warn("failed to persist candidate queue", zap.Error(err))
		}
	}

	return candidates, p.deps.Dict.CategoryKeywordCounts("viral", texts)
}

func (p *Pipeline) persist(ctx context.Context, res *collector.Result, rec *models.ReviewAnalysis, took time.Duration) error {
	_, _, err := p.deps.Store.UpsertProduct(&models.Product{
		Code:        res.Product.Code,
		Brand:       res.Product.Brand,
		Name:        res.Product.Name,
		ReviewTotal: res.Product.DeclaredTotal,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	if err := p.deps.Store.SaveReviewAnalysis(rec); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	if err := p.deps.Store.AddCrawlHistory(&models.CrawlHistory{
		ProductCode:   rec.ProductCode,
		Collected:     len(res.Reviews),
		DeclaredTotal: res.Product.DeclaredTotal,
		DurationMS:    int(took.Milliseconds()),
	}); err != nil {
		logger.Warn("failed to record crawl history", zap.Error(err))
	}

	if p.deps.Cache != nil {
		if err := p.deps.Cache.InvalidateAnalysis(ctx, rec.ProductCode); err != nil {
			logger.Warn("cache invalidation failed", zap.Error(err))
		}
		if err := p.deps.Cache.SetAnalysis(ctx, rec.ProductCode, rec, p.deps.CacheTTL); err != nil {
			logger.Warn("cache write failed", zap.Error(err))
		}
	}

	return nil
}

// sampleReviews keeps up to max truncated review bodies for the downstream
// prompt consumer. A meaningful purchase option is kept as a bracketed
// prefix; the "no option" sentinel is dropped.
func sampleReviews(reviews []models.Review, max, length int) []string {
	if max <= 0 {
		max = 30
	}
	if length <= 0 {
		length = 300
	}
	out := []string{}
	for _, r := range reviews {
		if len(out) >= max {
			break
		}
		body := r.Content
		if runes := []rune(body); len(runes) > length {
			body = string(runes[:length])
		}
		if body == "" {
			continue
		}
		if r.Option != "" && r.Option != "no option" {
			body = "[" + r.Option + "] " + body
		}
		out = append(out, body)
	}
	return out
}
