package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/storage/models"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, c.InitSchema())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestUpsertProduct(t *testing.T) {
	c := testClient(t)

	p := &models.Product{Code: "A001", Brand: "GlowLab", Name: "Cica Serum", Category: "skincare"}

	id, isNew, err := c.UpsertProduct(p)
	require.NoError(t, err)
	require.True(t, isNew)
	require.Greater(t, id, int64(0))

	p.Name = "Cica Serum 2.0"
	again, isNew, err := c.UpsertProduct(p)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, id, again)
}

func TestSaveAndGetReviewAnalysis(t *testing.T) {
	c := testClient(t)

	rec := &models.ReviewAnalysis{
		ID:          "run-1",
		ProductCode: "A001",
		Brand:       "GlowLab",
		ProductName: "Cica Serum",
		Sentiment: models.SentimentReport{
			ReviewCount:   2,
			PositiveCount: 1,
			NegativeCount: 1,
			PositiveRatio: 50.0,
			TopPositive:   []models.KeywordCount{{Word: "soothing", Count: 1}},
			Summary:       "Mixed reception, opinions split (50.0% positive)",
		},
		Marketing: models.MarketingSignal{
			RepeatedKeywords: []models.KeywordCount{{Word: "moistur", Count: 5}},
			Suggestions:      "[Unique Points]\n- none\n",
		},
		USPCandidates: []models.KeywordCount{{Word: "cica", Count: 3}},
		ViralKeywords: []models.KeywordCount{{Word: "tiktok", Count: 2}},
		Samples:       []string{"soothing and gentle"},
	}

	require.NoError(t, c.SaveReviewAnalysis(rec))

	got, err := c.GetReviewAnalysis("A001")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "run-1", got.ID)
	require.Equal(t, 50.0, got.Sentiment.PositiveRatio)
	require.Equal(t, "cica", got.USPCandidates[0].Word)
	require.Equal(t, []string{"soothing and gentle"}, got.Samples)

	// upsert replaces by product code
	rec.ID = "run-2"
	rec.Sentiment.PositiveRatio = 75.0
	require.NoError(t, c.SaveReviewAnalysis(rec))

	got, err = c.GetReviewAnalysis("A001")
	require.NoError(t, err)
	require.Equal(t, "run-2", got.ID)
	require.Equal(t, 75.0, got.Sentiment.PositiveRatio)

	codes, err := c.GetAnalyzedProductCodes()
	require.NoError(t, err)
	require.Equal(t, []string{"A001"}, codes)
}

func TestGetReviewAnalysisMissing(t *testing.T) {
	c := testClient(t)

	got, err := c.GetReviewAnalysis("nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCrawlHistory(t *testing.T) {
	c := testClient(t)

	require.NoError(t, c.AddCrawlHistory(&models.CrawlHistory{
		ProductCode:   "A001",
		Category:      "skincare",
		Collected:     120,
		DeclaredTotal: 150,
		DurationMS:    9000,
	}))

	history, err := c.GetCrawlHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "A001", history[0].ProductCode)
	require.Equal(t, 120, history[0].Collected)
}

func TestStatistics(t *testing.T) {
	c := testClient(t)

	_, _, err := c.UpsertProduct(&models.Product{Code: "A001"})
	require.NoError(t, err)
	require.NoError(t, c.SaveReviewAnalysis(&models.ReviewAnalysis{ID: "r", ProductCode: "A001"}))
	require.NoError(t, c.AddCrawlHistory(&models.CrawlHistory{ProductCode: "A001", Collected: 40}))

	stats, err := c.Statistics()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Products)
	require.Equal(t, 1, stats.Analyses)
	require.Equal(t, 40, stats.ReviewsStored)
	require.False(t, stats.LastAnalyzed.IsZero())
}
