package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/analysis"
	"github.com/reviewlens/backend/internal/collector"
	"github.com/reviewlens/backend/internal/lexicon"
	"github.com/reviewlens/backend/internal/marketing"
	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/internal/usp"
	"github.com/reviewlens/backend/pkg/config"
)

type fakeCollector struct {
	res *collector.Result
	err error
}

func (f *fakeCollector) Collect(ctx context.Context, productCode string, target int, progress collector.Progress) (*collector.Result, error) {
	return f.res, f.err
}

type fakeStore struct {
	products []*models.Product
	analyses []*models.ReviewAnalysis
	history  []*models.CrawlHistory
	saveErr  error
}

func (f *fakeStore) UpsertProduct(p *models.Product) (int64, bool, error) {
	f.products = append(f.products, p)
	return int64(len(f.products)), true, nil
}

func (f *fakeStore) SaveReviewAnalysis(rec *models.ReviewAnalysis) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.analyses = append(f.analyses, rec)
	return nil
}

func (f *fakeStore) AddCrawlHistory(h *models.CrawlHistory) error {
	f.history = append(f.history, h)
	return nil
}

type fakeCache struct {
	set         map[string]*models.ReviewAnalysis
	invalidated []string
}

func (f *fakeCache) SetAnalysis(ctx context.Context, productCode string, rec *models.ReviewAnalysis, ttl time.Duration) error {
	if f.set == nil {
		f.set = map[string]*models.ReviewAnalysis{}
	}
	f.set[productCode] = rec
	return nil
}

func (f *fakeCache) InvalidateAnalysis(ctx context.Context, productCode string) error {
	f.invalidated = append(f.invalidated, productCode)
	return nil
}

func testResult() *collector.Result {
	return &collector.Result{
		Product: collector.ProductIdentity{
			Code:          "A001",
			Brand:         "GlowLab",
			Name:          "Cica Serum",
			DeclaredTotal: 120,
		},
		Reviews: []models.Review{
			{Nickname: "a", Rating: 5, Content: "No irritation at all, very soothing and my skin looks glowing now. Saw it on TikTok and it lives up to the hype."},
			{Nickname: "b", Rating: 5, Content: "Absorbs quickly, gentle on sensitive skin, would repurchase for sure."},
			{Nickname: "c", Rating: 2, Content: "Smells way too strong, kind of fake. Left my face sticky."},
			{Nickname: "d", Rating: 5, Content: "My skin looks glowing after a week, better than CeraVe for me."},
		},
		Iterations: 6,
	}
}

func testPipeline(t *testing.T, coll ReviewCollector, store *fakeStore, cache Cache) *Pipeline {
	t.Helper()
	lex := lexicon.Load("")
	dict := usp.Load("", "", "")
	return New(Deps{
		Collector: coll,
		Analyzer:  analysis.NewAnalyzer(lex),
		Miner:     marketing.NewMiner(lex, 2),
		Dict:      dict,
		Store:     store,
		Cache:     cache,
		Analysis:  config.AnalysisConfig{MaxSamples: 30, SampleLength: 300},
		CacheTTL:  time.Hour,
	})
}

func TestRunProducesFullAnalysis(t *testing.T) {
	store := &fakeStore{}
	cache := &fakeCache{}
	p := testPipeline(t, &fakeCollector{res: testResult()}, store, cache)

	rec, err := p.Run(context.Background(), "A001", 100, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.NotEmpty(t, rec.ID)
	require.Equal(t, "A001", rec.ProductCode)
	require.Equal(t, "GlowLab", rec.Brand)
	require.Equal(t, "Cica Serum", rec.ProductName)
	require.Equal(t, 4, rec.Sentiment.ReviewCount)
	require.Equal(t, 3, rec.Sentiment.PositiveCount)
	require.Equal(t, 1, rec.Sentiment.NegativeCount)
	require.NotEmpty(t, rec.Marketing.Suggestions)
	require.Len(t, rec.Samples, 4)

	require.Len(t, store.products, 1)
	require.Equal(t, 120, store.products[0].ReviewTotal)
	require.Len(t, store.analyses, 1)
	require.Len(t, store.history, 1)
	require.Equal(t, 4, store.history[0].Collected)

	require.Equal(t, []string{"A001"}, cache.invalidated)
	require.Contains(t, cache.set, "A001")
}

func TestRunCountsViralKeywords(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(t, &fakeCollector{res: testResult()}, store, nil)

	rec, err := p.Run(context.Background(), "A001", 100, nil)
	require.NoError(t, err)

	found := false
	for _, kc := range rec.ViralKeywords {
		if kc.Word == "tiktok" {
			found = true
			require.Equal(t, 1, kc.Count)
		}
	}
	require.True(t, found, "expected tiktok in viral keyword counts")
}

func TestRunQueuesDiscoveredCandidates(t *testing.T) {
	res := testResult()
	res.Reviews = append(res.Reviews,
		models.Review{Nickname: "e", Rating: 5, Content: "The glowing finish is from the niacin they put in, niacin really works."},
		models.Review{Nickname: "f", Rating: 5, Content: "Glowing skin thanks to niacin I think."},
	)
	store := &fakeStore{}
	p := testPipeline(t, &fakeCollector{res: res}, store, nil)

	rec, err := p.Run(context.Background(), "A001", 100, nil)
	require.NoError(t, err)

	words := make([]string, 0, len(rec.USPCandidates))
	for _, kc := range rec.USPCandidates {
		words = append(words, kc.Word)
	}
	require.Contains(t, words, "niacin")

	pending := p.deps.Dict.PendingCandidates()
	require.NotEmpty(t, pending)
}

func TestRunPartialCollectionStillPersists(t *testing.T) {
	res := testResult()
	store := &fakeStore{}
	p := testPipeline(t, &fakeCollector{res: res, err: errors.New("session died")}, store, nil)

	rec, err := p.Run(context.Background(), "A001", 100, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Len(t, store.analyses, 1)
}

func TestRunEmptyCollectionFails(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(t, &fakeCollector{res: &collector.Result{}, err: errors.New("navigation failed")}, store, nil)

	rec, err := p.Run(context.Background(), "A001", 100, nil)
	require.Error(t, err)
	require.Nil(t, rec)
	require.Empty(t, store.analyses)
}

func TestRunSaveFailureSurfaces(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	p := testPipeline(t, &fakeCollector{res: testResult()}, store, nil)

	_, err := p.Run(context.Background(), "A001", 100, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}

func TestSampleReviewsTruncates(t *testing.T) {
	long := make([]rune, 400)
	for i := range long {
		long[i] = 'a'
	}
	reviews := []models.Review{
		{Content: string(long)},
		{Content: "short"},
		{Content: ""},
	}
	samples := sampleReviews(reviews, 30, 300)
	require.Len(t, samples, 2)
	require.Len(t, []rune(samples[0]), 300)
	require.Equal(t, "short", samples[1])
}

func TestSampleReviewsKeepsPurchaseOption(t *testing.T) {
	reviews := []models.Review{
		{Content: "Sinks in fast", Option: "30ml / light beige"},
		{Content: "Nothing special", Option: "no option"},
	}
	samples := sampleReviews(reviews, 30, 300)
	require.Equal(t, "[30ml / light beige] Sinks in fast", samples[0])
	require.Equal(t, "Nothing special", samples[1])
}
