package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/config"
	"github.com/reviewlens/backend/pkg/logger"
	"github.com/reviewlens/backend/pkg/retry"
)

// categoryCodes maps human category names to the shop's listing codes.
var categoryCodes = map[string]string{
	"skincare":  "100000100010001",
	"mask":      "100000100010009",
	"cleansing": "100000100010010",
	"suncare":   "100000100010011",
	"makeup":    "100000100020001",
	"haircare":  "100000100030002",
	"bodycare":  "100000100030001",
}

// Scraper pulls paginated best-seller listings for seeding the analysis
// queue.
type Scraper struct {
	cfg        config.CatalogConfig
	httpClient *http.Client
}

func NewScraper(cfg config.CatalogConfig) *Scraper {
	return &Scraper{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
	}
}

// Categories lists the known category names, sorted.
func Categories() []string {
	out := make([]string, 0, len(categoryCodes))
	for name := range categoryCodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FetchBestSellers walks up to pages listing pages for a category. A page
// that yields zero products ends the walk early; transient fetch failures
// are retried with backoff.
func (s *Scraper) FetchBestSellers(ctx context.Context, category string, pages int) ([]models.Product, error) {
	code, ok := categoryCodes[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if pages < 1 {
		pages = 1
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 2
	retryCfg.Logger = logger.GetLogger()

	var products []models.Product
	for page := 1; page <= pages; page++ {
		pageURL := s.listingURL(code, page)

		doc, err := retry.DoWithResult(ctx, retryCfg, func() (*goquery.Document, error) {
			return s.fetchPage(ctx, pageURL)
		})
		if err != nil {
			return products, fmt.Errorf("failed to fetch listing page %d: %w", page, err)
		}

		found := s.parseListing(doc, category)
		if len(found) == 0 {
			break
		}
		products = append(products, found...)
	}

	logger.Info("best sellers fetched",
		zap.String("category", category),
		zap.Int("products", len(products)))

	return products, nil
}

func (s *Scraper) listingURL(code string, page int) string {
	q := url.Values{}
	q.Set("dispCatNo", code)
	q.Set("pageIdx", strconv.Itoa(page))
	q.Set("rowsPerPage", strconv.Itoa(s.cfg.ItemsPerPage))
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/display/category?" + q.Encode()
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// parseListing extracts products from one listing page. A node missing its
// product code is skipped; any other missing field stays empty.
func (s *Scraper) parseListing(doc *goquery.Document, category string) []models.Product {
	products := make([]models.Product, 0)

	doc.Find("ul.prd-list li.prd-item").Each(func(_ int, sel *goquery.Selection) {
		code, ok := sel.Attr("data-product-code")
		if !ok || strings.TrimSpace(code) == "" {
			return
		}
		link, _ := sel.Find("a.prd-link").Attr("href")

		products = append(products, models.Product{
			Code:     strings.TrimSpace(code),
			Brand:    strings.TrimSpace(sel.Find(".prd-brand").Text()),
			Name:     strings.TrimSpace(sel.Find(".prd-name").Text()),
			Price:    strings.TrimSpace(sel.Find(".prd-price").Text()),
			URL:      link,
			Category: category,
		})
	})

	return products
}

// NewProducts filters fetched products down to codes not yet analyzed.
func NewProducts(fetched []models.Product, knownCodes []string) []models.Product {
	known := make(map[string]struct{}, len(knownCodes))
	for _, c := range knownCodes {
		known[c] = struct{}{}
	}
	out := make([]models.Product, 0, len(fetched))
	for _, p := range fetched {
		if _, ok := known[p.Code]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
