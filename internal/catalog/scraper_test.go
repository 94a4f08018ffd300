package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/config"
)

const listingFixture = `
<html><body>
<ul class="prd-list">
  <li class="prd-item" data-product-code="A001">
    <a class="prd-link" href="/product/A001"></a>
    <span class="prd-brand">GlowLab</span>
    <span class="prd-name">Cica Serum</span>
    <span class="prd-price">$18.00</span>
  </li>
  <li class="prd-item">
    <span class="prd-brand">NoCode</span>
    <span class="prd-name">Broken Node</span>
  </li>
  <li class="prd-item" data-product-code="A002">
    <span class="prd-name">Nameless Brand Toner</span>
  </li>
</ul>
</body></html>`

func testScraper(baseURL string) *Scraper {
	return NewScraper(config.CatalogConfig{
		BaseURL:      baseURL,
		ItemsPerPage: 48,
		TimeoutSec:   5,
		UserAgent:    "reviewlens-test",
	})
}

func TestParseListingSkipsBadNodes(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingFixture))
	require.NoError(t, err)

	got := testScraper("http://unused").parseListing(doc, "skincare")

	require.Len(t, got, 2)
	require.Equal(t, "A001", got[0].Code)
	require.Equal(t, "GlowLab", got[0].Brand)
	require.Equal(t, "Cica Serum", got[0].Name)
	require.Equal(t, "$18.00", got[0].Price)
	require.Equal(t, "/product/A001", got[0].URL)
	require.Equal(t, "skincare", got[0].Category)
	// missing brand is empty, not fatal
	require.Equal(t, "A002", got[1].Code)
	require.Empty(t, got[1].Brand)
}

func TestFetchBestSellersStopsOnEmptyPage(t *testing.T) {
	var pagesServed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("pageIdx")
		pagesServed = append(pagesServed, page)
		if page == "1" {
			w.Write([]byte(listingFixture))
			return
		}
		w.Write([]byte(`<html><body><ul class="prd-list"></ul></body></html>`))
	}))
	defer srv.Close()

	got, err := testScraper(srv.URL).FetchBestSellers(context.Background(), "skincare", 3)

	require.NoError(t, err)
	require.Len(t, got, 2)
	// page 2 came back empty, page 3 never requested
	require.Equal(t, []string{"1", "2"}, pagesServed)
}

func TestFetchBestSellersUnknownCategory(t *testing.T) {
	_, err := testScraper("http://unused").FetchBestSellers(context.Background(), "petfood", 1)

	require.Error(t, err)
}

func TestFetchBestSellersRetriesOnServerError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(listingFixture))
	}))
	defer srv.Close()

	got, err := testScraper(srv.URL).FetchBestSellers(context.Background(), "skincare", 1)

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 2, hits)
}

func TestNewProducts(t *testing.T) {
	fetched := []models.Product{{Code: "A001"}, {Code: "A002"}, {Code: "A003"}}

	got := NewProducts(fetched, []string{"A002"})

	require.Len(t, got, 2)
	require.Equal(t, "A001", got[0].Code)
	require.Equal(t, "A003", got[1].Code)
}

func TestCategories(t *testing.T) {
	cats := Categories()

	require.Contains(t, cats, "skincare")
	require.True(t, sortedStrings(cats))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
