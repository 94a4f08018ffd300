package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT UNIQUE NOT NULL,
		brand TEXT,
		name TEXT,
		category TEXT,
		price TEXT,
		url TEXT,
		review_total INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

	CREATE TABLE IF NOT EXISTS review_analysis (
		id TEXT NOT NULL,
		product_code TEXT PRIMARY KEY,
		brand TEXT,
		product_name TEXT,
		sentiment TEXT NOT NULL,
		marketing TEXT NOT NULL,
		usp_candidates TEXT,
		viral_keywords TEXT,
		samples TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_updated ON review_analysis(updated_at);

	CREATE TABLE IF NOT EXISTS crawl_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_code TEXT NOT NULL,
		category TEXT,
		collected INTEGER NOT NULL,
		declared_total INTEGER,
		duration_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_crawl_product ON crawl_history(product_code);
	CREATE INDEX IF NOT EXISTS idx_crawl_created ON crawl_history(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}

// UpsertProduct inserts or refreshes a product by code. isNew reports
// whether the code was unseen before this call.
func (c *Client) UpsertProduct(p *models.Product) (int64, bool, error) {
	now := time.Now().Unix()

	var id int64
	err := c.db.QueryRow("SELECT id FROM products WHERE code = ?", p.Code).Scan(&id)
	if err == sql.ErrNoRows {
		res, err := c.db.Exec(`
			INSERT INTO products (code, brand, name, category, price, url, review_total, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Code, p.Brand, p.Name, p.Category, p.Price, p.URL, p.ReviewTotal, now, now)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert product: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read inserted product id: %w", err)
		}
		return id, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up product: %w", err)
	}

	_, err = c.db.Exec(`
		UPDATE products
		SET brand = ?, name = ?, category = ?, price = ?, url = ?, review_total = ?, updated_at = ?
		WHERE id = ?`,
		p.Brand, p.Name, p.Category, p.Price, p.URL, p.ReviewTotal, now, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to update product: %w", err)
	}
	return id, false, nil
}

// SaveReviewAnalysis upserts one analysis record by product code. List and
// map fields are stored as JSON blobs.
func (c *Client) SaveReviewAnalysis(rec *models.ReviewAnalysis) error {
	sentiment, err := json.Marshal(rec.Sentiment)
	if err != nil {
		return fmt.Errorf("failed to encode sentiment: %w", err)
	}
	marketing, err := json.Marshal(rec.Marketing)
	if err != nil {
		return fmt.Errorf("failed to encode marketing: %w", err)
	}
	candidates, err := json.Marshal(rec.USPCandidates)
	if err != nil {
		return fmt.Errorf("failed to encode usp candidates: %w", err)
	}
	viral, err := json.Marshal(rec.ViralKeywords)
	if err != nil {
		return fmt.Errorf("failed to encode viral keywords: %w", err)
	}
	samples, err := json.Marshal(rec.Samples)
	if err != nil {
		return fmt.Errorf("failed to encode samples: %w", err)
	}

	now := time.Now().Unix()
	_, err = c.db.Exec(`
		INSERT INTO review_analysis
			(id, product_code, brand, product_name, sentiment, marketing, usp_candidates, viral_keywords, samples, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_code) DO UPDATE SET
			id = excluded.id,
			brand = excluded.brand,
			product_name = excluded.product_name,
			sentiment = excluded.sentiment,
			marketing = excluded.marketing,
			usp_candidates = excluded.usp_candidates,
			viral_keywords = excluded.viral_keywords,
			samples = excluded.samples,
			updated_at = excluded.updated_at`,
		rec.ID, rec.ProductCode, rec.Brand, rec.ProductName,
		string(sentiment), string(marketing), string(candidates), string(viral), string(samples),
		now, now)
	if err != nil {
		return fmt.Errorf("failed to save review analysis: %w", err)
	}
	return nil
}

// GetReviewAnalysis returns the stored analysis for a product code, or nil
// when none exists.
func (c *Client) GetReviewAnalysis(productCode string) (*models.ReviewAnalysis, error) {
	var (
		rec                                            models.ReviewAnalysis
		sentiment, marketing, candidates, viral, samps string
		createdAt, updatedAt                           int64
	)
	err := c.db.QueryRow(`
		SELECT id, product_code, brand, product_name, sentiment, marketing, usp_candidates, viral_keywords, samples, created_at, updated_at
		FROM review_analysis WHERE product_code = ?`, productCode).Scan(
		&rec.ID, &rec.ProductCode, &rec.Brand, &rec.ProductName,
		&sentiment, &marketing, &candidates, &viral, &samps,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review analysis: %w", err)
	}

	if err := json.Unmarshal([]byte(sentiment), &rec.Sentiment); err != nil {
		return nil, fmt.Errorf("failed to decode sentiment: %w", err)
	}
	if err := json.Unmarshal([]byte(marketing), &rec.Marketing); err != nil {
		return nil, fmt.Errorf("failed to decode marketing: %w", err)
	}
	if candidates != "" {
		if err := json.Unmarshal([]byte(candidates), &rec.USPCandidates); err != nil {
			return nil, fmt.Errorf("failed to decode usp candidates: %w", err)
		}
	}
	if viral != "" {
		if err := json.Unmarshal([]byte(viral), &rec.ViralKeywords); err != nil {
			return nil, fmt.Errorf("failed to decode viral keywords: %w", err)
		}
	}
	if samps != "" {
		if err := json.Unmarshal([]byte(samps), &rec.Samples); err != nil {
			return nil, fmt.Errorf("failed to decode samples: %w", err)
		}
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)

	return &rec, nil
}

// GetAnalyzedProductCodes lists the codes with a stored analysis, most
// recently updated first.
func (c *Client) GetAnalyzedProductCodes() ([]string, error) {
	rows, err := c.db.Query("SELECT product_code FROM review_analysis ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list analyzed products: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan product code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (c *Client) AddCrawlHistory(h *models.CrawlHistory) error {
	_, err := c.db.Exec(`
		INSERT INTO crawl_history (product_code, category, collected, declared_total, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.ProductCode, h.Category, h.Collected, h.DeclaredTotal, h.DurationMS, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record crawl history: %w", err)
	}
	return nil
}

func (c *Client) GetCrawlHistory(limit int) ([]models.CrawlHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.Query(`
		SELECT id, product_code, category, collected, declared_total, duration_ms, created_at
		FROM crawl_history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl history: %w", err)
	}
	defer rows.Close()

	history := []models.CrawlHistory{}
	for rows.Next() {
		var (
			h         models.CrawlHistory
			createdAt int64
		)
		if err := rows.Scan(&h.ID, &h.ProductCode, &h.Category, &h.Collected, &h.DeclaredTotal, &h.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan crawl history: %w", err)
		}
		h.CreatedAt = time.Unix(createdAt, 0)
		history = append(history, h)
	}
	return history, rows.Err()
}

func (c *Client) Statistics() (*models.Statistics, error) {
	stats := &models.Statistics{}

	if err := c.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&stats.Products); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM review_analysis").Scan(&stats.Analyses); err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}
	if err := c.db.QueryRow("SELECT COALESCE(SUM(collected), 0) FROM crawl_history").Scan(&stats.ReviewsStored); err != nil {
		return nil, fmt.Errorf("failed to sum collected reviews: %w", err)
	}

	var last sql.NullInt64
	if err := c.db.QueryRow("SELECT MAX(updated_at) FROM review_analysis").Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to read last analysis time: %w", err)
	}
	if last.Valid {
		stats.LastAnalyzed = time.Unix(last.Int64, 0)
	}

	return stats, nil
}
