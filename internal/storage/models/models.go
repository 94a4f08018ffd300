package models

import "time"

// Review is a single collected consumer review. Rating is 0 when the source
// page did not declare one; Option is the purchased variant, or the sentinel
// "no option" when the page showed none.
type Review struct {
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
	Date     string `json:"date"`
	Option   string `json:"option"`
	Content  string `json:"content"`
}

type Product struct {
	ID          int64
	Code        string
	Brand       string
	Name        string
	Category    string
	Price       string
	URL         string
	ReviewTotal int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CategoryScore is the percent of positive reviews among reviews that
// mention the category at all. Mentions is that denominator.
type CategoryScore struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Mentions int     `json:"mentions"`
}

// SentimentReport aggregates one analysis run. NeutralCount is part of the
// stable schema for downstream consumers; it stays zero while neutral
// outcomes collapse into the positive label.
type SentimentReport struct {
	ReviewCount    int             `json:"review_count"`
	PositiveCount  int             `json:"positive_count"`
	NegativeCount  int             `json:"negative_count"`
	NeutralCount   int             `json:"neutral_count"`
	PositiveRatio  float64         `json:"positive_ratio"`
	TopPositive    []KeywordCount  `json:"top_positive"`
	TopNegative    []KeywordCount  `json:"top_negative"`
	CategoryScores []CategoryScore `json:"category_scores"`
	Strengths      []string        `json:"strengths"`
	Weaknesses     []string        `json:"weaknesses"`
	Summary        string          `json:"summary"`
}

type UniqueFeature struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type MarketingSignal struct {
	RepeatedKeywords    []KeywordCount  `json:"repeated_keywords"`
	CompetitorMentions  []KeywordCount  `json:"competitor_mentions"`
	ComparisonSentences []string        `json:"comparison_sentences"`
	UniqueFeatures      []UniqueFeature `json:"unique_features"`
	Suggestions         string          `json:"suggestions"`
}

// ReviewAnalysis is the persisted outcome of one pipeline run for a product.
type ReviewAnalysis struct {
	ID            string          `json:"id"`
	ProductCode   string          `json:"product_code"`
	Brand         string          `json:"brand"`
	ProductName   string          `json:"product_name"`
	Sentiment     SentimentReport `json:"sentiment"`
	Marketing     MarketingSignal `json:"marketing"`
	USPCandidates []KeywordCount  `json:"usp_candidates"`
	ViralKeywords []KeywordCount  `json:"viral_keywords"`
	Samples       []string        `json:"samples"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CrawlHistory struct {
	ID            int64     `json:"id"`
	ProductCode   string    `json:"product_code"`
	Category      string    `json:"category"`
	Collected     int       `json:"collected"`
	DeclaredTotal int       `json:"declared_total"`
	DurationMS    int       `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

type Statistics struct {
	Products      int       `json:"products"`
	Analyses      int       `json:"analyses"`
	ReviewsStored int       `json:"reviews_stored"`
	LastAnalyzed  time.Time `json:"last_analyzed"`
}
