package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/lexicon"
	"github.com/reviewlens/backend/internal/sentiment"
	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/logger"
)

const (
	topKeywords = 10
	// a synthesis group needs this many aggregate evidence mentions to fire
	minGroupMentions = 2
)

// Analyzer aggregates per-review classifications into a batch report.
type Analyzer struct {
	lex *lexicon.Lexicon
	cls *sentiment.Classifier
}

func NewAnalyzer(lex *lexicon.Lexicon) *Analyzer {
	return &Analyzer{
		lex: lex,
		cls: sentiment.NewClassifier(lex),
	}
}

// Classifier exposes the analyzer's classifier for per-review use.
func (a *Analyzer) Classifier() *sentiment.Classifier {
	return a.cls
}

// Analyze classifies every review and builds the aggregate report. An empty
// batch returns a zeroed, well-formed report.
func (a *Analyzer) Analyze(reviews []models.Review) *models.SentimentReport {
	report := &models.SentimentReport{
		TopPositive:    []models.KeywordCount{},
		TopNegative:    []models.KeywordCount{},
		CategoryScores: []models.CategoryScore{},
		Strengths:      []string{},
		Weaknesses:     []string{},
	}
	if len(reviews) == 0 {
		report.Summary = "No reviews available for analysis"
		return report
	}

	posCounts := make(map[string]int)
	negCounts := make(map[string]int)
	labels := make([]string, len(reviews))
	lowered := make([]string, len(reviews))

	for i, rev := range reviews {
		out := a.cls.ClassifyWithRating(rev.Content, rev.Rating)
		labels[i] = out.Label
		lowered[i] = strings.ToLower(rev.Content)
		if out.Label == lexicon.Positive {
			report.PositiveCount++
		} else {
			report.NegativeCount++
		}
		for _, w := range out.PositiveEvidence {
			posCounts[w]++
		}
		for _, w := range out.NegativeEvidence {
			negCounts[w]++
		}
	}

	report.ReviewCount = len(reviews)
	// Zero-score reviews collapse to positive, so the neutral bucket stays
	// empty. Set it explicitly to keep the report schema stable.
	report.NeutralCount = 0
	report.PositiveRatio = roundPercent(report.PositiveCount, report.ReviewCount)
	report.TopPositive = topCounts(posCounts, topKeywords)
	report.TopNegative = topCounts(negCounts, topKeywords)
	report.CategoryScores = a.categoryScores(lowered, labels)
	report.Strengths = synthesize(a.lex.StrengthGroups, posCounts)
	report.Weaknesses = synthesize(a.lex.WeaknessGroups, negCounts)
	report.Summary = summarize(report.PositiveRatio)

	logger.Info("review batch analyzed",
		zap.Int("reviews", report.ReviewCount),
		zap.Float64("positive_ratio", report.PositiveRatio))

	return report
}

// categoryScores computes, per topical category, the percent of positive
// reviews among reviews mentioning that category. Categories nobody mentions
// are omitted.
func (a *Analyzer) categoryScores(lowered, labels []string) []models.CategoryScore {
	scores := make([]models.CategoryScore, 0, len(a.lex.Categories))
	for _, cat := range a.lex.Categories {
		mentions, positive := 0, 0
		for i, text := range lowered {
			if !mentionsAny(text, cat.Keywords) {
				continue
			}
			mentions++
			if labels[i] == lexicon.Positive {
				positive++
			}
		}
		if mentions == 0 {
			continue
		}
		scores = append(scores, models.CategoryScore{
			Name:     cat.Name,
			Score:    roundPercent(positive, mentions),
			Mentions: mentions,
		})
	}
	return scores
}

func mentionsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// synthesize emits a group's canned sentence when its keywords gathered
// enough evidence mentions. Group order is the lexicon's order, so output is
// stable.
func synthesize(groups []lexicon.SynthesisGroup, counts map[string]int) []string {
	out := []string{}
	for _, g := range groups {
		total := 0
		for word, n := range counts {
			for _, stem := range g.Keywords {
				if strings.Contains(word, stem) {
					total += n
					break
				}
			}
		}
		if total >= minGroupMentions {
			out = append(out, g.Sentence)
		}
	}
	return out
}

func topCounts(counts map[string]int, limit int) []models.KeywordCount {
	out := make([]models.KeywordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, models.KeywordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func roundPercent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

func summarize(ratio float64) string {
	switch {
	case ratio >= 80:
		return fmt.Sprintf("Overwhelmingly positive reception (%.1f%% positive)", ratio)
	case ratio >= 60:
		return fmt.Sprintf("Mostly positive reception with some complaints (%.1f%% positive)", ratio)
	case ratio >= 40:
		return fmt.Sprintf("Mixed reception, opinions split (%.1f%% positive)", ratio)
	default:
		return fmt.Sprintf("Largely negative reception (%.1f%% positive)", ratio)
	}
}
