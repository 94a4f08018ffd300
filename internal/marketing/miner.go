package marketing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/reviewlens/backend/internal/lexicon"
	"github.com/reviewlens/backend/internal/storage/models"
)

const (
	maxRepeatedKeywords   = 20
	maxCompetitorMentions = 10
	maxComparisons        = 20
	maxUniqueFeatures     = 10
	maxPerFeatureCategory = 2
	minComparisonLength   = 10
	featureDedupPrefix    = 30
)

// competitor brand catalogue scanned in every review; own-brand entries are
// filtered per product.
var competitorBrands = []string{
	"CeraVe", "Cetaphil", "La Roche-Posay", "Neutrogena", "Aveeno",
	"The Ordinary", "Paula's Choice", "COSRX", "Innisfree", "Laneige",
	"Clinique", "Kiehl's", "Vanicream", "Eucerin", "Olay",
	"Drunk Elephant", "Glow Recipe", "Tatcha", "Byoma", "Round Lab",
}

var comparisonMarker = regexp.MustCompile(
	`(?i)\b(compared to|comparing|versus|vs\.?|better than|worse than|instead of|switched from|switched to|unlike)\b`)

var sentenceSplit = regexp.MustCompile(`[.!?\n]+`)

type featureRule struct {
	category string
	pattern  *regexp.Regexp
}

// ordered catalogue; earlier rules win when a review matches several, and
// category order doubles as the priority used when trimming output. Concrete
// product traits rank ahead of generic novelty and exclusivity phrasing.
var featureCatalogue = []featureRule{
	{"texture", regexp.MustCompile(`(?i)\b((texture|consistency|formula|formulation)\b.{0,40}\b(unique|unusual|so different|unlike anything|never (seen|tried|felt)|first time)|never (seen|tried|felt) (a|this|such a) (texture|formula|consistency)|(gel|balm|jelly|mousse).to.(oil|water|foam))`)},
	{"design", regexp.MustCompile(`(?i)\b((packaging|design|bottle|jar|pump|applicator|container)\b.{0,40}\b(unique|unusual|clever|gorgeous|adorable|never seen|first time)|(unique|unusual|clever|gorgeous|adorable) (packaging|design|bottle|jar|pump|applicator))`)},
	{"usage-feel", regexp.MustCompile(`(?i)\b(feels? like nothing else|(feel|feeling|sensation)\b.{0,30}\b(unique|unusual|unlike anything|never felt)|never felt anything like)`)},
	{"scent", regexp.MustCompile(`(?i)\b((scent|smell|fragrance)\b.{0,40}\b(unique|unusual|unlike (any|anything)|never smelled|first time)|never smelled anything like)`)},
	{"ingredient", regexp.MustCompile(`(?i)\b(ingredient|extract|ferment|complex)s?\b.{0,40}\b(unique|unusual|rare|never (seen|heard of)|first time)`)},
	{"differentiation", regexp.MustCompile(`(?i)\b(unlike (any|other|anything|every)|different from (other|anything|everything)|better than (any|every|all|anything)|no other (product|brand|serum|cream)|switched from|replaced my|never going back|threw (away|out) my|won't go back)`)},
	{"discovery", regexp.MustCompile(`(?i)\b(finally found|game.?changer|holy grail|life.?changing|hidden gem|first time (trying|using|seeing)|never (tried|experienced) anything like)`)},
	{"exclusivity", regexp.MustCompile(`(?i)\b(the only (one|product|thing|cream|serum)|only (this|product) (works|helped)|nothing else (works|worked|compares|comes close)|can't (get|find) (this|it) anywhere else)`)},
	{"effect", regexp.MustCompile(`(?i)\b(result|effect)s?\b.{0,40}\b(unique|unusual|surprising|like nothing|never (seen|had))`)},
}

// Miner extracts marketing-oriented signals from a review batch. minCount is
// the repeat threshold below which a keyword is noise.
type Miner struct {
	lex      *lexicon.Lexicon
	minCount int
}

func NewMiner(lex *lexicon.Lexicon, minCount int) *Miner {
	if minCount < 1 {
		minCount = 1
	}
	return &Miner{lex: lex, minCount: minCount}
}

// Mine builds the marketing signal for one product's review batch. brand is
// the product's own brand, excluded from competitor matching in both
// substring directions. strengths are the analyzer's synthesized strength
// sentences, restated in the suggestion brief.
func (m *Miner) Mine(reviews []models.Review, productName, brand string, strengths []string) *models.MarketingSignal {
	sig := &models.MarketingSignal{
		RepeatedKeywords:    []models.KeywordCount{},
		CompetitorMentions:  []models.KeywordCount{},
		ComparisonSentences: []string{},
		UniqueFeatures:      []models.UniqueFeature{},
	}
	if len(reviews) == 0 {
		sig.Suggestions = buildSuggestions(sig, productName, strengths)
		return sig
	}

	lowered := make([]string, len(reviews))
	for i, rev := range reviews {
		lowered[i] = strings.ToLower(rev.Content)
	}

	sig.RepeatedKeywords = m.repeatedKeywords(lowered)
	sig.CompetitorMentions = competitorMentions(lowered, brand)
	sig.ComparisonSentences = comparisonSentences(reviews)
	sig.UniqueFeatures = uniqueFeatures(reviews)
	sig.Suggestions = buildSuggestions(sig, productName, strengths)

	return sig
}

// repeatedKeywords counts total occurrences of each topical feature keyword
// across the batch, keeps those at or above the repeat threshold, top 20 by
// count.
func (m *Miner) repeatedKeywords(lowered []string) []models.KeywordCount {
	counts := make(map[string]int)
	for _, cat := range m.lex.Categories {
		for _, kw := range cat.Keywords {
			n := 0
			for _, text := range lowered {
				n += strings.Count(text, kw)
			}
			if n >= m.minCount {
				counts[kw] = n
			}
		}
	}
	return sortCounts(counts, maxRepeatedKeywords)
}

func competitorMentions(lowered []string, brand string) []models.KeywordCount {
	own := strings.ToLower(strings.TrimSpace(brand))
	counts := make(map[string]int)
	for _, name := range competitorBrands {
		lname := strings.ToLower(name)
		if own != "" && (strings.Contains(lname, own) || strings.Contains(own, lname)) {
			continue
		}
		n := 0
		for _, text := range lowered {
			if strings.Contains(text, lname) {
				n++
			}
		}
		if n > 0 {
			counts[name] = n
		}
	}
	return sortCounts(counts, maxCompetitorMentions)
}

func comparisonSentences(reviews []models.Review) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, rev := range reviews {
		for _, raw := range sentenceSplit.Split(rev.Content, -1) {
			s := strings.TrimSpace(raw)
			if len(s) <= minComparisonLength || !comparisonMarker.MatchString(s) {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
			if len(out) >= maxComparisons {
				return out
			}
		}
	}
	return out
}

// uniqueFeatures tags each review with the first catalogue rule it matches,
// dedups on a 30-char content prefix, then keeps at most two reviews per
// category in catalogue order.
func uniqueFeatures(reviews []models.Review) []models.UniqueFeature {
	byCategory := make(map[string][]string)
	seen := make(map[string]struct{})

	for _, rev := range reviews {
		text := strings.TrimSpace(rev.Content)
		if text == "" {
			continue
		}
		prefix := text
		if len(prefix) > featureDedupPrefix {
			prefix = prefix[:featureDedupPrefix]
		}
		if _, dup := seen[prefix]; dup {
			continue
		}
		for _, rule := range featureCatalogue {
			if rule.pattern.MatchString(text) {
				seen[prefix] = struct{}{}
				byCategory[rule.category] = append(byCategory[rule.category], text)
				break
			}
		}
	}

	out := []models.UniqueFeature{}
	for _, rule := range featureCatalogue {
		texts := byCategory[rule.category]
		if len(texts) > maxPerFeatureCategory {
			texts = texts[:maxPerFeatureCategory]
		}
		for _, t := range texts {
			out = append(out, models.UniqueFeature{Category: rule.category, Text: t})
			if len(out) >= maxUniqueFeatures {
				return out
			}
		}
	}
	return out
}

// buildSuggestions renders the signal into a sectioned brief, highest
// leverage first. Headers are stable so downstream consumers can split the
// sections back out.
func buildSuggestions(sig *models.MarketingSignal, productName string, strengths []string) string {
	var b strings.Builder

	b.WriteString("[Unique Points]\n")
	if len(sig.UniqueFeatures) == 0 {
		b.WriteString("- No standout differentiation quotes yet.\n")
	} else {
		for _, uf := range sig.UniqueFeatures {
			quote := uf.Text
			if len(quote) > 120 {
				quote = quote[:120] + "..."
			}
			fmt.Fprintf(&b, "- [%s] %q\n", uf.Category, quote)
		}
	}

	b.WriteString("\n[Competitive Angle]\n")
	if len(sig.CompetitorMentions) == 0 && len(sig.ComparisonSentences) == 0 {
		b.WriteString("- No competitor brands surfaced in reviews.\n")
	} else {
		for _, kc := range sig.CompetitorMentions {
			fmt.Fprintf(&b, "- Reviewers benchmark against %s (%d mentions); position %s directly\n",
				kc.Word, kc.Count, productName)
		}
		for i, s := range sig.ComparisonSentences {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- [comparison] %q\n", s)
		}
	}

	b.WriteString("\n[Repeated Strengths]\n")
	if len(sig.RepeatedKeywords) == 0 {
		b.WriteString("- Not enough repeated themes yet; collect more reviews.\n")
	} else {
		for i, kc := range sig.RepeatedKeywords {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- Lead with %q (%d mentions)\n", kc.Word, kc.Count)
		}
	}

	b.WriteString("\n[Core Strengths]\n")
	if len(strengths) == 0 {
		b.WriteString("- No synthesized strengths yet.\n")
	} else {
		for _, s := range strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	return b.String()
}

func sortCounts(counts map[string]int, limit int) []models.KeywordCount {
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
