package sentiment

import (
	"strings"

	"github.com/reviewlens/backend/internal/lexicon"
)

// Outcome is the classification of a single review body. Score is the raw
// signed sum of rule contributions; Label collapses neutral into positive
// (score >= -0.5), so a stricter three-way split can be layered on the raw
// score without re-deriving evidence.
type Outcome struct {
	Label            string   `json:"label"`
	Score            float64  `json:"score"`
	PositiveEvidence []string `json:"positive_evidence"`
	NegativeEvidence []string `json:"negative_evidence"`
}

// Classifier applies the lexicon's rule cascade to review text. It is
// deterministic and safe for concurrent use; the lexicon is read-only during
// classification.
type Classifier struct {
	lex *lexicon.Lexicon

	// union of reversible and context keywords, scanned inside reversal
	// spans to suppress double-counting
	resolvable []string
	// keywords owned by context rules, skipped by the plain negative pass
	contextOwned map[string]struct{}
}

func NewClassifier(lex *lexicon.Lexicon) *Classifier {
	c := &Classifier{
		lex:          lex,
		contextOwned: make(map[string]struct{}, len(lex.ContextRules)),
	}

	seen := make(map[string]struct{})
	for _, w := range lex.Reversible {
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			c.resolvable = append(c.resolvable, w)
		}
	}
	for _, rule := range lex.ContextRules {
		c.contextOwned[rule.Keyword] = struct{}{}
		if _, ok := seen[rule.Keyword]; !ok {
			seen[rule.Keyword] = struct{}{}
			c.resolvable = append(c.resolvable, rule.Keyword)
		}
	}

	return c
}

// Classify evaluates one review body. Rule priority: sentence-level reversal
// patterns, then context-sensitive keywords, then the plain positive lexicon
// (with negation window), then the plain negative lexicon (reversible subset
// flips under negation). Earlier rules suppress later ones for the keywords
// they cover.
func (c *Classifier) Classify(text string) Outcome {
	clean := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(text, "\n", " ")))

	out := Outcome{Label: lexicon.Positive}
	resolved := make(map[string]struct{})

	for i := range c.lex.ReversalRules {
		rule := &c.lex.ReversalRules[i]
		span, ok := rule.FindMatch(clean)
		if !ok {
			continue
		}
		token := reversalToken(span)
		if rule.Polarity == lexicon.Negative {
			out.NegativeEvidence = append(out.NegativeEvidence, token)
			out.Score -= rule.Score
		} else {
			out.PositiveEvidence = append(out.PositiveEvidence, token)
			out.Score += rule.Score
		}
		for _, kw := range c.resolvable {
			if strings.Contains(span, kw) {
				resolved[kw] = struct{}{}
			}
		}
	}

	for i := range c.lex.ContextRules {
		rule := &c.lex.ContextRules[i]
		if !strings.Contains(clean, rule.Keyword) {
			continue
		}
		if _, done := resolved[rule.Keyword]; done {
			continue
		}
		switch rule.Polarity(clean) {
		case lexicon.Positive:
			out.PositiveEvidence = append(out.PositiveEvidence, rule.Keyword)
			out.Score += 1.0
		case lexicon.Negative:
			out.NegativeEvidence = append(out.NegativeEvidence, rule.Keyword)
			out.Score -= 1.0
		}
	}

	for _, kw := range c.lex.Positive {
		if !strings.Contains(clean, kw.Word) {
			continue
		}
		if c.lex.HasNegationBefore(clean, kw.Word) {
			continue
		}
		out.PositiveEvidence = append(out.PositiveEvidence, kw.Word)
		out.Score += kw.Weight
	}

	for _, kw := range c.lex.Negative {
		if _, owned := c.contextOwned[kw.Word]; owned {
			continue
		}
		if _, done := resolved[kw.Word]; done {
			continue
		}
		if !strings.Contains(clean, kw.Word) {
			continue
		}
		if c.lex.IsReversible(kw.Word) && c.lex.HasNegationBefore(clean, kw.Word) {
			// "no irritation" reads as a positive claim
			out.PositiveEvidence = append(out.PositiveEvidence, "no "+kw.Word)
			out.Score += kw.Weight
		} else {
			// Non-reversible negatives deliberately ignore negation; the
			// asymmetry matches curator expectations and is kept until the
			// product owner rules otherwise.
			out.NegativeEvidence = append(out.NegativeEvidence, kw.Word)
			out.Score -= kw.Weight
		}
	}

	if out.Score < -0.5 {
		out.Label = lexicon.Negative
	}

	return out
}

// ClassifyWithRating folds the declared star rating in as a secondary
// signal: a rating of 4+ lifts a text-negative outcome to positive, a rating
// of 1-2 pushes a text-positive outcome to negative. The raw score is left
// untouched.
func (c *Classifier) ClassifyWithRating(text string, rating int) Outcome {
	out := c.Classify(text)
	switch {
	case rating >= 4 && out.Label == lexicon.Negative:
		out.Label = lexicon.Positive
	case rating >= 1 && rating <= 2 && out.Label == lexicon.Positive:
		out.Label = lexicon.Negative
	}
	return out
}

func reversalToken(span string) string {
	const max = 24
	if len(span) > max {
		span = span[:max] + "..."
	}
	return "reversal(" + span + ")"
}
