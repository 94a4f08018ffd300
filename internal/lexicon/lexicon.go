package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/pkg/logger"
)

// Polarity values used by context rules and reversal rules.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

type WeightedKeyword struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// ContextRule decides the polarity of a keyword from its surrounding text.
// Positive patterns are checked first, then negative, then Default applies.
type ContextRule struct {
	Keyword          string   `json:"keyword"`
	PositivePatterns []string `json:"positive_patterns"`
	NegativePatterns []string `json:"negative_patterns"`
	Default          string   `json:"default"`

	compiledPos []*regexp.Regexp
	compiledNeg []*regexp.Regexp
}

// Polarity returns the polarity of the rule's keyword in text.
func (r *ContextRule) Polarity(text string) string {
	for _, re := range r.compiledPos {
		if re.MatchString(text) {
			return Positive
		}
	}
	for _, re := range r.compiledNeg {
		if re.MatchString(text) {
			return Negative
		}
	}
	return r.Default
}

// ReversalRule recognizes whole-sentence constructions such as "used to break
// out but it cleared up", which invert the polarity of the problem keywords
// they mention.
type ReversalRule struct {
	Pattern  string  `json:"pattern"`
	Polarity string  `json:"polarity"`
	Score    float64 `json:"score"`

	compiled *regexp.Regexp
}

// FindMatch returns the matched span, or ok=false.
func (r *ReversalRule) FindMatch(text string) (string, bool) {
	loc := r.compiled.FindString(text)
	if loc == "" {
		return "", false
	}
	return loc, true
}

type CategoryKeywords struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// SynthesisGroup maps evidence keywords to a human-readable sentence used
// when generating strengths and weaknesses.
type SynthesisGroup struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Sentence string   `json:"sentence"`
}

// Lexicon is the full rule set driving sentiment classification. It is an
// explicitly constructed value with a load/save lifecycle; callers pass it
// into the classifier and analyzer, there is no ambient instance.
type Lexicon struct {
	Positive        []WeightedKeyword  `json:"positive"`
	Negative        []WeightedKeyword  `json:"negative"`
	NegationMarkers []string           `json:"negation_markers"`
	Reversible      []string           `json:"reversible"`
	ContextRules    []ContextRule      `json:"context_rules"`
	ReversalRules   []ReversalRule     `json:"reversal_rules"`
	Categories      []CategoryKeywords `json:"categories"`
	StrengthGroups  []SynthesisGroup   `json:"strength_groups"`
	WeaknessGroups  []SynthesisGroup   `json:"weakness_groups"`

	negationRe    *regexp.Regexp
	reversibleSet map[string]struct{}
}

// NegationWindow is the number of characters before a keyword scanned for a
// negation marker.
const NegationWindow = 8

// Load reads the lexicon from path. A missing or malformed file falls back to
// the built-in default rather than failing; classification should degrade,
// never crash.
func Load(path string) *Lexicon {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read lexicon file, using default", zap.String("path", path), zap.Error(err))
		}
		return Default()
	}

	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		logger.Warn("Malformed lexicon file, using default", zap.String("path", path), zap.Error(err))
		return Default()
	}

	if err := lex.compile(); err != nil {
		logger.Warn("Invalid pattern in lexicon file, using default", zap.String("path", path), zap.Error(err))
		return Default()
	}

	return &lex
}

// Save writes the lexicon as indented JSON.
func (l *Lexicon) Save(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lexicon: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write lexicon file: %w", err)
	}
	return nil
}

func (l *Lexicon) compile() error {
	for i := range l.ContextRules {
		rule := &l.ContextRules[i]
		rule.compiledPos = rule.compiledPos[:0]
		rule.compiledNeg = rule.compiledNeg[:0]
		for _, p := range rule.PositivePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("context rule %q pattern %q: %w", rule.Keyword, p, err)
			}
			rule.compiledPos = append(rule.compiledPos, re)
		}
		for _, p := range rule.NegativePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("context rule %q pattern %q: %w", rule.Keyword, p, err)
			}
			rule.compiledNeg = append(rule.compiledNeg, re)
		}
	}

	for i := range l.ReversalRules {
		rule := &l.ReversalRules[i]
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("reversal pattern %q: %w", rule.Pattern, err)
		}
		rule.compiled = re
	}

	if len(l.NegationMarkers) > 0 {
		escaped := make([]string, 0, len(l.NegationMarkers))
		for _, m := range l.NegationMarkers {
			escaped = append(escaped, regexp.QuoteMeta(m))
		}
		re, err := regexp.Compile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
		if err != nil {
			return fmt.Errorf("negation markers: %w", err)
		}
		l.negationRe = re
	}

	l.reversibleSet = make(map[string]struct{}, len(l.Reversible))
	for _, w := range l.Reversible {
		l.reversibleSet[w] = struct{}{}
	}

	return nil
}

// IsReversible reports whether word flips to positive under a preceding
// negation marker.
func (l *Lexicon) IsReversible(word string) bool {
	_, ok := l.reversibleSet[word]
	return ok
}

// HasNegationBefore reports whether a negation marker occurs within
// NegationWindow characters before the first occurrence of keyword.
func (l *Lexicon) HasNegationBefore(text, keyword string) bool {
	if l.negationRe == nil {
		return false
	}
	idx := strings.Index(text, keyword)
	if idx == -1 {
		return false
	}
	start := idx - NegationWindow
	if start < 0 {
		start = 0
	}
	return l.negationRe.MatchString(text[start:idx])
}
