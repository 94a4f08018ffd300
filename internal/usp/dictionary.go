package usp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// Category is one entry of the trigger taxonomy. Order matters: matching and
// reporting follow taxonomy order.
type Category struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Candidate is a word waiting for curator review, carrying the category the
// discovery pass suggests and up to 3 sentences it was seen in.
type Candidate struct {
	Word              string    `json:"word"`
	Count             int       `json:"count"`
	Source            string    `json:"source"`
	SuggestedCategory string    `json:"suggested_category,omitempty"`
	ExampleSentences  []string  `json:"example_sentences,omitempty"`
	AddedAt           time.Time `json:"added_at"`
}

// Rejection is a permanent log entry; rejected words are never re-surfaced
// by discovery.
type Rejection struct {
	Word       string    `json:"word"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
}

// Dictionary is the USP trigger-keyword store: the taxonomy, the exclusion
// set, and the candidate queue with its rejection log. It does not write to
// disk on its own; callers persist explicitly via SaveAll. Not safe for
// concurrent mutation.
type Dictionary struct {
	Taxonomy   []Category
	Exclusions []string
	Pending    map[string]*Candidate
	Rejected   map[string]*Rejection

	triggerPath   string
	exclusionPath string
	candidatePath string
}

// candidateDoc is the on-disk shape of the candidate queue.
type candidateDoc struct {
	Pending  []*Candidate `json:"pending"`
	Rejected []*Rejection `json:"rejected"`
}

// Load reads the three dictionary documents. A missing or malformed document
// falls back to its built-in default with a warning; Load never fails.
func Load(triggerPath, exclusionPath, candidatePath string) *Dictionary {
	d := &Dictionary{
		Taxonomy:      DefaultTaxonomy(),
		Exclusions:    DefaultExclusions(),
		Pending:       make(map[string]*Candidate),
		Rejected:      make(map[string]*Rejection),
		triggerPath:   triggerPath,
		exclusionPath: exclusionPath,
		candidatePath: candidatePath,
	}

	var taxonomy []Category
	if readDoc(triggerPath, &taxonomy) && len(taxonomy) > 0 {
		d.Taxonomy = taxonomy
	}

	var exclusions []string
	if readDoc(exclusionPath, &exclusions) {
		d.Exclusions = exclusions
	}

	var cands candidateDoc
	if readDoc(candidatePath, &cands) {
		for _, c := range cands.Pending {
			d.Pending[c.Word] = c
		}
		for _, r := range cands.Rejected {
			d.Rejected[r.Word] = r
		}
	}

	return d
}

func readDoc(path string, out interface{}) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("dictionary document unreadable, using defaults",
				zap.String("path", path), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("dictionary document malformed, using defaults",
			zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// SaveAll writes the three documents back to their load paths.
func (d *Dictionary) SaveAll() error {
	if err := writeDoc(d.triggerPath, d.Taxonomy); err != nil {
		return fmt.Errorf("failed to save taxonomy: %w", err)
	}
	if err := writeDoc(d.exclusionPath, d.Exclusions); err != nil {
		return fmt.Errorf("failed to save exclusions: %w", err)
	}
	doc := candidateDoc{Pending: []*Candidate{}, Rejected: []*Rejection{}}
	for _, c := range d.Pending {
		doc.Pending = append(doc.Pending, c)
	}
	for _, r := range d.Rejected {
		doc.Rejected = append(doc.Rejected, r)
	}
	sort.Slice(doc.Pending, func(i, j int) bool { return doc.Pending[i].Word < doc.Pending[j].Word })
	sort.Slice(doc.Rejected, func(i, j int) bool { return doc.Rejected[i].Word < doc.Rejected[j].Word })
	if err := writeDoc(d.candidatePath, doc); err != nil {
		return fmt.Errorf("failed to save candidates: %w", err)
	}
	return nil
}

func writeDoc(path string, v interface{}) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// TriggerMatch is one category's hits inside a text.
type TriggerMatch struct {
	Category string   `json:"category"`
	Words    []string `json:"words"`
}

// FindTriggerWords scans text for taxonomy keywords, case-insensitive
// substring match. The first category with a hit wins; its matched keywords
// are returned together. ok is false when nothing matches.
func (d *Dictionary) FindTriggerWords(text string) (TriggerMatch, bool) {
	lower := strings.ToLower(text)
	for _, cat := range d.Taxonomy {
		var words []string
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				words = append(words, kw)
			}
		}
		if len(words) > 0 {
			return TriggerMatch{Category: cat.Name, Words: words}, true
		}
	}
	return TriggerMatch{}, false
}

// HasKeyword reports whether word is already a trigger keyword in any
// category.
func (d *Dictionary) HasKeyword(word string) bool {
	lower := strings.ToLower(word)
	for _, cat := range d.Taxonomy {
		for _, kw := range cat.Keywords {
			if strings.ToLower(kw) == lower {
				return true
			}
		}
	}
	return false
}

// IsExcluded reports whether word is in the exclusion set.
func (d *Dictionary) IsExcluded(word string) bool {
	lower := strings.ToLower(word)
	for _, ex := range d.Exclusions {
		if strings.ToLower(ex) == lower {
			return true
		}
	}
	return false
}

// AddCandidate queues a word for curator review with a suggested category
// and up to maxExampleSentences example sentences. Candidate identity is
// case-sensitive as stored; returns false without side effects when the word
// already exists anywhere: taxonomy, exclusions, pending queue, or the
// rejection log.
func (d *Dictionary) AddCandidate(word, source, suggestedCategory string, count int, examples []string) bool {
	word = strings.TrimSpace(word)
	if word == "" || d.HasKeyword(word) || d.IsExcluded(word) {
		return false
	}
	if _, ok := d.Pending[word]; ok {
		return false
	}
	if _, ok := d.Rejected[word]; ok {
		return false
	}
	if len(examples) > maxExampleSentences {
		examples = examples[:maxExampleSentences]
	}
	d.Pending[word] = &Candidate{
		Word:              word,
		Count:             count,
		Source:            source,
		SuggestedCategory: suggestedCategory,
		ExampleSentences:  examples,
		AddedAt:           time.Now().UTC(),
	}
	return true
}

// ApproveCandidate promotes a pending word into the named category. The
// category must already exist; the keyword append is idempotent.
func (d *Dictionary) ApproveCandidate(word, category string) error {
	word = strings.TrimSpace(word)
	if _, ok := d.Pending[word]; !ok {
		return fmt.Errorf("candidate %q is not pending", word)
	}
	if !d.AddKeyword(category, word) {
		// already present is fine; unknown category is not
		if !d.categoryExists(category) {
			return fmt.Errorf("unknown category %q", category)
		}
	}
	delete(d.Pending, word)
	logger.Info("candidate approved", zap.String("word", word), zap.String("category", category))
	return nil
}

// RejectCandidate moves a pending word into the permanent rejection log.
func (d *Dictionary) RejectCandidate(word, reason string) error {
	word = strings.TrimSpace(word)
	if _, ok := d.Pending[word]; !ok {
		return fmt.Errorf("candidate %q is not pending", word)
	}
	delete(d.Pending, word)
	d.Rejected[word] = &Rejection{
		Word:       word,
		Reason:     reason,
		RejectedAt: time.Now().UTC(),
	}
	logger.Info("candidate rejected", zap.String("word", word), zap.String("reason", reason))
	return nil
}

// AddKeyword appends word to an existing category. Returns false when the
// category is unknown or the word is already present.
func (d *Dictionary) AddKeyword(category, word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	for i := range d.Taxonomy {
		if d.Taxonomy[i].Name != category {
			continue
		}
		for _, kw := range d.Taxonomy[i].Keywords {
			if strings.ToLower(kw) == word {
				return false
			}
		}
		d.Taxonomy[i].Keywords = append(d.Taxonomy[i].Keywords, word)
		return true
	}
	return false
}

// RemoveKeyword deletes word from a category. Returns false when category or
// word is absent.
func (d *Dictionary) RemoveKeyword(category, word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	for i := range d.Taxonomy {
		if d.Taxonomy[i].Name != category {
			continue
		}
		for j, kw := range d.Taxonomy[i].Keywords {
			if strings.ToLower(kw) == word {
				d.Taxonomy[i].Keywords = append(d.Taxonomy[i].Keywords[:j], d.Taxonomy[i].Keywords[j+1:]...)
				return true
			}
		}
		return false
	}
	return false
}

// PendingCandidates returns the queue sorted by count desc, word asc.
func (d *Dictionary) PendingCandidates() []*Candidate {
	out := make([]*Candidate, 0, len(d.Pending))
	for _, c := range d.Pending {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

func (d *Dictionary) categoryExists(name string) bool {
	for _, cat := range d.Taxonomy {
		if cat.Name == name {
			return true
		}
	}
	return false
}

// CategoryKeywordCounts counts occurrences of one category's keywords across
// texts, for the persisted viral-keyword tally.
func (d *Dictionary) CategoryKeywordCounts(category string, texts []string) []models.KeywordCount {
	var cat *Category
	for i := range d.Taxonomy {
		if d.Taxonomy[i].Name == category {
			cat = &d.Taxonomy[i]
			break
		}
	}
	out := []models.KeywordCount{}
	if cat == nil {
		return out
	}
	for _, kw := range cat.Keywords {
		lkw := strings.ToLower(kw)
		n := 0
		for _, text := range texts {
			n += strings.Count(strings.ToLower(text), lkw)
		}
		if n > 0 {
			out = append(out, models.KeywordCount{Word: kw, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}
