package usp

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/logger"
)

const (
	minSentenceLength   = 5
	sentenceDedupChars  = 30
	minCandidateCount   = 2
	maxNewCandidates    = 50
	minTokenRunes       = 2
	maxTokenRunes       = 6
	maxExampleSentences = 3
)

var (
	candidateSentenceSplit = regexp.MustCompile(`[.!?\n]+`)
	// emphatic doubling ("so so", "super super") surfaces consumer language
	// the flat token pass would dilute
	reduplication = regexp.MustCompile(`\b([a-z]{2,6})[ -]\1\b`)
)

// tokens too structural to ever be a selling point
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"was": {}, "are": {}, "is": {}, "it": {}, "its": {}, "my": {}, "me": {},
	"has": {}, "had": {}, "have": {}, "but": {}, "not": {}, "too": {},
	"you": {}, "your": {}, "can": {}, "will": {}, "all": {}, "out": {},
	"when": {}, "than": {}, "then": {}, "been": {}, "were": {}, "also": {},
	"after": {}, "before": {}, "more": {}, "much": {}, "some": {}, "them": {},
}

// CandidateSentence is a review sentence worth curator attention, with the
// trigger match that flagged it.
type CandidateSentence struct {
	Sentence string       `json:"sentence"`
	Match    TriggerMatch `json:"match"`
}

// ExtractCandidates finds sentences containing trigger keywords. Sentences
// under 5 characters are discarded, as are sentences whose only matched
// words sit in the exclusion set. Near-duplicates collapse on the first 30
// characters.
func (d *Dictionary) ExtractCandidates(reviews []models.Review) []CandidateSentence {
	out := []CandidateSentence{}
	seen := make(map[string]struct{})

	for _, rev := range reviews {
		for _, raw := range candidateSentenceSplit.Split(rev.Content, -1) {
			sentence := strings.TrimSpace(raw)
			if len(sentence) < minSentenceLength {
				continue
			}
			match, ok := d.FindTriggerWords(sentence)
			if !ok || d.exclusionOnly(match) {
				continue
			}
			prefix := sentence
			if len(prefix) > sentenceDedupChars {
				prefix = prefix[:sentenceDedupChars]
			}
			if _, dup := seen[prefix]; dup {
				continue
			}
			seen[prefix] = struct{}{}
			out = append(out, CandidateSentence{Sentence: sentence, Match: match})
		}
	}

	return out
}

func (d *Dictionary) exclusionOnly(match TriggerMatch) bool {
	for _, w := range match.Words {
		if !d.IsExcluded(w) {
			return false
		}
	}
	return true
}

// DetectNewCandidates proposes dictionary additions from raw reviews:
// emphatic reduplications first, then short word tokens, filtered against
// stop words, the taxonomy, exclusions, and both candidate queues. A token
// needs at least two occurrences across the batch; the top 50 by count are
// returned, not yet queued.
func (d *Dictionary) DetectNewCandidates(reviews []models.Review) []models.KeywordCount {
	counts := make(map[string]int)

	for _, rev := range reviews {
		lower := strings.ToLower(rev.Content)

		for _, m := range reduplication.FindAllStringSubmatch(lower, -1) {
			phrase := m[1] + " " + m[1]
			if d.known(m[1]) || d.known(phrase) {
				continue
			}
			counts[phrase]++
		}

		for _, tok := range wordTokens(lower) {
			if _, stop := stopWords[tok]; stop {
				continue
			}
			if d.known(tok) {
				continue
			}
			counts[tok]++
		}
	}

	out := []models.KeywordCount{}
	for w, n := range counts {
		if n >= minCandidateCount {
			out = append(out, models.KeywordCount{Word: w, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > maxNewCandidates {
		out = out[:maxNewCandidates]
	}
	return out
}

// QueueCandidates adds detected words to the pending queue, attaching the
// trigger category of the first sentence each word appeared in and up to 3
// of those sentences as curator context. Returns how many were queued.
func (d *Dictionary) QueueCandidates(detected []models.KeywordCount, sentences []CandidateSentence, source string) int {
	queued := 0
	for _, kc := range detected {
		category, examples := candidateContext(kc.Word, sentences)
		if d.AddCandidate(kc.Word, source, category, kc.Count, examples) {
			queued++
		}
	}
	return queued
}

func candidateContext(word string, sentences []CandidateSentence) (string, []string) {
	lword := strings.ToLower(word)
	category := ""
	var examples []string
	for _, s := range sentences {
		if !strings.Contains(strings.ToLower(s.Sentence), lword) {
			continue
		}
		if category == "" {
			category = s.Match.Category
		}
		if len(examples) < maxExampleSentences {
			examples = append(examples, s.Sentence)
		}
	}
	return category, examples
}

func (d *Dictionary) known(word string) bool {
	if d.HasKeyword(word) || d.IsExcluded(word) {
		return true
	}
	if _, ok := d.Pending[word]; ok {
		return true
	}
	_, ok := d.Rejected[word]
	return ok
}

// wordTokens tokenizes with prose and keeps alphabetic tokens of 2-6 runes.
// On tokenizer failure it degrades to whitespace splitting.
func wordTokens(text string) []string {
	var words []string

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		logger.Warn("tokenizer failed, falling back to field split", zap.Error(err))
		words = strings.Fields(text)
	} else {
		for _, tok := range doc.Tokens() {
			words = append(words, tok.Text)
		}
	}

	out := words[:0]
	for _, w := range words {
		if alphabetic(w) && runeLen(w) >= minTokenRunes && runeLen(w) <= maxTokenRunes {
			out = append(out, w)
		}
	}
	return out
}

func alphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return len([]rune(s))
}
