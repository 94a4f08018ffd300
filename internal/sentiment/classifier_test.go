package sentiment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/lexicon"
	"github.com/reviewlens/backend/internal/sentiment"
)

func newClassifier(t *testing.T) *sentiment.Classifier {
	t.Helper()
	return sentiment.NewClassifier(lexicon.Default())
}

func TestClassifyPositiveWithNegatedIrritation(t *testing.T) {
	c := newClassifier(t)

	out := c.Classify("No irritation, very soothing, would repurchase")

	require.Equal(t, lexicon.Positive, out.Label)
	require.InDelta(t, 3.7, out.Score, 0.001)
	require.Contains(t, out.PositiveEvidence, "irritation")
	require.Contains(t, out.PositiveEvidence, "soothing")
	require.Contains(t, out.PositiveEvidence, "repurchase")
	require.Empty(t, out.NegativeEvidence)
}

func TestClassifyNegativeScentComplaint(t *testing.T) {
	c := newClassifier(t)

	out := c.Classify("Smells way too strong, kind of fake")

	require.Equal(t, lexicon.Negative, out.Label)
	require.Less(t, out.Score, -0.5)
	require.Contains(t, out.NegativeEvidence, "smell")
	require.Contains(t, out.NegativeEvidence, "fake")
	require.Contains(t, out.NegativeEvidence, "too strong")
}

func TestClassifySentenceReversalSuppressesKeywords(t *testing.T) {
	c := newClassifier(t)

	out := c.Classify("I used to break out a lot but after using this my skin cleared up")

	require.Equal(t, lexicon.Positive, out.Label)
	require.GreaterOrEqual(t, out.Score, 2.0)
	// the reversal owns "break out"; it must not also count as negative
	require.NotContains(t, out.NegativeEvidence, "break out")
	require.NotContains(t, out.NegativeEvidence, "breakout")
	require.Contains(t, out.PositiveEvidence, "cleared up")
}

func TestClassifyReversibleFlipUnderNegation(t *testing.T) {
	c := newClassifier(t)

	out := c.Classify("Not greasy at all, sinks in fast")

	require.Equal(t, lexicon.Positive, out.Label)
	require.Contains(t, out.PositiveEvidence, "no greasy")
	require.NotContains(t, out.NegativeEvidence, "greasy")
}

func TestClassifyHyphenatedNonPrefix(t *testing.T) {
	c := newClassifier(t)

	// "non-greasy" counts as a positive keyword and the embedded "greasy"
	// flips under the "non" marker instead of scoring negative
	out := c.Classify("Non-greasy finish")

	require.Equal(t, lexicon.Positive, out.Label)
	require.InDelta(t, 1.8, out.Score, 0.001)
	require.Contains(t, out.PositiveEvidence, "non-greasy")
	require.Contains(t, out.PositiveEvidence, "no greasy")
	require.Empty(t, out.NegativeEvidence)
}

func TestClassifyNonReversibleIgnoresNegation(t *testing.T) {
	c := newClassifier(t)

	// "disappointed" is not reversible, so the negation window does not
	// rescue it
	out := c.Classify("not disappointed")

	require.Contains(t, out.NegativeEvidence, "disappointed")
	require.Equal(t, lexicon.Negative, out.Label)
}

func TestClassifyContextKeywordNeutralDefault(t *testing.T) {
	c := newClassifier(t)

	out := c.Classify("It has a smell")

	require.NotContains(t, out.PositiveEvidence, "smell")
	require.NotContains(t, out.NegativeEvidence, "smell")
	require.InDelta(t, 0.0, out.Score, 0.001)
	require.Equal(t, lexicon.Positive, out.Label)
}

func TestClassifyContextKeywordNegativeDefault(t *testing.T) {
	c := newClassifier(t)

	out := c.Classify("There was some sticky left on my face")

	require.Equal(t, lexicon.Negative, out.Label)
	require.Contains(t, out.NegativeEvidence, "sticky")
}

func TestClassifyDeterministic(t *testing.T) {
	c := newClassifier(t)
	text := "Love this, absorbs quickly, but the scent is too strong"

	first := c.Classify(text)
	second := c.Classify(text)

	require.Equal(t, first, second)
}

func TestClassifyEmptyText(t *testing.T) {
	c := newClassifier(t)

	out := c.Classify("")

	require.Equal(t, lexicon.Positive, out.Label)
	require.Zero(t, out.Score)
	require.Empty(t, out.PositiveEvidence)
	require.Empty(t, out.NegativeEvidence)
}

func TestClassifyWithRatingLiftsNegative(t *testing.T) {
	c := newClassifier(t)

	out := c.ClassifyWithRating("A bit sticky and heavy", 5)

	require.Equal(t, lexicon.Positive, out.Label)
	// raw score keeps the text evidence
	require.Less(t, out.Score, -0.5)
}

func TestClassifyWithRatingPushesPositive(t *testing.T) {
	c := newClassifier(t)

	out := c.ClassifyWithRating("Soothing and gentle", 1)

	require.Equal(t, lexicon.Negative, out.Label)
	require.Greater(t, out.Score, 0.0)
}

func TestClassifyWithRatingZeroMeansUnrated(t *testing.T) {
	c := newClassifier(t)

	rated := c.ClassifyWithRating("Soothing and gentle", 0)
	plain := c.Classify("Soothing and gentle")

	require.Equal(t, plain, rated)
}
