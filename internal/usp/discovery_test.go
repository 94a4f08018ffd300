package usp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/internal/usp"
)

func reviewsOf(contents ...string) []models.Review {
	out := make([]models.Review, len(contents))
	for i, c := range contents {
		out[i] = models.Review{Nickname: "u", Content: c}
	}
	return out
}

func TestExtractCandidates(t *testing.T) {
	d := usp.Load("", "", "")

	got := d.ExtractCandidates(reviewsOf(
		"My skin looks so glowy now! Wow. This went viral on tiktok for a reason.",
		"Nothing triggering in this one at all",
	))

	require.Len(t, got, 2)
	require.Contains(t, got[0].Sentence, "glowy")
	require.Equal(t, "visual", got[0].Match.Category)
	require.Contains(t, got[1].Sentence, "viral")
	require.Equal(t, "viral", got[1].Match.Category)
}

func TestExtractCandidatesSkipsShortSentences(t *testing.T) {
	d := usp.Load("", "", "")

	// "Wow" matches the reaction category but is under 5 chars
	got := d.ExtractCandidates(reviewsOf("Wow. Ok."))

	require.Empty(t, got)
}

func TestExtractCandidatesDedupsOnPrefix(t *testing.T) {
	d := usp.Load("", "", "")

	got := d.ExtractCandidates(reviewsOf(
		"This serum gave me the most radiant glow of my life, honestly",
		"This serum gave me the most radiant glow ever",
	))

	require.Len(t, got, 1)
}

func TestExtractCandidatesSkipsExclusionOnly(t *testing.T) {
	d := usp.Load("", "", "")
	// make a trigger keyword that is also excluded
	require.True(t, d.AddKeyword("reaction", "favorite"))
	d.Exclusions = append(d.Exclusions, "favorite")

	got := d.ExtractCandidates(reviewsOf("My absolute favorite cleanser"))

	require.Empty(t, got)
}

func TestDetectNewCandidates(t *testing.T) {
	d := usp.Load("", "", "")

	got := d.DetectNewCandidates(reviewsOf(
		"the cica serum calmed everything down",
		"cica serum works overnight",
	))

	byWord := map[string]int{}
	for _, kc := range got {
		byWord[kc.Word] = kc.Count
	}
	require.Equal(t, 2, byWord["cica"])
	require.Equal(t, 2, byWord["serum"])
	// single occurrence stays out
	require.NotContains(t, byWord, "calmed")
	// stop words stay out
	require.NotContains(t, byWord, "the")
}

func TestDetectNewCandidatesSkipsKnownWords(t *testing.T) {
	d := usp.Load("", "", "")

	require.True(t, d.AddCandidate("serum", "manual", "", 1, nil))
	require.NoError(t, d.RejectCandidate("serum", "too generic"))

	got := d.DetectNewCandidates(reviewsOf(
		"cica serum is glowy",
		"cica serum stays glowy",
	))

	byWord := map[string]int{}
	for _, kc := range got {
		byWord[kc.Word] = kc.Count
	}
	require.NotContains(t, byWord, "serum") // rejected
	require.NotContains(t, byWord, "glowy") // already a trigger keyword
	require.Equal(t, 2, byWord["cica"])
}

func TestDetectNewCandidatesIdempotentAfterQueueing(t *testing.T) {
	d := usp.Load("", "", "")
	batch := reviewsOf(
		"the cica serum calmed everything down",
		"cica serum works overnight",
	)

	first := d.DetectNewCandidates(batch)
	require.NotEmpty(t, first)
	for _, kc := range first {
		require.True(t, d.AddCandidate(kc.Word, "auto", "", kc.Count, nil))
	}

	second := d.DetectNewCandidates(batch)
	require.Empty(t, second)
}

func TestQueueCandidatesAttachesContext(t *testing.T) {
	dir := t.TempDir()
	d := usp.Load(dir+"/trigger.json", dir+"/exclusion.json", dir+"/candidates.json")

	batch := reviewsOf(
		"My skin is glowy thanks to the cica in it, cica is magic",
		"Glowy all day, cica really calmed my skin",
		"The cica glowy combo went viral on tiktok",
		"Another glowy cica sighting over here",
	)
	sentences := d.ExtractCandidates(batch)
	require.NotEmpty(t, sentences)

	detected := d.DetectNewCandidates(batch)
	queued := d.QueueCandidates(detected, sentences, "pipeline")
	require.Greater(t, queued, 0)

	cand, ok := d.Pending["cica"]
	require.True(t, ok)
	require.Equal(t, "pipeline", cand.Source)
	// all four sentences trigger on "glowy" first
	require.Equal(t, "visual", cand.SuggestedCategory)
	require.Len(t, cand.ExampleSentences, 3)
	for _, s := range cand.ExampleSentences {
		require.Contains(t, s, "cica")
	}

	require.NoError(t, d.SaveAll())
	reloaded := usp.Load(dir+"/trigger.json", dir+"/exclusion.json", dir+"/candidates.json")
	got, ok := reloaded.Pending["cica"]
	require.True(t, ok)
	require.Equal(t, "visual", got.SuggestedCategory)
	require.Len(t, got.ExampleSentences, 3)
}

func TestDetectNewCandidatesReduplication(t *testing.T) {
	d := usp.Load("", "", "")

	got := d.DetectNewCandidates(reviewsOf(
		"this gel is fluffy fluffy on the skin",
		"fluffy fluffy texture, unreal",
	))

	byWord := map[string]int{}
	for _, kc := range got {
		byWord[kc.Word] = kc.Count
	}
	require.Equal(t, 2, byWord["fluffy fluffy"])
}
