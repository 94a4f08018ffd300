package collector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/pkg/config"
)

// fakeSession scripts per-round extraction results and scroll behavior so
// the termination logic is testable without a browser.
type fakeSession struct {
	rounds   [][]reviewNode
	round    int
	identity string

	pos    float64
	frozen bool

	navFails  int
	waitFails int
	scrollErr error

	navCalls  int
	waitTimes []time.Duration
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.navCalls++
	if f.navFails > 0 {
		f.navFails--
		return errors.New("navigation timeout")
	}
	return nil
}

func (f *fakeSession) WaitForSelector(ctx context.Context, sel string, timeout time.Duration) error {
	f.waitTimes = append(f.waitTimes, timeout)
	if f.waitFails > 0 {
		f.waitFails--
		return errors.New("selector timeout")
	}
	return nil
}

func (f *fakeSession) Evaluate(ctx context.Context, script string, out interface{}) error {
	if script == extractReviewsScript {
		nodes, ok := out.(*[]reviewNode)
		if !ok {
			return errors.New("unexpected extraction target")
		}
		if len(f.rounds) == 0 {
			*nodes = nil
			return nil
		}
		i := f.round
		if i >= len(f.rounds) {
			i = len(f.rounds) - 1
		}
		f.round++
		*nodes = f.rounds[i]
		return nil
	}
	if f.identity == "" {
		return errors.New("no identity scripted")
	}
	return json.Unmarshal([]byte(f.identity), out)
}

func (f *fakeSession) ScrollBy(ctx context.Context, pixels int) error {
	if f.scrollErr != nil {
		return f.scrollErr
	}
	if !f.frozen {
		f.pos += float64(pixels)
	}
	return nil
}

func (f *fakeSession) ScrollPosition(ctx context.Context) (float64, error) {
	return f.pos, nil
}

func testConfig() config.CollectorConfig {
	return config.CollectorConfig{
		BaseURL:         "https://shop.example",
		ScrollStep:      1200,
		ScrollTolerance: 10,
		ScrollDelayMS:   0,
		NoNewLimit:      3,
		NoScrollLimit:   2,
		MaxIterations:   100,
		WaitTimeoutSec:  1,
	}
}

func node(nick, content string) reviewNode {
	return reviewNode{Nickname: nick, Rating: 5, Date: "2026-08-01", Content: content}
}

func TestCollectReachesTarget(t *testing.T) {
	r1 := []reviewNode{node("a", "soothing and gentle"), node("b", "nice texture"), node("c", "absorbs fast")}
	r2 := append(append([]reviewNode{}, r1...),
		node("d", "very moisturizing"), node("e", "love the glow"))
	s := &fakeSession{
		rounds:   [][]reviewNode{r1, r2},
		identity: `{"brand":"GlowLab","name":"Cica Serum","total":120}`,
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 4, nil)

	require.NoError(t, err)
	require.Len(t, res.Reviews, 4)
	require.Empty(t, res.StallBy)
	require.Equal(t, "GlowLab", res.Product.Brand)
	require.Equal(t, "Cica Serum", res.Product.Name)
	require.Equal(t, 120, res.Product.DeclaredTotal)
}

func TestCollectCarriesPurchaseOption(t *testing.T) {
	withOption := node("a", "soothing and gentle")
	withOption.Option = "30ml / light beige"
	withoutOption := node("b", "nice texture")
	s := &fakeSession{
		rounds:   [][]reviewNode{{withOption, withoutOption}},
		identity: `{"brand":"b","name":"n","total":2}`,
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.NoError(t, err)
	require.Len(t, res.Reviews, 2)
	require.Equal(t, "30ml / light beige", res.Reviews[0].Option)
	require.Equal(t, "no option", res.Reviews[1].Option)
}

func TestCollectStallsOnNoNewContent(t *testing.T) {
	r1 := []reviewNode{node("a", "soothing and gentle"), node("b", "nice texture")}
	s := &fakeSession{
		rounds:   [][]reviewNode{r1}, // page never grows
		identity: `{"brand":"GlowLab","name":"Cica Serum","total":2}`,
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.NoError(t, err)
	require.Len(t, res.Reviews, 2)
	require.Equal(t, "no-new-content", res.StallBy)
	// first round plus NoNewLimit empty rounds
	require.Equal(t, 4, res.Iterations)
}

func TestCollectUnchangedPageAddsNothing(t *testing.T) {
	r1 := []reviewNode{node("a", "soothing and gentle")}
	s := &fakeSession{
		rounds:   [][]reviewNode{r1, r1, r1},
		identity: `{"brand":"b","name":"n","total":1}`,
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)
}

func TestCollectStallsOnNoScrollMovement(t *testing.T) {
	// content keeps growing but the page cannot scroll
	rounds := make([][]reviewNode, 0, 8)
	var page []reviewNode
	for i := 0; i < 8; i++ {
		page = append(page, node("u", "unique review body number "+string(rune('a'+i))))
		rounds = append(rounds, append([]reviewNode{}, page...))
	}
	s := &fakeSession{
		rounds:   rounds,
		frozen:   true,
		identity: `{"brand":"b","name":"n","total":99}`,
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.NoError(t, err)
	require.Equal(t, "no-scroll-movement", res.StallBy)
	require.NotEmpty(t, res.Reviews)
}

func TestCollectFinalFullContentDedup(t *testing.T) {
	// same content under different nicknames passes the per-round key but
	// must collapse in the final pass
	r1 := []reviewNode{node("a", "identical body"), node("b", "identical body")}
	s := &fakeSession{
		rounds:   [][]reviewNode{r1},
		identity: `{"brand":"b","name":"n","total":2}`,
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)
}

func TestCollectRetriesWithLongerWait(t *testing.T) {
	s := &fakeSession{
		rounds:    [][]reviewNode{{node("a", "soothing and gentle")}},
		identity:  `{"brand":"b","name":"n","total":1}`,
		waitFails: 1,
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)
	require.Len(t, s.waitTimes, 2)
	require.Equal(t, 2*s.waitTimes[0], s.waitTimes[1])
}

func TestCollectPrepareFailureAfterRetry(t *testing.T) {
	s := &fakeSession{waitFails: 2}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.Error(t, err)
	require.NotNil(t, res)
	require.Empty(t, res.Reviews)
}

func TestCollectScrollFailureKeepsPartialResult(t *testing.T) {
	s := &fakeSession{
		rounds:    [][]reviewNode{{node("a", "soothing and gentle"), node("b", "nice texture")}},
		identity:  `{"brand":"b","name":"n","total":50}`,
		scrollErr: errors.New("tab crashed"),
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.Error(t, err)
	require.Len(t, res.Reviews, 2)
}

func TestCollectProgressCallback(t *testing.T) {
	s := &fakeSession{
		rounds:   [][]reviewNode{{node("a", "soothing and gentle")}},
		identity: `{"brand":"b","name":"n","total":1}`,
	}

	var calls int
	var lastMsg string
	_, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0,
		func(current, target int, msg string) {
			calls++
			lastMsg = msg
		})

	require.NoError(t, err)
	require.Greater(t, calls, 0)
	require.Equal(t, "collection finished", lastMsg)
}

func TestCollectIdentityFailureIsNotFatal(t *testing.T) {
	s := &fakeSession{
		rounds: [][]reviewNode{{node("a", "soothing and gentle")}},
		// identity left unscripted: Evaluate errors for the identity read
	}

	res, err := NewCollector(s, testConfig()).Collect(context.Background(), "A123", 0, nil)

	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)
	require.Empty(t, res.Product.Brand)
}

func TestCollectContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSession{}
	res, err := NewCollector(s, testConfig()).Collect(ctx, "A123", 0, nil)

	require.Error(t, err)
	require.NotNil(t, res)
}
