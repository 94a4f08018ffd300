package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/storage/models"
	"github.com/reviewlens/backend/pkg/config"
	"github.com/reviewlens/backend/pkg/logger"
)

const (
	reviewListSelector = "#reviewList"
	dedupPrefixRunes   = 50
	noOptionSentinel   = "no option"
)

// extraction runs fully in the page; every field read falls back to an
// empty value so a malformed node can never abort a round.
const extractReviewsScript = `
Array.from(document.querySelectorAll('#reviewList .review-item')).map(function (el) {
	function txt(sel) { var n = el.querySelector(sel); return n ? n.textContent.trim() : ''; }
	var rating = 0;
	var r = el.querySelector('.rating .point');
	if (r) { rating = parseInt(r.textContent.replace(/[^0-9]/g, ''), 10) || 0; }
	return {
		nickname: txt('.reviewer .name'),
		rating: rating,
		date: txt('.review-date'),
		option: txt('.review-option').replace(/^\[option\]\s*/i, ''),
		content: txt('.review-content')
	};
})`

const productIdentityScript = `
(function () {
	function txt(sel) { var n = document.querySelector(sel); return n ? n.textContent.trim() : ''; }
	var total = 0;
	var t = txt('.review-summary .count').replace(/[^0-9]/g, '');
	if (t) { total = parseInt(t, 10) || 0; }
	return { brand: txt('.product-brand'), name: txt('.product-name'), total: total };
})()`

type reviewNode struct {
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
	Date     string `json:"date"`
	Option   string `json:"option"`
	Content  string `json:"content"`
}

// ProductIdentity is the minimal product info read off the page before the
// collection loop starts.
type ProductIdentity struct {
	Code          string `json:"code"`
	Brand         string `json:"brand"`
	Name          string `json:"name"`
	DeclaredTotal int    `json:"total"`
}

// Result carries whatever was collected, even when Collect also returns an
// error.
type Result struct {
	Product    ProductIdentity
	Reviews    []models.Review
	Iterations int
	StallBy    string
}

// Progress receives (current count, target, message). Implementations must
// return quickly and must not mutate collector state; it is called from the
// collection loop many times per second.
type Progress func(current, target int, message string)

type state int

const (
	stateExtracting state = iota
	stateScrolling
	stateStalledNoNewContent
	stateStalledNoScroll
	stateDone
)

// Collector drives a Session through the scroll-and-extract loop.
// Termination is stall-driven: either the target count is reached, no new
// reviews show up for cfg.NoNewLimit rounds, or the scroll position stops
// moving for cfg.NoScrollLimit rounds.
type Collector struct {
	session Session
	cfg     config.CollectorConfig
}

func NewCollector(session Session, cfg config.CollectorConfig) *Collector {
	return &Collector{session: session, cfg: cfg}
}

// Collect gathers reviews for one product. target 0 means unbounded. On a
// session failure after retry the accumulated reviews are returned together
// with the error.
func (c *Collector) Collect(ctx context.Context, productCode string, target int, progress Progress) (*Result, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}
	res := &Result{Product: ProductIdentity{Code: productCode}}

	if err := c.prepare(ctx, productCode); err != nil {
		return res, fmt.Errorf("failed to open review feed for %s: %w", productCode, err)
	}

	var identity struct {
		Brand string `json:"brand"`
		Name  string `json:"name"`
		Total int    `json:"total"`
	}
	if err := c.session.Evaluate(ctx, productIdentityScript, &identity); err != nil {
		logger.Warn("product identity read failed", zap.String("product", productCode), zap.Error(err))
	}
	res.Product.Brand = identity.Brand
	res.Product.Name = identity.Name
	res.Product.DeclaredTotal = identity.Total

	var (
		st       = stateExtracting
		prevKeys = map[string]struct{}{}
		noNew    = 0
		noScroll = 0
		lastPos  = -1.0
	)

	for st != stateDone {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if c.cfg.MaxIterations > 0 && res.Iterations >= c.cfg.MaxIterations {
			res.StallBy = "iteration-cap"
			break
		}

		switch st {
		case stateExtracting:
			res.Iterations++
			nodes := c.extract(ctx)
			keys := make(map[string]struct{}, len(nodes))
			added := 0
			for _, n := range nodes {
				key := dedupKey(n.Nickname, n.Content)
				keys[key] = struct{}{}
				if _, seen := prevKeys[key]; seen {
					continue
				}
				res.Reviews = append(res.Reviews, models.Review(n))
				added++
			}
			prevKeys = keys

			if target > 0 && len(res.Reviews) >= target {
				res.Reviews = res.Reviews[:target]
				st = stateDone
				break
			}
			if added == 0 {
				noNew++
				if noNew >= c.cfg.NoNewLimit {
					st = stateStalledNoNewContent
					break
				}
			} else {
				noNew = 0
			}
			progress(len(res.Reviews), target, fmt.Sprintf("collected %d reviews", len(res.Reviews)))
			st = stateScrolling

		case stateScrolling:
			if err := c.session.ScrollBy(ctx, c.cfg.ScrollStep); err != nil {
				res.Reviews = finalDedup(res.Reviews)
				return res, fmt.Errorf("scroll failed after %d reviews: %w", len(res.Reviews), err)
			}
			c.settle(ctx)

			pos, err := c.session.ScrollPosition(ctx)
			if err != nil {
				logger.Warn("scroll position read failed", zap.Error(err))
				pos = lastPos
			}
			if moved(pos, lastPos, float64(c.cfg.ScrollTolerance)) {
				noScroll = 0
			} else {
				noScroll++
				if noScroll >= c.cfg.NoScrollLimit {
					lastPos = pos
					st = stateStalledNoScroll
					break
				}
			}
			lastPos = pos
			st = stateExtracting

		case stateStalledNoNewContent:
			res.StallBy = "no-new-content"
			st = stateDone

		case stateStalledNoScroll:
			res.StallBy = "no-scroll-movement"
			st = stateDone
		}
	}

	res.Reviews = finalDedup(res.Reviews)
	progress(len(res.Reviews), target, "collection finished")
	logger.Info("collection finished",
		zap.String("product", productCode),
		zap.Int("reviews", len(res.Reviews)),
		zap.Int("iterations", res.Iterations),
		zap.String("stall", res.StallBy))

	return res, nil
}

// prepare navigates to the review feed and waits for the review list. One
// retry with a doubled wait before giving up.
func (c *Collector) prepare(ctx context.Context, productCode string) error {
	url := c.reviewURL(productCode)
	wait := time.Duration(c.cfg.WaitTimeoutSec) * time.Second

	err := c.open(ctx, url, wait)
	if err == nil {
		return nil
	}
	logger.Warn("review feed open failed, retrying with longer wait",
		zap.String("url", url), zap.Error(err))
	return c.open(ctx, url, 2*wait)
}

func (c *Collector) open(ctx context.Context, url string, wait time.Duration) error {
	if err := c.session.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := c.session.WaitForSelector(ctx, reviewListSelector, wait); err != nil {
		return fmt.Errorf("review list did not appear: %w", err)
	}
	return nil
}

// extract reads the currently rendered review nodes. A failed evaluation is
// an empty round, never an abort. A node without a variant gets the
// "no option" sentinel.
func (c *Collector) extract(ctx context.Context) []reviewNode {
	var nodes []reviewNode
	if err := c.session.Evaluate(ctx, extractReviewsScript, &nodes); err != nil {
		logger.Warn("review extraction failed for this round", zap.Error(err))
		return nil
	}
	for i := range nodes {
		if strings.TrimSpace(nodes[i].Option) == "" {
			nodes[i].Option = noOptionSentinel
		}
	}
	return nodes
}

func (c *Collector) settle(ctx context.Context) {
	delay := time.Duration(c.cfg.ScrollDelayMS) * time.Millisecond
	if delay <= 0 {
		return
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c *Collector) reviewURL(productCode string) string {
	return fmt.Sprintf("%s/product/%s#reviews", strings.TrimRight(c.cfg.BaseURL, "/"), productCode)
}

func moved(pos, last, tolerance float64) bool {
	if last < 0 {
		return true
	}
	diff := pos - last
	if diff < 0 {
		diff = -diff
	}
	return diff > tolerance
}

// dedupKey pairs the reviewer with a 50-rune content prefix; full-content
// equality is handled by finalDedup.
func dedupKey(nickname, content string) string {
	runes := []rune(content)
	if len(runes) > dedupPrefixRunes {
		runes = runes[:dedupPrefixRunes]
	}
	return nickname + "_" + string(runes)
}

// finalDedup drops exact full-content duplicates, keeping first occurrence
// order.
func finalDedup(reviews []models.Review) []models.Review {
	seen := make(map[string]struct{}, len(reviews))
	out := reviews[:0]
	for _, r := range reviews {
		if _, dup := seen[r.Content]; dup {
			continue
		}
		seen[r.Content] = struct{}{}
		out = append(out, r)
	}
	return out
}
