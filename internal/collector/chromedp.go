package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/pkg/circuitbreaker"
	"github.com/reviewlens/backend/pkg/logger"
)

// ChromeSession implements Session on a headless Chrome via chromedp.
// Navigation goes through a circuit breaker so a dead or blocked browser
// fails fast instead of eating the full timeout on every call.
type ChromeSession struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
	navTimeout time.Duration
	breaker    *circuitbreaker.CircuitBreaker
}

func NewChromeSession(parent context.Context, headless bool, navTimeout time.Duration) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1280, 2000),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// start the browser eagerly so construction fails here, not on first use
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("browser session started", zap.Bool("headless", headless))

	return &ChromeSession{
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
		navTimeout: navTimeout,
		breaker: circuitbreaker.New("browser-navigation", circuitbreaker.Config{
			FailureThreshold: 3,
			Timeout:          30 * time.Second,
			Logger:           logger.GetLogger(),
		}),
	}, nil
}

func (s *ChromeSession) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	return s.breaker.Execute(ctx, func() error {
		tctx, cancel := s.bounded(ctx, s.navTimeout)
		defer cancel()
		return chromedp.Run(tctx, chromedp.Navigate(url))
	})
}

func (s *ChromeSession) Evaluate(ctx context.Context, script string, out interface{}) error {
	tctx, cancel := s.bounded(ctx, s.navTimeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.Evaluate(script, out))
}

func (s *ChromeSession) ScrollBy(ctx context.Context, pixels int) error {
	tctx, cancel := s.bounded(ctx, s.navTimeout)
	defer cancel()
	return chromedp.Run(tctx,
		chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels), nil))
}

func (s *ChromeSession) ScrollPosition(ctx context.Context) (float64, error) {
	var pos float64
	tctx, cancel := s.bounded(ctx, s.navTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Evaluate("window.pageYOffset", &pos)); err != nil {
		return 0, err
	}
	return pos, nil
}

func (s *ChromeSession) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	tctx, cancel := s.bounded(ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// bounded derives a chromedp-rooted context that also honors the caller's
// cancellation.
func (s *ChromeSession) bounded(caller context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancelTimeout := context.WithTimeout(s.browserCtx, timeout)
	stop := context.AfterFunc(caller, cancelTimeout)
	return tctx, func() {
		stop()
		cancelTimeout()
	}
}
