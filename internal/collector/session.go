package collector

import (
	"context"
	"time"
)

// Session is the browsing capability the collector drives. Implementations
// wrap a real browser engine; tests script one. The collector never assumes
// a specific engine.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(ctx context.Context, script string, out interface{}) error
	ScrollBy(ctx context.Context, pixels int) error
	ScrollPosition(ctx context.Context) (float64, error)
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
}
