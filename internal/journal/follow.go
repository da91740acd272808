package journal

import (
	"context"
	"time"
)

// DefaultRefreshInterval is how often Follow re-runs a query.
const DefaultRefreshInterval = 10 * time.Second

// Follow fetches immediately and then every interval until ctx is done,
// passing each outcome to handle. A cancelled authentication prompt stops
// the loop so the user is not asked again on every tick.
func (rd *Reader) Follow(ctx context.Context, q Query, interval time.Duration, handle func(*Result, error)) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := rd.Fetch(ctx, q)
		if ctx.Err() != nil {
			return
		}
		handle(res, err)
		if err != nil || res.Status == StatusCancelled {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
