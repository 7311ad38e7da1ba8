package server

import (
	"context"
	"time"

	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/repositories/refreshtokens"
)

// runPurger deletes expired refresh-token records every interval until ctx
// is cancelled. record receives the number of rows removed per sweep.
func runPurger(ctx context.Context, p refreshtokens.Purger, interval time.Duration, record func(int64), l logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.DeleteExpired(ctx, time.Now())
			if err != nil {
				if ctx.Err() == nil {
					l.Error(ctx, "purging expired refresh tokens failed", "error", err)
				}
				continue
			}
			if n > 0 {
				l.Info(ctx, "purged expired refresh tokens", "count", n)
			}
			record(n)
		}
	}
}
