package repository

import (
	"context"
	"time"

	"github.com/eapache/go-resiliency/retrier"

	"todo-api/internal/logging"
)

// ConnectBackoff is the pause between connection attempts.
var ConnectBackoff = 100 * time.Millisecond

// Connect runs ping until it succeeds, trying at most attempts times.
// Only store start-up is retried; reads and commits never are.
func Connect(ctx context.Context, attempts int, ping func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	r := retrier.New(retrier.ConstantBackoff(attempts-1, ConnectBackoff), nil)
	try := 0
	return r.RunCtx(ctx, func(ctx context.Context) error {
		try++
		err := ping(ctx)
		if err != nil {
			logging.Debugf("connect attempt %d/%d failed: %v\n", try, attempts, err)
		}
		return err
	})
}
