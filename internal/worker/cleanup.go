package worker

import (
	"context"
	"sync"
	"time"

	"moodcal/internal/logger"
	"moodcal/internal/repository"
)

// Cleanup periodically deletes refresh tokens that expired longer than the
// retention window ago. Expired tokens are kept for a while so that reuse
// of a rotated token can still be detected.
type Cleanup struct {
	tokens   repository.RefreshTokenRepository
	interval time.Duration
	retain   time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewCleanup creates a cleanup worker. Start must be called to begin
// sweeping; Stop blocks until the loop exits.
func NewCleanup(tokens repository.RefreshTokenRepository, interval, retain time.Duration) *Cleanup {
	return &Cleanup{
		tokens:   tokens,
		interval: interval,
		retain:   retain,
	}
}

// Start begins the sweep loop in its own goroutine.
func (c *Cleanup) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop cancels the loop and waits for it to finish.
func (c *Cleanup) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Cleanup) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleanup) sweep(ctx context.Context) {
	deleted, err := c.tokens.DeleteExpired(ctx, c.retain)
	if err != nil {
		logger.Log.Errorf("[Cleanup] sweep FAILED: err=%v", err)
		return
	}
	if deleted > 0 {
		logger.Log.Infof("[Cleanup] sweep OK: deleted=%d", deleted)
	}
}
