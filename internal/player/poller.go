package player

import (
	"context"
	"time"
)

// DefaultInterval is how often a player asks for its playlist.
const DefaultInterval = 10 * time.Second

// Poller runs fn immediately, then every interval and whenever Kick is
// called, until its context is cancelled. Runs never overlap.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)
	kick     chan struct{}
}

func NewPoller(interval time.Duration, fn func(context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{interval: interval, fn: fn, kick: make(chan struct{}, 1)}
}

// Kick schedules an extra run. Kicks that arrive while one is pending are
// merged.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done and returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.fn(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-p.kick:
			ticker.Reset(p.interval)
		}
	}
}
