// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package poller runs a fetch function on a fixed interval.
//
// A Poller fetches once immediately on Start, then once per interval until
// Stop. Trigger requests an extra fetch without resetting the schedule.
// Fetches run one at a time on the poller goroutine. A failed fetch is
// logged and that cycle is skipped; there is no retry and no backoff.
//
// After Stop returns no further fetch is started and any in-flight fetch
// has observed a cancelled context and returned.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zenbot-labs/zenbot-tui/internal/logging"
)

// DefaultInterval is the metrics refresh period.
const DefaultInterval = 5 * time.Second

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("poller already started")

	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("poller stopped")
)

// FetchFunc performs one poll. It should honour ctx cancellation.
type FetchFunc func(ctx context.Context) error

// =============================================================================
// POLLER
// =============================================================================

// Poller owns one background goroutine.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc

	trigger chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	stopped bool
	wg      sync.WaitGroup

	fetches  atomic.Int64
	failures atomic.Int64
}

// New creates a poller. A non-positive interval selects DefaultInterval.
func New(name string, interval time.Duration, fetch FetchFunc) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		trigger:  make(chan struct{}, 1),
	}
}

// Interval returns the poll period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start fetches immediately and then on every tick until Stop or until ctx
// is done.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.loop(ctx)

	logging.Debugw("poller started", "name", p.name, "interval", p.interval)
	return nil
}

// Stop cancels the loop and waits for it to exit. It is safe to call more
// than once and before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	logging.Debugw("poller stopped", "name", p.name, "fetches", p.fetches.Load())
}

// Trigger requests an out-of-schedule fetch. Requests made while one is
// already pending collapse into one. It never blocks.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Fetches returns the number of fetches started.
func (p *Poller) Fetches() int64 {
	return p.fetches.Load()
}

// Failures returns the number of fetches that returned an error.
func (p *Poller) Failures() int64 {
	return p.failures.Load()
}

// =============================================================================
// LOOP
// =============================================================================

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		case <-p.trigger:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	// Stop may have raced with a tick.
	if ctx.Err() != nil {
		return
	}
	p.fetches.Add(1)
	if err := p.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.failures.Add(1)
		logging.Warnw("poll failed, skipping cycle", "name", p.name, "error", err)
	}
}
