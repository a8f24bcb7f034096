// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package poller implements the self-rescheduling fetch loop shared by all dashboard widgets.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/metrics"
	"github.com/wneessen/cyberdash/internal/vartype"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = time.Second * 30

// FetchFunc fetches the data of one widget.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// State is the fetch state of one widget. Data keeps the last successful result even if
// later fetches fail.
type State[T any] struct {
	Data        vartype.Variable[T]
	IsLoading   bool
	Err         error
	LastUpdated time.Time
}

// Option configures a Poller.
type Option[T any] func(*Poller[T])

// WithTimeout sets the timeout of a single fetch.
func WithTimeout[T any](timeout time.Duration) Option[T] {
	return func(p *Poller[T]) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithLogger sets the logger used to report failed fetches.
func WithLogger[T any](log *logger.Logger) Option[T] {
	return func(p *Poller[T]) {
		p.logger = log
	}
}

// WithOnSuccess registers a function called with every successful result that was applied
// to the state. It runs while the poller is locked and must not call back into the poller.
func WithOnSuccess[T any](fn func(data T, at time.Time)) Option[T] {
	return func(p *Poller[T]) {
		p.onSuccess = fn
	}
}

// Poller runs the fetch loop of one widget. Fetches are strictly sequential: the delay
// until the next fetch starts after the previous one completed.
type Poller[T any] struct {
	category  string
	fetch     FetchFunc[T]
	timeout   time.Duration
	logger    *logger.Logger
	onSuccess func(T, time.Time)

	mu         sync.Mutex
	state      State[T]
	generation uint64
	inFlight   bool
	cancel     context.CancelFunc
}

// New returns an inactive Poller for category.
func New[T any](category string, fetch FetchFunc[T], opts ...Option[T]) *Poller[T] {
	p := &Poller[T]{
		category: category,
		fetch:    fetch,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Category returns the category the poller fetches.
func (p *Poller[T]) Category() string {
	return p.category
}

// Start activates the poller. Any previous activation is stopped first. The first fetch
// happens right away; further fetches follow every interval. An interval of zero or less
// disables automatic refreshes.
func (p *Poller[T]) Start(ctx context.Context, interval time.Duration) {
	p.mu.Lock()
	p.deactivate()
	gen := p.generation
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	go p.loop(loopCtx, gen, interval)
}

// Stop deactivates the poller. The pending timer is cancelled and the result of a fetch
// still in flight is discarded.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deactivate()
}

// Refresh fetches once unless a fetch is already in flight. It blocks until the fetch
// completed and reports whether a fetch was performed.
func (p *Poller[T]) Refresh(ctx context.Context) bool {
	p.mu.Lock()
	gen := p.generation
	p.mu.Unlock()
	return p.run(ctx, gen)
}

// State returns a copy of the current state.
func (p *Poller[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// deactivate requires p.mu to be held.
func (p *Poller[T]) deactivate() {
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.inFlight = false
	p.state.IsLoading = false
}

func (p *Poller[T]) loop(ctx context.Context, gen uint64, interval time.Duration) {
	for {
		p.run(ctx, gen)
		if interval <= 0 {
			return
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// run performs one fetch for activation gen. Every state mutation checks gen first, so a
// result arriving after deactivation is dropped.
func (p *Poller[T]) run(ctx context.Context, gen uint64) bool {
	p.mu.Lock()
	if gen != p.generation || p.inFlight {
		p.mu.Unlock()
		return false
	}
	p.inFlight = true
	p.state.IsLoading = true
	p.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	start := time.Now()
	data, err := p.fetch(fetchCtx)
	cancel()
	metrics.PollerFetchDuration.WithLabelValues(p.category).Observe(time.Since(start).Seconds())

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		metrics.PollerDiscarded.WithLabelValues(p.category).Inc()
		return true
	}
	p.inFlight = false
	p.state.IsLoading = false
	if err != nil {
		p.state.Err = err
		p.mu.Unlock()
		metrics.PollerFetches.WithLabelValues(p.category, "error").Inc()
		if p.logger != nil {
			p.logger.Warn("widget fetch failed", slog.String("category", p.category), logger.Err(err))
		}
		return true
	}

	now := time.Now()
	p.state.Data.Set(data)
	p.state.Err = nil
	p.state.LastUpdated = now
	if p.onSuccess != nil {
		p.onSuccess(data, now)
	}
	p.mu.Unlock()
	metrics.PollerFetches.WithLabelValues(p.category, "success").Inc()
	return true
}
