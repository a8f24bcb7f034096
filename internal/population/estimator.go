// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package population

import (
	"sync"
	"time"
)

// Estimator holds the latest measurement and the value last shown to the user.
type Estimator struct {
	mu        sync.RWMutex
	anchor    WorldPopulation
	anchored  bool
	displayed Counters
}

func NewEstimator() *Estimator {
	return &Estimator{}
}

// Anchor replaces the baseline with a fresh measurement and recomputes the displayed
// counters right away.
func (e *Estimator) Anchor(w WorldPopulation, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.anchor = w
	e.anchored = true
	e.displayed = w.Live(now)
}

// Current extrapolates the anchored measurement to now. It returns false before the first
// measurement arrived.
func (e *Estimator) Current(now time.Time) (Counters, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.anchored {
		return Counters{}, false
	}
	return e.anchor.Live(now), true
}

// Tick recomputes the displayed counters for now.
func (e *Estimator) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.anchored {
		return
	}
	e.displayed = e.anchor.Live(now)
}

// Displayed returns the counters computed by the last Tick or Anchor.
func (e *Estimator) Displayed() (Counters, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.displayed, e.anchored
}
