// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cache

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// coordPrecision is the precision used to quantize coordinates (0.01 degrees ≈ 1.1 km)
const coordPrecision = 1e-2

// coordParams are the query parameters that get quantized before building a key
var coordParams = map[string]struct{}{"lat": {}, "lon": {}}

type Entry struct {
	Status int
	Body   []byte
	Expiry time.Time
}

// ResponseCache keeps successful proxy responses in memory until their lifetime ends.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *ResponseCache {
	return &ResponseCache{entries: make(map[string]Entry)}
}

// Get returns the cached response for key if it has not expired yet.
func (c *ResponseCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !time.Now().Before(entry.Expiry) {
		return Entry{}, false
	}
	return entry, true
}

// Set stores a response for ttl. Responses with a non-positive ttl are not stored.
func (c *ResponseCache) Set(key string, status int, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if !now.Before(e.Expiry) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = Entry{
		Status: status,
		Body:   body,
		Expiry: now.Add(ttl),
	}
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Key builds a cache key from the request path and its query. Parameter order does not
// matter, string values are trimmed and lower-cased and coordinates are quantized.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	normalized := make(url.Values, len(query))
	for name, values := range query {
		name = strings.ToLower(name)
		for _, val := range values {
			val = strings.ToLower(strings.TrimSpace(val))
			if _, ok := coordParams[name]; ok {
				if f, err := strconv.ParseFloat(val, 64); err == nil {
					val = fmt.Sprintf("%d", quantizeCoord(f))
				}
			}
			normalized.Add(name, val)
		}
	}
	return path + "?" + normalized.Encode()
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}
