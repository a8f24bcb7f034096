// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cache

import (
	"net/url"
	"testing"
	"testing/synctest"
	"time"
)

func TestResponseCache(t *testing.T) {
	t.Run("cache hit within lifetime", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			c := New()
			c.Set("/api/country?code=id", 200, []byte(`{"name":"Indonesia"}`), time.Hour)

			time.Sleep(time.Minute * 59)
			entry, ok := c.Get("/api/country?code=id")
			if !ok {
				t.Fatal("expected cache hit")
			}
			if entry.Status != 200 || string(entry.Body) != `{"name":"Indonesia"}` {
				t.Errorf("unexpected cache entry: %+v", entry)
			}
		})
	})
	t.Run("cache miss after expiry", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			c := New()
			c.Set("key", 200, []byte("{}"), time.Minute)

			time.Sleep(time.Minute)
			if _, ok := c.Get("key"); ok {
				t.Error("expected cache miss after expiry")
			}
		})
	})
	t.Run("cache miss for unknown key", func(t *testing.T) {
		c := New()
		if _, ok := c.Get("unknown"); ok {
			t.Error("expected cache miss")
		}
	})
	t.Run("zero lifetime is never stored", func(t *testing.T) {
		c := New()
		c.Set("/api/indoor", 200, []byte("{}"), 0)
		if c.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", c.Len())
		}
	})
	t.Run("expired entries are evicted on set", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			c := New()
			c.Set("old", 200, []byte("{}"), time.Second)
			time.Sleep(time.Second * 2)
			c.Set("new", 200, []byte("{}"), time.Hour)
			if c.Len() != 1 {
				t.Errorf("expected 1 entry after eviction, got %d", c.Len())
			}
		})
	})
}

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		a, b  url.Values
		equal bool
	}{
		{
			"parameter order is irrelevant",
			url.Values{"lat": {"-6.898"}, "lon": {"107.6349"}},
			url.Values{"lon": {"107.6349"}, "lat": {"-6.898"}},
			true,
		},
		{
			"nearby coordinates share a key",
			url.Values{"lat": {"-6.898"}, "lon": {"107.6349"}},
			url.Values{"lat": {"-6.8981"}, "lon": {"107.6341"}},
			true,
		},
		{
			"distant coordinates differ",
			url.Values{"lat": {"-6.898"}, "lon": {"107.6349"}},
			url.Values{"lat": {"52.52"}, "lon": {"13.41"}},
			false,
		},
		{
			"case and whitespace are normalized",
			url.Values{"q": {" Bandung "}},
			url.Values{"q": {"bandung"}},
			true,
		},
		{
			"different queries differ",
			url.Values{"code": {"ID"}},
			url.Values{"code": {"DE"}},
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ka, kb := Key("/api/test", tc.a), Key("/api/test", tc.b)
			if (ka == kb) != tc.equal {
				t.Errorf("expected keys equal=%t, got %q and %q", tc.equal, ka, kb)
			}
		})
	}
	t.Run("empty query yields the path", func(t *testing.T) {
		if got := Key("/api/status", nil); got != "/api/status" {
			t.Errorf("expected path as key, got %q", got)
		}
	})
}
