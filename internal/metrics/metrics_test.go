// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors(t *testing.T) {
	t.Run("counters are labelled and incremented", func(t *testing.T) {
		before := testutil.ToFloat64(ProxyRequests.WithLabelValues("test", "200"))
		ProxyRequests.WithLabelValues("test", "200").Inc()
		after := testutil.ToFloat64(ProxyRequests.WithLabelValues("test", "200"))
		if after-before != 1 {
			t.Errorf("expected counter to increase by 1, got %f", after-before)
		}
	})
	t.Run("poller collectors lint cleanly", func(t *testing.T) {
		PollerFetches.WithLabelValues("test", "success").Inc()
		problems, err := testutil.CollectAndLint(PollerFetches)
		if err != nil {
			t.Fatalf("failed to lint collector: %s", err)
		}
		if len(problems) > 0 {
			t.Errorf("unexpected lint problems: %v", problems)
		}
	})
}
