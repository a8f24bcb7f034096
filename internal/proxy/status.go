// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/wneessen/cyberdash/internal/config"
	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/metrics"
)

const statusPagePath = "/api/v2/status.json"

// Service status values
const (
	StatusOperational   = "operational"
	StatusDegraded      = "degraded"
	StatusPartialOutage = "partial_outage"
	StatusMajorOutage   = "major_outage"
	StatusUnknown       = "unknown"
)

type statusPageResult struct {
	Status struct {
		Indicator string `json:"indicator"`
	} `json:"status"`
}

// ServiceStatus is the state of one monitored service.
type ServiceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

// handleStatus checks every configured status page concurrently. A failed check only
// marks its own entry as unknown.
func (s *Server) handleStatus(r *http.Request) (any, error) {
	services := s.config.Proxy.Services
	results := make([]ServiceStatus, len(services))

	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Go(func() {
			results[i] = s.checkService(r.Context(), svc)
		})
	}
	wg.Wait()

	return results, nil
}

func (s *Server) checkService(ctx context.Context, svc config.StatusPage) ServiceStatus {
	result := ServiceStatus{
		Name:   svc.Name,
		Status: StatusUnknown,
		URL:    strings.Replace(svc.URL, statusPagePath, "", 1),
	}

	res := new(statusPageResult)
	code, err := s.http.GetWithTimeout(ctx, svc.URL, res, nil, nil, s.config.Proxy.StatusTimeout)
	if err != nil || code < 200 || code >= 300 {
		metrics.UpstreamFailures.WithLabelValues("statuspage").Inc()
		s.logger.Debug("status page check failed", slog.String("service", svc.Name),
			slog.Int("code", code), logger.Err(err))
		return result
	}
	result.Status = mapIndicator(res.Status.Indicator)
	return result
}

// mapIndicator maps a statuspage.io indicator to a service status.
func mapIndicator(indicator string) string {
	switch indicator {
	case "none":
		return StatusOperational
	case "minor":
		return StatusDegraded
	case "major":
		return StatusPartialOutage
	case "critical":
		return StatusMajorOutage
	default:
		return StatusUnknown
	}
}
