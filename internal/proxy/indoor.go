// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/metrics"
)

const (
	blynkDataURL   = "https://blynk.cloud/external/api/get?token=%s&v0&v1&v4&v5&v8"
	blynkStatusURL = "https://blynk.cloud/external/api/isHardwareConnected?token=%s"
)

// handleIndoor returns the Blynk sensor pins merged with the device online status. The
// data and status calls run concurrently; a failed status call reports the device offline.
func (s *Server) handleIndoor(r *http.Request) (any, error) {
	token := s.config.Secrets.BlynkAuthToken
	if token == "" {
		return nil, notConfigured("Blynk Auth Token")
	}
	token = url.QueryEscape(token)

	var (
		dataCode int
		dataBody []byte
		isOnline bool
	)
	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error {
		var err error
		dataCode, dataBody, err = s.http.GetRaw(ctx, fmt.Sprintf(blynkDataURL, token), nil, nil,
			s.config.Proxy.RequestTimeout)
		if err != nil {
			return fmt.Errorf("failed to fetch Blynk data: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		isOnline = s.deviceOnline(ctx, token)
		return nil
	})
	if err := group.Wait(); err != nil {
		metrics.UpstreamFailures.WithLabelValues("blynk").Inc()
		return nil, err
	}

	if dataCode < 200 || dataCode >= 300 {
		metrics.UpstreamFailures.WithLabelValues("blynk").Inc()
		status := dataCode
		if status < 400 {
			status = http.StatusInternalServerError
		}
		return nil, newError(status, "%s", upstreamFailed(dataCode))
	}
	data := make(map[string]any)
	if err := json.Unmarshal(dataBody, &data); err != nil {
		return nil, fmt.Errorf("failed to decode Blynk data: %w", err)
	}
	data["isOnline"] = isOnline

	return data, nil
}

func (s *Server) deviceOnline(ctx context.Context, token string) bool {
	var online bool
	code, err := s.http.GetWithTimeout(ctx, fmt.Sprintf(blynkStatusURL, token), &online, nil, nil,
		s.config.Proxy.RequestTimeout)
	if err != nil {
		s.logger.Debug("failed to fetch Blynk device status", logger.Err(err))
		return false
	}
	if code < 200 || code >= 300 {
		return false
	}
	return online
}
