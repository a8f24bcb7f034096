// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/wneessen/cyberdash/internal/metrics"
)

const exchangeRateURL = "https://v6.exchangerate-api.com/v6/%s/latest/USD"

type exchangeRateResult struct {
	Result    string `json:"result"`
	ErrorType string `json:"error-type"`
}

// handleCurrency passes the USD based exchange rates through.
func (s *Server) handleCurrency(r *http.Request) (any, error) {
	appID := s.config.Secrets.ExchangeRateAppID
	if appID == "" {
		return nil, notConfigured("ExchangeRate App ID")
	}

	endpoint := fmt.Sprintf(exchangeRateURL, url.PathEscape(appID))
	code, body, err := s.http.GetRaw(r.Context(), endpoint, nil, nil, s.config.Proxy.RequestTimeout)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("exchangerate").Inc()
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	result := new(exchangeRateResult)
	decodeErr := json.Unmarshal(body, result)
	if code < 200 || code >= 300 || result.Result == "error" {
		metrics.UpstreamFailures.WithLabelValues("exchangerate").Inc()
		status := http.StatusBadRequest
		if code >= 400 {
			status = code
		}
		message := result.ErrorType
		if message == "" {
			message = upstreamFailed(code)
		}
		return nil, newError(status, "%s", message)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode exchange rates: %w", decodeErr)
	}

	return json.RawMessage(body), nil
}
