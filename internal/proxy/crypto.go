// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/wneessen/cyberdash/internal/metrics"
)

const coinMarketCapURL = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest?id=1&convert=USD"

type coinMarketCapStatus struct {
	Status *struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

// handleCrypto passes the CoinMarketCap quote for Bitcoin through.
func (s *Server) handleCrypto(r *http.Request) (any, error) {
	apiKey := s.config.Secrets.CoinMarketCapAPIKey
	if apiKey == "" {
		return nil, notConfigured("CoinMarketCap API Key")
	}

	headers := map[string]string{"X-CMC_PRO_API_KEY": apiKey}
	code, body, err := s.http.GetRaw(r.Context(), coinMarketCapURL, nil, headers, s.config.Proxy.RequestTimeout)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("coinmarketcap").Inc()
		return nil, fmt.Errorf("failed to fetch CoinMarketCap quote: %w", err)
	}

	status := new(coinMarketCapStatus)
	decodeErr := json.Unmarshal(body, status)
	success := code >= 200 && code < 300
	var errorCode int
	var errorMessage string
	if status.Status != nil {
		errorCode = status.Status.ErrorCode
		errorMessage = status.Status.ErrorMessage
	}
	if !success || errorCode != 0 {
		metrics.UpstreamFailures.WithLabelValues("coinmarketcap").Inc()
		if errorMessage == "" {
			errorMessage = upstreamFailed(code)
		}
		return nil, newError(cryptoErrorStatus(errorCode), "%s", errorMessage)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode CoinMarketCap response: %w", decodeErr)
	}

	return json.RawMessage(body), nil
}

// cryptoErrorStatus maps CoinMarketCap error codes to the status returned to the caller.
func cryptoErrorStatus(errorCode int) int {
	switch errorCode {
	case 1001, 1002:
		return http.StatusUnauthorized
	case 1006:
		return http.StatusForbidden
	case 400:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
