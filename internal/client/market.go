// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// bitcoinID is the CoinMarketCap id of the quote requested by the proxy
const bitcoinID = "1"

// Rates are USD based exchange rates.
type Rates struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// Crypto is the Bitcoin price in USD and in the viewer's local currency.
type Crypto struct {
	USD       float64 `json:"usd"`
	Local     float64 `json:"local"`
	LocalCode string  `json:"localCode"`
	Change24h float64 `json:"percentChange24h"`
	// Fallback is true if LocalCode is the default currency instead of the requested one
	Fallback bool `json:"fallback"`
}

type cryptoQuote struct {
	Data map[string]struct {
		Quote map[string]struct {
			Price            *float64 `json:"price"`
			PercentChange24h *float64 `json:"percent_change_24h"`
		} `json:"quote"`
	} `json:"data"`
}

// Currency fetches the USD based exchange rates.
func (c *Client) Currency(ctx context.Context) (Rates, error) {
	var rates Rates
	if err := c.fetch(ctx, CategoryCurrency, "/api/currency", nil, &rates); err != nil {
		return Rates{}, err
	}
	if rates.Result == "error" {
		message := rates.ErrorType
		if message == "" {
			message = genericMessage(CategoryCurrency)
		}
		return Rates{}, &APIError{Category: CategoryCurrency, Status: 200, Message: message}
	}
	return rates, nil
}

// Crypto fetches the Bitcoin quote and the exchange rates concurrently and converts the
// USD price into currencyCode. If no rate exists for currencyCode, the default currency is
// used and the result is flagged as a fallback.
func (c *Client) Crypto(ctx context.Context, currencyCode string) (Crypto, error) {
	var (
		quote = new(cryptoQuote)
		rates Rates
	)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return c.fetch(ctx, CategoryCrypto, "/api/coinmarketcap", nil, quote)
	})
	group.Go(func() error {
		var err error
		rates, err = c.Currency(ctx)
		return err
	})
	if err := group.Wait(); err != nil {
		return Crypto{}, err
	}

	return convertQuote(quote, rates, strings.ToUpper(currencyCode), c.defaultCurrency)
}

func convertQuote(quote *cryptoQuote, rates Rates, currencyCode, defaultCode string) (Crypto, error) {
	usd := quote.Data[bitcoinID].Quote["USD"]
	if usd.Price == nil || usd.PercentChange24h == nil {
		return Crypto{}, &APIError{Category: CategoryCrypto, Status: 200,
			Message: "invalid crypto data format from API (USD)"}
	}

	result := Crypto{
		USD:       *usd.Price,
		LocalCode: currencyCode,
		Change24h: *usd.PercentChange24h,
	}
	rate, ok := rates.ConversionRates[currencyCode]
	if !ok {
		rate, ok = rates.ConversionRates[defaultCode]
		if !ok {
			return Crypto{}, &APIError{Category: CategoryCrypto, Status: 200,
				Message: fmt.Sprintf("failed to get conversion rate for USD to %s", defaultCode)}
		}
		result.LocalCode = defaultCode
		result.Fallback = currencyCode != defaultCode
	}
	result.Local = result.USD * rate
	return result, nil
}
