// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package client is the typed data access layer of the dashboard. Every method issues one or
// more requests against the proxy and converts any failure into an *APIError.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/wneessen/cyberdash/internal/config"
	"github.com/wneessen/cyberdash/internal/http"
	"github.com/wneessen/cyberdash/internal/logger"
)

// Data categories as used in error messages and metrics
const (
	CategoryIndoor   = "indoor"
	CategoryOutdoor  = "outdoor"
	CategoryCurrency = "currency"
	CategoryCrypto   = "crypto"
	CategoryServices = "service status"
	CategoryCountry  = "country"
	CategorySearch   = "location search"
)

// APIError is returned for every non-success proxy response and for any response that
// carries an error field.
type APIError struct {
	Category string
	Status   int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// Client talks to the proxy.
type Client struct {
	http            *http.Client
	logger          *logger.Logger
	baseURL         string
	timeout         time.Duration
	defaultCurrency string
}

// New returns a Client for the proxy configured in the dashboard section of conf.
func New(conf *config.Config, log *logger.Logger) (*Client, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	base, err := url.Parse(conf.Dashboard.ProxyURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL: %q", conf.Dashboard.ProxyURL)
	}

	return &Client{
		http:            http.New(log),
		logger:          log,
		baseURL:         strings.TrimRight(base.String(), "/"),
		timeout:         conf.Dashboard.FetchTimeout,
		defaultCurrency: conf.Dashboard.DefaultCurrency,
	}, nil
}

// DefaultCurrency returns the currency code used when the viewer's currency has no rate.
func (c *Client) DefaultCurrency() string {
	return c.defaultCurrency
}

// fetch requests path from the proxy and decodes a successful body into target.
func (c *Client) fetch(ctx context.Context, category, path string, query url.Values, target any) error {
	code, body, err := c.http.GetRaw(ctx, c.baseURL+path, query, nil, c.timeout)
	if err != nil {
		return &APIError{Category: category, Message: genericMessage(category), Err: err}
	}

	// Array bodies leave the envelope empty
	envelope := new(errorEnvelope)
	_ = json.Unmarshal(body, envelope)
	if code < 200 || code >= 300 || envelope.Error != "" {
		message := envelope.Error
		if message == "" {
			message = genericMessage(category)
		}
		return &APIError{Category: category, Status: code, Message: message}
	}

	if err = json.Unmarshal(body, target); err != nil {
		return &APIError{Category: category, Status: code, Message: genericMessage(category),
			Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func genericMessage(category string) string {
	return fmt.Sprintf("failed to fetch %s data", category)
}
