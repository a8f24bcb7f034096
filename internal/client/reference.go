// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/wneessen/cyberdash/internal/proxy"
)

// Services fetches the status of every monitored service.
func (c *Client) Services(ctx context.Context) ([]proxy.ServiceStatus, error) {
	var services []proxy.ServiceStatus
	if err := c.fetch(ctx, CategoryServices, "/api/status", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// Country fetches the facts and the world population measurement for a country code.
func (c *Client) Country(ctx context.Context, code string) (proxy.CountryResponse, error) {
	query := url.Values{}
	query.Set("code", strings.ToUpper(code))

	var country proxy.CountryResponse
	if err := c.fetch(ctx, CategoryCountry, "/api/country", query, &country); err != nil {
		return proxy.CountryResponse{}, err
	}
	return country, nil
}

// SearchLocations searches locations by name.
func (c *Client) SearchLocations(ctx context.Context, name string) ([]proxy.GeocodingResult, error) {
	query := url.Values{}
	query.Set("q", name)

	var res proxy.GeocodingResponse
	if err := c.fetch(ctx, CategorySearch, "/api/geocoding", query, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}
