// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/metrics"
)

const (
	geocodingURL     = "https://geocoding-api.open-meteo.com/v1/search"
	geocodingResults = "5"
)

type geocodingQuery struct {
	Query string `validate:"required,min=2"`
}

var geocodingMessages = map[string]string{
	"Query": "Search query must be at least 2 characters",
}

type openMeteoGeocoding struct {
	Results []struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Admin1      string  `json:"admin1"`
	} `json:"results"`
}

// GeocodingResult is one normalized location search result.
type GeocodingResult struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Admin1      string  `json:"admin1"`
}

type GeocodingResponse struct {
	Results []GeocodingResult `json:"results"`
}

func (s *Server) handleGeocoding(r *http.Request) (any, error) {
	query := geocodingQuery{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := s.validate.Struct(query); err != nil {
		return nil, validationError(err, geocodingMessages)
	}

	params := url.Values{}
	params.Set("name", query.Query)
	params.Set("count", geocodingResults)
	params.Set("language", s.lang.String())
	params.Set("format", "json")

	res := new(openMeteoGeocoding)
	code, err := s.http.GetWithTimeout(r.Context(), geocodingURL, res, params, nil, s.config.Proxy.RequestTimeout)
	if err != nil || code < 200 || code >= 300 {
		metrics.UpstreamFailures.WithLabelValues("geocoding").Inc()
		if err != nil {
			s.logger.Error("geocoding upstream failed", logger.Err(err))
		}
		return nil, newError(http.StatusInternalServerError, "Failed to search locations")
	}

	results := make([]GeocodingResult, 0, len(res.Results))
	for _, item := range res.Results {
		results = append(results, GeocodingResult{
			ID:          item.ID,
			Name:        item.Name,
			Latitude:    item.Latitude,
			Longitude:   item.Longitude,
			Country:     item.Country,
			CountryCode: item.CountryCode,
			Admin1:      item.Admin1,
		})
	}
	return GeocodingResponse{Results: results}, nil
}
