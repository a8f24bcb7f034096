// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wneessen/cyberdash/internal/metrics"
	"github.com/wneessen/cyberdash/internal/population"
)

const restCountriesURL = "https://restcountries.com/v3.1/alpha/"

type countryQuery struct {
	Code string `validate:"required,alpha,min=2,max=3"`
}

var countryMessages = map[string]string{
	"Code.required": "Country code is required",
	"Code":          "Country code must be 2 or 3 letters",
}

type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Flags struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
	Population int64    `json:"population"`
	Capital    []string `json:"capital"`
	Region     string   `json:"region"`
}

// CountryResponse is the normalized country facts body.
type CountryResponse struct {
	Name            string                     `json:"name"`
	Flag            string                     `json:"flag"`
	Population      int64                      `json:"population"`
	Capital         string                     `json:"capital"`
	Region          string                     `json:"region"`
	WorldPopulation population.WorldPopulation `json:"worldPopulation"`
}

func (s *Server) handleCountry(r *http.Request) (any, error) {
	query := countryQuery{Code: strings.TrimSpace(r.URL.Query().Get("code"))}
	if err := s.validate.Struct(query); err != nil {
		return nil, validationError(err, countryMessages)
	}

	var countries []restCountry
	endpoint := restCountriesURL + url.PathEscape(strings.ToUpper(query.Code))
	code, err := s.http.GetWithTimeout(r.Context(), endpoint, &countries, nil, nil, s.config.Proxy.RequestTimeout)
	if code != 0 && (code < 200 || code >= 300) {
		metrics.UpstreamFailures.WithLabelValues("restcountries").Inc()
		return nil, newError(http.StatusInternalServerError, "%s", upstreamFailed(code))
	}
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("restcountries").Inc()
		return nil, fmt.Errorf("failed to fetch country data: %w", err)
	}
	if len(countries) == 0 {
		return nil, newError(http.StatusInternalServerError, "Country not found")
	}

	return normalizeCountry(countries[0], time.Now()), nil
}

func normalizeCountry(country restCountry, now time.Time) CountryResponse {
	res := CountryResponse{
		Name:            "Unknown",
		Flag:            country.Flags.SVG,
		Population:      country.Population,
		Capital:         "N/A",
		Region:          "N/A",
		WorldPopulation: population.Measure(now),
	}
	if country.Name.Common != "" {
		res.Name = country.Name.Common
	}
	if len(country.Capital) > 0 && country.Capital[0] != "" {
		res.Capital = country.Capital[0]
	}
	if country.Region != "" {
		res.Region = country.Region
	}
	return res
}
