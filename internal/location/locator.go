// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/wneessen/cyberdash/internal/http"
	"github.com/wneessen/cyberdash/internal/logger"
)

const (
	GeoIPEndpoint          = "https://reallyfreegeoip.org/json/"
	ReverseGeocodeEndpoint = "https://api.bigdatacloud.net/data/reverse-geocode-client"
	LookupTimeout          = time.Second * 5

	unknownLocality  = "Unknown Location"
	fallbackName     = "My Location"
	fallbackCountry  = "ID"
	fallbackCurrency = "IDR"
)

type geoIPResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type reverseGeocodeResult struct {
	Locality             string `json:"locality"`
	City                 string `json:"city"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryCode          string `json:"countryCode"`
	Currency             *struct {
		Code string `json:"code"`
	} `json:"currency"`
}

// Place is the reverse geocoded description of a coordinate.
type Place struct {
	Name         string
	CountryCode  string
	CurrencyCode string
}

// Locator resolves the session location from the public IP address.
type Locator struct {
	http       *http.Client
	logger     *logger.Logger
	geoIPURL   string
	reverseURL string
}

func NewLocator(client *http.Client, log *logger.Logger) *Locator {
	return &Locator{
		http:       client,
		logger:     log,
		geoIPURL:   GeoIPEndpoint,
		reverseURL: ReverseGeocodeEndpoint,
	}
}

// Locate looks up the coordinates of the public IP address and names them.
func (l *Locator) Locate(ctx context.Context) (Location, error) {
	result := new(geoIPResult)
	code, err := l.http.GetWithTimeout(ctx, l.geoIPURL, result, nil, nil, LookupTimeout)
	if err != nil {
		return Location{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if code < 200 || code >= 300 {
		return Location{}, fmt.Errorf("geolocation API returned status %d", code)
	}

	loc := Location{Lat: result.Latitude, Lon: result.Longitude}
	if !loc.Valid() || (loc.Lat == 0 && loc.Lon == 0) {
		return Location{}, fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, loc.Lat, loc.Lon)
	}

	place := l.ReverseGeocode(ctx, loc.Lat, loc.Lon)
	loc.Name = place.Name
	loc.CountryCode = place.CountryCode
	loc.CurrencyCode = place.CurrencyCode
	return loc, nil
}

// ReverseGeocode names a coordinate as "locality, city". It never fails; any lookup error
// yields a generic place in the fallback country.
func (l *Locator) ReverseGeocode(ctx context.Context, lat, lon float64) Place {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("localityLanguage", "en")

	result := new(reverseGeocodeResult)
	code, err := l.http.GetWithTimeout(ctx, l.reverseURL, result, query, nil, LookupTimeout)
	if err != nil || code < 200 || code >= 300 {
		l.logger.Warn("reverse geocoding failed", logger.Err(err), slog.Int("code", code))
		return Place{Name: fallbackName, CountryCode: fallbackCountry, CurrencyCode: fallbackCurrency}
	}
	return placeFromResult(result)
}

func placeFromResult(result *reverseGeocodeResult) Place {
	locality := result.Locality
	if locality == "" {
		locality = unknownLocality
	}
	city := result.City
	if city == "" {
		city = result.PrincipalSubdivision
	}
	name := locality
	if city != "" && city != locality {
		name = locality + ", " + city
	}

	place := Place{Name: name, CountryCode: fallbackCountry, CurrencyCode: fallbackCurrency}
	if result.CountryCode != "" {
		place.CountryCode = result.CountryCode
	}
	if result.Currency != nil && result.Currency.Code != "" {
		place.CurrencyCode = result.Currency.Code
	}
	return place
}

// Resolve locates the session and replaces the stored location if it is still the default
// or the new position is more than DistanceThreshold away. It reports whether the stored
// location was replaced.
func (l *Locator) Resolve(ctx context.Context, store *Store) (bool, error) {
	loc, err := l.Locate(ctx)
	if err != nil {
		return false, err
	}
	current := store.Get()
	if !store.IsDefault() && !loc.MovedFrom(current) {
		l.logger.Debug("location did not change significantly", slog.String("name", current.Name))
		return false, nil
	}
	return true, store.Set(loc)
}
