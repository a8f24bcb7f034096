// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/wneessen/cyberdash/internal/proxy"
)

// FromSearchResult builds a Location from a geocoding result. The currency is the one
// currently in use in the result's country.
func FromSearchResult(result proxy.GeocodingResult) Location {
	name := result.Name
	if result.Admin1 != "" {
		name = result.Name + ", " + result.Admin1
	}
	countryCode := strings.ToUpper(result.CountryCode)
	if countryCode == "" {
		countryCode = fallbackCountry
	}

	return Location{
		Lat:          result.Latitude,
		Lon:          result.Longitude,
		Name:         name,
		CountryCode:  countryCode,
		CurrencyCode: CurrencyForCountry(countryCode),
	}
}

// CurrencyForCountry returns the ISO 4217 code of the currency used in a country or the
// fallback currency if the country is unknown.
func CurrencyForCountry(countryCode string) string {
	region, err := language.ParseRegion(countryCode)
	if err != nil {
		return fallbackCurrency
	}
	unit, ok := currency.FromRegion(region)
	if !ok {
		return fallbackCurrency
	}
	return unit.String()
}
