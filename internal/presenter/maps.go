// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import "github.com/wneessen/cyberdash/internal/proxy"

// MoonPhaseIcon is a map where moon phase names are keys and their corresponding emoji representations are values.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// StatusIcon maps a normalized service status to its emoji.
var StatusIcon = map[string]string{
	proxy.StatusOperational:   "✅",
	proxy.StatusDegraded:      "⚠️",
	proxy.StatusPartialOutage: "🟠",
	proxy.StatusMajorOutage:   "🔴",
	proxy.StatusUnknown:       "❔",
}

// Row labels of the tooltip
const (
	labelIndoor   = "🏠 Indoor"
	labelOutdoor  = "🌤️ Outdoor"
	labelCurrency = "💱 Currency"
	labelCrypto   = "₿ Bitcoin"
	labelServices = "🛰️ Services"
	labelCountry  = "🌍 Country"
)
