// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"math"
	"strings"
)

// conditions maps WMO weather code integers to their descriptions
var conditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// icons maps WMO weather codes to an emoji for day (true) and night (false)
var icons = map[int]map[bool]string{
	0:  {true: "☀️", false: "🌙"},
	1:  {true: "🌤️", false: "🌙"},
	2:  {true: "⛅", false: "☁️"},
	3:  {true: "☁️", false: "☁️"},
	45: {true: "🌫️", false: "🌫️"},
	48: {true: "🌫️", false: "🌫️"},
	51: {true: "🌦️", false: "🌧️"},
	53: {true: "🌧️", false: "🌧️"},
	55: {true: "🌧️", false: "🌧️"},
	56: {true: "🌨️", false: "🌨️"},
	57: {true: "🌨️", false: "🌨️"},
	61: {true: "🌦️", false: "🌧️"},
	63: {true: "🌧️", false: "🌧️"},
	65: {true: "🌧️", false: "🌧️"},
	66: {true: "🌨️", false: "🌨️"},
	67: {true: "🌨️", false: "🌨️"},
	71: {true: "🌨️", false: "🌨️"},
	73: {true: "🌨️", false: "🌨️"},
	75: {true: "🌨️", false: "🌨️"},
	77: {true: "🌨️", false: "🌨️"},
	80: {true: "🌦️", false: "🌧️"},
	81: {true: "🌧️", false: "🌧️"},
	82: {true: "🌧️", false: "🌧️"},
	85: {true: "🌨️", false: "🌨️"},
	86: {true: "🌨️", false: "🌨️"},
	95: {true: "🌩️", false: "🌩️"},
	96: {true: "⛈️", false: "⛈️"},
	99: {true: "⛈️", false: "⛈️"},
}

var compassIcons = map[string]string{
	"N":  "↑",
	"NE": "↗",
	"E":  "→",
	"SE": "↘",
	"S":  "↓",
	"SW": "↙",
	"W":  "←",
	"NW": "↖",
}

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Condition returns the description of a WMO weather code or "Unknown".
func Condition(code int) string {
	if c, ok := conditions[code]; ok {
		return c
	}
	return "Unknown"
}

// Icon returns the emoji for a WMO weather code at day or night.
func Icon(code int, isDay bool) string {
	return icons[code][isDay]
}

// Category groups WMO weather codes into a coarse condition usable as CSS class.
func Category(code int) string {
	switch {
	case code == 0 || code == 1:
		return "clear"
	case code == 2 || code == 3:
		return "cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 67, code >= 80 && code <= 82:
		return "rain"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "snow"
	case code >= 95 && code <= 99:
		return "thunderstorm"
	default:
		return ""
	}
}

// Compass converts a wind direction in degrees into one of eight compass points.
func Compass(deg float64) string {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Floor((deg+22.5)/45)) % len(compassPoints)
	return compassPoints[idx]
}

// CompassIcon returns the arrow for a compass point.
func CompassIcon(point string) string {
	return compassIcons[strings.ToUpper(point)]
}

// AirQuality is a European AQI level.
type AirQuality struct {
	Level string
	Class string
}

// AirQualityLevel classifies a European AQI value.
func AirQualityLevel(aqi float64) AirQuality {
	switch {
	case aqi <= 20:
		return AirQuality{"Good", "good"}
	case aqi <= 40:
		return AirQuality{"Fair", "fair"}
	case aqi <= 60:
		return AirQuality{"Moderate", "moderate"}
	case aqi <= 80:
		return AirQuality{"Poor", "poor"}
	case aqi <= 100:
		return AirQuality{"Very Poor", "very-poor"}
	default:
		return AirQuality{"Extremely Poor", "extremely-poor"}
	}
}
