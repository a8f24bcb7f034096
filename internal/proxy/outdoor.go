// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hectormalot/omgo"
	"golang.org/x/sync/errgroup"

	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/metrics"
)

const (
	airQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	elevationURL  = "https://api.open-meteo.com/v1/elevation"

	msgWeatherFailed    = "Failed to fetch outdoor weather data"
	msgAirQualityFailed = "Failed to fetch air quality data"
	msgElevationFailed  = "Failed to fetch elevation data"
)

var (
	hourlyMetrics = []string{
		"temperature_2m", "relative_humidity_2m", "apparent_temperature", "precipitation",
		"precipitation_probability", "weather_code", "surface_pressure", "pressure_msl", "uv_index",
		"is_day",
	}
	dailyMetrics = []string{
		"weather_code", "temperature_2m_max", "temperature_2m_min", "precipitation_probability_max",
	}
	// currentFromHourly are the hourly metrics copied into the current conditions
	currentFromHourly = []string{
		"relative_humidity_2m", "apparent_temperature", "precipitation", "surface_pressure",
		"pressure_msl", "uv_index", "is_day",
	}
)

type outdoorQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

var outdoorMessages = map[string]string{
	"Lat.required": "Latitude and longitude are required",
	"Lon.required": "Latitude and longitude are required",
	"Lat":          "Latitude must be a number between -90 and 90",
	"Lon":          "Longitude must be a number between -180 and 180",
}

type airQualityResult struct {
	Timezone string `json:"timezone"`
	Current  struct {
		EuropeanAQI *float64 `json:"european_aqi"`
	} `json:"current"`
}

type elevationResult struct {
	Elevation []float64 `json:"elevation"`
}

// OutdoorResponse merges the forecast, the air quality and the elevation of a location.
type OutdoorResponse struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Timezone  string         `json:"timezone"`
	Elevation float64        `json:"elevation"`
	Current   map[string]any `json:"current"`
	Units     map[string]any `json:"current_units"`
	Hourly    map[string]any `json:"hourly"`
	Daily     map[string]any `json:"daily"`
}

func (s *Server) handleOutdoor(r *http.Request) (any, error) {
	query := outdoorQuery{Lat: r.URL.Query().Get("lat"), Lon: r.URL.Query().Get("lon")}
	if err := s.validate.Struct(query); err != nil {
		return nil, validationError(err, outdoorMessages)
	}
	lat, errLat := strconv.ParseFloat(query.Lat, 64)
	lon, errLon := strconv.ParseFloat(query.Lon, 64)
	if err := errors.Join(errLat, errLon); err != nil {
		return nil, badRequest("Latitude and longitude must be numbers")
	}
	location, err := omgo.NewLocation(lat, lon)
	if err != nil {
		return nil, badRequest("Invalid coordinates")
	}

	var (
		forecast  *omgo.Forecast
		airResult = new(airQualityResult)
		elevation = new(elevationResult)
	)
	coords := url.Values{}
	coords.Set("latitude", query.Lat)
	coords.Set("longitude", query.Lon)

	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error {
		ctxFetch, cancel := context.WithTimeout(ctx, s.config.Proxy.RequestTimeout)
		defer cancel()
		var err error
		forecast, err = s.forecaster.Forecast(ctxFetch, location, &omgo.Options{
			TemperatureUnit:   "celsius",
			WindspeedUnit:     "kmh",
			PrecipitationUnit: "mm",
			Timezone:          "auto",
			HourlyMetrics:     hourlyMetrics,
			DailyMetrics:      dailyMetrics,
		})
		if err != nil || forecast == nil {
			metrics.UpstreamFailures.WithLabelValues("open-meteo-forecast").Inc()
			return upstreamError(msgWeatherFailed, err)
		}
		return nil
	})
	group.Go(func() error {
		params := url.Values{}
		params.Set("latitude", query.Lat)
		params.Set("longitude", query.Lon)
		params.Set("current", "european_aqi")
		params.Set("timezone", "auto")
		code, err := s.http.GetWithTimeout(ctx, airQualityURL, airResult, params, nil, s.config.Proxy.RequestTimeout)
		if err != nil || code < 200 || code >= 300 {
			metrics.UpstreamFailures.WithLabelValues("open-meteo-air-quality").Inc()
			return upstreamError(msgAirQualityFailed, err)
		}
		return nil
	})
	group.Go(func() error {
		code, err := s.http.GetWithTimeout(ctx, elevationURL, elevation, coords, nil, s.config.Proxy.RequestTimeout)
		if err != nil || code < 200 || code >= 300 || len(elevation.Elevation) == 0 {
			metrics.UpstreamFailures.WithLabelValues("open-meteo-elevation").Inc()
			return upstreamError(msgElevationFailed, err)
		}
		return nil
	})
	if err = group.Wait(); err != nil {
		s.logger.Error("outdoor sub-fetch failed", logger.Err(err))
		return nil, err
	}

	return mergeOutdoor(forecast, airResult, elevation.Elevation[0]), nil
}

// mergeOutdoor combines the three sub-fetches. The current conditions are the forecast's
// current weather extended with the hourly values at the current hour and the AQI.
func mergeOutdoor(forecast *omgo.Forecast, air *airQualityResult, elevation float64) OutdoorResponse {
	currentTime := forecast.CurrentWeather.Time.Time
	current := map[string]any{
		"time":               currentTime.Format("2006-01-02T15:04"),
		"temperature_2m":     forecast.CurrentWeather.Temperature,
		"weather_code":       int(forecast.CurrentWeather.WeatherCode),
		"wind_speed_10m":     forecast.CurrentWeather.WindSpeed,
		"wind_direction_10m": forecast.CurrentWeather.WindDirection,
	}
	units := map[string]any{
		"temperature_2m":     forecast.HourlyUnits["temperature_2m"],
		"wind_speed_10m":     "km/h",
		"wind_direction_10m": "°",
	}
	if idx := hourIndex(forecast.HourlyTimes, currentTime); idx >= 0 {
		for _, metric := range currentFromHourly {
			values, ok := forecast.HourlyMetrics[metric]
			if !ok || idx >= len(values) {
				continue
			}
			current[metric] = values[idx]
			units[metric] = forecast.HourlyUnits[metric]
		}
	}
	if air.Current.EuropeanAQI != nil {
		current["european_aqi"] = *air.Current.EuropeanAQI
	}

	hourly := map[string]any{"time": formatTimes(forecast.HourlyTimes, "2006-01-02T15:04")}
	for metric, values := range forecast.HourlyMetrics {
		hourly[metric] = values
	}
	daily := map[string]any{"time": formatTimes(forecast.DailyTimes, time.DateOnly)}
	for metric, values := range forecast.DailyMetrics {
		daily[metric] = values
	}

	return OutdoorResponse{
		Latitude:  forecast.Latitude,
		Longitude: forecast.Longitude,
		Timezone:  air.Timezone,
		Elevation: elevation,
		Current:   current,
		Units:     units,
		Hourly:    hourly,
		Daily:     daily,
	}
}

// hourIndex returns the index of the hourly entry covering t or -1.
func hourIndex(times []time.Time, t time.Time) int {
	hour := t.Truncate(time.Hour)
	for i, ht := range times {
		if ht.Equal(hour) {
			return i
		}
	}
	return -1
}

func formatTimes(times []time.Time, layout string) []string {
	out := make([]string, 0, len(times))
	for _, t := range times {
		out = append(out, t.Format(layout))
	}
	return out
}

func upstreamError(message string, cause error) error {
	if cause == nil {
		return newError(http.StatusInternalServerError, "%s", message)
	}
	return fmt.Errorf("%w: %w", newError(http.StatusInternalServerError, "%s", message), cause)
}
