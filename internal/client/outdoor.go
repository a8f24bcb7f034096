// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/wneessen/cyberdash/internal/proxy"
	"github.com/wneessen/cyberdash/internal/vartype"
	"github.com/wneessen/cyberdash/internal/weather"
)

const outdoorTimeLayout = "2006-01-02T15:04"

// Outdoor is the current outdoor weather of a location with its daily forecast.
type Outdoor struct {
	Latitude            float64
	Longitude           float64
	Elevation           float64
	Timezone            string
	Time                time.Time
	Temperature         float64
	ApparentTemperature vartype.Variable[float64]
	Humidity            vartype.Variable[float64]
	Precipitation       vartype.Variable[float64]
	Pressure            vartype.Variable[float64]
	UVIndex             vartype.Variable[float64]
	WindSpeed           float64
	WindDirection       float64
	WeatherCode         int
	IsDay               bool
	AQI                 vartype.Variable[float64]
	TempUnit            string
	Daily               []DailyForecast
}

// DailyForecast is one day of the forecast.
type DailyForecast struct {
	Date                     time.Time
	WeatherCode              int
	TempMax                  float64
	TempMin                  float64
	PrecipitationProbability float64
}

// Condition returns the description of the current weather code.
func (o Outdoor) Condition() string {
	return weather.Condition(o.WeatherCode)
}

// AirQuality returns the European AQI level or false if no AQI was reported.
func (o Outdoor) AirQuality() (weather.AirQuality, bool) {
	if !o.AQI.IsSet() {
		return weather.AirQuality{}, false
	}
	return weather.AirQualityLevel(o.AQI.Value()), true
}

// Outdoor fetches the merged weather, air quality and elevation for the coordinates.
func (c *Client) Outdoor(ctx context.Context, lat, lon float64) (Outdoor, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	res := new(proxy.OutdoorResponse)
	if err := c.fetch(ctx, CategoryOutdoor, "/api/outdoor", query, res); err != nil {
		return Outdoor{}, err
	}
	return outdoorFromResponse(res), nil
}

func outdoorFromResponse(res *proxy.OutdoorResponse) Outdoor {
	out := Outdoor{
		Latitude:      res.Latitude,
		Longitude:     res.Longitude,
		Elevation:     res.Elevation,
		Timezone:      res.Timezone,
		Temperature:   number(res.Current["temperature_2m"]),
		WindSpeed:     number(res.Current["wind_speed_10m"]),
		WindDirection: number(res.Current["wind_direction_10m"]),
		WeatherCode:   int(number(res.Current["weather_code"])),
		IsDay:         true,
	}
	if unit, ok := res.Units["temperature_2m"].(string); ok {
		out.TempUnit = unit
	}
	if ts, ok := res.Current["time"].(string); ok {
		if parsed, err := time.Parse(outdoorTimeLayout, ts); err == nil {
			out.Time = parsed
		}
	}

	optional := map[string]*vartype.Variable[float64]{
		"apparent_temperature": &out.ApparentTemperature,
		"relative_humidity_2m": &out.Humidity,
		"precipitation":        &out.Precipitation,
		"uv_index":             &out.UVIndex,
		"european_aqi":         &out.AQI,
	}
	for key, target := range optional {
		if val, ok := res.Current[key].(float64); ok {
			target.Set(val)
		}
	}
	if val, ok := res.Current["surface_pressure"].(float64); ok {
		out.Pressure.Set(val)
	} else if val, ok = res.Current["pressure_msl"].(float64); ok {
		out.Pressure.Set(val)
	}
	if val, ok := res.Current["is_day"].(float64); ok {
		out.IsDay = val == 1
	}

	dates, _ := res.Daily["time"].([]any)
	for i, raw := range dates {
		ds, ok := raw.(string)
		if !ok {
			continue
		}
		date, err := time.Parse(time.DateOnly, ds)
		if err != nil {
			continue
		}
		out.Daily = append(out.Daily, DailyForecast{
			Date:                     date,
			WeatherCode:              int(seriesAt(res.Daily, "weather_code", i)),
			TempMax:                  seriesAt(res.Daily, "temperature_2m_max", i),
			TempMin:                  seriesAt(res.Daily, "temperature_2m_min", i),
			PrecipitationProbability: seriesAt(res.Daily, "precipitation_probability_max", i),
		})
	}
	return out
}

// seriesAt returns the idx-th value of a decoded metric series or zero.
func seriesAt(series map[string]any, metric string, idx int) float64 {
	values, ok := series[metric].([]any)
	if !ok || idx >= len(values) {
		return 0
	}
	return number(values[idx])
}
