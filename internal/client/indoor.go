// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"strconv"
)

// Gas resistance thresholds in kΩ
const (
	gasPoor     = 10
	gasModerate = 5
)

// Indoor air quality classes
const (
	AirGood     = "Good"
	AirModerate = "Moderate"
	AirPoor     = "Poor"
)

// Indoor holds the indoor sensor readings.
type Indoor struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	Gas         float64 `json:"gas"`
	AirQuality  string  `json:"airQuality"`
	LastUpdated string  `json:"lastUpdated"`
	IsOnline    bool    `json:"isOnline"`
}

// Indoor fetches the Blynk sensor pins and maps them to readings. Missing pins read as zero.
func (c *Client) Indoor(ctx context.Context) (Indoor, error) {
	data := make(map[string]any)
	if err := c.fetch(ctx, CategoryIndoor, "/api/indoor", nil, &data); err != nil {
		return Indoor{}, err
	}

	indoor := Indoor{
		Temperature: number(data["v0"]),
		Humidity:    number(data["v1"]),
		Pressure:    number(data["v8"]),
		Gas:         number(data["v5"]),
	}
	indoor.AirQuality = ClassifyGas(indoor.Gas)
	if updated, ok := data["v4"].(string); ok {
		indoor.LastUpdated = updated
	}
	if online, ok := data["isOnline"].(bool); ok {
		indoor.IsOnline = online
	}
	return indoor, nil
}

// ClassifyGas classifies the raw gas sensor value by its resistance in kΩ.
func ClassifyGas(gas float64) string {
	kohms := gas / 1024
	switch {
	case kohms > gasPoor:
		return AirPoor
	case kohms > gasModerate:
		return AirModerate
	default:
		return AirGood
	}
}

// number converts a decoded JSON value to a float. Anything that is not a number reads as zero.
func number(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
