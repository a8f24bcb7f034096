// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package population extrapolates the world population between infrequent measurements.
// All derivations are pure functions of a baseline, a constant rate and the current time.
package population

import (
	"math"
	"time"
)

const (
	// ReferencePopulation is the world population at ReferenceDate.
	ReferencePopulation = 8_118_835_999
	// BirthsPerYear and DeathsPerYear are the annual totals the rates are derived from.
	BirthsPerYear = 134_000_000
	DeathsPerYear = 61_000_000

	secondsPerYear = 365 * 24 * 60 * 60
)

// ReferenceDate is the point in time ReferencePopulation was measured at.
var ReferenceDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Baseline is a measured value anchored to the time it was measured.
type Baseline struct {
	Value float64
	At    time.Time
}

// Estimate projects the baseline forward to now at ratePerSecond and floors the result.
// Times before the baseline are clamped to the baseline itself.
func Estimate(b Baseline, ratePerSecond float64, now time.Time) int64 {
	elapsed := now.Sub(b.At).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return int64(math.Floor(b.Value + ratePerSecond*elapsed))
}

type Snapshot struct {
	Population     float64 `json:"population"`
	BirthsThisYear float64 `json:"birthsThisYear"`
	DeathsThisYear float64 `json:"deathsThisYear"`
	GrowthThisYear float64 `json:"growthThisYear"`
	BirthsToday    float64 `json:"birthsToday"`
	DeathsToday    float64 `json:"deathsToday"`
	GrowthToday    float64 `json:"growthToday"`
}

type Rates struct {
	BirthsPerSecond float64 `json:"birthsPerSecond"`
	DeathsPerSecond float64 `json:"deathsPerSecond"`
	GrowthPerSecond float64 `json:"growthPerSecond"`
}

// WorldPopulation is a measured snapshot with the constant rates used to extrapolate it.
type WorldPopulation struct {
	Baseline   Snapshot  `json:"baseline"`
	Rates      Rates     `json:"rates"`
	MeasuredAt time.Time `json:"measuredAt"`
}

// Counters are the floored live values derived from a WorldPopulation.
type Counters struct {
	Population     int64 `json:"population"`
	BirthsThisYear int64 `json:"birthsThisYear"`
	DeathsThisYear int64 `json:"deathsThisYear"`
	GrowthThisYear int64 `json:"growthThisYear"`
	BirthsToday    int64 `json:"birthsToday"`
	DeathsToday    int64 `json:"deathsToday"`
	GrowthToday    int64 `json:"growthToday"`
}

// DefaultRates returns the per-second rates derived from the annual constants.
func DefaultRates() Rates {
	births := float64(BirthsPerYear) / secondsPerYear
	deaths := float64(DeathsPerYear) / secondsPerYear
	return Rates{
		BirthsPerSecond: births,
		DeathsPerSecond: deaths,
		GrowthPerSecond: births - deaths,
	}
}

// Measure derives the world population snapshot at now from the reference constants.
func Measure(now time.Time) WorldPopulation {
	now = now.UTC()
	rates := DefaultRates()
	sinceYear := now.Sub(startOfYear(now)).Seconds()
	sinceDay := now.Sub(startOfDay(now)).Seconds()

	return WorldPopulation{
		Baseline: Snapshot{
			Population: float64(Estimate(Baseline{Value: ReferencePopulation, At: ReferenceDate},
				rates.GrowthPerSecond, now)),
			BirthsThisYear: math.Floor(rates.BirthsPerSecond * sinceYear),
			DeathsThisYear: math.Floor(rates.DeathsPerSecond * sinceYear),
			GrowthThisYear: math.Floor(rates.GrowthPerSecond * sinceYear),
			BirthsToday:    math.Floor(rates.BirthsPerSecond * sinceDay),
			DeathsToday:    math.Floor(rates.DeathsPerSecond * sinceDay),
			GrowthToday:    math.Floor(rates.GrowthPerSecond * sinceDay),
		},
		Rates:      rates,
		MeasuredAt: now,
	}
}

// Live extrapolates every counter to now. The daily and yearly counters start again from
// zero once now has crossed a UTC day or year boundary after the measurement.
func (w WorldPopulation) Live(now time.Time) Counters {
	now = now.UTC()
	day := periodBaseline(w.MeasuredAt, startOfDay(now))
	year := periodBaseline(w.MeasuredAt, startOfYear(now))

	return Counters{
		Population:     Estimate(Baseline{w.Baseline.Population, w.MeasuredAt}, w.Rates.GrowthPerSecond, now),
		BirthsThisYear: Estimate(year(w.Baseline.BirthsThisYear), w.Rates.BirthsPerSecond, now),
		DeathsThisYear: Estimate(year(w.Baseline.DeathsThisYear), w.Rates.DeathsPerSecond, now),
		GrowthThisYear: Estimate(year(w.Baseline.GrowthThisYear), w.Rates.GrowthPerSecond, now),
		BirthsToday:    Estimate(day(w.Baseline.BirthsToday), w.Rates.BirthsPerSecond, now),
		DeathsToday:    Estimate(day(w.Baseline.DeathsToday), w.Rates.DeathsPerSecond, now),
		GrowthToday:    Estimate(day(w.Baseline.GrowthToday), w.Rates.GrowthPerSecond, now),
	}
}

// periodBaseline returns a constructor for the baseline of a periodic counter. If the
// period started after the measurement, the counter is anchored at zero at its start.
func periodBaseline(measuredAt, periodStart time.Time) func(float64) Baseline {
	return func(value float64) Baseline {
		if periodStart.After(measuredAt) {
			return Baseline{Value: 0, At: periodStart}
		}
		return Baseline{Value: value, At: measuredAt}
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}
