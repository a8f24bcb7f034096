// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"strings"

	"github.com/wneessen/cyberdash/internal/template"
)

const (
	placeholderLoading = "loading…"
	placeholderIdle    = "waiting for refresh"
	staleMarker        = " ⚠"
)

// rows returns one summary line per widget with the values aligned in one column.
func (p *Presenter) rows(ctx Context) []string {
	type row struct {
		label string
		value string
	}
	rows := []row{
		{labelIndoor, summarize(ctx.Indoor.WidgetView, func() string { return p.indoorValue(ctx.Indoor) })},
		{labelOutdoor, summarize(ctx.Outdoor.WidgetView, func() string { return p.outdoorValue(ctx.Outdoor) })},
		{labelCurrency, summarize(ctx.Currency.WidgetView, func() string { return p.currencyValue(ctx.Currency) })},
		{labelCrypto, summarize(ctx.Crypto.WidgetView, func() string { return p.cryptoValue(ctx.Crypto) })},
		{labelServices, summarize(ctx.Services.WidgetView, func() string { return servicesValue(ctx.Services) })},
		{labelCountry, summarize(ctx.Country.WidgetView, func() string { return p.countryValue(ctx.Country) })},
	}

	width := 0
	for _, r := range rows {
		width = max(width, template.Width(r.label))
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, template.Pad(r.label, width)+"  "+r.value)
	}
	return lines
}

// summarize renders the value of an available widget, marking it if the latest refresh
// failed. Widgets without data show their error or their loading state.
func summarize(view WidgetView, value func() string) string {
	switch {
	case view.Available && view.Error != "":
		return value() + staleMarker
	case view.Available:
		return value()
	case view.Error != "":
		return "error: " + view.Error
	case view.Loading:
		return placeholderLoading
	default:
		return placeholderIdle
	}
}

func (p *Presenter) indoorValue(view IndoorView) string {
	value := fmt.Sprintf("%s°C, %s%%, %s hPa, air %s",
		p.templates.NumberFormat(view.Temperature, 1), p.templates.NumberFormat(view.Humidity, 0),
		p.templates.NumberFormat(view.Pressure, 0), strings.ToLower(view.AirQuality))
	if !view.IsOnline {
		value += " (offline)"
	}
	return value
}

func (p *Presenter) outdoorValue(view OutdoorView) string {
	parts := []string{fmt.Sprintf("%s %s %s%s", view.ConditionIcon, view.Condition(),
		p.templates.NumberFormat(view.Temperature, 1), view.TempUnit)}
	if view.Humidity.IsSet() {
		parts = append(parts, p.templates.NumberFormat(view.Humidity.Value(), 0)+"%")
	}
	parts = append(parts, fmt.Sprintf("wind %s %s km/h", view.WindCompass,
		p.templates.NumberFormat(view.WindSpeed, 0)))
	if view.AirQualityLevel != "" {
		parts = append(parts, "AQI "+strings.ToLower(view.AirQualityLevel))
	}
	return strings.Join(parts, ", ")
}

func (p *Presenter) currencyValue(view CurrencyView) string {
	if !view.HasRate {
		return "no rate for " + view.Code
	}
	return fmt.Sprintf("1 USD = %s %s", p.templates.NumberFormat(view.Rate, 2), view.Code)
}

func (p *Presenter) cryptoValue(view CryptoView) string {
	value := fmt.Sprintf("%s USD (%+.2f%%), %s %s", p.templates.NumberFormat(view.USD, 0), view.Change24h,
		p.templates.NumberFormat(view.Local, 0), view.LocalCode)
	if view.Fallback {
		value += " (fallback)"
	}
	return value
}

func servicesValue(view ServicesView) string {
	parts := make([]string, 0, len(view.Services))
	for _, svc := range view.Services {
		parts = append(parts, StatusIcon[svc.Status]+" "+svc.Name)
	}
	return strings.Join(parts, ", ")
}

func (p *Presenter) countryValue(view CountryView) string {
	value := strings.TrimSpace(view.Flag + " " + view.Name)
	if view.Capital != "" {
		value += ", capital " + view.Capital
	}
	return value + ", pop. " + p.templates.NumberFormat(float64(view.Population), 0)
}
