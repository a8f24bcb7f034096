// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/wneessen/go-moonphase"

	"github.com/wneessen/cyberdash/internal/client"
	"github.com/wneessen/cyberdash/internal/config"
	"github.com/wneessen/cyberdash/internal/location"
	"github.com/wneessen/cyberdash/internal/poller"
	"github.com/wneessen/cyberdash/internal/population"
	"github.com/wneessen/cyberdash/internal/proxy"
	"github.com/wneessen/cyberdash/internal/template"
	"github.com/wneessen/cyberdash/internal/vartype"
	"github.com/wneessen/cyberdash/internal/weather"
)

const (
	OutputClass      = "cyberdash"
	OutputClassError = "cyberdash-error"
)

// Output is one line of waybar custom module output.
type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// Snapshot is the state of every widget at one point in time.
type Snapshot struct {
	Now        time.Time
	Location   location.Location
	Indoor     poller.State[client.Indoor]
	Outdoor    poller.State[client.Outdoor]
	Currency   poller.State[client.Rates]
	Crypto     poller.State[client.Crypto]
	Services   poller.State[[]proxy.ServiceStatus]
	Country    poller.State[proxy.CountryResponse]
	Population vartype.Variable[population.Counters]
}

// WidgetView is the presentation of the fetch state shared by all widgets.
type WidgetView struct {
	Available  bool
	Loading    bool
	Error      string
	Updated    time.Time
	UpdatedAgo string
}

type IndoorView struct {
	WidgetView
	client.Indoor
}

type OutdoorView struct {
	WidgetView
	client.Outdoor

	ConditionIcon   string
	AirQualityLevel string
	WindCompass     string
}

type CurrencyView struct {
	WidgetView

	Code string
	// Rate is the price of one USD in Code
	Rate    float64
	HasRate bool
}

type CryptoView struct {
	WidgetView
	client.Crypto
}

type ServicesView struct {
	WidgetView

	Services []proxy.ServiceStatus
	// Affected counts services that are not operational
	Affected int
}

type CountryView struct {
	WidgetView
	proxy.CountryResponse
}

// Context is the data the text and tooltip templates are executed with.
type Context struct {
	Now      time.Time
	Location location.Location

	Indoor   IndoorView
	Outdoor  OutdoorView
	Currency CurrencyView
	Crypto   CryptoView
	Services ServicesView
	Country  CountryView

	Population         string
	PopulationCounters population.Counters

	SunriseTime   time.Time
	SunsetTime    time.Time
	MoonPhase     string
	MoonPhaseIcon string

	// Rows holds one aligned summary line per widget
	Rows     []string
	HasError bool
}

type Presenter struct {
	templates *template.Templates
}

func New(conf *config.Config) (*Presenter, error) {
	tpls, err := template.New(conf)
	if err != nil {
		return nil, err
	}
	return &Presenter{templates: tpls}, nil
}

// Render builds the context for the snapshot and executes both templates.
func (p *Presenter) Render(snap Snapshot) (Output, error) {
	ctx := p.BuildContext(snap)

	textBuf := bytes.NewBuffer(nil)
	if err := p.templates.Text.Execute(textBuf, ctx); err != nil {
		return Output{}, fmt.Errorf("failed to render text template: %w", err)
	}
	tooltipBuf := bytes.NewBuffer(nil)
	if err := p.templates.Tooltip.Execute(tooltipBuf, ctx); err != nil {
		return Output{}, fmt.Errorf("failed to render tooltip template: %w", err)
	}

	output := Output{
		Text:    textBuf.String(),
		Tooltip: tooltipBuf.String(),
		Class:   OutputClass,
	}
	if ctx.HasError {
		output.Class = OutputClassError
	}
	return output, nil
}

func (p *Presenter) BuildContext(snap Snapshot) Context {
	ctx := Context{
		Now:      snap.Now,
		Location: snap.Location,
		Indoor:   IndoorView{WidgetView: widgetView(p.templates, snap.Indoor), Indoor: snap.Indoor.Data.Value()},
		Crypto:   CryptoView{WidgetView: widgetView(p.templates, snap.Crypto), Crypto: snap.Crypto.Data.Value()},
	}
	ctx.Country = CountryView{
		WidgetView:      widgetView(p.templates, snap.Country),
		CountryResponse: snap.Country.Data.Value(),
	}
	ctx.Outdoor = p.outdoorView(snap.Outdoor)
	ctx.Currency = p.currencyView(snap.Currency, snap.Location.CurrencyCode)
	ctx.Services = p.servicesView(snap.Services)

	ctx.Population = "…"
	if snap.Population.IsSet() {
		ctx.PopulationCounters = snap.Population.Value()
		ctx.Population = p.templates.NumberFormat(float64(ctx.PopulationCounters.Population), 0)
	}

	zone := time.Local
	if ctx.Outdoor.Available && ctx.Outdoor.Timezone != "" {
		if tz, err := time.LoadLocation(ctx.Outdoor.Timezone); err == nil {
			zone = tz
		}
	}
	now := snap.Now.In(zone)
	rise, set := sunrise.SunriseSunset(snap.Location.Lat, snap.Location.Lon, now.Year(), now.Month(), now.Day())
	ctx.SunriseTime, ctx.SunsetTime = rise.In(zone), set.In(zone)

	moon := moonphase.New(snap.Now)
	ctx.MoonPhase = moon.PhaseName()
	ctx.MoonPhaseIcon = MoonPhaseIcon[ctx.MoonPhase]

	for _, view := range []WidgetView{
		ctx.Indoor.WidgetView, ctx.Outdoor.WidgetView, ctx.Currency.WidgetView,
		ctx.Crypto.WidgetView, ctx.Services.WidgetView, ctx.Country.WidgetView,
	} {
		if view.Error != "" {
			ctx.HasError = true
		}
	}
	ctx.Rows = p.rows(ctx)
	return ctx
}

func widgetView[T any](tpls *template.Templates, state poller.State[T]) WidgetView {
	view := WidgetView{
		Available:  state.Data.IsSet(),
		Loading:    state.IsLoading,
		Updated:    state.LastUpdated,
		UpdatedAgo: tpls.NaturalTime(state.LastUpdated),
	}
	if state.Err != nil {
		view.Error = state.Err.Error()
	}
	return view
}

func (p *Presenter) outdoorView(state poller.State[client.Outdoor]) OutdoorView {
	view := OutdoorView{
		WidgetView: widgetView(p.templates, state),
		Outdoor:    state.Data.Value(),
	}
	if !view.Available {
		return view
	}
	view.ConditionIcon = weather.Icon(view.WeatherCode, view.IsDay)
	view.WindCompass = weather.Compass(view.WindDirection)
	if aqi, ok := view.Outdoor.AirQuality(); ok {
		view.AirQualityLevel = aqi.Level
	}
	return view
}

func (p *Presenter) currencyView(state poller.State[client.Rates], code string) CurrencyView {
	view := CurrencyView{
		WidgetView: widgetView(p.templates, state),
		Code:       code,
	}
	if view.Available {
		view.Rate, view.HasRate = state.Data.Value().ConversionRates[code]
	}
	return view
}

func (p *Presenter) servicesView(state poller.State[[]proxy.ServiceStatus]) ServicesView {
	view := ServicesView{
		WidgetView: widgetView(p.templates, state),
		Services:   state.Data.Value(),
	}
	for _, svc := range view.Services {
		if svc.Status != proxy.StatusOperational {
			view.Affected++
		}
	}
	return view
}
