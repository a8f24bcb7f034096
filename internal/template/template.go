// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package template

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/wneessen/cyberdash/internal/config"
)

type Templates struct {
	Text    *template.Template
	Tooltip *template.Template

	printer   *message.Printer
	humanizer *humanize.Humanizer
}

// New parses the configured text and tooltip templates. Numbers and times are formatted
// for the configured locale.
func New(conf *config.Config) (*Templates, error) {
	lang, err := language.Parse(conf.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locale: %w", err)
	}
	tpls := &Templates{
		printer:   message.NewPrinter(lang),
		humanizer: humanize.MustNew(humanize.WithLocale(de.New())).CreateHumanizer(lang),
	}

	tpl, err := template.New("text").Funcs(tpls.templateFuncMap()).Parse(conf.Templates.Text)
	if err != nil {
		return tpls, fmt.Errorf("failed to parse text template: %w", err)
	}
	tpls.Text = tpl

	tpl, err = template.New("tooltip").Funcs(tpls.templateFuncMap()).Parse(conf.Templates.Tooltip)
	if err != nil {
		return tpls, fmt.Errorf("failed to parse tooltip template: %w", err)
	}
	tpls.Tooltip = tpl

	return tpls, nil
}

func (t *Templates) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":    timeFormat,
		"localizedTime": t.LocalizedTime,
		"naturalTime":   t.NaturalTime,
		"floatFormat":   floatFormat,
		"numberFormat":  t.NumberFormat,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
		"pad":           Pad,
	}
}

// NumberFormat formats val with exactly precision fraction digits and the locale's
// grouping separators.
func (t *Templates) NumberFormat(val float64, precision int) string {
	return t.printer.Sprint(number.Decimal(val, number.MinFractionDigits(precision),
		number.MaxFractionDigits(precision)))
}

// LocalizedTime formats the clock time of val for the locale.
func (t *Templates) LocalizedTime(val time.Time) string {
	return t.humanizer.FormatTime(val, humanize.TimeFormat)
}

// NaturalTime describes val relative to now, like "3 minutes ago". A zero time yields
// "never".
func (t *Templates) NaturalTime(val time.Time) string {
	if val.IsZero() {
		return "never"
	}
	return t.humanizer.NaturalTime(val)
}

func timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Trunc(val*pow)/pow)
}

// Pad right-pads val with spaces to width terminal cells. Wide runes like emoji count
// as two cells.
func Pad(val string, width int) string {
	return runewidth.FillRight(val, width)
}

// Width returns the number of terminal cells val occupies.
func Width(val string) int {
	return runewidth.StringWidth(val)
}
