// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"
)

const (
	configEnv         = "CYBERDASH"
	DefaultTextTpl    = "{{if .Outdoor.Available}}{{.Outdoor.ConditionIcon}} {{floatFormat .Outdoor.Temperature 1}}" +
		"{{.Outdoor.TempUnit}}{{else}}…{{end}} | ₿ {{if .Crypto.Available}}{{numberFormat .Crypto.Local 0}} " +
		"{{.Crypto.LocalCode}}{{else}}…{{end}}"
	DefaultTooltipTpl = "{{.Location.Name}}\n{{range .Rows}}{{.}}\n{{end}}World population: {{.Population}}\n" +
		"Sunrise: {{timeFormat .SunriseTime \"15:04\"}} | Sunset: {{timeFormat .SunsetTime \"15:04\"}}\n" +
		"Moonphase: {{.MoonPhaseIcon}} {{.MoonPhase}}"
)

// StatusPage is a third-party status page monitored by the service status endpoint.
type StatusPage struct {
	Name string `fig:"name"`
	URL  string `fig:"url"`
}

// DefaultStatusPages are the status pages monitored when none are configured.
var DefaultStatusPages = []StatusPage{
	{Name: "GitHub", URL: "https://www.githubstatus.com/api/v2/status.json"},
	{Name: "Cloudflare", URL: "https://www.cloudflarestatus.com/api/v2/status.json"},
	{Name: "OpenAI (ChatGPT)", URL: "https://status.openai.com/api/v2/status.json"},
	{Name: "Anthropic (Claude)", URL: "https://status.anthropic.com/api/v2/status.json"},
}

// Config represents the application's configuration structure. It is shared by the proxy
// and the dashboard client.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Proxy struct {
		Listen         string        `fig:"listen" default:"127.0.0.1:9090"`
		RateLimit      int           `fig:"rate_limit" default:"120"`
		AllowedOrigins []string      `fig:"allowed_origins"`
		DisableCache   bool          `fig:"disable_cache"`
		RequestTimeout time.Duration `fig:"request_timeout" default:"15s"`
		StatusTimeout  time.Duration `fig:"status_timeout" default:"5s"`
		Services       []StatusPage  `fig:"services"`
	} `fig:"proxy"`

	Secrets struct {
		CoinMarketCapAPIKey string `fig:"coinmarketcap_api_key"`
		ExchangeRateAppID   string `fig:"exchangerate_app_id"`
		BlynkAuthToken      string `fig:"blynk_auth_token"`
	} `fig:"secrets"`

	Dashboard struct {
		ProxyURL        string        `fig:"proxy_url" default:"http://127.0.0.1:9090"`
		FetchTimeout    time.Duration `fig:"fetch_timeout" default:"30s"`
		EstimatorTick   time.Duration `fig:"estimator_tick" default:"100ms"`
		Output          time.Duration `fig:"output" default:"1s"`
		DefaultCurrency string        `fig:"default_currency" default:"IDR"`
		DisableGeoIP    bool          `fig:"disable_geoip"`
		MetricsListen   string        `fig:"metrics_listen"`
	} `fig:"dashboard"`

	Storage struct {
		// Allowed values: file, badger
		Backend string `fig:"backend" default:"file"`
		Path    string `fig:"path"`
	} `fig:"storage"`

	Templates struct {
		Text    string `fig:"text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// Load reads the configuration from file if given. Without a file, the first of
// ~/.config/cyberdash/config.{toml,yaml,yml,json} is used if present, otherwise only the
// defaults and the environment apply.
func Load(file string) (*Config, error) {
	if file != "" {
		return NewFromFile(filepath.Dir(file), filepath.Base(file))
	}
	if path, name := findConfigFile(); path != "" && name != "" {
		return NewFromFile(path, name)
	}
	return New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "cyberdash", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale: %s", c.Locale)
	}
	if c.Proxy.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %d", c.Proxy.RateLimit)
	}
	// fig fills zero durations from their defaults, so only negative values get here
	if c.Proxy.RequestTimeout < 0 || c.Proxy.StatusTimeout < 0 {
		return fmt.Errorf("proxy timeouts must not be negative")
	}
	if len(c.Proxy.Services) == 0 {
		c.Proxy.Services = append(c.Proxy.Services, DefaultStatusPages...)
	}
	for _, svc := range c.Proxy.Services {
		if svc.Name == "" || svc.URL == "" {
			return fmt.Errorf("invalid status page: name and url are required")
		}
	}
	if c.Dashboard.FetchTimeout < 0 {
		return fmt.Errorf("negative fetch timeout: %s", c.Dashboard.FetchTimeout)
	}
	if c.Dashboard.EstimatorTick < 0 || c.Dashboard.Output < 0 {
		return fmt.Errorf("dashboard intervals must not be negative")
	}
	if len(c.Dashboard.DefaultCurrency) != 3 {
		return fmt.Errorf("invalid default currency: %s", c.Dashboard.DefaultCurrency)
	}
	c.Dashboard.DefaultCurrency = strings.ToUpper(c.Dashboard.DefaultCurrency)

	switch strings.ToLower(c.Storage.Backend) {
	case "file", "badger":
		c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	default:
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		home, _ := os.UserHomeDir()
		c.Storage.Path = filepath.Join(home, ".config", "cyberdash", "state")
	}

	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}

	return nil
}

// getLocale returns the locale from LC_MESSAGES or, if unset, the detected system locale.
func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	if locale != "" && locale != "C" && locale != "POSIX" {
		return locale
	}
	return detectLocale()
}

func detectLocale() string {
	tag, err := locale.Detect()
	if err != nil {
		return language.English.String()
	}
	return tag.String()
}
