// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/hectormalot/omgo"

	"github.com/wneessen/cyberdash/internal/config"
)

const indonesiaResponse = `[{"name":{"common":"Indonesia"},"flags":{"svg":"https://flagcdn.com/id.svg",
"png":"https://flagcdn.com/w320/id.png"},"population":275501339,"capital":["Jakarta"],"region":"Asia"}]`

func TestServer_handleCountry(t *testing.T) {
	t.Run("country facts are normalized", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if req.URL.Host != "restcountries.com" || req.URL.Path != "/v3.1/alpha/ID" {
				t.Errorf("unexpected upstream request: %s", req.URL)
			}
			return jsonResponse(200, indonesiaResponse), nil
		})
		rec := get(t, srv, "/api/country?code=id")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var res CountryResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("failed to decode response: %s", err)
		}
		if res.Name != "Indonesia" {
			t.Errorf("expected name Indonesia, got %q", res.Name)
		}
		if res.Flag == "" {
			t.Error("expected flag to be set")
		}
		if res.Population != 275501339 {
			t.Errorf("expected population 275501339, got %d", res.Population)
		}
		if res.Capital != "Jakarta" || res.Region != "Asia" {
			t.Errorf("unexpected capital/region: %q/%q", res.Capital, res.Region)
		}
		if res.WorldPopulation.Baseline.Population <= 0 {
			t.Errorf("expected world population baseline, got %f", res.WorldPopulation.Baseline.Population)
		}
		if got := rec.Header().Get("Cache-Control"); got != "public, max-age=86400" {
			t.Errorf("expected one day cache lifetime, got %q", got)
		}
	})
	t.Run("repeated requests are served from cache", func(t *testing.T) {
		var calls atomic.Int32
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			calls.Add(1)
			return jsonResponse(200, indonesiaResponse), nil
		})
		_ = get(t, srv, "/api/country?code=ID")
		rec := get(t, srv, "/api/country?code=id")
		if rec.Header().Get("X-Cache") != "HIT" {
			t.Error("expected second request to be a cache hit")
		}
		if calls.Load() != 1 {
			t.Errorf("expected one upstream call, got %d", calls.Load())
		}
	})
	t.Run("missing fields fall back to defaults", func(t *testing.T) {
		res := normalizeCountry(restCountry{}, time.Now())
		if res.Name != "Unknown" || res.Capital != "N/A" || res.Region != "N/A" || res.Flag != "" {
			t.Errorf("unexpected fallbacks: %+v", res)
		}
	})
	t.Run("missing code is rejected without upstream call", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, failOnUpstream(t))
		rec := get(t, srv, "/api/country")
		if rec.Code != stdhttp.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Country code is required" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("malformed code is rejected", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, failOnUpstream(t))
		for _, code := range []string{"1", "I", "INDO", "I1"} {
			rec := get(t, srv, "/api/country?code="+code)
			if rec.Code != stdhttp.StatusBadRequest {
				t.Errorf("expected status 400 for %q, got %d", code, rec.Code)
			}
		}
	})
	t.Run("unknown country maps to a server error", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			return jsonResponse(404, `{"status":404,"message":"Not Found"}`), nil
		})
		rec := get(t, srv, "/api/country?code=XX")
		if rec.Code != stdhttp.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "API request failed with status 404" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("empty result is reported as not found", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			return jsonResponse(200, `[]`), nil
		})
		rec := get(t, srv, "/api/country?code=XX")
		if msg := decodeError(t, rec); msg != "Country not found" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
}

func TestServer_handleCrypto(t *testing.T) {
	t.Run("quote is passed through", func(t *testing.T) {
		body := `{"status":{"error_code":0},"data":{"1":{"quote":{"USD":{"price":65000.5,"percent_change_24h":1.5}}}}}`
		srv := testServer(t, testConfig(t), nil, func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if req.Header.Get("X-CMC_PRO_API_KEY") != "cmc-key" {
				t.Errorf("expected API key header, got %q", req.Header.Get("X-CMC_PRO_API_KEY"))
			}
			if req.URL.Query().Get("id") != "1" || req.URL.Query().Get("convert") != "USD" {
				t.Errorf("unexpected query: %s", req.URL.RawQuery)
			}
			return jsonResponse(200, body), nil
		})
		rec := get(t, srv, "/api/coinmarketcap")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != body {
			t.Errorf("expected body to be passed through, got %s", rec.Body.String())
		}
		if got := rec.Header().Get("Cache-Control"); got != "no-store" {
			t.Errorf("expected no-store, got %q", got)
		}
	})
	t.Run("missing API key is reported", func(t *testing.T) {
		conf := testConfig(t)
		conf.Secrets.CoinMarketCapAPIKey = ""
		srv := testServer(t, conf, nil, failOnUpstream(t))
		rec := get(t, srv, "/api/coinmarketcap")
		if rec.Code != stdhttp.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "CoinMarketCap API Key not configured" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	tests := []struct {
		name    string
		code    int
		body    string
		status  int
		message string
	}{
		{"invalid key", 401, `{"status":{"error_code":1001,"error_message":"This API Key is invalid."}}`, 401, "This API Key is invalid."},
		{"missing key", 401, `{"status":{"error_code":1002,"error_message":"API key missing."}}`, 401, "API key missing."},
		{"plan limit", 403, `{"status":{"error_code":1006,"error_message":"Plan not authorized."}}`, 403, "Plan not authorized."},
		{"bad request", 400, `{"status":{"error_code":400,"error_message":"Invalid value for id"}}`, 400, "Invalid value for id"},
		{"unknown error", 500, `{"status":{"error_code":1011,"error_message":"Rate limited"}}`, 500, "Rate limited"},
		{"error without status", 502, `<html></html>`, 500, "API request failed with status 502"},
		{"error code on success", 200, `{"status":{"error_code":1001,"error_message":"Invalid"}}`, 401, "Invalid"},
	}
	for _, tc := range tests {
		t.Run("upstream "+tc.name+" is mapped", func(t *testing.T) {
			srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
				return jsonResponse(tc.code, tc.body), nil
			})
			rec := get(t, srv, "/api/coinmarketcap")
			if rec.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rec.Code)
			}
			if msg := decodeError(t, rec); msg != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, msg)
			}
		})
	}
}

func TestServer_handleCurrency(t *testing.T) {
	t.Run("rates are passed through", func(t *testing.T) {
		body := `{"result":"success","base_code":"USD","conversion_rates":{"USD":1,"IDR":16250.5}}`
		srv := testServer(t, testConfig(t), nil, func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if req.URL.Path != "/v6/fx-id/latest/USD" {
				t.Errorf("unexpected path: %s", req.URL.Path)
			}
			return jsonResponse(200, body), nil
		})
		rec := get(t, srv, "/api/currency")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != body {
			t.Errorf("expected body to be passed through, got %s", rec.Body.String())
		}
		if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
			t.Errorf("expected one hour cache lifetime, got %q", got)
		}
	})
	t.Run("missing app id is reported", func(t *testing.T) {
		conf := testConfig(t)
		conf.Secrets.ExchangeRateAppID = ""
		srv := testServer(t, conf, nil, failOnUpstream(t))
		if msg := decodeError(t, get(t, srv, "/api/currency")); msg != "ExchangeRate App ID not configured" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("error result on success status is a bad request", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			return jsonResponse(200, `{"result":"error","error-type":"invalid-key"}`), nil
		})
		rec := get(t, srv, "/api/currency")
		if rec.Code != stdhttp.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "invalid-key" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("upstream status is kept", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			return jsonResponse(404, `{"result":"error","error-type":"unsupported-code"}`), nil
		})
		rec := get(t, srv, "/api/currency")
		if rec.Code != stdhttp.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "unsupported-code" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("errors are not cached", func(t *testing.T) {
		var calls atomic.Int32
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			calls.Add(1)
			return jsonResponse(500, `{}`), nil
		})
		_ = get(t, srv, "/api/currency")
		rec := get(t, srv, "/api/currency")
		if msg := decodeError(t, rec); msg != "API request failed with status 500" {
			t.Errorf("unexpected error message: %q", msg)
		}
		if calls.Load() != 2 {
			t.Errorf("expected two upstream calls, got %d", calls.Load())
		}
	})
}

func TestServer_handleGeocoding(t *testing.T) {
	t.Run("results are normalized", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(req *stdhttp.Request) (*stdhttp.Response, error) {
			query := req.URL.Query()
			if query.Get("name") != "Bandung" || query.Get("count") != "5" || query.Get("language") != "en" {
				t.Errorf("unexpected query: %s", req.URL.RawQuery)
			}
			return jsonResponse(200, `{"results":[{"id":1650357,"name":"Bandung","latitude":-6.90389,
"longitude":107.61861,"country":"Indonesia","country_code":"ID","admin1":"West Java"}]}`), nil
		})
		rec := get(t, srv, "/api/geocoding?q=+Bandung+")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var res GeocodingResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("failed to decode response: %s", err)
		}
		if len(res.Results) != 1 {
			t.Fatalf("expected one result, got %d", len(res.Results))
		}
		if res.Results[0].CountryCode != "ID" || res.Results[0].Admin1 != "West Java" {
			t.Errorf("unexpected result: %+v", res.Results[0])
		}
		if !strings.Contains(rec.Body.String(), `"countryCode":"ID"`) {
			t.Errorf("expected camel case country code, got %s", rec.Body.String())
		}
	})
	t.Run("no matches return an empty list", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			return jsonResponse(200, `{"generationtime_ms":0.5}`), nil
		})
		rec := get(t, srv, "/api/geocoding?q=zzzzzz")
		if rec.Body.String() != `{"results":[]}` {
			t.Errorf("expected empty results, got %s", rec.Body.String())
		}
	})
	t.Run("short queries are rejected", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, failOnUpstream(t))
		for _, q := range []string{"", "a", "+a+"} {
			rec := get(t, srv, "/api/geocoding?q="+q)
			if rec.Code != stdhttp.StatusBadRequest {
				t.Errorf("expected status 400 for %q, got %d", q, rec.Code)
			}
			if msg := decodeError(t, rec); msg != "Search query must be at least 2 characters" {
				t.Errorf("unexpected error message: %q", msg)
			}
		}
	})
	t.Run("upstream failure is reported", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, func(*stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("connection refused")
		})
		rec := get(t, srv, "/api/geocoding?q=Bandung")
		if rec.Code != stdhttp.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Failed to search locations" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
}

func blynkTransport(t *testing.T, data *stdhttp.Response, status func() (*stdhttp.Response, error)) func(req *stdhttp.Request) (*stdhttp.Response, error) {
	return func(req *stdhttp.Request) (*stdhttp.Response, error) {
		if req.URL.Query().Get("token") != "blynk-token" {
			t.Errorf("expected token to be injected, got %q", req.URL.RawQuery)
		}
		switch req.URL.Path {
		case "/external/api/get":
			return data, nil
		case "/external/api/isHardwareConnected":
			return status()
		}
		t.Errorf("unexpected upstream request: %s", req.URL)
		return nil, errors.New("unexpected request")
	}
}

func TestServer_handleIndoor(t *testing.T) {
	t.Run("sensor data is merged with the online status", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, blynkTransport(t,
			jsonResponse(200, `{"v0":24.5,"v1":55,"v4":"2025-06-01 10:00","v5":8192,"v8":1008.2}`),
			func() (*stdhttp.Response, error) { return jsonResponse(200, `true`), nil }))
		rec := get(t, srv, "/api/indoor")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		data := make(map[string]any)
		if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
			t.Fatalf("failed to decode response: %s", err)
		}
		if data["v0"] != 24.5 {
			t.Errorf("expected v0 to be 24.5, got %v", data["v0"])
		}
		if data["isOnline"] != true {
			t.Errorf("expected device to be online, got %v", data["isOnline"])
		}
		if got := rec.Header().Get("Cache-Control"); got != "no-store" {
			t.Errorf("expected no-store, got %q", got)
		}
	})
	t.Run("failed status call reports the device offline", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, blynkTransport(t,
			jsonResponse(200, `{"v0":24.5}`),
			func() (*stdhttp.Response, error) { return nil, errors.New("timeout") }))
		rec := get(t, srv, "/api/indoor")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"isOnline":false`) {
			t.Errorf("expected device to be offline, got %s", rec.Body.String())
		}
	})
	t.Run("data failure is reported with its status", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, blynkTransport(t,
			jsonResponse(400, `Invalid token.`),
			func() (*stdhttp.Response, error) { return jsonResponse(200, `true`), nil }))
		rec := get(t, srv, "/api/indoor")
		if rec.Code != stdhttp.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "API request failed with status 400" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("missing token is reported", func(t *testing.T) {
		conf := testConfig(t)
		conf.Secrets.BlynkAuthToken = ""
		srv := testServer(t, conf, nil, failOnUpstream(t))
		if msg := decodeError(t, get(t, srv, "/api/indoor")); msg != "Blynk Auth Token not configured" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
}

func testForecast() *omgo.Forecast {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	fc := &omgo.Forecast{
		Latitude:    -6.9,
		Longitude:   107.6,
		HourlyTimes: []time.Time{base, base.Add(time.Hour), base.Add(time.Hour * 2)},
		HourlyMetrics: map[string][]float64{
			"temperature_2m":       {20, 22, 24},
			"relative_humidity_2m": {50, 60, 70},
			"uv_index":             {1, 2, 3},
			"is_day":               {1, 1, 1},
		},
		HourlyUnits: map[string]string{
			"temperature_2m":       "°C",
			"relative_humidity_2m": "%",
		},
		DailyTimes: []time.Time{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		DailyMetrics: map[string][]float64{
			"temperature_2m_max": {27},
		},
	}
	fc.CurrentWeather.Temperature = 22.4
	fc.CurrentWeather.WeatherCode = 3
	fc.CurrentWeather.WindSpeed = 5.2
	fc.CurrentWeather.WindDirection = 180
	fc.CurrentWeather.Time.Time = base.Add(time.Minute * 90)
	return fc
}

func outdoorTransport(air, elevation func() (*stdhttp.Response, error)) func(req *stdhttp.Request) (*stdhttp.Response, error) {
	return func(req *stdhttp.Request) (*stdhttp.Response, error) {
		switch {
		case req.URL.Host == "air-quality-api.open-meteo.com":
			return air()
		case req.URL.Path == "/v1/elevation":
			return elevation()
		}
		return nil, errors.New("unexpected request")
	}
}

func TestServer_handleOutdoor(t *testing.T) {
	airOK := func() (*stdhttp.Response, error) {
		return jsonResponse(200, `{"timezone":"Asia/Jakarta","current":{"european_aqi":25}}`), nil
	}
	elevationOK := func() (*stdhttp.Response, error) {
		return jsonResponse(200, `{"elevation":[768]}`), nil
	}

	t.Run("sub-fetches are merged", func(t *testing.T) {
		fc := &fakeForecaster{forecast: testForecast()}
		srv := testServer(t, testConfig(t), fc, outdoorTransport(airOK, elevationOK))
		rec := get(t, srv, "/api/outdoor?lat=-6.9&lon=107.6")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var res OutdoorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("failed to decode response: %s", err)
		}
		if res.Timezone != "Asia/Jakarta" {
			t.Errorf("expected timezone Asia/Jakarta, got %q", res.Timezone)
		}
		if res.Elevation != 768 {
			t.Errorf("expected elevation 768, got %f", res.Elevation)
		}
		if res.Current["temperature_2m"] != 22.4 {
			t.Errorf("expected current temperature 22.4, got %v", res.Current["temperature_2m"])
		}
		if res.Current["relative_humidity_2m"] != float64(60) {
			t.Errorf("expected humidity of the current hour, got %v", res.Current["relative_humidity_2m"])
		}
		if res.Current["european_aqi"] != float64(25) {
			t.Errorf("expected AQI 25, got %v", res.Current["european_aqi"])
		}
		if res.Units["relative_humidity_2m"] != "%" {
			t.Errorf("expected humidity unit, got %v", res.Units["relative_humidity_2m"])
		}
		times, ok := res.Hourly["time"].([]any)
		if !ok || len(times) != 3 || times[0] != "2025-06-01T09:00" {
			t.Errorf("unexpected hourly times: %v", res.Hourly["time"])
		}
		if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
			t.Errorf("expected five minute cache lifetime, got %q", got)
		}
	})
	t.Run("nearby coordinates share the cached response", func(t *testing.T) {
		fc := &fakeForecaster{forecast: testForecast()}
		srv := testServer(t, testConfig(t), fc, outdoorTransport(airOK, elevationOK))
		_ = get(t, srv, "/api/outdoor?lat=-6.9001&lon=107.6001")
		rec := get(t, srv, "/api/outdoor?lat=-6.9002&lon=107.6002")
		if rec.Header().Get("X-Cache") != "HIT" {
			t.Error("expected a cache hit")
		}
		if fc.calls.Load() != 1 {
			t.Errorf("expected one forecast call, got %d", fc.calls.Load())
		}
	})
	t.Run("missing coordinates are rejected", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, failOnUpstream(t))
		rec := get(t, srv, "/api/outdoor?lat=-6.9")
		if rec.Code != stdhttp.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Latitude and longitude are required" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("out of range coordinates are rejected", func(t *testing.T) {
		srv := testServer(t, testConfig(t), nil, failOnUpstream(t))
		rec := get(t, srv, "/api/outdoor?lat=91&lon=107.6")
		if msg := decodeError(t, rec); msg != "Latitude must be a number between -90 and 90" {
			t.Errorf("unexpected error message: %q", msg)
		}
		rec = get(t, srv, "/api/outdoor?lat=-6.9&lon=abc")
		if msg := decodeError(t, rec); msg != "Longitude must be a number between -180 and 180" {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("forecast failure is named", func(t *testing.T) {
		fc := &fakeForecaster{err: context.DeadlineExceeded}
		srv := testServer(t, testConfig(t), fc, outdoorTransport(airOK, elevationOK))
		rec := get(t, srv, "/api/outdoor?lat=-6.9&lon=107.6")
		if rec.Code != stdhttp.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != msgWeatherFailed {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("air quality failure is named", func(t *testing.T) {
		fc := &fakeForecaster{forecast: testForecast()}
		srv := testServer(t, testConfig(t), fc, outdoorTransport(func() (*stdhttp.Response, error) {
			return jsonResponse(503, `{}`), nil
		}, elevationOK))
		if msg := decodeError(t, get(t, srv, "/api/outdoor?lat=-6.9&lon=107.6")); msg != msgAirQualityFailed {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
	t.Run("empty elevation is a failure", func(t *testing.T) {
		fc := &fakeForecaster{forecast: testForecast()}
		srv := testServer(t, testConfig(t), fc, outdoorTransport(airOK, func() (*stdhttp.Response, error) {
			return jsonResponse(200, `{"elevation":[]}`), nil
		}))
		if msg := decodeError(t, get(t, srv, "/api/outdoor?lat=-6.9&lon=107.6")); msg != msgElevationFailed {
			t.Errorf("unexpected error message: %q", msg)
		}
	})
}

func TestServer_handleStatus(t *testing.T) {
	t.Run("one slow service does not fail the others", func(t *testing.T) {
		conf := testConfig(t)
		conf.Proxy.StatusTimeout = time.Millisecond * 50
		conf.Proxy.Services = []config.StatusPage{
			{Name: "One", URL: "https://one.example.com/api/v2/status.json"},
			{Name: "Two", URL: "https://two.example.com/api/v2/status.json"},
			{Name: "Slow", URL: "https://slow.example.com/api/v2/status.json"},
			{Name: "Four", URL: "https://four.example.com/api/v2/status.json"},
		}
		srv := testServer(t, conf, nil, func(req *stdhttp.Request) (*stdhttp.Response, error) {
			switch req.URL.Host {
			case "one.example.com":
				return jsonResponse(200, `{"status":{"indicator":"none"}}`), nil
			case "two.example.com":
				return jsonResponse(200, `{"status":{"indicator":"minor"}}`), nil
			case "four.example.com":
				return jsonResponse(200, `{"status":{"indicator":"critical"}}`), nil
			}
			<-req.Context().Done()
			return nil, req.Context().Err()
		})
		rec := get(t, srv, "/api/status")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var res []ServiceStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("failed to decode response: %s", err)
		}
		want := []ServiceStatus{
			{Name: "One", Status: StatusOperational, URL: "https://one.example.com"},
			{Name: "Two", Status: StatusDegraded, URL: "https://two.example.com"},
			{Name: "Slow", Status: StatusUnknown, URL: "https://slow.example.com"},
			{Name: "Four", Status: StatusMajorOutage, URL: "https://four.example.com"},
		}
		if len(res) != len(want) {
			t.Fatalf("expected %d services, got %d", len(want), len(res))
		}
		for i := range want {
			if res[i] != want[i] {
				t.Errorf("expected %+v, got %+v", want[i], res[i])
			}
		}
	})
	t.Run("indicators are mapped", func(t *testing.T) {
		tests := map[string]string{
			"none":        StatusOperational,
			"minor":       StatusDegraded,
			"major":       StatusPartialOutage,
			"critical":    StatusMajorOutage,
			"maintenance": StatusUnknown,
			"":            StatusUnknown,
		}
		for indicator, want := range tests {
			if got := mapIndicator(indicator); got != want {
				t.Errorf("expected %q for %q, got %q", want, indicator, got)
			}
		}
	})
}
