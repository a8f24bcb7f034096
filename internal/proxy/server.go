// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package proxy implements the upstream proxy: one stateless GET endpoint per data source
// that injects secrets, applies a cache lifetime and normalizes upstream responses and
// errors into a fixed JSON shape.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/hectormalot/omgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/wneessen/cyberdash/internal/cache"
	"github.com/wneessen/cyberdash/internal/config"
	"github.com/wneessen/cyberdash/internal/http"
	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/metrics"
)

const shutdownTimeout = time.Second * 5

// Cache lifetimes per endpoint
const (
	ttlCrypto    = 0
	ttlCountry   = time.Hour * 24
	ttlCurrency  = time.Hour
	ttlGeocoding = time.Hour
	ttlIndoor    = 0
	ttlOutdoor   = time.Minute * 5
	ttlStatus    = time.Minute
)

// forecaster is the subset of the Open-Meteo client used by the outdoor endpoint.
type forecaster interface {
	Forecast(ctx context.Context, loc omgo.Location, opts *omgo.Options) (*omgo.Forecast, error)
}

// handlerFunc handles one proxy request. The returned value is JSON encoded as success
// body; a returned error is mapped by statusAndMessage.
type handlerFunc func(r *stdhttp.Request) (any, error)

type Server struct {
	config     *config.Config
	logger     *logger.Logger
	http       *http.Client
	forecaster forecaster
	cache      *cache.ResponseCache
	validate   *validator.Validate
	lang       language.Base
	router     chi.Router
}

func New(conf *config.Config, log *logger.Logger) (*Server, error) {
	omclient, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}
	return newServer(conf, log, http.New(log), omclient)
}

func newServer(conf *config.Config, log *logger.Logger, client *http.Client, fc forecaster) (*Server, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	tag, err := language.Parse(conf.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locale: %w", err)
	}
	base, _ := tag.Base()

	server := &Server{
		config:     conf,
		logger:     log,
		http:       client,
		forecaster: fc,
		cache:      cache.New(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		lang:       base,
	}
	server.router = server.routes()
	return server, nil
}

// Handler returns the root HTTP handler of the proxy.
func (s *Server) Handler() stdhttp.Handler {
	return s.router
}

// ListenAndServe serves the proxy on the configured address until ctx is cancelled and
// then shuts the server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &stdhttp.Server{
		Addr:              s.config.Proxy.Listen,
		Handler:           s.router,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: time.Second * 10,
		WriteTimeout:      s.config.Proxy.RequestTimeout + time.Second*5,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("proxy listening", slog.String("addr", s.config.Proxy.Listen))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("proxy server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down proxy server: %w", err)
	}
	return nil
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Timeout(s.config.Proxy.RequestTimeout))
	if len(s.config.Proxy.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.Proxy.AllowedOrigins,
			AllowedMethods: []string{stdhttp.MethodGet, stdhttp.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	router.NotFound(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		s.writeError(w, stdhttp.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		s.writeError(w, stdhttp.StatusMethodNotAllowed, "Method Not Allowed")
	})

	router.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		s.writeJSON(w, stdhttp.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		if s.config.Proxy.RateLimit > 0 {
			r.Use(httprate.Limit(s.config.Proxy.RateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
					s.writeError(w, stdhttp.StatusTooManyRequests, "Too Many Requests")
				}),
			))
		}
		r.Get("/coinmarketcap", s.endpoint("coinmarketcap", ttlCrypto, s.handleCrypto))
		r.Get("/country", s.endpoint("country", ttlCountry, s.handleCountry))
		r.Get("/currency", s.endpoint("currency", ttlCurrency, s.handleCurrency))
		r.Get("/geocoding", s.endpoint("geocoding", ttlGeocoding, s.handleGeocoding))
		r.Get("/indoor", s.endpoint("indoor", ttlIndoor, s.handleIndoor))
		r.Get("/outdoor", s.endpoint("outdoor", ttlOutdoor, s.handleOutdoor))
		r.Get("/status", s.endpoint("status", ttlStatus, s.handleStatus))
	})

	return router
}

// endpoint wraps a handlerFunc with the response cache, the cache lifetime header, panic
// recovery, metrics and the JSON error envelope.
func (s *Server) endpoint(name string, ttl time.Duration, handle handlerFunc) stdhttp.HandlerFunc {
	cacheable := ttl > 0 && !s.config.Proxy.DisableCache
	cacheControl := "no-store"
	if ttl > 0 {
		cacheControl = fmt.Sprintf("public, max-age=%d", int(ttl.Seconds()))
	}

	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		start := time.Now()
		status := stdhttp.StatusOK
		defer func() {
			metrics.ProxyRequests.WithLabelValues(name, strconv.Itoa(status)).Inc()
			metrics.ProxyRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}()

		key := cache.Key(r.URL.Path, r.URL.Query())
		if cacheable {
			if entry, ok := s.cache.Get(key); ok {
				metrics.ProxyCacheResults.WithLabelValues(name, "hit").Inc()
				w.Header().Set("Cache-Control", cacheControl)
				w.Header().Set("X-Cache", "HIT")
				s.writeRaw(w, entry.Status, entry.Body)
				return
			}
			metrics.ProxyCacheResults.WithLabelValues(name, "miss").Inc()
		}

		body, err := s.safeHandle(r, handle)
		if err != nil {
			var message string
			status, message = statusAndMessage(err)
			s.logger.Error("proxy request failed", logger.Err(err), slog.String("endpoint", name),
				slog.Int("status", status), slog.String("request_id", middleware.GetReqID(r.Context())))
			w.Header().Set("Cache-Control", "no-store")
			s.writeError(w, status, message)
			return
		}

		payload, err := json.Marshal(body)
		if err != nil {
			status = stdhttp.StatusInternalServerError
			s.logger.Error("failed to encode proxy response", logger.Err(err), slog.String("endpoint", name))
			s.writeError(w, status, internalServerError)
			return
		}
		if cacheable {
			s.cache.Set(key, status, payload, ttl)
		}
		w.Header().Set("Cache-Control", cacheControl)
		s.writeRaw(w, status, payload)
	}
}

// safeHandle runs handle and converts a panic into an error.
func (s *Server) safeHandle(r *stdhttp.Request, handle handlerFunc) (body any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			body = nil
			err = fmt.Errorf("panic in handler: %v", rec)
		}
	}()
	return handle(r)
}

func (s *Server) writeError(w stdhttp.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w stdhttp.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("failed to encode JSON response", logger.Err(err))
		status = stdhttp.StatusInternalServerError
		payload = []byte(`{"error":"` + internalServerError + `"}`)
	}
	s.writeRaw(w, status, payload)
}

func (s *Server) writeRaw(w stdhttp.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		s.logger.Debug("failed to write response", logger.Err(err))
	}
}

func (s *Server) requestLogger(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote", r.RemoteAddr),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
