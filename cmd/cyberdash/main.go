// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

//go:build linux

// Package main implements the cyberdash dashboard client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/wneessen/cyberdash/internal/client"
	"github.com/wneessen/cyberdash/internal/config"
	"github.com/wneessen/cyberdash/internal/dashboard"
	"github.com/wneessen/cyberdash/internal/kvstore"
	"github.com/wneessen/cyberdash/internal/location"
	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/settings"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// intervalFlag collects repeated -set category=seconds arguments.
type intervalFlag map[settings.Category]int

func (f intervalFlag) String() string {
	parts := make([]string, 0, len(f))
	for category, seconds := range f {
		parts = append(parts, fmt.Sprintf("%s=%d", category, seconds))
	}
	return strings.Join(parts, ",")
}

func (f intervalFlag) Set(value string) error {
	name, secs, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected category=seconds, got %q", value)
	}
	category := settings.Category(strings.ToLower(strings.TrimSpace(name)))
	if !category.Valid() {
		return fmt.Errorf("%w: %s", settings.ErrUnknownCategory, name)
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(secs))
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", secs, err)
	}
	if seconds < 0 {
		return settings.ErrNegativeInterval
	}
	f[category] = seconds
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.NewLogger(slog.LevelError)

	intervals := make(intervalFlag)
	confPath := flag.String("config", "", "path to the config file")
	search := flag.String("search", "", "search for a location by name")
	pick := flag.Int("select", 0, "store the n-th result of -search as the current location")
	flag.Var(intervals, "set", "set the refresh interval of a widget as category=seconds (repeatable)")
	flag.Parse()

	conf, err := config.Load(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}
	log = logger.NewLogger(conf.LogLevel)

	kv, err := kvstore.Open(conf.Storage.Backend, conf.Storage.Path)
	if err != nil {
		log.Error("failed to open storage", logger.Err(err))
		os.Exit(1)
	}

	switch {
	case len(intervals) > 0:
		err = applyIntervals(kv, log, intervals)
	case *search != "":
		err = searchLocation(ctx, os.Stdout, conf, log, kv, *search, *pick)
	default:
		err = runDashboard(ctx, conf, log, kv)
	}
	if closeErr := kv.Close(); closeErr != nil {
		log.Error("failed to close storage", logger.Err(closeErr))
	}
	if err != nil {
		log.Error("cyberdash failed", logger.Err(err))
		os.Exit(1)
	}
}

func runDashboard(ctx context.Context, conf *config.Config, log *logger.Logger, kv kvstore.Store) error {
	dash, err := dashboard.New(conf, log, kv)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard: %w", err)
	}
	log.Info("starting cyberdash", slog.String("version", version), slog.String("commit", commit),
		slog.String("date", date))
	if err = dash.Run(ctx); err != nil {
		return fmt.Errorf("dashboard session failed: %w", err)
	}
	log.Info("shutting down cyberdash")
	return nil
}

// applyIntervals persists the given intervals. A running dashboard picks them up on SIGHUP.
func applyIntervals(kv kvstore.Store, log *logger.Logger, intervals intervalFlag) error {
	store := settings.New(kv, log)
	store.Load()
	var errs []error
	for category, seconds := range intervals {
		if err := store.Update(category, seconds); err != nil {
			errs = append(errs, fmt.Errorf("failed to update %s: %w", category, err))
		}
	}
	return errors.Join(errs...)
}

// searchLocation prints the geocoding results for query. With a positive pick, the n-th
// result is stored as the current location.
func searchLocation(ctx context.Context, out io.Writer, conf *config.Config, log *logger.Logger,
	kv kvstore.Store, query string, pick int,
) error {
	c, err := client.New(conf, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	results, err := c.SearchLocations(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		_, err = fmt.Fprintf(out, "no locations found for %q\n", query)
		return err
	}
	if pick <= 0 {
		for i, result := range results {
			loc := location.FromSearchResult(result)
			if _, err = fmt.Fprintf(out, "%2d. %s (%.4f, %.4f) %s\n", i+1, loc.Name, loc.Lat, loc.Lon,
				loc.CurrencyCode); err != nil {
				return err
			}
		}
		return nil
	}
	if pick > len(results) {
		return fmt.Errorf("selection %d out of range, %d results found", pick, len(results))
	}

	loc := location.FromSearchResult(results[pick-1])
	store := location.NewStore(kv, log)
	store.Load()
	if err = store.Set(loc); err != nil {
		return fmt.Errorf("failed to store location: %w", err)
	}
	_, err = fmt.Fprintf(out, "location set to %s\n", loc.Name)
	return err
}
