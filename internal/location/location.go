// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package location holds the active location of a dashboard session and resolves it from
// the public IP address or a location search.
package location

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/goccy/go-json"

	"github.com/wneessen/cyberdash/internal/kvstore"
	"github.com/wneessen/cyberdash/internal/logger"
)

// StorageKey is the key the location is persisted under.
const StorageKey = "cyberdash-location"

const (
	EarthRadius       = 6371000.0 // meters
	DistanceThreshold = 2500.0    // 2.5km
)

// ErrInvalidCoordinates is returned for coordinates outside of the WGS84 ranges.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Location is the place the dashboard shows outdoor weather and country facts for.
type Location struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Name         string  `json:"name"`
	CountryCode  string  `json:"countryCode"`
	CurrencyCode string  `json:"currencyCode"`
}

// Default is the location used until a better one is known.
var Default = Location{
	Lat:          -6.898,
	Lon:          107.6349,
	Name:         "Cikutra, Bandung",
	CountryCode:  "ID",
	CurrencyCode: "IDR",
}

// Valid reports whether the coordinates are within the WGS84 ranges.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// Distance returns the great-circle distance to other in meters using the Haversine formula.
func (l Location) Distance(other Location) float64 {
	dLat := (l.Lat - other.Lat) * math.Pi / 180
	dLon := (l.Lon - other.Lon) * math.Pi / 180
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// MovedFrom reports whether l is farther than DistanceThreshold away from other.
func (l Location) MovedFrom(other Location) bool {
	return l.Distance(other) > DistanceThreshold
}

// Store is the shared, persisted location of a dashboard session.
type Store struct {
	mu          sync.RWMutex
	kv          kvstore.Store
	logger      *logger.Logger
	current     Location
	subscribers map[chan Location]struct{}
}

// NewStore returns a Store holding the default location.
func NewStore(kv kvstore.Store, log *logger.Logger) *Store {
	return &Store{
		kv:          kv,
		logger:      log,
		current:     Default,
		subscribers: make(map[chan Location]struct{}),
	}
}

// Load restores the persisted location. Absent or unreadable data keeps the default.
func (s *Store) Load() {
	loc, ok := s.read()
	if !ok {
		return
	}
	s.mu.Lock()
	s.current = loc
	s.mu.Unlock()
}

// Reload re-reads the persisted location and notifies every subscriber if it differs
// from the active one.
func (s *Store) Reload() {
	loc, ok := s.read()
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc == s.current {
		return
	}
	s.current = loc
	s.logger.Info("location reloaded", slog.String("name", loc.Name))
	s.broadcast(loc)
}

func (s *Store) read() (Location, bool) {
	data, err := s.kv.Get(StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Location{}, false
	}
	if err != nil {
		s.logger.Error("failed to read location, using default", logger.Err(err))
		return Location{}, false
	}

	var loc Location
	if err = json.Unmarshal(data, &loc); err != nil || !loc.Valid() {
		s.logger.Error("failed to parse stored location, using default", logger.Err(err))
		return Location{}, false
	}
	return loc, true
}

// Get returns the active location.
func (s *Store) Get() Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsDefault reports whether the active location is still the default.
func (s *Store) IsDefault() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current == Default
}

// Set replaces the active location, persists it and notifies every subscriber. The
// in-memory location is replaced even if persisting fails.
func (s *Store) Set(loc Location) error {
	if !loc.Valid() {
		return fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, loc.Lat, loc.Lon)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.current != loc
	s.current = loc
	err := s.persist(loc)
	if changed {
		s.logger.Info("location changed", slog.String("name", loc.Name),
			slog.Float64("lat", loc.Lat), slog.Float64("lon", loc.Lon))
		s.broadcast(loc)
	}
	return err
}

// broadcast requires s.mu to be held.
func (s *Store) broadcast(loc Location) {
	for ch := range s.subscribers {
		select {
		case ch <- loc:
		default:
		}
	}
}

// Subscribe returns a channel receiving every location change and a function to cancel
// the subscription.
func (s *Store) Subscribe(size int) (<-chan Location, func()) {
	changes := make(chan Location, size)
	s.mu.Lock()
	s.subscribers[changes] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, changes)
			s.mu.Unlock()
			close(changes)
		})
	}
	return changes, unsub
}

func (s *Store) persist(loc Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}
	if err = s.kv.Set(StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist location: %w", err)
	}
	return nil
}
