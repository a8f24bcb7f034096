// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package settings holds the refresh interval of every dashboard widget category.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/goccy/go-json"

	"github.com/wneessen/cyberdash/internal/kvstore"
	"github.com/wneessen/cyberdash/internal/logger"
)

// StorageKey is the key the settings are persisted under.
const StorageKey = "cyberdash-settings"

var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrNegativeInterval = errors.New("interval must not be negative")
)

// Category identifies a widget category.
type Category string

const (
	Indoor   Category = "indoor"
	Outdoor  Category = "outdoor"
	Currency Category = "currency"
	Crypto   Category = "crypto"
	Services Category = "services"
	Country  Category = "country"
)

// Categories lists every category in display order.
var Categories = []Category{Indoor, Outdoor, Currency, Crypto, Services, Country}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := defaults[c]
	return ok
}

// Settings maps a category to its refresh interval in seconds. An interval of 0 disables
// automatic refreshes.
type Settings map[Category]int

var defaults = Settings{
	Indoor:   30,
	Outdoor:  300,
	Currency: 3600,
	Crypto:   300,
	Services: 60,
	Country:  86400,
}

// Defaults returns a copy of the default intervals.
func Defaults() Settings {
	return maps.Clone(defaults)
}

// Change is published to subscribers whenever the interval of a category changes.
type Change struct {
	Category Category
	Interval int
}

// Store is the shared, persisted settings state of a dashboard session.
type Store struct {
	mu          sync.RWMutex
	kv          kvstore.Store
	logger      *logger.Logger
	settings    Settings
	loaded      bool
	ready       chan struct{}
	readyOnce   sync.Once
	subscribers map[chan Change]struct{}
}

// New returns a Store holding the defaults. Call Load to read the persisted settings.
func New(kv kvstore.Store, log *logger.Logger) *Store {
	return &Store{
		kv:          kv,
		logger:      log,
		settings:    Defaults(),
		ready:       make(chan struct{}),
		subscribers: make(map[chan Change]struct{}),
	}
}

// Load reads the persisted settings and merges them over the defaults. Absent or unreadable
// data leaves the defaults in place. The store is ready afterwards in either case.
func (s *Store) Load() {
	stored := s.read()

	s.mu.Lock()
	s.settings = Defaults()
	maps.Copy(s.settings, stored)
	s.loaded = true
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
}

// Ready is closed once the settings have been loaded.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// IsLoaded reports whether Load has completed.
func (s *Store) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.settings)
}

// Interval returns the interval of a category in seconds.
func (s *Store) Interval(category Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[category]
}

// Update sets the interval of a category, persists the full settings and notifies every
// subscriber. The in-memory value is updated even if persisting fails.
func (s *Store) Update(category Category, seconds int) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if seconds < 0 {
		return ErrNegativeInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.settings[category] != seconds
	s.settings[category] = seconds
	err := s.persist(s.settings)
	if changed {
		s.broadcast(Change{Category: category, Interval: seconds})
	}
	return err
}

// Reload re-reads the persisted settings and notifies subscribers about every category
// whose interval differs from the in-memory value.
func (s *Store) Reload() {
	stored := s.read()
	fresh := Defaults()
	maps.Copy(fresh, stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, category := range Categories {
		if s.settings[category] != fresh[category] {
			s.broadcast(Change{Category: category, Interval: fresh[category]})
		}
	}
	s.settings = fresh
}

// Subscribe returns a channel receiving every change and a function to cancel the
// subscription. Changes are dropped for subscribers whose buffer is full.
func (s *Store) Subscribe(size int) (<-chan Change, func()) {
	changes := make(chan Change, size)
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

// broadcast requires s.mu to be held.
func (s *Store) broadcast(change Change) {
	for ch := range s.subscribers {
		select {
		case ch <- change:
		default:
			s.logger.Warn("dropping settings change for slow subscriber",
				slog.String("category", string(change.Category)))
		}
	}
}

// read returns the valid persisted intervals. Unknown categories and negative values are
// ignored.
func (s *Store) read() Settings {
	stored := make(Settings)
	data, err := s.kv.Get(StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return stored
	}
	if err != nil {
		s.logger.Error("failed to read settings, using defaults", logger.Err(err))
		return stored
	}

	raw := make(map[string]int)
	if err = json.Unmarshal(data, &raw); err != nil {
		s.logger.Error("failed to parse settings, using defaults", logger.Err(err))
		return stored
	}
	for key, seconds := range raw {
		category := Category(key)
		if !category.Valid() || seconds < 0 {
			s.logger.Warn("ignoring invalid stored setting", slog.String("category", key),
				slog.Int("interval", seconds))
			continue
		}
		stored[category] = seconds
	}
	return stored
}

func (s *Store) persist(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err = s.kv.Set(StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}
