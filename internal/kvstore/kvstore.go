// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package kvstore persists small client-local values such as the refresh settings and the
// last known location. Every Set replaces the stored value for a key as a whole.
package kvstore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored for a key.
var ErrNotFound = errors.New("key not found")

// Store is implemented by each persistence backend.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// Open returns the Store for the given backend name ("file" or "badger") rooted at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "file":
		return NewFileStore(path)
	case "badger":
		return NewBadgerStore(path)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
