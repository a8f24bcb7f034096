// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package vartype

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestVariable(t *testing.T) {
	t.Run("zero value is unset", func(t *testing.T) {
		var v Variable[float64]
		if v.IsSet() {
			t.Error("expected zero value to be unset")
		}
		if v.String() != "n/a" {
			t.Errorf("expected placeholder string, got %q", v.String())
		}
		if v.ValueOr(1.5) != 1.5 {
			t.Errorf("expected fallback value, got %f", v.ValueOr(1.5))
		}
	})
	t.Run("set and reset track state", func(t *testing.T) {
		v := NewVariable(42)
		if !v.IsSet() || v.Value() != 42 {
			t.Fatalf("expected variable to hold 42, got %v", v)
		}
		v.Reset()
		if v.IsSet() || v.Value() != 0 {
			t.Errorf("expected variable to be reset, got %v", v)
		}
		v.Set(0)
		if !v.IsSet() {
			t.Error("expected explicitly set zero to count as set")
		}
	})
	t.Run("json encoding uses null for unset values", func(t *testing.T) {
		payload := struct {
			Set   Variable[int] `json:"set"`
			Unset Variable[int] `json:"unset"`
		}{Set: NewVariable(7)}
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal: %s", err)
		}
		if string(data) != `{"set":7,"unset":null}` {
			t.Errorf("unexpected JSON: %s", data)
		}
	})
	t.Run("json decoding sets the value", func(t *testing.T) {
		var v Variable[string]
		if err := json.Unmarshal([]byte(`"hello"`), &v); err != nil {
			t.Fatalf("failed to unmarshal: %s", err)
		}
		if !v.IsSet() || v.Value() != "hello" {
			t.Errorf("expected hello, got %q", v.Value())
		}
	})
}
