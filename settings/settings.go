// settings/settings.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package settings persists per-user key/value settings. Values are kept
// as strings, as they were entered; interpreting them is up to the
// reader. The file keeps keys in the order they were first written so
// that hand edits survive a save.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/iancoleman/orderedmap"
)

type Store struct {
	mu     sync.Mutex
	path   string
	values *orderedmap.OrderedMap
}

// New returns an empty Store that will be saved to path. An empty path
// gives an in-memory store whose Save is a no-op.
func New(path string) *Store {
	return &Store{path: path, values: orderedmap.New()}
}

// Load reads the settings file at path. A missing file is not an error;
// the returned Store is empty and will create the file on Save.
func Load(path string) (*Store, error) {
	s := New(path)

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	} else if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(b, s.values); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Get returns the stored value for key, or "" if there is none. Non-string
// values in the file are returned in their JSON form.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values.Set(key, value)
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values.Delete(key)
}

func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.values.Keys()...)
}

// Save writes the settings back to the file they were loaded from.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	b, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	// Write to a temporary file and rename so a crash mid-write doesn't
	// leave a truncated settings file behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// ParseBool interprets a stored setting as a boolean; "1", "t", "true",
// "0", "f", "false" and friends are accepted. Empty or unparseable values
// give def.
func ParseBool(value string, def bool) bool {
	if value == "" {
		return def
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return def
}

// Bool is shorthand for ParseBool(s.Get(key), def).
func (s *Store) Bool(key string, def bool) bool {
	return ParseBool(s.Get(key), def)
}

func (s *Store) SetBool(key string, v bool) {
	if v {
		s.Set(key, "1")
	} else {
		s.Set(key, "0")
	}
}
