// Package settings persists user interface preferences between runs.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
)

// DefaultTheme is used when nothing was saved yet.
const DefaultTheme = "mira"

type values struct {
	Theme string `yaml:"theme"`
}

// Store is an opened settings file. Changes are written by Save or Close.
type Store struct {
	path string

	mu     sync.Mutex
	v      values
	dirty  bool
	closed bool
}

// Open reads the settings at path. A missing file yields the defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path, v: values{Theme: DefaultTheme}}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var v values
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if v.Theme != "" {
		s.v.Theme = v.Theme
	}
	return s, nil
}

func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Theme
}

func (s *Store) SetTheme(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" || name == s.v.Theme {
		return
	}
	s.v.Theme = name
	s.dirty = true
}

// Save writes pending changes.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *Store) save() error {
	if !s.dirty {
		return nil
	}
	data, err := yaml.Marshal(s.v)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	s.dirty = false
	return nil
}

// Close saves pending changes. Further calls are no-ops.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.save()
}
