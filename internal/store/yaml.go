package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLFile keeps settings as a flat YAML mapping, rewritten on every Set.
type YAMLFile struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// OpenYAML loads path if it exists. A missing file is an empty store.
func OpenYAML(path string) (*YAMLFile, error) {
	y := &YAMLFile{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return y, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &y.values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if y.values == nil {
		y.values = make(map[string]string)
	}
	return y, nil
}

func (y *YAMLFile) Get(key string) (string, bool, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	v, ok := y.values[key]
	return v, ok, nil
}

func (y *YAMLFile) Set(key, value string) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	prev, had := y.values[key]
	y.values[key] = value
	if err := y.flush(); err != nil {
		if had {
			y.values[key] = prev
		} else {
			delete(y.values, key)
		}
		return err
	}
	return nil
}

func (y *YAMLFile) flush() error {
	if err := os.MkdirAll(filepath.Dir(y.path), 0o750); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	data, err := yaml.Marshal(y.values)
	if err != nil {
		return err
	}
	tmp := y.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, y.path)
}

func (y *YAMLFile) Close() error { return nil }
