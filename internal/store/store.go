// Package store persists the calculator's two source values and, for
// backends that support it, the last fetched rate table.
package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/ratecalc/internal/currency"
)

// Settings is a string key/value store.
type Settings interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// RateCache is implemented by backends that can keep a rate table between
// runs, which lets offline mode start from the last known rates.
type RateCache interface {
	SaveRates(t currency.Table) error
	LoadRates() (currency.Table, bool, error)
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendYAML   = "yaml"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("store: unknown backend")

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Path        string // sqlite and yaml
	RedisAddr   string
	RedisPrefix string
}

// Open returns the backend named by opts.Backend. An empty backend means
// sqlite.
func Open(opts Options) (Settings, error) {
	var (
		s   Settings
		err error
	)
	switch opts.Backend {
	case "", BackendSQLite:
		var db *SQLite
		if db, err = OpenSQLite(opts.Path); err == nil {
			s = db
		}
	case BackendYAML:
		var y *YAMLFile
		if y, err = OpenYAML(opts.Path); err == nil {
			s = y
		}
	case BackendRedis:
		var r *Redis
		if r, err = OpenRedis(opts.RedisAddr, opts.RedisPrefix); err == nil {
			s = r
		}
	case BackendMemory:
		s = NewMemory()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultPath is where a file-backed store lives inside dataDir.
func DefaultPath(dataDir, backend string) string {
	if backend == BackendYAML {
		return filepath.Join(dataDir, "settings.yaml")
	}
	return filepath.Join(dataDir, "settings.db")
}
