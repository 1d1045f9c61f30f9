package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/ratecalc/internal/currency"
)

func exerciseSettings(t *testing.T, s Settings) {
	t.Helper()

	if _, ok, err := s.Get("amount"); err != nil || ok {
		t.Fatalf("Get(amount) on empty store = ok %v, err %v", ok, err)
	}
	if err := s.Set("amount", "250"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("amount", "300.5"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := s.Get("amount")
	if err != nil || !ok {
		t.Fatalf("Get(amount) = ok %v, err %v", ok, err)
	}
	if v != "300.5" {
		t.Fatalf("Get(amount) = %q, want %q", v, "300.5")
	}
}

func TestMemory(t *testing.T) {
	exerciseSettings(t, NewMemory())
}

func TestSQLiteSettingsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	exerciseSettings(t, db)
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = db.Close() }()
	if v, ok, _ := db.Get("amount"); !ok || v != "300.5" {
		t.Fatalf("Get after reopen = %q, %v", v, ok)
	}
}

func TestSQLiteRateCache(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, ok, err := db.LoadRates(); err != nil || ok {
		t.Fatalf("LoadRates on empty db = ok %v, err %v", ok, err)
	}

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	in := currency.NewTable("USD", at, map[string]string{"EUR": "0.9", "00": "1"})
	if err := db.SaveRates(in); err != nil {
		t.Fatalf("SaveRates: %v", err)
	}
	out, ok, err := db.LoadRates()
	if err != nil || !ok {
		t.Fatalf("LoadRates = ok %v, err %v", ok, err)
	}
	if out.Base() != "USD" || !out.FetchedAt().Equal(at) || out.Len() != 2 {
		t.Fatalf("LoadRates = base %q at %v len %d", out.Base(), out.FetchedAt(), out.Len())
	}
	if r, _ := out.Rate("EUR"); r != "0.9" {
		t.Fatalf("Rate(EUR) = %q, want 0.9", r)
	}

	// A second save replaces, not merges.
	if err := db.SaveRates(currency.NewTable("EUR", at, map[string]string{"GBP": "0.8"})); err != nil {
		t.Fatalf("SaveRates: %v", err)
	}
	out, _, _ = db.LoadRates()
	if _, ok := out.Rate("EUR"); ok || out.Len() != 1 {
		t.Fatalf("LoadRates after replace = %v", out.Rates())
	}
}

func TestYAMLFilePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	y, err := OpenYAML(path)
	if err != nil {
		t.Fatalf("OpenYAML: %v", err)
	}
	exerciseSettings(t, y)

	y2, err := OpenYAML(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok, _ := y2.Get("amount"); !ok || v != "300.5" {
		t.Fatalf("Get after reopen = %q, %v", v, ok)
	}
}

func TestYAMLFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("- not\n- a mapping\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenYAML(path); err == nil {
		t.Fatal("OpenYAML accepted a YAML list")
	}
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"", BackendSQLite, BackendYAML, BackendMemory} {
		s, err := Open(Options{Backend: backend, Path: DefaultPath(dir, backend)})
		if err != nil {
			t.Fatalf("Open(%q): %v", backend, err)
		}
		_ = s.Close()
	}

	if _, err := Open(Options{Backend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("Open(etcd) = %v, want ErrUnknownBackend", err)
	}
	if _, err := Open(Options{Backend: BackendRedis}); err == nil {
		t.Fatal("Open(redis) without address succeeded")
	}
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("RATECALC_TEST_REDIS")
	if addr == "" {
		t.Skip("RATECALC_TEST_REDIS not set")
	}
	r, err := OpenRedis(addr, "ratecalc-test:"+t.Name()+":")
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer func() { _ = r.Close() }()
	r.client.Del(context.Background(), r.prefix+"amount")
	defer r.client.Del(context.Background(), r.prefix+"amount")
	exerciseSettings(t, r)
}
