package cmd

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/currency"
	"github.com/theirongolddev/ratecalc/internal/graph"
	"github.com/theirongolddev/ratecalc/internal/store"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"serve", "--addr", ":9000"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestSelectCodes(t *testing.T) {
	table := currency.NewTable("USD", time.Now(), map[string]string{"EUR": "0.9", "JPY": "150"})
	if got := selectCodes(table, nil); len(got) != 2 {
		t.Fatalf("selectCodes(nil) = %v, want both codes", got)
	}
	flagQuiet = true
	t.Cleanup(func() { flagQuiet = false })
	got := selectCodes(table, []string{"eur", "XXX"})
	if !reflect.DeepEqual(got, []string{"EUR"}) {
		t.Fatalf("selectCodes = %v, want [EUR]", got)
	}
}

func TestMentionsCurrency(t *testing.T) {
	if mentionsCurrency("12 * (3 + 4)") {
		t.Fatal("plain arithmetic should not need rates")
	}
	if !mentionsCurrency("100 * EUR") {
		t.Fatal("a currency code needs rates")
	}
}

func TestOpenSessionMemoryOffline(t *testing.T) {
	t.Setenv("RATECALC_STORE", "")
	cfg := config.DefaultConfig()
	cfg.Store.Backend = store.BackendMemory
	cfg.Rates.Offline = true

	s, err := openSession(cfg)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.Close()

	if s.refresher != nil {
		t.Fatal("offline session has a refresher")
	}
	if s.cache == nil {
		t.Fatal("memory store should cache rates")
	}
	if got := s.graph.Values().Amount; got != 100 {
		t.Fatalf("Amount = %v, want default 100", got)
	}
}

func TestOpenSessionCorruptSetting(t *testing.T) {
	t.Setenv("RATECALC_STORE", "")
	path := filepath.Join(t.TempDir(), "settings.yaml")
	y, err := store.OpenYAML(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := y.Set(graph.KeyAmount, "lots"); err != nil {
		t.Fatal(err)
	}
	_ = y.Close()

	cfg := config.DefaultConfig()
	cfg.Store.Backend = store.BackendYAML
	cfg.Store.Path = path
	cfg.Rates.Offline = true

	_, err = openSession(cfg)
	if !errors.Is(err, graph.ErrCorruptSetting) {
		t.Fatalf("openSession err = %v, want ErrCorruptSetting", err)
	}
}
