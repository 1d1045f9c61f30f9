package ratesource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const coinbaseBody = `{
  "data": {
    "currency": "USD",
    "rates": {
      "00": "1.0",
      "EUR": "0.9",
      "BTC": "0.0000161",
      "JPY": 151.25,
      "BAD": "n/a",
      "NIL": null
    }
  }
}`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecodesRates(t *testing.T) {
	srv := serve(t, http.StatusOK, coinbaseBody)
	c := NewClient(Options{URL: srv.URL})
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return at }

	tbl, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tbl.Base() != "USD" {
		t.Fatalf("Base = %q, want USD", tbl.Base())
	}
	if !tbl.FetchedAt().Equal(at) {
		t.Fatalf("FetchedAt = %v, want %v", tbl.FetchedAt(), at)
	}
	if tbl.Len() != 4 {
		t.Fatalf("Len = %d, want 4 (got %v)", tbl.Len(), tbl.Rates())
	}
	for code, want := range map[string]string{"EUR": "0.9", "JPY": "151.25", "BTC": "0.0000161", "00": "1"} {
		if got, _ := tbl.Rate(code); got != want {
			t.Fatalf("Rate(%s) = %q, want %q", code, got, want)
		}
	}
	if _, ok := tbl.Rate("BAD"); ok {
		t.Fatal("non-numeric entry kept")
	}
}

func TestFetchCustomPaths(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"base":"EUR","quotes":{"USD":1.1}}`)
	c := NewClient(Options{URL: srv.URL, RatesPath: "$.quotes", BasePath: "$.base"})
	tbl, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tbl.Base() != "EUR" {
		t.Fatalf("Base = %q, want EUR", tbl.Base())
	}
	if r, _ := tbl.Rate("USD"); r != "1.1" {
		t.Fatalf("Rate(USD) = %q, want 1.1", r)
	}
}

func TestFetchErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, "", ErrRateLimited},
		{"server error", http.StatusBadGateway, "", ErrUnexpectedStatus},
		{"no rates", http.StatusOK, `{"data":{}}`, ErrNoRates},
		{"rates not object", http.StatusOK, `{"data":{"rates":[1,2]}}`, ErrNoRates},
	}
	for _, tc := range cases {
		srv := serve(t, tc.status, tc.body)
		_, err := NewClient(Options{URL: srv.URL}).Fetch(context.Background())
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: Fetch error = %v, want %v", tc.name, err, tc.want)
		}
	}

	srv := serve(t, http.StatusOK, "not json")
	if _, err := NewClient(Options{URL: srv.URL}).Fetch(context.Background()); err == nil {
		t.Fatal("Fetch accepted a non-JSON body")
	}
}

func TestFetchHonorsCancel(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewClient(Options{URL: srv.URL}).Fetch(ctx); err == nil {
		t.Fatal("Fetch with cancelled context succeeded")
	}
}
