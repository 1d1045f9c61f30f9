// Package ratesource fetches exchange-rate tables and manages their refresh.
package ratesource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ratecalc/internal/currency"
)

const (
	defaultTimeout   = 10 * time.Second
	maxBodySize      = 4 << 20 // 4 MB
	defaultRatesPath = "$.data.rates"
	defaultBasePath  = "$.data.currency"
)

var (
	// ErrRateLimited indicates the provider refused the request for now.
	ErrRateLimited = errors.New("ratesource: rate limited")
	// ErrUnexpectedStatus wraps any other non-2xx response.
	ErrUnexpectedStatus = errors.New("ratesource: unexpected status")
	// ErrNoRates indicates the document held no usable rate mapping.
	ErrNoRates = errors.New("ratesource: no rates in response")
)

// Fetcher produces a rate table. *Client is the HTTP implementation.
type Fetcher interface {
	Fetch(ctx context.Context) (currency.Table, error)
}

// Options configures a Client. Zero fields take defaults.
type Options struct {
	URL        string
	RatesPath  string
	BasePath   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client fetches a JSON rate document over HTTP.
type Client struct {
	url       string
	ratesPath string
	basePath  string
	timeout   time.Duration
	http      *http.Client
	now       func() time.Time
}

// NewClient creates a client for opts.URL.
func NewClient(opts Options) *Client {
	c := &Client{
		url:       opts.URL,
		ratesPath: opts.RatesPath,
		basePath:  opts.BasePath,
		timeout:   opts.Timeout,
		http:      opts.HTTPClient,
		now:       time.Now,
	}
	if c.ratesPath == "" {
		c.ratesPath = defaultRatesPath
	}
	if c.basePath == "" {
		c.basePath = defaultBasePath
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// URL is the endpoint this client reads.
func (c *Client) URL() string { return c.url }

// Fetch downloads and decodes one rate table.
func (c *Client) Fetch(ctx context.Context) (currency.Table, error) {
	body, err := c.get(ctx)
	if err != nil {
		return currency.Table{}, err
	}
	return c.decode(body)
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("ratesource: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/ratecalc/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ratesource: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("ratesource: reading response: %w", err)
	}
	return body, nil
}

func (c *Client) decode(body []byte) (currency.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return currency.Table{}, fmt.Errorf("ratesource: parsing response: %w", err)
	}

	raw, err := first(jsonpath.Get(c.ratesPath, doc))
	if err != nil {
		return currency.Table{}, fmt.Errorf("%w: %s: %v", ErrNoRates, c.ratesPath, err)
	}
	entries, ok := raw.(map[string]any)
	if !ok {
		return currency.Table{}, fmt.Errorf("%w: %s is %T, not an object", ErrNoRates, c.ratesPath, raw)
	}

	rates := make(map[string]string, len(entries))
	dropped := 0
	for code, v := range entries {
		lit, ok := literal(v)
		if !ok {
			dropped++
			continue
		}
		rates[code] = lit
	}
	if dropped > 0 {
		log.Printf("ratecalc: dropped %d non-numeric rate entries from %s", dropped, c.url)
	}

	var base string
	if b, err := first(jsonpath.Get(c.basePath, doc)); err == nil {
		base, _ = b.(string)
	}

	return currency.NewTable(base, c.now(), rates), nil
}

// first unwraps single-element results; jsonpath returns a list for
// wildcard and filter paths.
func first(v any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, errors.New("empty result")
		}
		return list[0], nil
	}
	return v, nil
}

// literal normalizes a rate value to a plain decimal string the evaluator
// can parse. Anything that is not a number is rejected.
func literal(v any) (string, bool) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case string:
		d, err = decimal.NewFromString(x)
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case float64:
		d = decimal.NewFromFloat(x)
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return d.String(), true
}
