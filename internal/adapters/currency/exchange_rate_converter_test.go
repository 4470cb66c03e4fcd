package currency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// memoryRateCache is a test double for the rate cache port.
type memoryRateCache struct {
	mu    sync.Mutex
	rates map[string]float64
}

func (c *memoryRateCache) Get(ctx context.Context, source, target string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rates[source+"|"+target]
	return r, ok, nil
}

func (c *memoryRateCache) Put(ctx context.Context, source, target string, rate float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rates == nil {
		c.rates = make(map[string]float64)
	}
	c.rates[source+"|"+target] = rate
	return nil
}

func TestConvertUsesServiceAndCachesRate(t *testing.T) {
	var serviceCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceCalls++
		amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
		if err != nil {
			t.Errorf("bad amount: %v", err)
		}
		if r.URL.Query().Get("source") != "USD" || r.URL.Query().Get("target") != "VND" {
			t.Errorf("unexpected pair %q -> %q", r.URL.Query().Get("source"), r.URL.Query().Get("target"))
		}
		json.NewEncoder(w).Encode(map[string]float64{"amount": amount * 25000})
	}))
	defer srv.Close()

	cache := &memoryRateCache{}
	conv, err := NewExchangeRateConverter(srv.URL, cache)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := conv.Convert(context.Background(), 10, "USD", "VND")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 250000 {
		t.Fatalf("got %v, want 250000", got)
	}

	// Second conversion for the same pair must hit the cache only.
	got, err = conv.Convert(context.Background(), 4, "USD", "VND")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100000 {
		t.Fatalf("got %v, want 100000", got)
	}
	if serviceCalls != 1 {
		t.Fatalf("service called %d times, want 1", serviceCalls)
	}
}

func TestConvertIdentityAndZeroSkipService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("service should not be called")
	}))
	defer srv.Close()

	conv, _ := NewExchangeRateConverter(srv.URL, nil)

	if got, err := conv.Convert(context.Background(), 42, "USD", "USD"); err != nil || got != 42 {
		t.Fatalf("identity conversion: got %v, %v", got, err)
	}
	if got, err := conv.Convert(context.Background(), 0, "USD", "VND"); err != nil || got != 0 {
		t.Fatalf("zero conversion: got %v, %v", got, err)
	}
}

func TestConvertServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown currency"})
	}))
	defer srv.Close()

	conv, _ := NewExchangeRateConverter(srv.URL, nil)

	if _, err := conv.Convert(context.Background(), 10, "USD", "XXX"); err == nil {
		t.Fatalf("expected error from service failure")
	}
}
