package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nmtamm/IntelligentTourPlanner/internal/platform/obs"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// ExchangeRateConverter implements CurrencyConverter against the currency
// conversion service's HTTP API, with an optional rate cache in front so a
// bulk trip conversion issues at most one remote call per currency pair.
//
// The converter is safe for concurrent use.
type ExchangeRateConverter struct {
	session *http.Client
	baseURL string
	cache   ports.RateCache
}

func NewExchangeRateConverter(baseURL string, cache ports.RateCache) (*ExchangeRateConverter, error) {
	if baseURL == "" {
		return nil, errors.New("exchange rate service base URL is empty")
	}

	return &ExchangeRateConverter{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		cache:   cache,
	}, nil
}

type convertResponse struct {
	Amount float64 `json:"amount"`
	Error  string  `json:"error"`
}

// Convert returns the amount expressed in the target currency.
func (c *ExchangeRateConverter) Convert(ctx context.Context, amount float64, source, target string) (_ float64, err error) {
	defer obs.Time(ctx, "currency.Convert")(&err)

	if source == target || amount == 0 {
		return amount, nil
	}

	if c.cache != nil {
		rate, ok, err := c.cache.Get(ctx, source, target)
		if err != nil {
			log.Printf("rate cache read failed: %v", err)
		} else if ok {
			return amount * rate, nil
		}
	}

	out, err := c.fetch(ctx, amount, source, target)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		if putErr := c.cache.Put(ctx, source, target, out/amount); putErr != nil {
			log.Printf("rate cache write failed: %v", putErr)
		}
	}

	return out, nil
}

// fetch asks the remote service, retrying transient failures with backoff.
func (c *ExchangeRateConverter) fetch(ctx context.Context, amount float64, source, target string) (float64, error) {
	q := url.Values{}
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	q.Set("source", source)
	q.Set("target", target)
	endpoint := c.baseURL + "/api/exchangerate?" + q.Encode()

	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		out, retryable, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !retryable || attempt == maxAttempts {
			return 0, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return 0, lastErr
}

func (c *ExchangeRateConverter) fetchOnce(ctx context.Context, endpoint string) (float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return 0, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == 429 {
		b, _ := io.ReadAll(resp.Body)
		return 0, true, fmt.Errorf("exchange rate service status %d: %s", resp.StatusCode, string(b))
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, false, fmt.Errorf("exchange rate service status %d: %s", resp.StatusCode, string(b))
	}

	var decoded convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, false, fmt.Errorf("decode exchange rate response: %w", err)
	}
	if decoded.Error != "" {
		return 0, false, fmt.Errorf("exchange rate service: %s", decoded.Error)
	}

	return decoded.Amount, false, nil
}
