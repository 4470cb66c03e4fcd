package currency

import (
	"context"
	"fmt"
	"sync"
)

// MockConverter converts using a fixed rate table keyed "SOURCE|TARGET".
// Pairs absent from the table fail, which doubles as the failure fixture.
// Safe for concurrent use.
type MockConverter struct {
	Rates map[string]float64

	mu    sync.Mutex
	calls int
}

func NewMockConverter(rates map[string]float64) *MockConverter {
	return &MockConverter{Rates: rates}
}

func (m *MockConverter) Convert(ctx context.Context, amount float64, source, target string) (float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if source == target {
		return amount, nil
	}
	rate, ok := m.Rates[source+"|"+target]
	if !ok {
		return 0, fmt.Errorf("no rate for %q -> %q", source, target)
	}
	return amount * rate, nil
}

func (m *MockConverter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
