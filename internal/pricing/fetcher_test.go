package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func quoteResponse(prices map[string]float64) map[string]oracleQuote {
	out := make(map[string]oracleQuote, len(prices))
	for sym, p := range prices {
		out[sym] = oracleQuote{Price: p}
	}
	return out
}

func TestService_GetRates_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got == "" {
			t.Error("expected symbols query parameter")
		}
		json.NewEncoder(w).Encode(quoteResponse(map[string]float64{
			"SOL": 182.5, "USDC": 1.0, "USDT": 0.999, "BONK": 0.00003,
			"JUP": 0.9, "RAY": 3.1, "mSOL": 199.0,
		}))
	}))
	defer server.Close()

	svc := NewService(ServiceOptions{Endpoint: server.URL})
	rates := svc.GetRates(context.Background())

	if rates["SOL"] != 182.5 {
		t.Errorf("expected SOL=182.5, got %v", rates["SOL"])
	}
	for _, sym := range Basket() {
		if _, ok := rates[sym]; !ok {
			t.Errorf("expected rate for %s", sym)
		}
	}
}

func TestService_GetRates_FreshCacheSkipsOracle(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(quoteResponse(map[string]float64{"SOL": 150}))
	}))
	defer server.Close()

	svc := NewService(ServiceOptions{Endpoint: server.URL})

	svc.GetRates(context.Background())
	svc.GetRates(context.Background())

	if calls.Load() != 1 {
		t.Errorf("expected 1 oracle call, got %d", calls.Load())
	}
}

func TestService_GetRates_RetriesOn429(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(quoteResponse(map[string]float64{"SOL": 175}))
	}))
	defer server.Close()

	svc := NewService(ServiceOptions{
		Endpoint:   server.URL,
		MaxRetries: 3,
		RetryBase:  5 * time.Millisecond,
		RetryMax:   10 * time.Millisecond,
	})

	rates := svc.GetRates(context.Background())

	if rates["SOL"] != 175 {
		t.Errorf("expected SOL=175 after retries, got %v", rates["SOL"])
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 oracle calls, got %d", calls.Load())
	}
}

func TestService_GetRates_ExhaustionFallsBackComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewService(ServiceOptions{
		Endpoint:   server.URL,
		MaxRetries: 3,
		RetryBase:  5 * time.Millisecond,
		RetryMax:   10 * time.Millisecond,
	})

	rates := svc.GetRates(context.Background())

	// No exception surface: the full static table comes back, no keys missing.
	for sym, want := range FallbackRates {
		got, ok := rates[sym]
		if !ok {
			t.Errorf("fallback table missing %s", sym)
			continue
		}
		if got != want {
			t.Errorf("expected fallback %s=%v, got %v", sym, want, got)
		}
	}
}

func TestService_GetRates_MalformedJSONFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	svc := NewService(ServiceOptions{
		Endpoint:   server.URL,
		MaxRetries: 1,
		RetryBase:  5 * time.Millisecond,
		RetryMax:   10 * time.Millisecond,
	})

	rates := svc.GetRates(context.Background())

	if len(rates) != len(FallbackRates) {
		t.Errorf("expected complete fallback table, got %d entries", len(rates))
	}
}

func TestService_GetRates_OutOfRangeReplacedPerAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// SOL is plausible, USDC is absurd, USDT is missing entirely.
		w.Write([]byte(`{"SOL":{"price":180},"USDC":{"price":1e300},"BONK":{"price":0.00002},"JUP":{"price":0.8},"RAY":{"price":2.5},"mSOL":{"price":195}}`))
	}))
	defer server.Close()

	svc := NewService(ServiceOptions{Endpoint: server.URL})
	rates := svc.GetRates(context.Background())

	if rates["SOL"] != 180 {
		t.Errorf("expected oracle SOL=180, got %v", rates["SOL"])
	}
	if rates["USDC"] != FallbackRates["USDC"] {
		t.Errorf("expected out-of-range USDC replaced with fallback, got %v", rates["USDC"])
	}
	if rates["USDT"] != FallbackRates["USDT"] {
		t.Errorf("expected missing USDT replaced with fallback, got %v", rates["USDT"])
	}
}

func TestService_GetRates_NegativePriceRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"SOL":{"price":-5}}`))
	}))
	defer server.Close()

	svc := NewService(ServiceOptions{Endpoint: server.URL})
	rates := svc.GetRates(context.Background())

	if rates["SOL"] != FallbackRates["SOL"] {
		t.Errorf("expected negative SOL price replaced with fallback, got %v", rates["SOL"])
	}
}
