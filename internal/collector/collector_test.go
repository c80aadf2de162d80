package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockBoard/internal/cache"
	"StockBoard/internal/model"
)

func testRequest(symbols ...string) Request {
	return Request{
		Symbols:     symbols,
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ShortWindow: 5,
		LongWindow:  10,
	}
}

func TestCollect_BatchSucceeds(t *testing.T) {
	col := NewCollector(&MockFetcher{BasePrice: 100}, cache.NewNoopCache())

	res, err := col.Collect(context.Background(), testRequest("AAPL", "MSFT"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(res.Reports))
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no per-ticker errors, got %v", res.Errors)
	}
	if len(res.Comparison.Dates) == 0 {
		t.Error("expected a populated comparison")
	}
}

func TestCollect_IsolatesTickerFailure(t *testing.T) {
	// ZZZZ fails with NotFound while AAPL succeeds; the batch must carry on.
	fetcher := &MockFetcher{
		BasePrice: 100,
		Errs:      map[string]error{"ZZZZ": ErrNotFound},
	}
	col := NewCollector(fetcher, cache.NewNoopCache())

	res, err := col.Collect(context.Background(), testRequest("AAPL", "ZZZZ"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Reports) != 1 || res.Reports[0].Series.Symbol != "AAPL" {
		t.Fatalf("expected AAPL report only, got %d reports", len(res.Reports))
	}
	if !errors.Is(res.Errors["ZZZZ"], ErrNotFound) {
		t.Errorf("expected NotFound for ZZZZ, got %v", res.Errors["ZZZZ"])
	}
	if len(res.Reports[0].DailyReturn) == 0 {
		t.Error("expected AAPL metrics to be fully computed")
	}
}

func TestCollect_InvalidWindow(t *testing.T) {
	col := NewCollector(&MockFetcher{BasePrice: 100}, cache.NewNoopCache())
	req := testRequest("AAPL")
	req.ShortWindow = 0
	if _, err := col.Collect(context.Background(), req); err == nil {
		t.Fatal("expected error for window 0")
	}
}

// recordingCache counts hits and stores the last Put for inspection.
type recordingCache struct {
	stored map[string][]model.OHLCV
	gets   int
	puts   int
}

func (r *recordingCache) Get(symbol string, _, _ time.Time) ([]model.OHLCV, bool, error) {
	r.gets++
	bars, ok := r.stored[symbol]
	return bars, ok, nil
}

func (r *recordingCache) Put(symbol string, _, _ time.Time, bars []model.OHLCV) error {
	r.puts++
	if r.stored == nil {
		r.stored = map[string][]model.OHLCV{}
	}
	r.stored[symbol] = bars
	return nil
}

func (r *recordingCache) Close() error { return nil }

func TestCollect_ReadThroughCache(t *testing.T) {
	rc := &recordingCache{}
	col := NewCollector(&MockFetcher{BasePrice: 100}, rc)

	if _, err := col.Collect(context.Background(), testRequest("AAPL")); err != nil {
		t.Fatalf("first collect: %v", err)
	}
	if rc.puts != 1 {
		t.Fatalf("expected 1 cache put after a miss, got %d", rc.puts)
	}

	// Second pass hits the cache; the fetcher error proves it wasn't called.
	col.Fetcher = &MockFetcher{Errs: map[string]error{"AAPL": ErrUnavailable}}
	res, err := col.Collect(context.Background(), testRequest("AAPL"))
	if err != nil {
		t.Fatalf("second collect: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected cache hit to bypass fetcher, got errors %v", res.Errors)
	}
	if rc.puts != 1 {
		t.Errorf("cache hit should not Put again, got %d puts", rc.puts)
	}
}
