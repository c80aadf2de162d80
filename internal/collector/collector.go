package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockBoard/internal/cache"
	"StockBoard/internal/metrics"
	"StockBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	BasePrice float64
	Bars      map[string][]model.OHLCV
	Errs      map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.BasePrice, start, end), nil
}

func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%20-10)*0.002)
		bars = append(bars, model.OHLCV{
			Date:   time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

// Request describes one dashboard query.
type Request struct {
	Symbols     []string
	Start       time.Time
	End         time.Time
	ShortWindow int
	LongWindow  int
}

// Result is the outcome of a batch collection. Errors holds per-ticker
// failures keyed by symbol; tickers that succeeded appear in Reports.
type Result struct {
	Reports    []*model.Report
	Comparison *model.Comparison
	Errors     map[string]error
}

// Collector fetches price history through the cache and computes per-ticker
// reports. A failing ticker is isolated; the rest of the batch proceeds.
type Collector struct {
	Fetcher Fetcher
	Cache   cache.Cache
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, c cache.Cache) *Collector {
	return &Collector{Fetcher: fetcher, Cache: c}
}

// Collect runs the full pipeline for a batch of tickers. The returned error
// is only set for invalid windows; fetch failures land in Result.Errors.
func (c *Collector) Collect(ctx context.Context, req Request) (*Result, error) {
	if req.ShortWindow < 1 || req.LongWindow < 1 {
		return nil, fmt.Errorf("moving average windows must be >= 1, got short=%d long=%d",
			req.ShortWindow, req.LongWindow)
	}

	res := &Result{Errors: map[string]error{}}
	for _, symbol := range req.Symbols {
		bars, err := c.lookup(ctx, symbol, req.Start, req.End)
		if err != nil {
			log.Printf("[WARN] collect %s: %v", symbol, err)
			res.Errors[symbol] = err
			continue
		}
		series := &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}
		report, err := metrics.BuildReport(series, req.ShortWindow, req.LongWindow)
		if err != nil {
			return nil, err
		}
		res.Reports = append(res.Reports, report)
	}
	res.Comparison = metrics.Compare(res.Reports)
	return res, nil
}

// FetchSeries retrieves one ticker's bars, cache first.
func (c *Collector) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	bars, err := c.lookup(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

func (c *Collector) lookup(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if bars, ok, err := c.Cache.Get(symbol, start, end); err != nil {
		log.Printf("[WARN] cache get %s: %v", symbol, err)
	} else if ok {
		return bars, nil
	}

	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Put(symbol, start, end, bars); err != nil {
		log.Printf("[WARN] cache put %s: %v", symbol, err)
	}
	return bars, nil
}
