package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StockBoard/internal/model"
)

// StooqFetcher implements Fetcher using the stooq.com daily CSV endpoint.
// US tickers get the ".us" suffix stooq expects unless the symbol already
// carries a market suffix.
type StooqFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewStooqFetcher creates a new stooq fetcher with optional proxy support.
func NewStooqFetcher(baseURL, proxyURL string) *StooqFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://stooq.com"
	}
	return &StooqFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *StooqFetcher) Name() string { return "stooq" }

func stooqSymbol(symbol string) string {
	s := strings.ToLower(symbol)
	if strings.Contains(s, ".") || strings.HasPrefix(s, "^") {
		return s
	}
	return s + ".us"
}

func (f *StooqFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		f.BaseURL, url.QueryEscape(stooqSymbol(symbol)),
		start.Format("20060102"), end.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stooq fetch %s: %v: %w", symbol, err, ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq: status %d for %s: %w", resp.StatusCode, symbol, ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stooq read body: %v: %w", err, ErrUnavailable)
	}
	text := strings.TrimSpace(string(body))
	// Stooq answers unknown tickers and rate limits with plain-text sentinels
	// instead of a status code.
	if strings.EqualFold(text, "No data") {
		return nil, fmt.Errorf("stooq: %s: %w", symbol, ErrNotFound)
	}
	if strings.HasPrefix(text, "Exceeded") {
		return nil, fmt.Errorf("stooq: %s: rate limited: %w", symbol, ErrUnavailable)
	}

	r := csv.NewReader(strings.NewReader(text))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("stooq parse csv: %v: %w", err, ErrUnavailable)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("stooq: %s %s..%s: %w",
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"), ErrNoData)
	}

	bars := make([]model.OHLCV, 0, len(records)-1)
	for _, rec := range records[1:] { // skip Date,Open,High,Low,Close,Volume header
		if len(rec) < 5 {
			continue
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		o, err1 := strconv.ParseFloat(rec[1], 64)
		h, err2 := strconv.ParseFloat(rec[2], 64)
		l, err3 := strconv.ParseFloat(rec[3], 64)
		c, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		var v int64
		if len(rec) > 5 && rec[5] != "" {
			// some instruments report fractional volume
			if fv, err := strconv.ParseFloat(rec[5], 64); err == nil {
				v = int64(fv)
			}
		}
		bars = append(bars, model.OHLCV{Date: date, Open: o, High: h, Low: l, Close: c, Volume: v})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("stooq: %s: no parseable rows: %w", symbol, ErrNoData)
	}
	return bars, nil
}
