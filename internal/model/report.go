package model

import "time"

// Report holds one ticker's price series plus all derived columns.
// Derived slices are aligned index-for-index with Series.Bars; entries
// that are undefined (warm-up of a moving average, return at t=0) are NaN.
type Report struct {
	Series           *PriceSeries
	ShortWindow      int
	LongWindow       int
	ShortMA          []float64
	LongMA           []float64
	DailyReturn      []float64
	CumulativeReturn []float64
	Summary          Summary
}

// Summary mirrors the dashboard's metric cards for one ticker.
// Volatility fields are NaN when the series is too short to compute them.
type Summary struct {
	CurrentPrice  float64
	StartPrice    float64
	TotalReturn   float64
	Volatility    float64
	AnnualizedVol float64
}

// Comparison aligns cumulative returns of several tickers on the trading
// dates they all share, for the side-by-side portfolio chart.
type Comparison struct {
	Dates   []time.Time
	Symbols []string
	Returns map[string][]float64
}
