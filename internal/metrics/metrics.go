package metrics

import (
	"errors"
	"fmt"
	"math"

	"StockBoard/internal/model"
)

// TradingDaysPerYear is the conventional annualization factor for daily returns.
const TradingDaysPerYear = 252

// ErrInsufficientData indicates a series too short for the requested metric.
var ErrInsufficientData = errors.New("insufficient data")

// MovingAverage computes the rolling arithmetic mean of values over the given
// window. The result is aligned with the input: the first window-1 entries are
// NaN. A window longer than the series yields an all-NaN result (insufficient
// data, not an error). Window must be >= 1.
func MovingAverage(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("moving average window must be >= 1, got %d", window)
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// DailyReturns computes v[t]/v[t-1] - 1 for each t. The first entry is NaN.
func DailyReturns(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = v/values[i-1] - 1
	}
	return out
}

// CumulativeReturns computes v[t]/v[0] - 1, base-indexed at the first
// observation of the slice. The first entry is always 0.
func CumulativeReturns(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	base := values[0]
	for i, v := range values {
		out[i] = v/base - 1
	}
	return out
}

// Volatility computes the sample standard deviation of the defined entries of
// a daily return series (NaN entries are skipped). When annualize is set the
// result is scaled by sqrt(252). Returns ErrInsufficientData with fewer than
// two defined returns.
func Volatility(returns []float64, annualize bool) (float64, error) {
	var sum float64
	var n int
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		sum += r
		n++
	}
	if n < 2 {
		return 0, fmt.Errorf("volatility needs at least 2 returns, have %d: %w", n, ErrInsufficientData)
	}
	mean := sum / float64(n)
	var sq float64
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		d := r - mean
		sq += d * d
	}
	vol := math.Sqrt(sq / float64(n-1))
	if annualize {
		vol *= math.Sqrt(TradingDaysPerYear)
	}
	return vol, nil
}

// BuildReport derives all dashboard columns and the summary for one series.
// The only error it can return is an invalid window; too little data produces
// NaN columns instead.
func BuildReport(series *model.PriceSeries, shortWindow, longWindow int) (*model.Report, error) {
	closes := series.Closes()

	shortMA, err := MovingAverage(closes, shortWindow)
	if err != nil {
		return nil, fmt.Errorf("short ma: %w", err)
	}
	longMA, err := MovingAverage(closes, longWindow)
	if err != nil {
		return nil, fmt.Errorf("long ma: %w", err)
	}
	daily := DailyReturns(closes)
	cumulative := CumulativeReturns(closes)

	summary := model.Summary{
		CurrentPrice:  math.NaN(),
		StartPrice:    math.NaN(),
		TotalReturn:   math.NaN(),
		Volatility:    math.NaN(),
		AnnualizedVol: math.NaN(),
	}
	if len(closes) > 0 {
		summary.CurrentPrice = closes[len(closes)-1]
		summary.StartPrice = closes[0]
		summary.TotalReturn = cumulative[len(cumulative)-1]
	}
	if vol, err := Volatility(daily, false); err == nil {
		summary.Volatility = vol
		summary.AnnualizedVol = vol * math.Sqrt(TradingDaysPerYear)
	}

	return &model.Report{
		Series:           series,
		ShortWindow:      shortWindow,
		LongWindow:       longWindow,
		ShortMA:          shortMA,
		LongMA:           longMA,
		DailyReturn:      daily,
		CumulativeReturn: cumulative,
		Summary:          summary,
	}, nil
}
