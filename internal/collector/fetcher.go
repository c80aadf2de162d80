package collector

import (
	"context"
	"errors"
	"time"

	"StockBoard/internal/model"
)

// Fetch error kinds. Callers classify with errors.Is; any of these for one
// ticker must not abort a batch.
var (
	// ErrNotFound means the data source does not know the ticker.
	ErrNotFound = errors.New("ticker not found")
	// ErrNoData means the ticker exists but has no bars in the range.
	ErrNoData = errors.New("no data in range")
	// ErrUnavailable covers network failures, timeouts and upstream errors.
	ErrUnavailable = errors.New("data source unavailable")
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
