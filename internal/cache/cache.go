package cache

import (
	"time"

	"StockBoard/internal/model"
)

// Cache is a read-through store of fetched daily bars. A Get only hits when
// the cache holds a fresh fetch covering the whole requested range.
type Cache interface {
	Get(symbol string, start, end time.Time) ([]model.OHLCV, bool, error)
	Put(symbol string, start, end time.Time, bars []model.OHLCV) error
	Close() error
}

// NoopCache is used when no cache path is configured; every lookup misses.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Get(_ string, _, _ time.Time) ([]model.OHLCV, bool, error) {
	return nil, false, nil
}
func (n *NoopCache) Put(_ string, _, _ time.Time, _ []model.OHLCV) error { return nil }
func (n *NoopCache) Close() error                                        { return nil }
