package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockBoard/internal/collector"

	"github.com/robfig/cron/v3"
)

// Scheduler warms the bar cache for the configured watchlist on a cron
// expression, so dashboard loads for those tickers hit the cache.
type Scheduler struct {
	Cron         *cron.Cron
	Collector    *collector.Collector
	Watchlist    []string
	LookbackDays int
	Ctx          context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, watchlist []string, lookbackDays int) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Collector:    col,
		Watchlist:    watchlist,
		LookbackDays: lookbackDays,
		Ctx:          ctx,
	}
}

// Register adds the refresh task on the given cron expression.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if len(s.Watchlist) == 0 {
		return
	}
	log.Printf("[INFO] refreshing watchlist (%d tickers)", len(s.Watchlist))
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -s.LookbackDays)

	for _, symbol := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		if _, err := s.Collector.FetchSeries(s.Ctx, symbol, start, end); err != nil {
			log.Printf("[WARN] refresh %s: %v", symbol, err)
			continue
		}
		log.Printf("[INFO] refreshed %s", symbol)
	}
}
