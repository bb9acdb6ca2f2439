// Package scheduler triggers one ingest cycle per configured market at a
// fixed local time each day.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/logger"
)

// Ingestor is the single entry point the scheduler drives.
type Ingestor interface {
	Ingest(ctx context.Context, market string) (*domain.IngestResult, error)
}

type Scheduler struct {
	Ingestor Ingestor
	Logger   *logger.Logger

	markets []string
	hour    int
	minute  int
	loc     *time.Location

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a daily scheduler firing at hour:minute in loc for each market.
func New(ing Ingestor, markets []string, hour, minute int, loc *time.Location, log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		Ingestor: ing,
		Logger:   log.WithComponent("scheduler"),
		markets:  markets,
		hour:     hour,
		minute:   minute,
		loc:      loc,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.Logger.Info("Starting scheduler", "markets", s.markets, "hour", s.hour, "minute", s.minute)
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) Stop() {
	s.Logger.Info("Stopping scheduler...")
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		wait := time.Until(s.nextRun(time.Now()))
		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.ingestAll()
	}
}

// ingestAll runs every market sequentially. Failed markets are logged and
// skipped; the next tick retries them.
func (s *Scheduler) ingestAll() {
	for _, market := range s.markets {
		log := s.Logger.WithMarket(market)
		result, err := s.Ingestor.Ingest(s.ctx, market)
		if err != nil {
			log.Error("Scheduled ingest failed", "error", err)
			continue
		}
		log.Info("Scheduled ingest completed",
			"snapshot_date", result.SnapshotDate,
			"snapshot_rows", result.SnapshotRows,
		)
	}
}

// nextRun returns the next hour:minute occurrence strictly after now, in the
// configured zone.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
