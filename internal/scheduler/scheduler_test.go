package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/logger"
)

type recordingIngestor struct {
	markets []string
}

func (r *recordingIngestor) Ingest(ctx context.Context, market string) (*domain.IngestResult, error) {
	r.markets = append(r.markets, market)
	return &domain.IngestResult{Market: market, SnapshotDate: "2026-08-30"}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "text"})
}

func TestScheduler_NextRun(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Failed to load zone: %v", err)
	}
	s := New(&recordingIngestor{}, []string{"IN"}, 0, 30, loc, testLogger())

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before today's slot",
			now:  time.Date(2026, 8, 30, 0, 10, 0, 0, loc),
			want: time.Date(2026, 8, 30, 0, 30, 0, 0, loc),
		},
		{
			name: "exactly at the slot rolls to tomorrow",
			now:  time.Date(2026, 8, 30, 0, 30, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 30, 0, 0, loc),
		},
		{
			name: "after today's slot",
			now:  time.Date(2026, 8, 30, 15, 0, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 30, 0, 0, loc),
		},
		{
			name: "utc input converted to local zone",
			now:  time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC), // 01:30 IST on the 30th
			want: time.Date(2026, 8, 31, 0, 30, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.nextRun(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScheduler_IngestAll(t *testing.T) {
	ing := &recordingIngestor{}
	s := New(ing, []string{"IN", "US"}, 0, 30, time.UTC, testLogger())

	s.ingestAll()

	if len(ing.markets) != 2 || ing.markets[0] != "IN" || ing.markets[1] != "US" {
		t.Errorf("Expected sequential ingest of [IN US], got %v", ing.markets)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(&recordingIngestor{}, []string{"IN"}, 0, 30, time.UTC, testLogger())

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler did not stop in time")
	}
}
