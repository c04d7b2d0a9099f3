package core

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/codeimport/internal/config"
)

func TestHistoryDefaults(t *testing.T) {
	got := historyDefaults(config.HistoryConfig{})
	if got.RetentionDays != DefaultHistoryRetentionDays ||
		got.BatchSize != DefaultHistoryBatchSize ||
		got.CheckInterval != DefaultHistoryInterval {
		t.Errorf("historyDefaults(zero) = %+v", got)
	}

	custom := config.HistoryConfig{RetentionDays: 30, BatchSize: 10, CheckInterval: 1}
	if got := historyDefaults(custom); got != custom {
		t.Errorf("historyDefaults(custom) = %+v, want %+v", got, custom)
	}
}

func TestPurgeInBatches(t *testing.T) {
	cfg := config.HistoryConfig{BatchSize: 10}

	tests := []struct {
		name      string
		batches   []int64
		failAt    int
		wantTotal int64
		wantCalls int
		wantErr   bool
	}{
		{"nothing to purge", []int64{0}, -1, 0, 1, false},
		{"stops on short batch", []int64{10, 10, 3}, -1, 23, 3, false},
		{"error keeps partial total", []int64{10, 10}, 1, 10, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			total, err := purgeInBatches(context.Background(), cfg, func(context.Context) (int64, error) {
				i := calls
				calls++
				if i == tt.failAt {
					return 0, errors.New("connection reset")
				}
				return tt.batches[i], nil
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestPurgeInBatches_StopsAtBatchCap(t *testing.T) {
	cfg := config.HistoryConfig{BatchSize: 1}
	calls := 0

	total, err := purgeInBatches(context.Background(), cfg, func(context.Context) (int64, error) {
		calls++
		return 1, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != maxPurgeBatches || total != maxPurgeBatches {
		t.Errorf("calls = %d, total = %d, want %d each", calls, total, maxPurgeBatches)
	}
}

func TestPurgeInBatches_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := purgeInBatches(ctx, config.HistoryConfig{BatchSize: 1}, func(context.Context) (int64, error) {
		t.Fatal("purge called after cancellation")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
