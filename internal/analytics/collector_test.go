package analytics

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"janseva/internal/submission"
)

type staticSource struct {
	stats submission.Stats
}

func (s staticSource) Stats(context.Context) submission.Stats { return s.stats }

func TestRefreshSetsGauges(t *testing.T) {
	source := staticSource{stats: submission.Stats{
		Total:     5,
		Active:    3,
		Completed: 1,
		ByStatus: map[submission.Status]int{
			submission.StatusSubmitted: 2,
			submission.StatusCompleted: 1,
			submission.StatusRejected:  2,
		},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := New(source, time.Minute, logger, prometheus.NewRegistry())

	collector.Refresh(context.Background())

	assert.Equal(t, 5.0, testutil.ToFloat64(collector.total))
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.active))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.completed))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.byStatus.WithLabelValues("submitted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.byStatus.WithLabelValues("rejected")))
}

func TestRunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := New(staticSource{}, time.Millisecond, logger, prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- collector.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}
