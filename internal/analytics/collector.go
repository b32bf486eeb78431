// Package analytics periodically aggregates over the submission store and
// exports the result as prometheus gauges. It is a read-only consumer; the
// store stays the single writer.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"janseva/internal/submission"
)

// StatsSource is the read surface the collector needs from the store.
type StatsSource interface {
	Stats(ctx context.Context) submission.Stats
}

type Collector struct {
	source   StatsSource
	interval time.Duration
	logger   *slog.Logger

	total     prometheus.Gauge
	active    prometheus.Gauge
	completed prometheus.Gauge
	byStatus  *prometheus.GaugeVec
}

func New(source StatsSource, interval time.Duration, logger *slog.Logger, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		source:   source,
		interval: interval,
		logger:   logger,
		total: factory.NewGauge(prometheus.GaugeOpts{
			Name: "janseva_submissions_total",
			Help: "Current number of submissions in the store",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "janseva_submissions_active",
			Help: "Current number of submissions not yet final",
		}),
		completed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "janseva_submissions_completed",
			Help: "Current number of submissions in completed status",
		}),
		byStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "janseva_submissions_by_status",
			Help: "Current number of submissions per status",
		}, []string{"status"}),
	}
}

// Run refreshes the gauges on the configured interval until ctx is done. The
// first refresh happens immediately so dashboards are warm at startup.
func (c *Collector) Run(ctx context.Context) error {
	c.Refresh(ctx)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Refresh performs one aggregation pass.
func (c *Collector) Refresh(ctx context.Context) {
	stats := c.source.Stats(ctx)
	c.total.Set(float64(stats.Total))
	c.active.Set(float64(stats.Active))
	c.completed.Set(float64(stats.Completed))
	for status, count := range stats.ByStatus {
		c.byStatus.WithLabelValues(string(status)).Set(float64(count))
	}
	c.logger.DebugContext(ctx, "analytics refreshed", "total", stats.Total, "active", stats.Active)
}
