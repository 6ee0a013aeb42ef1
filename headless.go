package main

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/display/presenter"
	"gitlab.com/tinyland/lab/pulsemon/internal/format"
)

// runHeadless drains the presenter every interval until ctx is cancelled.
// Samples are logged by the sampler and alerts by the presenter, so this
// loop only ticks and reports totals on the way out.
func runHeadless(ctx context.Context, pres *presenter.Presenter, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()

	logger.Info("pulsemon: running headless", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			// Pick up anything published during the last interval.
			pres.Tick(context.WithoutCancel(ctx), time.Now())
			st := pres.Stats()
			logger.Info("pulsemon: shutting down",
				"uptime", format.FormatDuration(time.Since(start)),
				"ticks", st.Ticks,
				"samples", st.Samples,
				"alerts", st.Alerts,
				"sink_failures", st.SinkFailures,
			)
			return nil
		case now := <-ticker.C:
			res := pres.Tick(ctx, now)
			logger.Debug("pulsemon: tick",
				"samples", len(res.Samples),
				"alerts", len(res.Alerts),
				"overall", pres.Overall().String(),
			)
		}
	}
}

// logCollectorHealth reports each sampling loop's final counters.
func logCollectorHealth(logger *slog.Logger, statuses []collectors.CollectorStatus) {
	for _, st := range statuses {
		attrs := []any{
			"collector", st.Name,
			"healthy", st.Healthy,
			"runs", st.RunCount,
			"samples", st.SampleCount,
			"errors", st.ErrorCount,
		}
		if st.LastError != nil {
			attrs = append(attrs, "last_error", st.LastError.Error())
		}
		logger.Info("pulsemon: collector summary", attrs...)
	}
}
