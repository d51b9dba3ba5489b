package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"tabetl/internal/config"
	"tabetl/internal/metrics"
	"tabetl/internal/metrics/datadog"
	"tabetl/internal/metrics/prompush"
)

// SetupMetrics installs the backend selected by the metrics section and
// returns a function that flushes it at shutdown. An empty or "none"
// backend leaves metrics disabled. job is used when metrics.job is unset.
func SetupMetrics(cfg config.Metrics, job string, log *slog.Logger) (flush func(), err error) {
	if cfg.Job != "" {
		job = cfg.Job
	}

	var b metrics.Backend
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}, nil
	case "pushgateway":
		b, err = prompush.NewBackend(job, cfg.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			Namespace:  "tabetl.",
			GlobalTags: []string{"job:" + job},
		})
	default:
		log.Warn("unknown metrics backend; metrics disabled", "backend", cfg.Backend)
		return func() {}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	metrics.SetBackend(b)
	log.Info("metrics enabled", "backend", cfg.Backend, "job", job)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "error", err)
		}
	}, nil
}
