package handler

import (
	"os"
	"testing"

	"railtrace/pkg/config"
	"railtrace/prometheus"
)

func TestMain(m *testing.M) {
	// Metric vectors must be registered before any handler records to them
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "railtrace_handler_test"},
	})
	os.Exit(m.Run())
}
