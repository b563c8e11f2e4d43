package core

import (
	"context"
	"strings"
)

const metricNamespace = "cryptoproviders"

// MetricName returns the name a runtime operation reports under, for example
// MetricName("lookup", "total") is "cryptoproviders.lookup.total".
func MetricName(operation string, suffix string) string {
	name := metricNamespace + "." + normalizeOperation(operation)
	if suffix = strings.Trim(strings.TrimSpace(suffix), "."); suffix != "" {
		name += "." + suffix
	}
	return name
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}
