package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelError
)

// metricTagKeys are the operation fields promoted to metric tags when set.
var metricTagKeys = []string{"category", "algorithm", "provider", "outcome"}

// observeOperation emits one counter, one duration histogram and one log
// line per runtime operation. Failures log at error, successes at debug.
func (r *Runtime) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if r == nil {
		return
	}
	if operation = normalizeOperation(operation); operation == "" {
		operation = "unknown"
	}
	elapsed := time.Since(startedAt).Milliseconds()

	status, level, message := "success", levelDebug, operation+" succeeded"
	if err != nil {
		status, level, message = "failure", levelError, operation+" failed"
	}

	logFields := cloneFields(fields)
	logFields["event_type"] = operation
	logFields["status"] = status
	logFields["duration_ms"] = elapsed
	if err != nil {
		logFields["error"] = err.Error()
	}

	tags := map[string]string{"operation": operation, "status": status}
	for _, key := range metricTagKeys {
		value, ok := logFields[key]
		if !ok || value == nil {
			continue
		}
		if text := strings.TrimSpace(fmt.Sprint(value)); text != "" {
			tags[key] = text
		}
	}
	if r.metricsRecorder != nil {
		r.metricsRecorder.IncCounter(ctx, MetricName(operation, "total"), 1, cloneTags(tags))
		r.metricsRecorder.ObserveHistogram(ctx, MetricName(operation, "duration_ms"), float64(elapsed), cloneTags(tags))
	}

	r.log(ctx, level, message, logFields)
}

func (r *Runtime) logInfo(ctx context.Context, message string, fields map[string]any) {
	r.log(ctx, levelInfo, message, fields)
}

func (r *Runtime) logError(ctx context.Context, message string, fields map[string]any) {
	r.log(ctx, levelError, message, fields)
}

func (r *Runtime) log(ctx context.Context, level logLevel, message string, fields map[string]any) {
	if r == nil || r.logger == nil {
		return
	}
	logger := r.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if withFields, ok := logger.(FieldsLogger); ok {
		logger = withFields.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch level {
	case levelError:
		logger.Error(message, args...)
	case levelInfo:
		logger.Info(message, args...)
	default:
		logger.Debug(message, args...)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return maps.Clone(fields)
}

// flattenFields turns fields into key/value args ordered by key.
func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(operation)))
}
