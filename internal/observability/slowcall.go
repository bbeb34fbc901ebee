package observability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SlowCallDetector flags prediction calls that exceed latency thresholds.
type SlowCallDetector struct {
	warningThreshold  time.Duration
	criticalThreshold time.Duration
	logger            *zap.Logger
}

func NewSlowCallDetector(warning, critical time.Duration, logger *zap.Logger) *SlowCallDetector {
	return &SlowCallDetector{
		warningThreshold:  warning,
		criticalThreshold: critical,
		logger:            logger,
	}
}

// Intercept records one completed call. Calls under the warning threshold
// return immediately with zero overhead. Query text is hashed before it
// reaches the log stream.
func (scd *SlowCallDetector) Intercept(ctx context.Context, query, stage string, duration time.Duration, predictions int) {
	if duration <= scd.warningThreshold {
		return
	}

	severity := scd.classifySeverity(duration)
	SlowCallCounter.WithLabelValues(severity, stage).Inc()

	scd.logger.Warn("slow prediction call",
		zap.String("trace_id", TraceIDFromContext(ctx)),
		zap.String("query_hash", hashQueryForLog(query)),
		zap.String("stage", stage),
		zap.Float64("duration_ms", float64(duration.Milliseconds())),
		zap.Int("predictions", predictions),
		zap.String("severity", severity),
	)
}

func (scd *SlowCallDetector) classifySeverity(d time.Duration) string {
	if d > scd.criticalThreshold {
		return "critical"
	}
	if d > scd.warningThreshold {
		return "warning"
	}
	return "normal"
}

func hashQueryForLog(q string) string {
	return fmt.Sprintf("%016x", hashUint64(q))
}

func hashUint64(s string) uint64 {
	h := uint64(0)
	for _, c := range s {
		h = h*31 + uint64(c)
	}
	return h
}
