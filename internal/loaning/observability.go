// internal/loaning/observability.go
package loaning

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// poolMetrics counts served and rejected claims. Instrument creation only
// fails on malformed names, so errors are ignored the way the global meter
// intends.
type poolMetrics struct {
	served   metric.Int64Counter
	rejected metric.Int64Counter
}

func newPoolMetrics() *poolMetrics {
	meter := otel.Meter("bureaudesk/loaning")
	served, _ := meter.Int64Counter("loaning.requests_served",
		metric.WithDescription("Loan requests satisfied with a created loan"))
	rejected, _ := meter.Int64Counter("loaning.requests_rejected",
		metric.WithDescription("Loan requests claimed but not satisfiable"))
	return &poolMetrics{served: served, rejected: rejected}
}

func (m *poolMetrics) record(ctx context.Context, o Outcome) {
	attrs := metric.WithAttributes(attribute.Int("counter.id", o.CounterID))
	if o.Err != nil {
		m.rejected.Add(ctx, 1, attrs)
		return
	}
	m.served.Add(ctx, 1, attrs)
}
