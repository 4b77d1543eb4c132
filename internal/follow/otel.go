package follow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"wanderer.ai/internal/pathing"
)

const instrumentationName = "wanderer.ai/internal/follow"

type Metrics struct {
	completions metric.Int64Counter
	failures    metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out Metrics
		err error
	)
	out.completions, err = m.Int64Counter(
		"follow.completions",
		metric.WithDescription("Paths followed to the end"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completions counter: %w", err)
	}
	out.failures, err = m.Int64Counter(
		"follow.failures",
		metric.WithDescription("Sessions aborted on an unsupported manoeuvre"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	return &out, nil
}

func (m *Metrics) completed(ctx context.Context) {
	if m == nil {
		return
	}
	m.completions.Add(ctx, 1)
}

func (m *Metrics) failed(ctx context.Context, man pathing.Manoeuvre) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("manoeuvre", man.String())))
}
