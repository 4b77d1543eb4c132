package pathing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "wanderer.ai/internal/pathing"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics records search outcomes on the global meter provider, which is a
// no-op unless one is installed.
type Metrics struct {
	searches metric.Int64Counter
	expanded metric.Int64Histogram
	duration metric.Float64Histogram
}

func NewMetrics() (*Metrics, error) {
	m := meter()
	var (
		out Metrics
		err error
	)
	out.searches, err = m.Int64Counter(
		"pathing.searches",
		metric.WithDescription("Searches run, by strategy and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating searches counter: %w", err)
	}
	out.expanded, err = m.Int64Histogram(
		"pathing.expanded",
		metric.WithDescription("Nodes expanded per search"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating expanded histogram: %w", err)
	}
	out.duration, err = m.Float64Histogram(
		"pathing.duration",
		metric.WithDescription("Search wall time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return &out, nil
}

// Outcome names a search result for metrics and the plan index.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrSearchExhausted):
		return "exhausted"
	case errors.Is(err, ErrExpansionLimit):
		return "limit"
	}
	return "error"
}

func (m *Metrics) Record(ctx context.Context, st Stats, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("strategy", st.Strategy),
		attribute.String("outcome", Outcome(err)),
	)
	m.searches.Add(ctx, 1, attrs)
	m.expanded.Record(ctx, int64(st.Expanded), attrs)
	m.duration.Record(ctx, float64(st.Duration.Microseconds())/1000, attrs)
}
