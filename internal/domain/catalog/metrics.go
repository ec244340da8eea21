package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/xenking/orbit-storefront/internal/domain/catalog"

type storeMetrics struct {
	refreshes metric.Int64Counter
	duration  metric.Float64Histogram
	items     metric.Int64Gauge
}

func newStoreMetrics(mp metric.MeterProvider) (*storeMetrics, error) {
	meter := mp.Meter(instrumentationName)

	refreshes, err := meter.Int64Counter("catalog.refresh.count",
		metric.WithDescription("Catalog refreshes by result"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "refresh counter")
	}
	duration, err := meter.Float64Histogram("catalog.refresh.duration",
		metric.WithDescription("Catalog refresh duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "refresh duration")
	}
	items, err := meter.Int64Gauge("catalog.items",
		metric.WithDescription("Items held by the catalog store per kind"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "items gauge")
	}

	return &storeMetrics{
		refreshes: refreshes,
		duration:  duration,
		items:     items,
	}, nil
}

func (m *storeMetrics) observe(ctx context.Context, result string, took time.Duration) {
	attrs := metric.WithAttributes(attribute.String("result", result))
	m.refreshes.Add(ctx, 1, attrs)
	m.duration.Record(ctx, took.Seconds(), attrs)
}

func (m *storeMetrics) observeState(ctx context.Context, s State) {
	m.items.Record(ctx, int64(len(s.Products)), metric.WithAttributes(attribute.String("kind", string(KindProduct))))
	m.items.Record(ctx, int64(len(s.Services)), metric.WithAttributes(attribute.String("kind", string(KindService))))
	m.items.Record(ctx, int64(len(s.Blogs)), metric.WithAttributes(attribute.String("kind", string(KindBlog))))
}
