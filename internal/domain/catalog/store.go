package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Refresh once the store has been closed.
var ErrClosed = errors.New("catalog store closed")

// Source fetches the three upstream collections. Implementations must be
// safe for concurrent use.
type Source interface {
	Products(ctx context.Context) ([]ProductRecord, error)
	Services(ctx context.Context) ([]ServiceRecord, error)
	Blogs(ctx context.Context) (BlogListing, error)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	lg        *zap.Logger
	mp        metric.MeterProvider
	tp        trace.TracerProvider
	supersede bool
	now       func() time.Time
}

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(lg *zap.Logger) Option {
	return func(o *options) { o.lg = lg }
}

// WithMeterProvider sets the meter provider for refresh metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.mp = mp }
}

// WithTracerProvider sets the tracer provider for refresh spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

// WithSupersede makes a refresh drop its result when a refresh started after
// it has already been applied. Without it the last refresh to complete wins,
// regardless of start order.
func WithSupersede() Option {
	return func(o *options) { o.supersede = true }
}

// Store is the aggregated catalog store. Reads are lock-free snapshots;
// writers serialize on a mutex and publish whole states, so readers never
// observe a partially applied refresh.
type Store struct {
	source    Source
	lg        *zap.Logger
	tracer    trace.Tracer
	metrics   *storeMetrics
	supersede bool
	now       func() time.Time

	state atomic.Pointer[State]

	mu      sync.Mutex
	started uint64
	applied uint64
	updated chan struct{}
	closed  bool
}

// NewStore creates an empty, hydrated store reading from source.
func NewStore(source Source, opts ...Option) (*Store, error) {
	o := options{
		lg:  zap.NewNop(),
		mp:  metricnoop.NewMeterProvider(),
		tp:  tracenoop.NewTracerProvider(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := newStoreMetrics(o.mp)
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}

	s := &Store{
		source:    source,
		lg:        o.lg,
		tracer:    o.tp.Tracer(instrumentationName),
		metrics:   m,
		supersede: o.supersede,
		now:       o.now,
		updated:   make(chan struct{}),
	}
	s.state.Store(&State{Hydrated: true})
	return s, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	return *s.state.Load()
}

// Filter is a shorthand for Snapshot().Filter.
func (s *Store) Filter(query string, tab Tab) []Item {
	return s.Snapshot().Filter(query, tab)
}

// Updated returns a channel that is closed when the next state is published
// or the store is closed.
func (s *Store) Updated() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

// Refresh fetches products, services and blogs concurrently and replaces the
// catalog with the result. If any fetch fails the previous content is kept
// and the error is logged and returned. Refresh is safe for concurrent use.
func (s *Store) Refresh(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "catalog.Refresh")
	defer span.End()

	start := s.now()
	gen, cold, err := s.begin()
	if err != nil {
		return err
	}

	var (
		products []ProductRecord
		services []ServiceRecord
		blogs    BlogListing
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		if products, err = s.source.Products(ctx); err != nil {
			return errors.Wrap(err, "fetch products")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if services, err = s.source.Services(ctx); err != nil {
			return errors.Wrap(err, "fetch services")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if blogs, err = s.source.Blogs(ctx); err != nil {
			return errors.Wrap(err, "fetch blogs")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.abort()
		s.metrics.observe(ctx, "failed", s.now().Sub(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		s.lg.Warn("Catalog refresh failed, keeping previous content",
			zap.Error(err),
			zap.Bool("cold_start", cold),
		)
		return errors.Wrap(err, "refresh catalog")
	}

	next := NewState(
		NormalizeProducts(products),
		NormalizeServices(services),
		NormalizeBlogs(blogs.Blogs),
		s.now(),
	)
	next.ProductCategories = blogs.ProductCategories
	next.ServiceCategories = blogs.ServiceCategories
	applied, err := s.commit(gen, next)
	if err != nil {
		s.metrics.observe(ctx, "closed", s.now().Sub(start))
		s.lg.Debug("Catalog closed during refresh, dropping result", zap.Uint64("generation", gen))
		return err
	}
	if !applied {
		s.metrics.observe(ctx, "superseded", s.now().Sub(start))
		s.lg.Debug("Catalog refresh superseded by a newer one", zap.Uint64("generation", gen))
		return nil
	}

	s.metrics.observe(ctx, "ok", s.now().Sub(start))
	s.metrics.observeState(ctx, next)
	s.lg.Info("Catalog refreshed",
		zap.Int("products", len(next.Products)),
		zap.Int("services", len(next.Services)),
		zap.Int("blogs", len(next.Blogs)),
		zap.Duration("took", s.now().Sub(start)),
	)
	return nil
}

// begin registers a refresh and raises Loading on a cold start.
func (s *Store) begin() (gen uint64, cold bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false, ErrClosed
	}
	s.started++

	cur := s.state.Load()
	cold = cur.Empty()
	if cold && !cur.Loading {
		next := *cur
		next.Loading = true
		s.state.Store(&next)
	}
	return s.started, cold, nil
}

// abort clears Loading and leaves the content untouched.
func (s *Store) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if !cur.Loading {
		return
	}
	next := *cur
	next.Loading = false
	s.state.Store(&next)
}

// commit publishes next. It fails with ErrClosed once the store is closed
// and reports false when, with supersede enabled, a newer refresh has
// already been applied.
func (s *Store) commit(gen uint64, next State) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	if s.supersede && gen < s.applied {
		return false, nil
	}
	s.applied = gen

	next.Hydrated = s.state.Load().Hydrated
	next.Loading = false
	s.state.Store(&next)

	close(s.updated)
	s.updated = make(chan struct{})
	return true, nil
}

// Close disposes the store. Readers keep the last snapshot; further
// refreshes fail with ErrClosed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	next := *s.state.Load()
	next.Hydrated = false
	next.Loading = false
	s.state.Store(&next)

	close(s.updated)
	return nil
}
