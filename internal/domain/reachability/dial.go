package reachability

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const (
	defaultInterval    = 10 * time.Second
	defaultDialTimeout = 3 * time.Second
	subscriberBuffer   = 8
)

// DialFunc opens a connection. net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// DialOption configures a DialProber.
type DialOption func(*DialProber)

// WithInterval sets how often Run probes.
func WithInterval(d time.Duration) DialOption {
	return func(p *DialProber) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithDialTimeout bounds a single probe.
func WithDialTimeout(d time.Duration) DialOption {
	return func(p *DialProber) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithDialFunc replaces the dialer.
func WithDialFunc(fn DialFunc) DialOption {
	return func(p *DialProber) {
		if fn != nil {
			p.dial = fn
		}
	}
}

// WithProberLogger sets the logger.
func WithProberLogger(lg *zap.Logger) DialOption {
	return func(p *DialProber) {
		if lg != nil {
			p.lg = lg
		}
	}
}

// DialProber treats a successful TCP dial to addr as connected. Run probes
// on an interval and publishes an Event to every subscriber whenever the
// observed state changes.
type DialProber struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	dial     DialFunc
	lg       *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	known bool
	last  bool
	next  int
	subs  map[int]chan Event
}

var _ Prober = (*DialProber)(nil)

// NewDialProber creates a prober for the host:port addr.
func NewDialProber(addr string, opts ...DialOption) *DialProber {
	var d net.Dialer
	p := &DialProber{
		addr:     addr,
		interval: defaultInterval,
		timeout:  defaultDialTimeout,
		dial:     d.DialContext,
		lg:       zap.NewNop(),
		now:      time.Now,
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddrFromURL returns the host:port to probe for u, filling in the scheme's
// default port.
func AddrFromURL(u *url.URL) (string, error) {
	host := u.Hostname()
	if host == "" {
		return "", errors.Errorf("no host in %q", u.String())
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		default:
			return "", errors.Errorf("no default port for scheme %q", u.Scheme)
		}
	}
	return net.JoinHostPort(host, port), nil
}

// Current dials once and records the result as the last observed state.
func (p *DialProber) Current(ctx context.Context) (Event, error) {
	ev := p.probe(ctx)
	p.mu.Lock()
	p.known, p.last = true, ev.Connected
	p.mu.Unlock()
	return ev, nil
}

// Subscribe registers a subscriber. Events are dropped for a subscriber
// whose buffer is full.
func (p *DialProber) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
			close(ch)
		})
	}
}

// Run probes until ctx is done.
func (p *DialProber) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.observe(p.probe(ctx))
		}
	}
}

func (p *DialProber) probe(ctx context.Context) Event {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.addr)
	if err != nil {
		p.lg.Debug("Probe failed", zap.String("addr", p.addr), zap.Error(err))
		return Event{Connected: false, At: p.now()}
	}
	_ = conn.Close()
	return Event{Connected: true, At: p.now()}
}

// observe publishes ev if it differs from the last observed state.
func (p *DialProber) observe(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.known && p.last == ev.Connected {
		return
	}
	p.known, p.last = true, ev.Connected

	p.lg.Info("Connectivity changed", zap.String("addr", p.addr), zap.Bool("connected", ev.Connected))
	for id, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			p.lg.Warn("Dropping connectivity event for slow subscriber", zap.Int("subscriber", id))
		}
	}
}
