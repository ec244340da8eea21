package reachability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockProber struct {
	current    Event
	currentErr error
	events     chan Event

	mu           sync.Mutex
	unsubscribed bool
}

func newMockProber(connected bool) *mockProber {
	return &mockProber{
		current: Event{Connected: connected},
		events:  make(chan Event),
	}
}

func (m *mockProber) Current(context.Context) (Event, error) {
	return m.current, m.currentErr
}

func (m *mockProber) Subscribe() (<-chan Event, func()) {
	return m.events, func() {
		m.mu.Lock()
		m.unsubscribed = true
		m.mu.Unlock()
	}
}

func (m *mockProber) isUnsubscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsubscribed
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.sent = append(r.sent, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// --- Tests ---

func TestMonitor_InitialOffline(t *testing.T) {
	prober := newMockProber(false)
	close(prober.events)
	notifier := &recordingNotifier{}

	require.NoError(t, NewMonitor(prober, notifier, nil).Run(context.Background()))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, Offline, notifier.sent[0])
	assert.Equal(t, "error", notifier.sent[0].Type)
	assert.Equal(t, "Offline Mode", notifier.sent[0].Title)
	assert.Equal(t, "Please check your internet connection.", notifier.sent[0].Message)
	assert.Equal(t, "bottom", notifier.sent[0].Position)
	assert.Equal(t, 4*time.Second, notifier.sent[0].Duration)
	assert.True(t, prober.isUnsubscribed())
}

func TestMonitor_InitialOnline(t *testing.T) {
	prober := newMockProber(true)
	close(prober.events)
	notifier := &recordingNotifier{}

	require.NoError(t, NewMonitor(prober, notifier, nil).Run(context.Background()))
	assert.Zero(t, notifier.count())
}

func TestMonitor_InitialCheckError(t *testing.T) {
	prober := newMockProber(false)
	prober.currentErr = errors.New("no route")
	close(prober.events)
	notifier := &recordingNotifier{}

	require.NoError(t, NewMonitor(prober, notifier, nil).Run(context.Background()))
	assert.Zero(t, notifier.count())
}

func TestMonitor_RepeatedDisconnects(t *testing.T) {
	prober := newMockProber(true)
	notifier := &recordingNotifier{}

	done := make(chan error, 1)
	go func() {
		done <- NewMonitor(prober, notifier, nil).Run(context.Background())
	}()

	for _, connected := range []bool{false, true, false, false} {
		prober.events <- Event{Connected: connected}
	}
	close(prober.events)

	require.NoError(t, <-done)
	assert.Equal(t, 3, notifier.count())
	assert.True(t, prober.isUnsubscribed())
}

func TestMonitor_UnsubscribesOnCancel(t *testing.T) {
	prober := newMockProber(true)
	notifier := &recordingNotifier{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewMonitor(prober, notifier, nil).Run(ctx)
	}()

	prober.events <- Event{Connected: false}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
	assert.Equal(t, 1, notifier.count())
	assert.True(t, prober.isUnsubscribed())
}

// transitionProber flips to offline while the initial check runs, so the
// change is only seen by subscriptions that already exist.
type transitionProber struct {
	mu     sync.Mutex
	events chan Event
	calls  []string
}

func (p *transitionProber) Current(context.Context) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "current")
	if p.events != nil {
		p.events <- Event{Connected: false}
	}
	return Event{Connected: true}, nil
}

func (p *transitionProber) Subscribe() (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "subscribe")
	p.events = make(chan Event, 1)
	return p.events, func() {}
}

func TestMonitor_SubscribesBeforeInitialCheck(t *testing.T) {
	prober := &transitionProber{}
	notifier := &recordingNotifier{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- NewMonitor(prober, notifier, nil).Run(ctx) }()

	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	prober.mu.Lock()
	defer prober.mu.Unlock()
	assert.Equal(t, []string{"subscribe", "current"}, prober.calls)
}
