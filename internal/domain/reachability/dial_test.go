package reachability

import (
	"context"
	"net"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// switchDialer connects while up is true.
type switchDialer struct {
	up    atomic.Bool
	calls atomic.Int32
}

func (s *switchDialer) dial(context.Context, string, string) (net.Conn, error) {
	s.calls.Add(1)
	if !s.up.Load() {
		return nil, errors.New("connection refused")
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestDialProber_Current(t *testing.T) {
	d := &switchDialer{}
	p := NewDialProber("origin:443", WithDialFunc(d.dial))

	ev, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, ev.Connected)

	d.up.Store(true)
	ev, err = p.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, ev.Connected)
	assert.False(t, ev.At.IsZero())
}

func TestDialProber_PublishesTransitions(t *testing.T) {
	d := &switchDialer{}
	d.up.Store(true)
	p := NewDialProber("origin:443", WithDialFunc(d.dial), WithInterval(5*time.Millisecond))

	_, err := p.Current(context.Background())
	require.NoError(t, err)

	first, unsubscribeFirst := p.Subscribe()
	defer unsubscribeFirst()
	second, unsubscribeSecond := p.Subscribe()
	defer unsubscribeSecond()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	// Unchanged state is not published.
	for d.calls.Load() < 4 {
		time.Sleep(time.Millisecond)
	}
	select {
	case ev := <-first:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	d.up.Store(false)
	assert.False(t, receive(t, first).Connected)
	assert.False(t, receive(t, second).Connected)

	d.up.Store(true)
	assert.True(t, receive(t, first).Connected)
	assert.True(t, receive(t, second).Connected)
}

func TestDialProber_UnsubscribeClosesChannel(t *testing.T) {
	p := NewDialProber("origin:443")

	ch, unsubscribe := p.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Empty(t, p.subs)
}

func TestAddrFromURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "https://orbitmediasolutions.com/", want: "orbitmediasolutions.com:443"},
		{raw: "http://localhost/api", want: "localhost:80"},
		{raw: "http://127.0.0.1:8080", want: "127.0.0.1:8080"},
		{raw: "ftp://example.com", wantErr: true},
		{raw: "/relative", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)

			got, err := AddrFromURL(u)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
