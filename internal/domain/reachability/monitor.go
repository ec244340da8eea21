// Package reachability watches connectivity to the content origin and raises
// a notification whenever it is lost.
package reachability

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event is an observed connectivity state.
type Event struct {
	Connected bool
	At        time.Time
}

// Prober reports connectivity.
type Prober interface {
	// Current returns the connectivity state right now.
	Current(ctx context.Context) (Event, error)
	// Subscribe returns a channel of connectivity changes and a function
	// that cancels the subscription. The channel is closed on cancel.
	Subscribe() (<-chan Event, func())
}

// Notifier delivers notifications. Notify must not block for long.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Notification is a transient message shown to the user.
type Notification struct {
	Type     string
	Title    string
	Message  string
	Position string
	Duration time.Duration
}

// Offline is raised every time connectivity is lost.
var Offline = Notification{
	Type:     "error",
	Title:    "Offline Mode",
	Message:  "Please check your internet connection.",
	Position: "bottom",
	Duration: 4 * time.Second,
}

// Monitor forwards connectivity losses to a Notifier. It holds no state of
// its own and never retries or reconnects.
type Monitor struct {
	prober   Prober
	notifier Notifier
	lg       *zap.Logger
}

// NewMonitor creates a Monitor. A nil logger disables logging.
func NewMonitor(prober Prober, notifier Notifier, lg *zap.Logger) *Monitor {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Monitor{prober: prober, notifier: notifier, lg: lg}
}

// Run subscribes to connectivity events, checks connectivity once, then
// notifies on every disconnect event until ctx is done or the event stream
// ends.
func (m *Monitor) Run(ctx context.Context) error {
	events, unsubscribe := m.prober.Subscribe()
	defer unsubscribe()

	ev, err := m.prober.Current(ctx)
	switch {
	case err != nil:
		m.lg.Warn("Initial connectivity check failed", zap.Error(err))
	case !ev.Connected:
		m.notifier.Notify(ctx, Offline)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.lg.Debug("Connectivity changed", zap.Bool("connected", ev.Connected))
			if !ev.Connected {
				m.notifier.Notify(ctx, Offline)
			}
		}
	}
}

// LogNotifier renders notifications as log warnings.
type LogNotifier struct {
	lg *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(lg *zap.Logger) *LogNotifier {
	return &LogNotifier{lg: lg}
}

func (n *LogNotifier) Notify(_ context.Context, msg Notification) {
	n.lg.Warn(msg.Title,
		zap.String("type", msg.Type),
		zap.String("message", msg.Message),
		zap.String("position", msg.Position),
		zap.Duration("duration", msg.Duration),
	)
}
