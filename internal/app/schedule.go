package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher reloads the catalog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	lg *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.lg.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.lg.Errorw(msg, append(keysAndValues, "error", err)...)
}

// scheduleRefresh runs r.Refresh on the cron schedule until the returned
// stop func is called. Runs never overlap. An empty schedule disables it.
func scheduleRefresh(ctx context.Context, lg *zap.Logger, schedule string, r Refresher) (stop func(), err error) {
	if schedule == "" {
		return func() {}, nil
	}

	logger := cronLogger{lg: lg.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(schedule, func() {
		// Refresh logs its own failures.
		_ = r.Refresh(ctx)
	}); err != nil {
		return nil, errors.Wrapf(err, "parse refresh schedule %q", schedule)
	}
	c.Start()

	return func() { <-c.Stop().Done() }, nil
}
