package clock

import (
	"context"
	"time"
)

type ctxClockKey struct{}

// Clock overrides time.Now for everything that reads time through the context:
// chat history timestamps and token expiry.
type Clock func() time.Time

func Now(ctx context.Context) time.Time {
	clock, ok := ctx.Value(ctxClockKey{}).(Clock)
	if !ok {
		return time.Now()
	}
	return clock()
}

func Since(ctx context.Context, t time.Time) time.Duration {
	return Now(ctx).Sub(t)
}

func With(ctx context.Context, clock Clock) context.Context {
	return context.WithValue(ctx, ctxClockKey{}, clock)
}

// Fixed returns a clock that always answers t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}
