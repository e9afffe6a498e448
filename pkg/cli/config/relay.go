package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/counsellor/pkg/service/relay"
	"github.com/urfave/cli/v3"
)

// Relay tunes how chat answers are saved while streaming
type Relay struct {
	snapshotTimeout time.Duration
	finalAttempts   int
	retryInterval   time.Duration
}

func (x *Relay) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "relay-snapshot-timeout",
			Usage:       "Timeout of each chat history write",
			Category:    "Relay",
			Value:       relay.DefaultSnapshotTimeout,
			Sources:     cli.EnvVars("COUNSELLOR_RELAY_SNAPSHOT_TIMEOUT"),
			Destination: &x.snapshotTimeout,
		},
		&cli.IntFlag{
			Name:        "relay-final-attempts",
			Usage:       "Attempts of the final chat history write (at least 2)",
			Category:    "Relay",
			Value:       relay.DefaultFinalAttempts,
			Sources:     cli.EnvVars("COUNSELLOR_RELAY_FINAL_ATTEMPTS"),
			Destination: &x.finalAttempts,
		},
		&cli.DurationFlag{
			Name:        "relay-retry-interval",
			Usage:       "Pause between final write attempts",
			Category:    "Relay",
			Value:       relay.DefaultRetryInterval,
			Sources:     cli.EnvVars("COUNSELLOR_RELAY_RETRY_INTERVAL"),
			Destination: &x.retryInterval,
		},
	}
}

func (x Relay) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("snapshot_timeout", x.snapshotTimeout),
		slog.Int("final_attempts", x.finalAttempts),
		slog.Duration("retry_interval", x.retryInterval),
	)
}

func (x *Relay) Options() []relay.Option {
	var opts []relay.Option
	if x.snapshotTimeout > 0 {
		opts = append(opts, relay.WithSnapshotTimeout(x.snapshotTimeout))
	}
	if x.finalAttempts > 0 {
		opts = append(opts, relay.WithFinalAttempts(x.finalAttempts))
	}
	if x.retryInterval > 0 {
		opts = append(opts, relay.WithRetryInterval(x.retryInterval))
	}
	return opts
}
