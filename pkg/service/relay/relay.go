package relay

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/clock"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
)

const (
	DefaultSnapshotTimeout = 3 * time.Second
	DefaultFinalAttempts   = 3
	DefaultRetryInterval   = 200 * time.Millisecond

	minFinalAttempts = 2
)

// Transport is the client side of one streamed answer.
type Transport = interfaces.StreamTransport

// Relay drives chat exchanges: it forwards upstream fragments to the client
// while keeping the chat history record up to date.
type Relay struct {
	repo     interfaces.ChatRepository
	upstream interfaces.TextStreamer

	snapshotTimeout time.Duration
	finalAttempts   int
	retryInterval   time.Duration
}

type Option func(*Relay)

// WithSnapshotTimeout bounds every single history write.
func WithSnapshotTimeout(d time.Duration) Option {
	return func(x *Relay) {
		x.snapshotTimeout = d
	}
}

// WithFinalAttempts sets how many times the terminal write is tried. Values
// below 2 are raised to 2.
func WithFinalAttempts(n int) Option {
	return func(x *Relay) {
		x.finalAttempts = n
	}
}

func WithRetryInterval(d time.Duration) Option {
	return func(x *Relay) {
		x.retryInterval = d
	}
}

func New(repo interfaces.ChatRepository, upstream interfaces.TextStreamer, opts ...Option) *Relay {
	x := &Relay{
		repo:            repo,
		upstream:        upstream,
		snapshotTimeout: DefaultSnapshotTimeout,
		finalAttempts:   DefaultFinalAttempts,
		retryInterval:   DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(x)
	}

	if x.finalAttempts < minFinalAttempts {
		x.finalAttempts = minFinalAttempts
	}
	if x.snapshotTimeout <= 0 {
		x.snapshotTimeout = DefaultSnapshotTimeout
	}
	if x.retryInterval < 0 {
		x.retryInterval = 0
	}

	return x
}

// Exchange is one question from a user.
type Exchange struct {
	OwnerID types.UserID
	Message string
	// Prompt is sent upstream. Message is used when it is empty.
	Prompt string
}

// Run relays one exchange to tr and returns the final state of its history.
// An error is returned only when nothing has been committed to the client yet
// (invalid input, record creation failure or upstream failure before the first
// fragment), so that the caller can still send a structured error response.
func (x *Relay) Run(ctx context.Context, ex Exchange, tr Transport) (*chat.History, error) {
	if ex.OwnerID == "" {
		return nil, goerr.New("owner id is required", goerr.T(errs.TagValidation))
	}
	if ex.Message == "" {
		return nil, goerr.New("message is required", goerr.TV(errutil.UserIDKey, ex.OwnerID), goerr.T(errs.TagValidation))
	}
	prompt := ex.Prompt
	if prompt == "" {
		prompt = ex.Message
	}

	history := chat.NewHistory(ctx, ex.OwnerID, ex.Message)
	if err := x.repo.PutChatHistory(ctx, history); err != nil {
		return nil, goerr.Wrap(err, "failed to create chat history",
			goerr.TV(errutil.ChatIDKey, history.ID),
			goerr.T(errs.TagDatabase))
	}

	logger := logging.From(ctx).With("chat_id", history.ID)
	ctx = logging.With(ctx, logger)
	startedAt := clock.Now(ctx)

	// Bookkeeping has to finish even after the client went away.
	persistCtx := context.WithoutCancel(ctx)

	upstreamCtx, cancelUpstream := context.WithCancel(ctx)
	defer cancelUpstream()

	obs := newObserver(tr.Done(), func() {
		logger.Info("client disconnected, stop relaying")
		cancelUpstream()
	})
	defer obs.stop()

	var (
		aggregate strings.Builder
		begun     bool
		streamErr error
	)

	for fragment, err := range x.upstream.StreamText(upstreamCtx, prompt) {
		if obs.poll() {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				// request context is gone, the client cannot be reached any more
				obs.fire()
				break
			}
			streamErr = err
			break
		}
		if fragment == "" {
			continue
		}

		if !begun {
			begun = true
			if err := tr.Begin(); err != nil {
				logger.Warn("failed to begin stream", logging.ErrAttr(err))
				obs.fire()
			}
		}

		if !obs.Fired() {
			if err := tr.Write(fragment); err != nil {
				logger.Info("failed to write fragment, treat as disconnect", logging.ErrAttr(err))
				obs.fire()
			} else {
				fragmentsTotal.Inc()
			}
		}

		aggregate.WriteString(fragment)
		x.snapshot(persistCtx, history, aggregate.String())
	}

	status := types.ChatStatusCompleted
	var result error

	switch {
	case obs.Fired():
		status = types.ChatStatusAborted

	case streamErr != nil:
		status = types.ChatStatusFailed
		class := Classify(streamErr, begun)
		upstreamErrorsTotal.WithLabelValues(class.String()).Inc()

		if !begun {
			logger.Warn("upstream failed before first fragment",
				logging.ErrAttr(streamErr),
				"class", class.String())
			result = goerr.Wrap(streamErr, "upstream failed before first fragment",
				goerr.TV(errutil.ChatIDKey, history.ID),
				goerr.V("class", class.String()),
				class.Tag())
			break
		}

		logger.Warn("upstream failed while streaming",
			logging.ErrAttr(streamErr),
			"class", class.String(),
			"length", aggregate.Len())
		suffix := "\n\n" + class.Message()
		if err := tr.Write(suffix); err != nil {
			logger.Info("failed to write error suffix", logging.ErrAttr(err))
		}
		aggregate.WriteString(suffix)

	case !begun:
		// completed without any fragment, the client still gets an empty 200
		begun = true
		if err := tr.Begin(); err != nil {
			logger.Warn("failed to begin empty stream", logging.ErrAttr(err))
		}
	}

	x.finalize(persistCtx, history, aggregate.String(), status)

	if begun && !obs.Fired() {
		if err := tr.End(); err != nil {
			logger.Info("failed to end stream", logging.ErrAttr(err))
		}
	}

	sessionsTotal.WithLabelValues(status.String()).Inc()
	sessionDuration.WithLabelValues(status.String()).Observe(clock.Since(ctx, startedAt).Seconds())
	logger.Info("chat session finished",
		"status", status,
		"length", aggregate.Len(),
		"duration", clock.Since(ctx, startedAt))

	return history, result
}

// snapshot stores the aggregate received so far. It is best effort: failures
// are logged and the next fragment or the final write catches up.
func (x *Relay) snapshot(ctx context.Context, history *chat.History, response string) {
	if _, err := history.Apply(ctx, response, types.ChatStatusStreaming); err != nil {
		logging.From(ctx).Error("unexpected local history state", logging.ErrAttr(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, x.snapshotTimeout)
	defer cancel()

	if err := x.repo.UpdateChatHistory(ctx, history.ID, response, types.ChatStatusStreaming); err != nil {
		persistFailuresTotal.WithLabelValues("snapshot").Inc()
		logging.From(ctx).Warn("failed to save chat snapshot, continue streaming",
			logging.ErrAttr(err),
			"length", len(response))
	}
}

// finalize writes the terminal state. It is retried because this is the copy
// users see in their history; if every attempt fails the miss is reported and
// the session still ends.
func (x *Relay) finalize(ctx context.Context, history *chat.History, response string, status types.ChatStatus) {
	logger := logging.From(ctx)

	if _, err := history.Apply(ctx, response, status); err != nil {
		logger.Error("unexpected local history state", logging.ErrAttr(err))
	}

	var lastErr error
	for attempt := 1; attempt <= x.finalAttempts; attempt++ {
		if attempt > 1 && x.retryInterval > 0 {
			time.Sleep(x.retryInterval)
		}

		wctx, cancel := context.WithTimeout(ctx, x.snapshotTimeout)
		err := x.repo.UpdateChatHistory(wctx, history.ID, response, status)
		cancel()
		if err == nil {
			return
		}

		lastErr = err
		logger.Warn("failed to save final chat history",
			logging.ErrAttr(err),
			"attempt", attempt,
			"status", status)

		// retrying does not help if the stored record disagrees with us
		if goerr.HasTag(err, errs.TagInvalidState) {
			break
		}
	}

	persistFailuresTotal.WithLabelValues("final").Inc()
	errs.Handle(ctx, goerr.Wrap(lastErr, "durability miss: final chat history was not saved",
		goerr.TV(errutil.ChatIDKey, history.ID),
		goerr.TV(errutil.StatusKey, status),
		goerr.TV(errutil.LengthKey, len(response)),
		goerr.TV(errutil.AttemptKey, x.finalAttempts),
		goerr.T(errs.TagDatabase)))
}
