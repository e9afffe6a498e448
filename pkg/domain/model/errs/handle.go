package errs

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"github.com/secmon-lab/counsellor/pkg/utils/request_id"
	"github.com/secmon-lab/counsellor/pkg/utils/user"
)

// searchable in Sentry, everything else goes to extras
var tagKeys = []string{"chat_id", "status", "class"}

// Handle reports an error that cannot be returned to anybody: it is logged and
// sent to Sentry when configured.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[CRITICAL] slog crashed during error handling: original_error=%s, slog_panic=%v\n",
				err.Error(), r)
		}
	}()

	logAttrs := []any{slog.Any("error", err)}
	logger := logging.From(ctx)

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if reqID := request_id.FromContext(ctx); reqID != "" && reqID != "(unknown)" {
			scope.SetTag("request_id", reqID)
		}
		if userID := user.FromContext(ctx); userID != "" {
			scope.SetUser(sentry.User{ID: userID.String()})
		}

		values := goerr.Values(err)
		for _, key := range tagKeys {
			if v, ok := values[key]; ok {
				scope.SetTag(key, fmt.Sprint(v))
			}
		}
		for k, v := range values {
			scope.SetExtra(k, v)
		}
	})
	evID := hub.CaptureException(err)
	logAttrs = append(logAttrs, slog.Any("sentry.id", evID))

	logger.Error("Error: "+err.Error(), logAttrs...)
}
