package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
)

// streamTransport writes a chat answer as a chunked text/plain body. Headers
// are sent on Begin, so an error before the first fragment can still be
// answered with a JSON error.
type streamTransport struct {
	w     http.ResponseWriter
	rc    *http.ResponseController
	done  <-chan struct{}
	began bool
}

var _ interfaces.StreamTransport = &streamTransport{}

func newStreamTransport(w http.ResponseWriter, r *http.Request) *streamTransport {
	return &streamTransport{
		w:    w,
		rc:   http.NewResponseController(w),
		done: r.Context().Done(),
	}
}

func (x *streamTransport) Begin() error {
	if x.began {
		return nil
	}
	x.began = true

	h := x.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Accel-Buffering", "no")
	x.w.WriteHeader(http.StatusOK)

	return x.flush()
}

func (x *streamTransport) Write(fragment string) error {
	if !x.began {
		if err := x.Begin(); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(x.w, fragment); err != nil {
		return goerr.Wrap(err, "failed to write fragment", goerr.T(errs.TagTransportClosed))
	}
	return x.flush()
}

func (x *streamTransport) End() error {
	return x.flush()
}

func (x *streamTransport) Done() <-chan struct{} {
	return x.done
}

// Began reports whether the status line has been sent
func (x *streamTransport) Began() bool {
	return x.began
}

func (x *streamTransport) flush() error {
	if err := x.rc.Flush(); err != nil {
		if errors.Is(err, http.ErrNotSupported) {
			return nil
		}
		return goerr.Wrap(err, "failed to flush response", goerr.T(errs.TagTransportClosed))
	}
	return nil
}
