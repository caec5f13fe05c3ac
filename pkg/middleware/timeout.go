package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "sharedcal/pkg/errors"
	httputil "sharedcal/pkg/http"
)

// timeoutWriter wraps http.ResponseWriter and refuses output once the
// request deadline has passed, so the 503 written by RequestTimeout is the
// only response a late handler can produce.
type timeoutWriter struct {
	http.ResponseWriter
	ctx        context.Context
	mu         sync.Mutex
	timedOut   bool
	written    bool
	statusCode int
}

// expiredLocked reports whether output is closed. tw.mu must be held.
func (tw *timeoutWriter) expiredLocked() bool {
	if !tw.timedOut && errors.Is(tw.ctx.Err(), context.DeadlineExceeded) {
		tw.timedOut = true
	}
	return tw.timedOut
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.written || tw.expiredLocked() {
		return
	}

	tw.statusCode = code
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut || (!tw.written && tw.expiredLocked()) {
		return 0, http.ErrHandlerTimeout
	}

	if !tw.written {
		tw.statusCode = http.StatusOK
		tw.written = true
	}

	return tw.ResponseWriter.Write(b)
}

// finish closes the writer once RequestTimeout stops waiting. A handler
// that produced nothing before the deadline is answered with a 503.
func (tw *timeoutWriter) finish() {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.ctx.Err() != nil {
		tw.timedOut = true
	}
	if tw.written || !errors.Is(tw.ctx.Err(), context.DeadlineExceeded) {
		return
	}
	tw.written = true
	tw.statusCode = http.StatusServiceUnavailable
	_ = httputil.WriteError(tw.ResponseWriter, apperrors.New(apperrors.CodeUnavailable, "Request timeout", http.StatusServiceUnavailable))
}

// RequestTimeout bounds each request by timeout. The deadline reaches the
// store through the request context; if the handler has not answered by
// then the client gets a 503. A panic in the handler is re-raised on the
// serving goroutine so Recovery still sees it.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			tw := &timeoutWriter{ResponseWriter: w, ctx: ctx}

			done := make(chan struct{})
			panicCh := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicCh <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case p := <-panicCh:
				panic(p)
			case <-done:
			case <-ctx.Done():
			}
			tw.finish()
		})
	}
}
