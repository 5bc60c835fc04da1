// Package trace tags each request with an id and logs its outcome.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header carries the request id. Caller supplied ids are kept when they are UUIDs.
const Header = "X-Request-ID"

// Stats counts finished requests by status class.
type Stats struct {
	Requests    int64
	ClientError int64
	ServerError int64
	LastLatency time.Duration
}

type Tracer struct {
	clientIP func(*http.Request) string

	requests, clientErr, serverErr atomic.Int64
	lastLatency                    atomic.Int64
}

// New returns a Tracer; clientIP may be nil.
func New(clientIP func(*http.Request) string) *Tracer {
	return &Tracer{clientIP: clientIP}
}

func (t *Tracer) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := context.WithValue(r.Context(), ctxKey{}, id)

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(start)
		t.requests.Add(1)
		t.lastLatency.Store(int64(elapsed))

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
			t.serverErr.Add(1)
		case rec.status >= 400:
			level = slog.LevelWarn
			t.clientErr.Add(1)
		}

		attrs := []any{
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", elapsed.Milliseconds(),
		}
		if t.clientIP != nil {
			attrs = append(attrs, "client_ip", t.clientIP(r))
		}
		slog.Log(ctx, level, "Request served", attrs...)
	})
}

func (t *Tracer) Stats() Stats {
	return Stats{
		Requests:    t.requests.Load(),
		ClientError: t.clientErr.Load(),
		ServerError: t.serverErr.Load(),
		LastLatency: time.Duration(t.lastLatency.Load()),
	}
}

// RequestID returns the id assigned by Wrap, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
