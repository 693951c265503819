package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSlowRequestMs is the threshold above which a request is logged
// as slow. CAMPDESK_SLOW_REQUEST_MS overrides it.
const DefaultSlowRequestMs = 200

var slowThresholdMs = sync.OnceValue(func() float64 {
	if v := os.Getenv("CAMPDESK_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
	}
	return DefaultSlowRequestMs
})

// nextRequestID numbers requests within a single process run so that
// the log lines of one request can be grouped.
var nextRequestID atomic.Uint64

// recordingWriter remembers the status code passed to WriteHeader.
type recordingWriter struct {
	http.ResponseWriter
	status int
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

var writerPool = sync.Pool{
	New: func() any { return &recordingWriter{} },
}

// Timing returns middleware that logs the duration of every request
// except static assets. Requests under the slow threshold log at DEBUG,
// the rest at WARN under the slow_request event.
func Timing() func(http.Handler) http.Handler {
	threshold := slowThresholdMs()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := writerPool.Get().(*recordingWriter)
			rw.ResponseWriter = w
			rw.status = http.StatusOK

			defer func() {
				elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
				level := slog.LevelDebug
				event := "request"
				if elapsedMs >= threshold {
					level = slog.LevelWarn
					event = "slow_request"
				}
				slog.Log(r.Context(), level, event,
					"request_id", nextRequestID.Add(1),
					"method", r.Method,
					"path", r.URL.Path,
					"status", rw.status,
					"duration_ms", elapsedMs,
				)
				rw.ResponseWriter = nil
				writerPool.Put(rw)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
