package middleware

import (
	"context"
	"net/http"
	"strings"

	nuts "github.com/vaudience/go-nuts"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestIDs tags each request with an id, reusing a sane inbound header.
func RequestIDs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = nuts.NID("req", 12)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the id assigned by RequestIDs, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// accessLog adapts the access log writer of gorilla/handlers to the service logger.
type accessLog struct{}

func (accessLog) Write(p []byte) (int, error) {
	nuts.L.Debugf("[HTTP] %s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// AccessLog is the writer for handlers.CombinedLoggingHandler.
var AccessLog accessLog

// recoveryLog routes panics caught by handlers.RecoveryHandler to the service logger.
type recoveryLog struct{}

func (recoveryLog) Println(v ...interface{}) {
	nuts.L.Errorf("[HTTP] Recovered from panic: %v", v)
}

// RecoveryLogger is the logger for handlers.RecoveryLogger.
var RecoveryLogger recoveryLog
