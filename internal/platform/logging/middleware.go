package logging

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger derives the request-scoped logger from the one already in the
// context (the global logger by default). It adds Cloud Trace correlation from
// the traceparent header and the chi request id.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := LoggerFromContext(ctx)
			var fields []zap.Field
			if tc, ok := parseTraceparent(r.Header.Get(traceparentHeader)); ok {
				fields = append(fields, tc.fields(projectID())...)
			}
			if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
				fields = append(fields, zap.String("requestId", reqID))
			}
			if len(fields) > 0 {
				logger = logger.With(fields...)
			}
			if requestInfoFrom(ctx) == nil {
				ctx = contextWithRequestInfo(ctx, &requestInfo{})
			}
			next.ServeHTTP(w, r.WithContext(contextWithLogger(ctx, logger)))
		})
	}
}

// AccessLogger writes one entry per request in the Cloud Logging httpRequest
// shape, plus the matched chi route and the owner set through WithOwner.
// 5xx responses log at error level and 4xx at warn.
func AccessLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := requestInfoFrom(r.Context())
			if info == nil {
				info = &requestInfo{}
				r = r.WithContext(contextWithRequestInfo(r.Context(), info))
			}
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{zap.Object("httpRequest", httpRequestEntry{
				method:    r.Method,
				url:       r.URL.RequestURI(),
				status:    status,
				size:      ww.BytesWritten(),
				userAgent: r.UserAgent(),
				referer:   r.Referer(),
				remoteIP:  remoteIP(r.RemoteAddr),
				protocol:  r.Proto,
				latency:   time.Since(start),
			})}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					fields = append(fields, zap.String("route", pattern))
				}
			}
			if info.ownerID != "" {
				fields = append(fields, zap.String("ownerId", info.ownerID))
			}
			LoggerFromContext(r.Context()).Log(accessLevel(status), "request completed", fields...)
		})
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func remoteIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// httpRequestEntry encodes as the LogEntry.httpRequest object Cloud Logging
// indexes. responseSize is an int64 string and latency a duration string.
type httpRequestEntry struct {
	method    string
	url       string
	status    int
	size      int
	userAgent string
	referer   string
	remoteIP  string
	protocol  string
	latency   time.Duration
}

func (e httpRequestEntry) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("requestMethod", e.method)
	enc.AddString("requestUrl", e.url)
	enc.AddInt("status", e.status)
	enc.AddString("responseSize", strconv.Itoa(e.size))
	if e.userAgent != "" {
		enc.AddString("userAgent", e.userAgent)
	}
	if e.referer != "" {
		enc.AddString("referer", e.referer)
	}
	if e.remoteIP != "" {
		enc.AddString("remoteIp", e.remoteIP)
	}
	enc.AddString("protocol", e.protocol)
	enc.AddString("latency", fmt.Sprintf("%.9fs", e.latency.Seconds()))
	return nil
}
