package logging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testTraceparent = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"

type arrayEncoder struct {
	zapcore.PrimitiveArrayEncoder
	out []string
}

func (a *arrayEncoder) AppendString(s string) { a.out = append(a.out, s) }

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func TestEncodeSeverity(t *testing.T) {
	tests := map[zapcore.Level]string{
		zapcore.DebugLevel:  "DEBUG",
		zapcore.InfoLevel:   "INFO",
		zapcore.WarnLevel:   "WARNING",
		zapcore.ErrorLevel:  "ERROR",
		zapcore.DPanicLevel: "CRITICAL",
		zapcore.PanicLevel:  "ALERT",
		zapcore.FatalLevel:  "EMERGENCY",
	}
	for level, want := range tests {
		enc := &arrayEncoder{}
		encodeSeverity(level, enc)
		if len(enc.out) != 1 || enc.out[0] != want {
			t.Fatalf("%v: got %v, want %s", level, enc.out, want)
		}
	}
}

func TestEncodeTimeMicros(t *testing.T) {
	enc := &arrayEncoder{}
	encodeTimeMicros(time.Date(2025, 3, 4, 5, 6, 7, 891234000, time.FixedZone("X", 3600)), enc)
	if enc.out[0] != "2025-03-04T04:06:07.891234Z" {
		t.Fatalf("unexpected timestamp %q", enc.out[0])
	}
}

func TestLoggerSingleton(t *testing.T) {
	if Logger() != Logger() {
		t.Fatal("expected a shared logger")
	}
	if Err() != nil {
		t.Fatalf("unexpected init error: %v", Err())
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	if LoggerFromContext(context.Background()) != Logger() {
		t.Fatal("expected global logger without a request logger")
	}
	l, _ := observed(zapcore.InfoLevel)
	if LoggerFromContext(WithLogger(context.Background(), l)) != l {
		t.Fatal("expected request logger from context")
	}
}

func TestParseTraceparent(t *testing.T) {
	tests := map[string]struct {
		header  string
		ok      bool
		sampled bool
	}{
		"sampled":         {header: testTraceparent, ok: true, sampled: true},
		"not sampled":     {header: "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00", ok: true},
		"uppercase":       {header: "00-3D23D071B5BFD6579171EFCE907685CB-08F067AA0BA902B7-03", ok: true, sampled: true},
		"future version":  {header: "cc-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01-extra", ok: true, sampled: true},
		"version ff":      {header: "ff-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"},
		"v00 extra field": {header: testTraceparent + "-extra"},
		"zero trace id":   {header: "00-00000000000000000000000000000000-08f067aa0ba902b7-01"},
		"zero span id":    {header: "00-3d23d071b5bfd6579171efce907685cb-0000000000000000-01"},
		"short trace id":  {header: "00-3d23d071b5bfd657-08f067aa0ba902b7-01"},
		"non-hex flags":   {header: "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-zz"},
		"garbage":         {header: "garbage"},
		"missing":         {header: ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tc, ok := parseTraceparent(tt.header)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if tc.TraceID != "3d23d071b5bfd6579171efce907685cb" || tc.SpanID != "08f067aa0ba902b7" {
				t.Fatalf("unexpected ids %+v", tc)
			}
			if tc.Sampled != tt.sampled {
				t.Fatalf("expected sampled=%v", tt.sampled)
			}
		})
	}
}

func TestTraceContextFields(t *testing.T) {
	tc, _ := parseTraceparent(testTraceparent)
	if tc.fields("") != nil {
		t.Fatal("missing project should produce no fields")
	}
	fields := tc.fields("demo-project")
	if len(fields) != 3 {
		t.Fatalf("expected 3 trace fields, got %d", len(fields))
	}
	if fields[0].String != "projects/demo-project/traces/3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("unexpected trace resource %q", fields[0].String)
	}
	if fields[1].String != "08f067aa0ba902b7" || fields[2].Integer != 1 {
		t.Fatalf("unexpected span fields %v", fields[1:])
	}
}

func TestSetProjectIDOverridesEnvironment(t *testing.T) {
	t.Cleanup(func() { SetProjectID("") })
	SetProjectID("configured")
	if projectID() != "configured" {
		t.Fatalf("expected configured project, got %q", projectID())
	}
	SetProjectID("")
	if projectID() != envProjectID() {
		t.Fatal("expected environment fallback after reset")
	}
}

func TestRequestLoggerAddsCorrelationFields(t *testing.T) {
	t.Cleanup(func() { SetProjectID("") })
	SetProjectID("demo-project")
	l, logs := observed(zapcore.InfoLevel)

	h := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LogInfo(r.Context(), "inside")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("traceparent", testTraceparent)
	ctx := context.WithValue(WithLogger(req.Context(), l), chimiddleware.RequestIDKey, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	entries := logs.FilterMessage("inside").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	m := entries[0].ContextMap()
	if m["requestId"] != "req-1" {
		t.Fatalf("expected request id, got %v", m)
	}
	if m["logging.googleapis.com/trace"] != "projects/demo-project/traces/3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("expected trace resource, got %v", m)
	}
	if m["logging.googleapis.com/spanId"] != "08f067aa0ba902b7" {
		t.Fatalf("expected span id, got %v", m)
	}
}

func TestAccessLoggerWritesHTTPRequest(t *testing.T) {
	tests := map[string]struct {
		status int
		level  zapcore.Level
	}{
		"ok":           {status: http.StatusOK, level: zapcore.InfoLevel},
		"client error": {status: http.StatusNotFound, level: zapcore.WarnLevel},
		"server error": {status: http.StatusBadGateway, level: zapcore.ErrorLevel},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, logs := observed(zapcore.DebugLevel)
			router := chi.NewRouter()
			router.Use(AccessLogger())
			router.Get("/api/profile/user/{user_id}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hi"))
			})
			req := httptest.NewRequest(http.MethodGet, "/api/profile/user/u1?x=1", nil)
			req.Header.Set("User-Agent", "devconnector-test")
			router.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithLogger(req.Context(), l)))

			entries := logs.FilterMessage("request completed").All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 access log, got %d", len(entries))
			}
			if entries[0].Level != tt.level {
				t.Fatalf("expected level %v, got %v", tt.level, entries[0].Level)
			}
			m := entries[0].ContextMap()
			if m["route"] != "/api/profile/user/{user_id}" {
				t.Fatalf("unexpected route %v", m["route"])
			}
			if _, ok := m["ownerId"]; ok {
				t.Fatal("anonymous request should not carry an owner")
			}
			hr, ok := m["httpRequest"].(map[string]any)
			if !ok {
				t.Fatalf("expected httpRequest object, got %T", m["httpRequest"])
			}
			want := map[string]any{
				"requestMethod": http.MethodGet,
				"requestUrl":    "/api/profile/user/u1?x=1",
				"status":        int64(tt.status),
				"responseSize":  "2",
				"userAgent":     "devconnector-test",
				"remoteIp":      "192.0.2.1",
				"protocol":      "HTTP/1.1",
			}
			for k, v := range want {
				if hr[k] != v {
					t.Fatalf("httpRequest[%s] = %v, want %v", k, hr[k], v)
				}
			}
			if lat, _ := hr["latency"].(string); !strings.HasSuffix(lat, "s") {
				t.Fatalf("unexpected latency %q", lat)
			}
		})
	}
}

func TestAccessLoggerReportsOwner(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)
	h := RequestLogger()(AccessLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LogInfo(WithOwner(r.Context(), "u1"), "inside")
	})))
	req := httptest.NewRequest(http.MethodPost, "/api/profile", nil)
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithLogger(req.Context(), l)))

	inside := logs.FilterMessage("inside").All()
	if len(inside) != 1 || inside[0].ContextMap()["ownerId"] != "u1" {
		t.Fatalf("expected handler log tagged with owner, got %v", inside)
	}
	access := logs.FilterMessage("request completed").All()
	if len(access) != 1 || access[0].ContextMap()["ownerId"] != "u1" {
		t.Fatalf("expected access log tagged with owner, got %v", access)
	}
}

func TestWithOwnerOutsideRequest(t *testing.T) {
	ctx := context.Background()
	if WithOwner(ctx, "") != ctx {
		t.Fatal("empty owner should leave the context alone")
	}
	l, logs := observed(zapcore.InfoLevel)
	LogInfo(WithOwner(WithLogger(ctx, l), "u2"), "job")
	if got := logs.All()[0].ContextMap()["ownerId"]; got != "u2" {
		t.Fatalf("expected owner field, got %v", got)
	}
}

func TestLogAuditEvent(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), l)

	LogAuditEvent(ctx, AuditEvent{
		Action:       "add_experience",
		UserID:       "u1",
		ResourceType: "profile",
		ResourceID:   "u1",
		Result:       AuditFailure,
		Details:      map[string]any{"reason": "max_entries"},
	})

	entries := logs.FilterMessage("Audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	m := entries[0].ContextMap()
	if m["audit.action"] != "add_experience" || m["audit.result"] != AuditFailure {
		t.Fatalf("unexpected audit fields %v", m)
	}
	if _, ok := m["audit.details"]; !ok {
		t.Fatal("expected details")
	}
}

func TestLogErrorAttachesError(t *testing.T) {
	l, logs := observed(zapcore.WarnLevel)
	ctx := WithLogger(context.Background(), l)
	LogInfo(ctx, "dropped")
	LogWarn(ctx, "warned")
	LogError(ctx, "failed", errors.New("boom"))

	if logs.Len() != 2 {
		t.Fatalf("expected info to be filtered, got %d entries", logs.Len())
	}
	if got := logs.FilterMessage("failed").All()[0].ContextMap()["error"]; got != "boom" {
		t.Fatalf("expected error field, got %v", got)
	}
}
