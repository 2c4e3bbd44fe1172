package logging

import (
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// traceContext is a parsed W3C traceparent header:
// {version}-{trace-id}-{parent-id}-{trace-flags}.
type traceContext struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// parseTraceparent rejects version ff, all-zero ids and, for version 00,
// trailing fields. Later versions may append fields after the flags.
func parseTraceparent(header string) (traceContext, bool) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(header)), "-")
	if len(parts) < 4 {
		return traceContext{}, false
	}
	version, traceID, spanID, flags := parts[0], parts[1], parts[2], parts[3]
	if !isHex(version, 2) || version == "ff" || (version == "00" && len(parts) != 4) {
		return traceContext{}, false
	}
	if !isHex(traceID, 32) || !isHex(spanID, 16) || !isHex(flags, 2) {
		return traceContext{}, false
	}
	if strings.Trim(traceID, "0") == "" || strings.Trim(spanID, "0") == "" {
		return traceContext{}, false
	}
	b, _ := hex.DecodeString(flags)
	return traceContext{TraceID: traceID, SpanID: spanID, Sampled: b[0]&0x01 == 1}, true
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func (tc traceContext) resource(projectID string) string {
	return "projects/" + projectID + "/traces/" + tc.TraceID
}

// fields returns the Cloud Logging trace correlation fields, or nil when the
// project is unknown.
func (tc traceContext) fields(projectID string) []zap.Field {
	if projectID == "" {
		return nil
	}
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", tc.resource(projectID)),
		zap.String("logging.googleapis.com/spanId", tc.SpanID),
		zap.Bool("logging.googleapis.com/trace_sampled", tc.Sampled),
	}
}

var (
	projectOverride atomic.Pointer[string]

	envProjectID = sync.OnceValue(func() string {
		for _, key := range []string{"FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT"} {
			if v := os.Getenv(key); v != "" {
				return v
			}
		}
		return ""
	})
)

// SetProjectID sets the project used in trace resource names. An empty id
// restores the environment lookup.
func SetProjectID(id string) {
	if id == "" {
		projectOverride.Store(nil)
		return
	}
	projectOverride.Store(&id)
}

func projectID() string {
	if p := projectOverride.Load(); p != nil {
		return *p
	}
	return envProjectID()
}
