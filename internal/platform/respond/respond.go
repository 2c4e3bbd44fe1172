// Package respond renders RFC 9457 problem details for responses produced
// outside huma operations: router 404/405 and recovered panics.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	// ServerErrorDetail is the only detail clients see for unexpected failures.
	ServerErrorDetail = "Server Error"
)

var allowCandidates = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// WriteProblem writes a problem document with the given status and detail,
// encoded as CBOR when the client prefers it and JSON otherwise.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := &huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	var (
		body []byte
		err  error
		ct   = contentTypeProblemJSON
	)
	if acceptsCBOR(r.Header.Get("Accept")) {
		ct = contentTypeProblemCBOR
		body, err = cbor.Marshal(problem)
	} else {
		body, err = json.Marshal(problem)
	}
	if err != nil {
		applog.LogError(r.Context(), "encode problem", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// NotFoundHandler renders chi's unmatched routes as problem details.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, fmt.Sprintf("no route for %s", r.URL.Path))
	}
}

// MethodNotAllowedHandler renders 405 responses and lists the methods the path
// does accept in the Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		WriteProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// Recoverer turns panics into 500 problem responses. http.ErrAbortHandler is
// re-raised so net/http can abort the connection, and nothing is written when the
// handler already started its response.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LoggerFromContext(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				if rw.wroteHeader {
					return
				}
				WriteProblem(rw, r, http.StatusInternalServerError, ServerErrorDetail)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// acceptsCBOR reports whether the Accept header ranks CBOR strictly above JSON.
// Wildcards count toward JSON, so browsers and curl keep getting JSON.
func acceptsCBOR(accept string) bool {
	if accept == "" {
		return false
	}
	var cborQ, jsonQ float64
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, q := parseMediaRange(part)
		switch mediaType {
		case "application/cbor", "application/problem+cbor":
			cborQ = max(cborQ, q)
		case "application/json", "application/problem+json", "*/*", "application/*":
			jsonQ = max(jsonQ, q)
		}
	}
	return cborQ > 0 && cborQ > jsonQ
}

func parseMediaRange(part string) (string, float64) {
	segments := strings.Split(part, ";")
	mediaType := strings.ToLower(strings.TrimSpace(segments[0]))
	q := 1.0
	for _, param := range segments[1:] {
		key, val, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || strings.ToLower(strings.TrimSpace(key)) != "q" {
			continue
		}
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && parsed >= 0 && parsed <= 1 {
			q = parsed
		}
	}
	return mediaType, q
}

func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}
	var allowed []string
	for _, m := range allowCandidates {
		if rctx.Routes.Match(chi.NewRouteContext(), m, path) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}
