package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/config"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Request and response bodies here are small JSON documents; anything
// larger is logged by size only.
const maxLoggedBody = 4 * 1024

const masked = "***"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   *bytes.Buffer
	err    error
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	if strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream") {
		w.body = nil
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if w.body != nil && w.body.Len() <= maxLoggedBody {
		w.body.Write(p)
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) SetError(err error) {
	w.err = err
}

// Flush keeps the verification event stream working behind the recorder.
func (w *statusRecorder) Flush() {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// bodyLogger masks configured keys, such as phone_number and code, in JSON
// bodies before they reach the log.
type bodyLogger struct {
	keys map[string]struct{}
}

func newBodyLogger(cfg config.Config) bodyLogger {
	var fields []string
	if cfg != nil {
		fields = cfg.GetArray("instrument.log_mask_fields")
	}

	keys := lo.SliceToMap(
		lo.Compact(lo.Map(fields, func(f string, _ int) string { return strings.ToLower(strings.TrimSpace(f)) })),
		func(f string) (string, struct{}) { return f, struct{}{} },
	)
	return bodyLogger{keys: keys}
}

func (b bodyLogger) hidden(key string) bool {
	_, ok := b.keys[strings.ToLower(key)]
	return ok
}

func (b bodyLogger) headers(h http.Header) http.Header {
	out := h.Clone()
	for k := range out {
		if b.hidden(k) {
			out.Set(k, masked)
		}
	}
	return out
}

func (b bodyLogger) mask(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if b.hidden(k) {
				val[k] = masked
			} else {
				val[k] = b.mask(inner)
			}
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = b.mask(inner)
		}
		return val
	default:
		return v
	}
}

func (b bodyLogger) body(raw []byte) any {
	switch {
	case len(raw) == 0:
		return nil
	case len(raw) > maxLoggedBody:
		return map[string]any{"omitted_bytes": len(raw)}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return map[string]any{"non_json_bytes": len(raw)}
	}
	return b.mask(doc)
}

// peekBody reads the request body for logging and puts it back for the
// handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1)) //nolint:errcheck // logging only
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	return raw
}

func routeOf(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	bl := newBodyLogger(cfg)
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeOf(r)
			start := time.Now()

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route, trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				attribute.String("client.address", r.RemoteAddr),
			))
			defer span.End()

			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"client_ip", r.RemoteAddr,
				"headers", bl.headers(r.Header),
				"body", bl.body(peekBody(r)),
			)

			rec := &statusRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.code()
			attrs := metric.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			)

			span.SetAttributes(
				semconv.HTTPResponseStatusCodeKey.Int(status),
				attribute.Int("http.response_content_length", rec.bytes),
			)
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			switch {
			case status >= http.StatusInternalServerError && rec.err != nil:
				span.SetStatus(codes.Error, rec.err.Error())
			case status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(status))
			default:
				span.SetStatus(codes.Ok, "")
			}

			if requests != nil {
				requests.Add(ctx, 1, attrs)
			}
			if duration != nil {
				duration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
			}

			var respBody any
			if rec.body != nil {
				respBody = bl.body(rec.body.Bytes())
			}
			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"body", respBody,
			)
		})
	}
}
