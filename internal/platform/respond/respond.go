package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/starter-api/internal/platform/logging"
)

const (
	schemaPath = "/schemas/ErrorModel.json"

	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound           = "resource not found"
	msgInternalServerErr  = "internal server error"
	msgMethodNotAllowedFm = "method %s not allowed"
)

// Problem is an RFC 9457 problem details body. It mirrors huma.ErrorModel so
// router-level errors look the same as errors raised inside operations.
type Problem struct {
	Schema string              `json:"$schema,omitempty" cbor:"$schema,omitempty"`
	Title  string              `json:"title,omitempty" cbor:"title,omitempty"`
	Status int                 `json:"status,omitempty" cbor:"status,omitempty"`
	Detail string              `json:"detail,omitempty" cbor:"detail,omitempty"`
	Errors []*huma.ErrorDetail `json:"errors,omitempty" cbor:"errors,omitempty"`
}

// NotFoundHandler renders 404 problem details for unmatched routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler renders 405 problem details and advertises the
// methods the path does accept in the Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		WriteProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(msgMethodNotAllowedFm, r.Method))
	}
}

// Recoverer converts panics into 500 problem details. http.ErrAbortHandler is
// re-panicked so net/http can abort the connection, and nothing is written
// when the handler already started its response.
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
				applog.LogError(r.Context(), "panic recovered", fmt.Errorf("%v", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				if rw.wroteHeader {
					return
				}
				WriteProblem(rw, r, http.StatusInternalServerError, msgInternalServerErr)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// WriteProblem writes problem details in the format preferred by the request's
// Accept header (CBOR or JSON, JSON by default).
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	schema := schemaURL(r)
	p := Problem{
		Schema: schema,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	h := w.Header()
	ensureVary(h, "Origin", "Accept")
	h.Set("Link", "<"+schema+">; rel=\"describedBy\"")

	var (
		body []byte
		err  error
	)
	if selectFormat(r.Header.Get("Accept")) {
		h.Set("Content-Type", contentTypeProblemCBOR)
		body, err = cbor.Marshal(p)
	} else {
		h.Set("Content-Type", contentTypeProblemJSON)
		body, err = marshalJSON(p)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err, zap.Int("status", status))
		h.Del("Content-Type")
		w.WriteHeader(status)
		return
	}

	logProblem(r, status, detail)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		applog.LogError(r.Context(), "failed to write problem", err, zap.Int("status", status))
	}
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func logProblem(r *http.Request, status int, detail string) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		applog.LogError(r.Context(), detail, nil, fields...)
		return
	}
	applog.LogWarn(r.Context(), detail, fields...)
}

func schemaURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host + schemaPath
}

// ensureVary merges values into the Vary header, skipping tokens already present.
func ensureVary(h http.Header, values ...string) {
	seen := make(map[string]struct{})
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			if token := strings.TrimSpace(part); token != "" {
				seen[strings.ToLower(token)] = struct{}{}
			}
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		h.Add("Vary", v)
	}
}

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. A bare type is read
// as type/*, and a missing, malformed or out-of-range q keeps the previous value (default 1).
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		mr := mediaRange{q: 1.0}
		if typ, sub, ok := strings.Cut(mt, "/"); ok {
			mr.typ, mr.subtype = typ, sub
		} else {
			mr.typ, mr.subtype = mt, "*"
		}
		for _, p := range params[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.TrimSpace(strings.ToLower(k)) != "q" {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || q < 0 || q > 1 {
				continue
			}
			mr.q = q
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// matchQuality returns the q of the most specific range matching application/<format>
// and whether any range matched.
func matchQuality(ranges []mediaRange, format string) (float64, bool) {
	best, bestQ := -1, 0.0
	for _, mr := range ranges {
		specificity := -1
		switch {
		case mr.typ == "application" && mr.subtype == format:
			specificity = 3
		case mr.typ == "application" && mr.subtype == "*+"+format:
			specificity = 2
		case mr.typ == "application" && mr.subtype == "*":
			specificity = 1
		case mr.typ == "*" && mr.subtype == "*":
			specificity = 0
		}
		if specificity > best {
			best, bestQ = specificity, mr.q
		}
	}
	return bestQ, best >= 0
}

// selectFormat reports whether CBOR should be used. JSON wins ties and is the
// fallback when neither format is acceptable.
func selectFormat(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}
	cborQ, cborOK := matchQuality(ranges, "cbor")
	if !cborOK || cborQ == 0 {
		return false
	}
	jsonQ, _ := matchQuality(ranges, "json")
	return cborQ > jsonQ
}

// allowedMethods asks chi which methods would match the current path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.RawPath
		if routePath == "" {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	var allowed []string
	for _, method := range []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// responseWriter records whether the response has started.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
