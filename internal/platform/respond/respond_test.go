package respond

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	appmiddleware "github.com/janisto/starter-api/internal/platform/middleware"
)

func decodeProblem(t *testing.T, resp *httptest.ResponseRecorder) Problem {
	t.Helper()
	var p Problem
	var err error
	if strings.HasSuffix(resp.Header().Get("Content-Type"), "+cbor") {
		err = cbor.Unmarshal(resp.Body.Bytes(), &p)
	} else {
		err = json.Unmarshal(resp.Body.Bytes(), &p)
	}
	if err != nil {
		t.Fatalf("failed to decode problem %q: %v", resp.Body.String(), err)
	}
	return p
}

func TestNotFoundHandlerReturnsProblemDetails(t *testing.T) {
	router := chi.NewRouter()
	router.NotFound(NotFoundHandler())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != contentTypeProblemJSON {
		t.Fatalf("expected %s, got %q", contentTypeProblemJSON, ct)
	}
	link := resp.Header().Get("Link")
	if !strings.Contains(link, schemaPath) || !strings.Contains(link, "describedBy") {
		t.Fatalf("expected Link header with schema, got %q", link)
	}

	p := decodeProblem(t, resp)
	if p.Status != http.StatusNotFound || p.Title != "Not Found" || p.Detail != "resource not found" {
		t.Fatalf("unexpected problem: %+v", p)
	}
	if !strings.HasPrefix(p.Schema, "http://") || !strings.HasSuffix(p.Schema, schemaPath) {
		t.Fatalf("unexpected $schema %q", p.Schema)
	}
}

func TestNotFoundHandlerReturnsCBORWhenAccepted(t *testing.T) {
	router := chi.NewRouter()
	router.NotFound(NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("Accept", "application/cbor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if ct := resp.Header().Get("Content-Type"); ct != contentTypeProblemCBOR {
		t.Fatalf("expected %s, got %q", contentTypeProblemCBOR, ct)
	}
	if p := decodeProblem(t, resp); p.Status != http.StatusNotFound {
		t.Fatalf("expected status 404 in CBOR body, got %d", p.Status)
	}
}

func TestMethodNotAllowedHandlerListsAllowedMethods(t *testing.T) {
	router := chi.NewRouter()
	router.MethodNotAllowed(MethodNotAllowedHandler())
	router.Get("/multi", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Put("/multi", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/multi", nil))

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); allow != "GET, PUT" {
		t.Fatalf("expected Allow 'GET, PUT', got %q", allow)
	}
	p := decodeProblem(t, resp)
	if p.Title != "Method Not Allowed" || !strings.Contains(p.Detail, "POST") {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestMethodNotAllowedWithEmptyPath(t *testing.T) {
	router := chi.NewRouter()
	router.MethodNotAllowed(MethodNotAllowedHandler())
	router.Get("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.URL.Path = ""
	req.URL.RawPath = ""
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestAllowedMethodsNilRouteContext(t *testing.T) {
	if got := allowedMethods(httptest.NewRequest(http.MethodGet, "/", nil)); got != nil {
		t.Fatalf("expected nil without a chi route context, got %v", got)
	}
}

func TestRecovererReturnsProblemDetails(t *testing.T) {
	router := chi.NewRouter()
	router.Use(appmiddleware.RequestID(), Recoverer())
	api := humachi.New(router, huma.DefaultConfig("Test", "test"))
	huma.Get(api, "/panic", func(context.Context, *struct{}) (*struct{}, error) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != contentTypeProblemJSON {
		t.Fatalf("expected %s, got %q", contentTypeProblemJSON, ct)
	}
	p := decodeProblem(t, resp)
	if p.Title != "Internal Server Error" || p.Detail != "internal server error" {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestRecovererHandlesNonErrorAndErrorPanics(t *testing.T) {
	for name, value := range map[string]any{"int": 42, "error": errors.New("bad")} {
		t.Run(name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Use(Recoverer())
			router.Get("/panic", func(http.ResponseWriter, *http.Request) { panic(value) })

			req := httptest.NewRequest(http.MethodGet, "/panic", nil)
			req.Header.Set("Accept", "application/cbor")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", resp.Code)
			}
			if p := decodeProblem(t, resp); p.Detail != "internal server error" {
				t.Fatalf("unexpected detail %q", p.Detail)
			}
		})
	}
}

func TestRecovererRePanicsOnErrAbortHandler(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Recoverer())
	router.Get("/abort", func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, http.ErrAbortHandler) {
			t.Fatalf("expected http.ErrAbortHandler to be re-panicked, got %v", err)
		}
	}()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	t.Fatal("expected panic to propagate")
}

func TestRecovererSkipsWriteWhenHeaderAlreadyWritten(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Recoverer())
	router.Get("/partial", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial response"))
		panic("panic after write")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/partial", nil))

	if resp.Code != http.StatusOK || resp.Body.String() != "partial response" {
		t.Fatalf("expected original response to be preserved, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestResponseWriterTracksWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}
	if rw.wroteHeader {
		t.Fatal("expected wroteHeader false initially")
	}
	if n, err := rw.Write([]byte("hello")); err != nil || n != 5 {
		t.Fatalf("unexpected write result %d, %v", n, err)
	}
	if !rw.wroteHeader {
		t.Fatal("expected wroteHeader after Write")
	}
	if rw.Unwrap() != rec {
		t.Fatal("expected Unwrap to return the underlying writer")
	}
}

func TestSchemaURLScheme(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
		want  string
	}{
		{"plain", func(*http.Request) {}, "http://example.com" + schemaPath},
		{"forwarded https", func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }, "https://example.com" + schemaPath},
		{"tls", func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, "https://example.com" + schemaPath},
		{"no host", func(r *http.Request) { r.Host = "" }, "http://localhost" + schemaPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/missing", nil)
			req.Host = "example.com"
			tt.setup(req)
			if got := schemaURL(req); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestJSONProblemHasNoHTMLEscaping(t *testing.T) {
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	WriteProblem(resp, req, http.StatusBadRequest, "<bad> & wrong")

	body := resp.Body.String()
	if strings.Contains(body, `\u003c`) || strings.Contains(body, `\u0026`) {
		t.Fatalf("response should not contain HTML-escaped characters: %s", body)
	}
}

func TestEnsureVary(t *testing.T) {
	h := make(http.Header)
	h.Set("Vary", "Accept-Encoding, accept")
	ensureVary(h, "Origin", "Accept", "Origin")

	count := map[string]int{}
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			count[strings.ToLower(strings.TrimSpace(part))]++
		}
	}
	if count["accept"] != 1 || count["origin"] != 1 || count["accept-encoding"] != 1 {
		t.Fatalf("unexpected Vary tokens %v", h.Values("Vary"))
	}

	empty := make(http.Header)
	ensureVary(empty)
	if len(empty.Values("Vary")) != 0 {
		t.Fatalf("expected no Vary header, got %v", empty.Values("Vary"))
	}
}

func TestParseAccept(t *testing.T) {
	tests := []struct {
		header string
		want   []mediaRange
	}{
		{"text", []mediaRange{{"text", "*", 1}}},
		{"application/json, , text/html", []mediaRange{{"application", "json", 1}, {"text", "html", 1}}},
		{"application/json;q=invalid", []mediaRange{{"application", "json", 1}}},
		{"application/json;q=2.0", []mediaRange{{"application", "json", 1}}},
		{"application/json;q=-0.5", []mediaRange{{"application", "json", 1}}},
		{"application/json;q=0.5;q=0.9", []mediaRange{{"application", "json", 0.9}}},
		{"Application/CBOR; Q=0.3", []mediaRange{{"application", "cbor", 0.3}}},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := parseAccept(tt.header)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d ranges, got %v", len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("range %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		accept string
		cbor   bool
	}{
		{"", false},
		{"*/*", false},
		{"application/*", false},
		{"application/json", false},
		{"application/cbor", true},
		{"application/cbor, application/json", false},
		{"application/json;q=0.5, application/cbor", true},
		{"application/cbor;q=0.5, application/json", false},
		{"application/*+cbor", true},
		{"application/*+json", false},
		{"text/html", false},
		{"image/png, text/plain", false},
		{"application/json;q=0, application/cbor;q=0", false},
		{"*/*;q=0", false},
		{"application/cbor;q=0, application/json;q=1.0", false},
		{"application/json;q=0, application/cbor;q=1.0", true},
		{"application/cbor, */*;q=0.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			if got := selectFormat(tt.accept); got != tt.cbor {
				t.Fatalf("selectFormat(%q) = %v, want %v", tt.accept, got, tt.cbor)
			}
		})
	}
}

func TestRecovererKeepsRequestID(t *testing.T) {
	router := chi.NewRouter()
	router.Use(appmiddleware.RequestID(), Recoverer())
	router.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "panic-req")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get(chimiddleware.RequestIDHeader); got != "panic-req" {
		t.Fatalf("expected request ID header to survive the panic, got %q", got)
	}
}
