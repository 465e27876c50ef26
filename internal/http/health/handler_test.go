package health

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/starter-api/internal/platform/respond"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	cfg := huma.DefaultConfig("HealthTest", "test")
	cfg.CreateHooks = nil
	Register(humachi.New(router, cfg))
	return router
}

func TestHealthHandler(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if got := strings.TrimSpace(resp.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf(`expected {"status":"ok"}, got %s`, got)
	}
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/health", nil))

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); allow != http.MethodGet {
		t.Fatalf("expected Allow GET, got %q", allow)
	}
}
