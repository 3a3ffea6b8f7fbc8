package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roombook/pkg/client"
	"roombook/pkg/config"
	"roombook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type routeHandler struct {
	method, path string
	status       int
}

func (h routeHandler) RegisterRoutes(router *httprouter.Router) {
	router.Handle(h.method, h.path, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(h.status)
	})
}

func newTestApplication(t *testing.T, rateLimit int) *Application {
	t.Helper()

	cfg := &config.Config{
		Port:              "0",
		RateLimitRequests: rateLimit,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}

	a := NewApplication(cfg)
	a.SetApp(
		routeHandler{http.MethodGet, "/health", http.StatusOK},
		routeHandler{http.MethodPost, "/api/v1/rooms", http.StatusCreated},
		routeHandler{http.MethodGet, "/api/v1/rooms", http.StatusOK},
	)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func TestApplication_HealthBypassesRateLimit(t *testing.T) {
	a := newTestApplication(t, 1)
	h := a.Handler()

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("health request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the limit is hit, got %d", w.Code)
	}
}

func TestApplication_MiddlewareStack(t *testing.T) {
	a := newTestApplication(t, 100)
	h := a.Handler()

	tests := []struct {
		name        string
		body        string
		contentType string
		expectCode  int
	}{
		{"json", `{"room_number":"101"}`, "application/json", http.StatusCreated},
		{"wrong content type", `room_number=101`, "text/plain", http.StatusUnsupportedMediaType},
		{"oversized body", `{"x":"` + strings.Repeat("a", 2048) + `"}`, "application/json", http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Errorf("expected status %d, got %d", tt.expectCode, w.Code)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("expected a request id header")
			}
		})
	}
}
