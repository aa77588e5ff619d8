package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func limitedRequest(t *testing.T, h http.Handler, remote string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=silk", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_BurstThen429(t *testing.T) {
	h := RateLimit(0.5, 3, discardLogger())(okHandler())

	for i := range 3 {
		assert.Equal(t, http.StatusOK, limitedRequest(t, h, "10.0.0.1:1234").Code, "request %d", i+1)
	}

	rr := limitedRequest(t, h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
}

func TestRateLimit_IndependentPerClient(t *testing.T) {
	h := RateLimit(0.5, 1, discardLogger())(okHandler())

	assert.Equal(t, http.StatusOK, limitedRequest(t, h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(t, h, "10.0.0.1:5678").Code)
	assert.Equal(t, http.StatusOK, limitedRequest(t, h, "10.0.0.2:1234").Code)
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	h := RateLimit(0, 0, discardLogger())(okHandler())

	for range 50 {
		assert.Equal(t, http.StatusOK, limitedRequest(t, h, "10.0.0.1:1234").Code)
	}
}

func TestVisitorStore_SweepsIdleClients(t *testing.T) {
	now := time.Now()
	s := newVisitorStore(1, 1, time.Minute)
	s.nowFunc = func() time.Time { return now }

	s.get("10.0.0.1")
	s.get("10.0.0.2")
	assert.Equal(t, 2, s.len())

	now = now.Add(2 * time.Minute)
	s.get("10.0.0.3")
	assert.Equal(t, 1, s.len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.0.2.1:4000", want: "192.0.2.1"},
		{name: "first forwarded hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, remote: "10.0.0.1:80", want: "203.0.113.5"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remote: "10.0.0.1:80", want: "198.51.100.7"},
		{name: "garbage forwarded", headers: map[string]string{"X-Forwarded-For": "unknown"}, remote: "192.0.2.9:80", want: "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
