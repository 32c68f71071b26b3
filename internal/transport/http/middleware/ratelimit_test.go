package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newLimiter(t *testing.T, burst int, trusted ...string) *RateLimiter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRateLimiter(ctx, rate.Limit(0.001), burst, trusted...)
}

func okLimited(rl *RateLimiter) http.Handler {
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
}

func sendFrom(h http.Handler, remote, xff string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestClientIP_UntrustedPeerIgnoresHeaders(t *testing.T) {
	rl := newLimiter(t, 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("X-Real-Ip", "5.6.7.8")
	assert.Equal(t, "203.0.113.9", rl.clientIP(req))
}

func TestClientIP_TrustedProxyUsesRightmostUntrustedHop(t *testing.T) {
	rl := newLimiter(t, 1, "10.0.0.1", "10.0.0.2")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	req.Header.Set("X-Forwarded-For", "6.6.6.6, 1.2.3.4, 10.0.0.2")
	assert.Equal(t, "1.2.3.4", rl.clientIP(req))
}

func TestClientIP_TrustedProxyFallsBackToXRealIP(t *testing.T) {
	rl := newLimiter(t, 1, "10.0.0.1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	req.Header.Set("X-Real-Ip", "9.10.11.12")
	assert.Equal(t, "9.10.11.12", rl.clientIP(req))
}

func TestClientIP_MalformedRemoteAddr(t *testing.T) {
	rl := newLimiter(t, 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1"
	assert.Equal(t, "192.168.1.1", rl.clientIP(req))
}

func TestLimit_RejectsOverBurstPerIP(t *testing.T) {
	h := okLimited(newLimiter(t, 1))

	assert.Equal(t, http.StatusOK, sendFrom(h, "1.1.1.1:1000", ""))
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(h, "1.1.1.1:1001", ""))
	assert.Equal(t, http.StatusOK, sendFrom(h, "2.2.2.2:1000", ""))
}

func TestLimit_RotatingForwardedForDoesNotBypass(t *testing.T) {
	h := okLimited(newLimiter(t, 3))

	limited := 0
	for i := 0; i < 50; i++ {
		if sendFrom(h, "198.51.100.7:5555", fmt.Sprintf("10.1.%d.%d", i/256, i%256)) == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 47, limited)
}

func TestLimit_BehindTrustedProxyKeysOnClient(t *testing.T) {
	h := okLimited(newLimiter(t, 1, "10.0.0.1"))

	assert.Equal(t, http.StatusOK, sendFrom(h, "10.0.0.1:80", "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(h, "10.0.0.1:80", "1.1.1.1"))
	assert.Equal(t, http.StatusOK, sendFrom(h, "10.0.0.1:80", "2.2.2.2"))
}

func TestCleanup_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rl := NewRateLimiter(ctx, rate.Limit(1), 1)
	cancel()

	select {
	case <-rl.done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine still running after cancel")
	}
}
