package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(burst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(0.001), // テスト中に補充されない十分低いレート
		Burst:           burst,
		CleanupInterval: time.Hour,
	})
}

// バースト内のリクエストは通過し、超過分が429になることを検証する。
func TestRateLimiter_BurstThenLimit(t *testing.T) {
	rl := newTestRateLimiter(3)
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), 1))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		if code := do(); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
}

// ユーザーごとに独立したリミッターが使われることを検証する。
func TestRateLimiter_PerUser(t *testing.T) {
	rl := newTestRateLimiter(1)
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(userID int64) int {
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// ユーザー1がバーストを使い切る
	if code := do(1); code != http.StatusOK {
		t.Fatalf("user 1 first request: status = %d, want 200", code)
	}
	if code := do(1); code != http.StatusTooManyRequests {
		t.Errorf("user 1 second request: status = %d, want 429", code)
	}

	// ユーザー2は影響を受けない
	if code := do(2); code != http.StatusOK {
		t.Errorf("user 2 request: status = %d, want 200", code)
	}

	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("LimiterCount() = %d, want 2", got)
	}
}

// 認証コンテキストのないリクエストが401になることを検証する。
func TestRateLimiter_NoUserID(t *testing.T) {
	rl := newTestRateLimiter(1)
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
