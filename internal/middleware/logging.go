package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// HTTPMetricsRecorder はHTTPレイヤのメトリクス記録のインターフェース。
type HTTPMetricsRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// userIDHolder は内側のミドルウェアで解決されたユーザーIDを
// 外側のロギングミドルウェアへ伝えるための入れ物。
// ロギングは認証より外側に位置するため、認証後のコンテキスト値を
// 直接は参照できず、この入れ物を経由して受け取る。
type userIDHolder struct {
	id int64
}

// userIDHolderContextKey はuserIDHolderをコンテキストに格納するためのキー。
var userIDHolderContextKey = contextKey("user_id_holder")

// recordAuthenticatedUser は認証済みユーザーIDをロギング用の入れ物に記録する。
// ロギングミドルウェアの内側で実行されていない場合は何もしない。
func recordAuthenticatedUser(ctx context.Context, userID int64) {
	if holder, ok := ctx.Value(userIDHolderContextKey).(*userIDHolder); ok {
		holder.id = userID
	}
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、status、duration_ms、request_id、
// user_id（認証済みの場合）を含む。
// metricsがnilでない場合はステータスコードとレイテンシも記録する。
func NewLoggingMiddleware(logger *slog.Logger, metrics HTTPMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			holder := &userIDHolder{}
			r = r.WithContext(context.WithValue(r.Context(), userIDHolderContextKey, holder))

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			if metrics != nil {
				metrics.RecordHTTPStatus(rec.statusCode)
				metrics.RecordRequestLatency(duration)
			}

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", durationMs),
			}

			if requestID := RequestIDFromContext(r.Context()); requestID != "" {
				args = append(args, slog.String("request_id", requestID))
			}

			// 認証ミドルウェアが記録したユーザーIDがあれば追加
			if holder.id != 0 {
				args = append(args, slog.String("user_id", strconv.FormatInt(holder.id, 10)))
			}

			// slogのログレベルをステータスコードに応じて変更
			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
