// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// HTTPレイヤのメトリクスとノート操作のメトリクスの両方を保持する。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	notesCreated     prometheus.Counter
	notesUpdated     prometheus.Counter
	notesDeleted     prometheus.Counter
	versionConflicts prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notehub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notehub_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		notesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notehub_notes_created_total",
			Help: "作成されたノートの合計数",
		}),
		notesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notehub_notes_updated_total",
			Help: "更新に成功したノートの合計数",
		}),
		notesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notehub_notes_deleted_total",
			Help: "削除されたノートの合計数",
		}),
		versionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notehub_version_conflicts_total",
			Help: "楽観的排他制御で検出されたバージョン競合の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.notesCreated,
		c.notesUpdated,
		c.notesDeleted,
		c.versionConflicts,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordNoteCreated はノート作成を記録する。
func (c *Collector) RecordNoteCreated() {
	c.notesCreated.Inc()
}

// RecordNoteUpdated はノート更新の成功を記録する。
func (c *Collector) RecordNoteUpdated() {
	c.notesUpdated.Inc()
}

// RecordNoteDeleted はノート削除を記録する。
func (c *Collector) RecordNoteDeleted() {
	c.notesDeleted.Inc()
}

// RecordVersionConflict はバージョン競合の検出を記録する。
func (c *Collector) RecordVersionConflict() {
	c.versionConflicts.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
