// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とワーカーから利用する。
type MetricsCollector interface {
	RecordPoseCreated()
	RecordPoseEnded()
	RecordPoseDeleted()
	RecordWarning(durationSec float64)
	RecordPosesCleaned(count int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	posesCreated    prometheus.Counter
	posesEnded      prometheus.Counter
	posesDeleted    prometheus.Counter
	warningsTotal   prometheus.Counter
	warningDuration prometheus.Histogram
	posesCleaned    prometheus.Counter
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		posesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "janejase_poses_created_total",
			Help: "作成された姿勢セッションの合計数",
		}),
		posesEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "janejase_poses_ended_total",
			Help: "終了された姿勢セッションの合計数",
		}),
		posesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "janejase_poses_deleted_total",
			Help: "削除された姿勢セッションの合計数",
		}),
		warningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "janejase_warnings_recorded_total",
			Help: "記録された姿勢警告イベントの合計数",
		}),
		warningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "janejase_warning_duration_seconds",
			Help:    "姿勢警告イベントの継続時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		posesCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "janejase_poses_cleaned_total",
			Help: "保持期間超過で削除された姿勢セッションの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "janejase_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.posesCreated,
		c.posesEnded,
		c.posesDeleted,
		c.warningsTotal,
		c.warningDuration,
		c.posesCleaned,
		c.httpStatus,
	)

	return c
}

// RecordPoseCreated はセッション作成を記録する。
func (c *Collector) RecordPoseCreated() {
	c.posesCreated.Inc()
}

// RecordPoseEnded はセッション終了を記録する。
func (c *Collector) RecordPoseEnded() {
	c.posesEnded.Inc()
}

// RecordPoseDeleted はセッション削除を記録する。
func (c *Collector) RecordPoseDeleted() {
	c.posesDeleted.Inc()
}

// RecordWarning は警告イベントの記録とその継続時間を記録する。
func (c *Collector) RecordWarning(durationSec float64) {
	c.warningsTotal.Inc()
	c.warningDuration.Observe(durationSec)
}

// RecordPosesCleaned は保持期間超過で削除されたセッション数を記録する。
func (c *Collector) RecordPosesCleaned(count int) {
	c.posesCleaned.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

var _ MetricsCollector = (*Collector)(nil)
