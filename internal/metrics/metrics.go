// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/carbonlog/internal/model"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logsCreated        *prometheus.CounterVec
	estimateFailures   *prometheus.CounterVec
	defaultFactorSubst prometheus.Counter
	dashboardLatency   prometheus.Histogram
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carbonlog_activity_logs_created_total",
			Help: "作成された活動記録の種類別合計数",
		}, []string{"kind"}),
		estimateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carbonlog_estimate_failures_total",
			Help: "排出量算出失敗のエラーコード別合計数",
		}, []string{"code"}),
		defaultFactorSubst: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carbonlog_default_factor_substitutions_total",
			Help: "未知の購入カテゴリにデフォルト係数を代用した合計数",
		}),
		dashboardLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carbonlog_dashboard_latency_seconds",
			Help:    "ダッシュボード集計のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carbonlog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.logsCreated,
		c.estimateFailures,
		c.defaultFactorSubst,
		c.dashboardLatency,
		c.httpStatus,
	)

	return c
}

// RecordLogCreated は活動記録の作成を記録する。
func (c *Collector) RecordLogCreated(kind model.ActivityKind) {
	c.logsCreated.WithLabelValues(string(kind)).Inc()
}

// RecordEstimateFailure は排出量算出の失敗をエラーコード別に記録する。
func (c *Collector) RecordEstimateFailure(code string) {
	c.estimateFailures.WithLabelValues(code).Inc()
}

// RecordDefaultFactorSubstitution はデフォルト係数への置換を記録する。
func (c *Collector) RecordDefaultFactorSubstitution(category string) {
	c.defaultFactorSubst.Inc()
}

// RecordDashboardLatency はダッシュボード集計のレイテンシを記録する。
func (c *Collector) RecordDashboardLatency(duration time.Duration) {
	c.dashboardLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターの/metricsにマウントして使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
