package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/carbonlog/internal/model"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// counterValue はGatherした結果から指定メトリクスのカウンタ値を取り出す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	total := 0.0
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestRecordLogCreated_IncrementsCounter は記録作成カウンタが増加することを検証する。
func TestRecordLogCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogCreated(model.ActivityElectricity)
	c.RecordLogCreated(model.ActivityElectricity)
	c.RecordLogCreated(model.ActivityTransport)

	val := counterValue(t, reg, "carbonlog_activity_logs_created_total")
	if val != 3 {
		t.Errorf("activity_logs_created_total = %v, want 3", val)
	}
}

// TestRecordEstimateFailure_IncrementsCounter は算出失敗カウンタが増加することを検証する。
func TestRecordEstimateFailure_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEstimateFailure(model.ErrCodeFactorNotFound)

	val := counterValue(t, reg, "carbonlog_estimate_failures_total")
	if val != 1 {
		t.Errorf("estimate_failures_total = %v, want 1", val)
	}
}

// TestRecordDefaultFactorSubstitution_IncrementsCounter はデフォルト係数
// 置換カウンタが増加することを検証する。
func TestRecordDefaultFactorSubstitution_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDefaultFactorSubstitution("furniture")
	c.RecordDefaultFactorSubstitution("toys")

	val := counterValue(t, reg, "carbonlog_default_factor_substitutions_total")
	if val != 2 {
		t.Errorf("default_factor_substitutions_total = %v, want 2", val)
	}
}

// TestRecordHTTPStatus_IncrementsCounter はHTTPステータスカウンタが増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(503)

	val := counterValue(t, reg, "carbonlog_http_status_total")
	if val != 3 {
		t.Errorf("http_status_total = %v, want 3", val)
	}
}

// TestRecordDashboardLatency_ObservesHistogram はレイテンシヒストグラムの
// 観測を検証する。
func TestRecordDashboardLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDashboardLatency(50 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range metrics {
		if mf.GetName() == "carbonlog_dashboard_latency_seconds" {
			found = true
			if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
				t.Errorf("sample count = %d, want 1", count)
			}
		}
	}
	if !found {
		t.Error("carbonlog_dashboard_latency_seconds metric not found")
	}
}

// TestHandler_ServesMetrics は/metricsハンドラーがPrometheus形式で
// 出力することを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogCreated(model.ActivityPurchase)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	Handler(reg).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "carbonlog_activity_logs_created_total") {
		t.Error("expected carbonlog_activity_logs_created_total in metrics output")
	}
}
