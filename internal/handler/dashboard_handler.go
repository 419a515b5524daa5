package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/carbonlog/internal/dashboard"
	"github.com/hitoshi/carbonlog/internal/model"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	Summarize(ctx context.Context, ownerID string, window dashboard.Window) (*model.DashboardSummary, error)
}

// DashboardLatencyRecorder はダッシュボード集計のレイテンシをメトリクスに記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type DashboardLatencyRecorder interface {
	RecordDashboardLatency(duration time.Duration)
}

// DashboardHandlerConfig はダッシュボードハンドラーの設定。
type DashboardHandlerConfig struct {
	DefaultWindowDays int // daysクエリ未指定時の集計ウィンドウ（日）
}

// DashboardHandler はダッシュボード集計のHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
	config  DashboardHandlerConfig
	metrics DashboardLatencyRecorder // nil可
	now     func() time.Time
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface, config DashboardHandlerConfig, metrics DashboardLatencyRecorder) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		config:  config,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// dashboardSummaryResponse はダッシュボードサマリー部分のAPIレスポンス。
type dashboardSummaryResponse struct {
	TotalEmissions float64 `json:"total_emissions"`
	EmissionsTrend float64 `json:"emissions_trend"`
	LogsCount      int     `json:"logs_count"`
}

// categoryBreakdownResponse はカテゴリ別内訳のAPIレスポンス。
type categoryBreakdownResponse struct {
	Category   string  `json:"category"`
	Emissions  float64 `json:"emissions"`
	Percentage float64 `json:"percentage"`
}

// trendPointResponse はトレンド系列1点分のAPIレスポンス。
type trendPointResponse struct {
	Week      string  `json:"week"`
	Emissions float64 `json:"emissions"`
}

// recommendationResponse は推奨アクションのAPIレスポンス。
type recommendationResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// dashboardResponse はダッシュボード全体のAPIレスポンス。
type dashboardResponse struct {
	Summary           dashboardSummaryResponse    `json:"summary"`
	CategoryBreakdown []categoryBreakdownResponse `json:"category_breakdown"`
	WeeklyTrend       []trendPointResponse        `json:"weekly_trend"`
	Recommendations   []recommendationResponse    `json:"recommendations"`
}

// GetDashboard はユーザーの活動記録を集計したダッシュボードを返す。
// daysクエリパラメータで集計ウィンドウを指定できる（1〜365、デフォルトは設定値）。
// GET /api/dashboard?days=30
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwnerID(w, r)
	if !ok {
		return
	}

	days := h.config.DefaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidWindowError(raw))
			return
		}
		days = parsed
	}

	start := time.Now()
	window := dashboard.NewTrailingWindow(h.now(), days)

	summary, err := h.service.Summarize(r.Context(), ownerID, window)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordDashboardLatency(time.Since(start))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toDashboardResponse(summary))
}

// toDashboardResponse はmodel.DashboardSummaryからAPIレスポンスに変換する。
func toDashboardResponse(summary *model.DashboardSummary) dashboardResponse {
	breakdown := make([]categoryBreakdownResponse, 0, len(summary.Breakdown))
	for _, cb := range summary.Breakdown {
		breakdown = append(breakdown, categoryBreakdownResponse{
			Category:   cb.Category,
			Emissions:  cb.Emissions,
			Percentage: cb.Percentage,
		})
	}

	trend := make([]trendPointResponse, 0, len(summary.WeeklyTrend))
	for _, tp := range summary.WeeklyTrend {
		trend = append(trend, trendPointResponse{
			Week:      tp.PeriodLabel,
			Emissions: tp.Emissions,
		})
	}

	recs := make([]recommendationResponse, 0, len(summary.Recommendations))
	for _, rec := range summary.Recommendations {
		recs = append(recs, recommendationResponse{
			Title:       rec.Title,
			Description: rec.Description,
			Impact:      rec.Impact,
		})
	}

	return dashboardResponse{
		Summary: dashboardSummaryResponse{
			TotalEmissions: summary.TotalEmissions,
			EmissionsTrend: summary.EmissionsTrend,
			LogsCount:      summary.LogsCount,
		},
		CategoryBreakdown: breakdown,
		WeeklyTrend:       trend,
		Recommendations:   recs,
	}
}
