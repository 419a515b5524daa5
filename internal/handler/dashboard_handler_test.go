package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/carbonlog/internal/dashboard"
	"github.com/hitoshi/carbonlog/internal/model"
)

// mockDashboardService はDashboardServiceInterfaceのモック実装。
type mockDashboardService struct {
	summarizeFn func(ctx context.Context, ownerID string, window dashboard.Window) (*model.DashboardSummary, error)
}

func (m *mockDashboardService) Summarize(ctx context.Context, ownerID string, window dashboard.Window) (*model.DashboardSummary, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, ownerID, window)
	}
	return &model.DashboardSummary{}, nil
}

// mockLatencyRecorder はDashboardLatencyRecorderのモック実装。
type mockLatencyRecorder struct {
	count int
}

func (m *mockLatencyRecorder) RecordDashboardLatency(duration time.Duration) {
	m.count++
}

func testSummary() *model.DashboardSummary {
	return &model.DashboardSummary{
		TotalEmissions: 100.0,
		EmissionsTrend: -12.5,
		LogsCount:      4,
		Breakdown: []model.CategoryBreakdown{
			{Category: "Electricity", Emissions: 23.7, Percentage: 23.7},
			{Category: "Transport", Emissions: 76.3, Percentage: 76.3},
			{Category: "Purchases", Emissions: 0, Percentage: 0},
		},
		WeeklyTrend: []model.TrendPoint{
			{PeriodLabel: "Week 1", Emissions: 10},
			{PeriodLabel: "Week 2", Emissions: 20},
			{PeriodLabel: "Week 3", Emissions: 30},
			{PeriodLabel: "Week 4", Emissions: 40},
		},
		Recommendations: []model.Recommendation{
			{Title: "Use Public Transport", Description: "desc", Impact: "30%"},
			{Title: "Reduce Electricity Usage", Description: "desc", Impact: "15%"},
		},
	}
}

// --- GET /api/dashboard テスト ---

func TestDashboardHandler_GetDashboard_Success(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := &mockDashboardService{
		summarizeFn: func(ctx context.Context, ownerID string, window dashboard.Window) (*model.DashboardSummary, error) {
			if ownerID != "user-123" {
				t.Errorf("ownerID = %q, want user-123", ownerID)
			}
			wantFrom := now.AddDate(0, 0, -30)
			if !window.From.Equal(wantFrom) {
				t.Errorf("window.From = %v, want %v", window.From, wantFrom)
			}
			return testSummary(), nil
		},
	}
	recorder := &mockLatencyRecorder{}
	h := NewDashboardHandler(svc, DashboardHandlerConfig{DefaultWindowDays: 30}, recorder)
	h.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = withOwnerID(req, "user-123")
	w := httptest.NewRecorder()

	h.GetDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	summary, ok := resp["summary"].(map[string]interface{})
	if !ok {
		t.Fatal("expected summary object in response")
	}
	if summary["total_emissions"] != 100.0 {
		t.Errorf("total_emissions = %v, want 100.0", summary["total_emissions"])
	}
	if summary["emissions_trend"] != -12.5 {
		t.Errorf("emissions_trend = %v, want -12.5", summary["emissions_trend"])
	}
	if summary["logs_count"] != 4.0 {
		t.Errorf("logs_count = %v, want 4", summary["logs_count"])
	}

	breakdown, ok := resp["category_breakdown"].([]interface{})
	if !ok || len(breakdown) != 3 {
		t.Fatalf("expected 3 category_breakdown entries, got %v", resp["category_breakdown"])
	}

	trend, ok := resp["weekly_trend"].([]interface{})
	if !ok || len(trend) != 4 {
		t.Fatalf("expected 4 weekly_trend entries, got %v", resp["weekly_trend"])
	}
	first, ok := trend[0].(map[string]interface{})
	if !ok || first["week"] != "Week 1" {
		t.Errorf("weekly_trend[0].week = %v, want Week 1", first["week"])
	}

	recs, ok := resp["recommendations"].([]interface{})
	if !ok || len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %v", resp["recommendations"])
	}

	if recorder.count != 1 {
		t.Errorf("latency recorded %d times, want 1", recorder.count)
	}
}

func TestDashboardHandler_GetDashboard_CustomWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := &mockDashboardService{
		summarizeFn: func(ctx context.Context, ownerID string, window dashboard.Window) (*model.DashboardSummary, error) {
			wantFrom := now.AddDate(0, 0, -7)
			if !window.From.Equal(wantFrom) {
				t.Errorf("window.From = %v, want %v", window.From, wantFrom)
			}
			return testSummary(), nil
		},
	}
	h := NewDashboardHandler(svc, DashboardHandlerConfig{DefaultWindowDays: 30}, nil)
	h.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?days=7", nil)
	req = withOwnerID(req, "user-123")
	w := httptest.NewRecorder()

	h.GetDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestDashboardHandler_GetDashboard_InvalidWindow(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{}, DashboardHandlerConfig{DefaultWindowDays: 30}, nil)

	tests := []string{"0", "366", "-1", "abc"}
	for _, days := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard?days="+days, nil)
		req = withOwnerID(req, "user-123")
		w := httptest.NewRecorder()

		h.GetDashboard(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("days=%s: status = %d, want %d", days, w.Code, http.StatusBadRequest)
		}

		var resp apiErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("days=%s: failed to decode response: %v", days, err)
		}
		if resp.Code != model.ErrCodeInvalidWindow {
			t.Errorf("days=%s: code = %q, want %q", days, resp.Code, model.ErrCodeInvalidWindow)
		}
		// 数値に解析できない入力もメッセージに元の値がそのまま含まれる
		if !strings.Contains(resp.Message, days) {
			t.Errorf("days=%s: message %q does not contain the raw input", days, resp.Message)
		}
	}
}

func TestDashboardHandler_GetDashboard_Unauthorized(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{}, DashboardHandlerConfig{DefaultWindowDays: 30}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()

	h.GetDashboard(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestDashboardHandler_GetDashboard_SourceUnavailable(t *testing.T) {
	svc := &mockDashboardService{
		summarizeFn: func(ctx context.Context, ownerID string, window dashboard.Window) (*model.DashboardSummary, error) {
			return nil, model.NewSourceUnavailableError(errors.New("connection refused"))
		},
	}
	h := NewDashboardHandler(svc, DashboardHandlerConfig{DefaultWindowDays: 30}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = withOwnerID(req, "user-123")
	w := httptest.NewRecorder()

	h.GetDashboard(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeSourceUnavailable {
		t.Errorf("Code = %q, want %q", resp.Code, model.ErrCodeSourceUnavailable)
	}
}
