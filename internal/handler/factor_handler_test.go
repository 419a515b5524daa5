package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/carbonlog/internal/model"
)

// mockFactorLister はFactorListerのモック実装。
type mockFactorLister struct {
	factors []model.EmissionFactor
}

func (m *mockFactorLister) List() []model.EmissionFactor {
	return m.factors
}

// TestFactorHandler_ListFactors_SortedOutput は係数一覧がソート済みで返ることを検証する。
func TestFactorHandler_ListFactors_SortedOutput(t *testing.T) {
	lister := &mockFactorLister{
		factors: []model.EmissionFactor{
			{Category: "gasoline_car", Unit: "liter", FactorValue: 2.31, Region: "Global"},
			{Category: "electricity", Unit: "kWh", FactorValue: 0.5, Region: "Global"},
			{Category: "electricity", Unit: "kWh", FactorValue: 0.18, Region: "Kenya"},
		},
	}
	h := NewFactorHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/factors", nil)
	w := httptest.NewRecorder()

	h.ListFactors(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 3 {
		t.Fatalf("len(resp) = %d, want 3", len(resp))
	}

	// カテゴリ昇順、同一カテゴリは地域昇順
	if resp[0]["category"] != "electricity" || resp[0]["region"] != "Global" {
		t.Errorf("resp[0] = %v, want electricity@Global", resp[0])
	}
	if resp[1]["category"] != "electricity" || resp[1]["region"] != "Kenya" {
		t.Errorf("resp[1] = %v, want electricity@Kenya", resp[1])
	}
	if resp[2]["category"] != "gasoline_car" {
		t.Errorf("resp[2] = %v, want gasoline_car", resp[2])
	}

	if resp[0]["factor_value"] != 0.5 {
		t.Errorf("factor_value = %v, want 0.5", resp[0]["factor_value"])
	}
}

// TestFactorHandler_ListFactors_Empty は係数なしでも空配列を返すことを検証する。
func TestFactorHandler_ListFactors_Empty(t *testing.T) {
	h := NewFactorHandler(&mockFactorLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/factors", nil)
	w := httptest.NewRecorder()

	h.ListFactors(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want %q", got, "[]\n")
	}
}
