package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/hitoshi/carbonlog/internal/model"
)

// FactorLister は排出係数一覧の取得に必要なインターフェース。
// factor.Registryの部分集合として定義する。
type FactorLister interface {
	List() []model.EmissionFactor
}

// FactorHandler は排出係数テーブルのHTTPハンドラー。
type FactorHandler struct {
	registry FactorLister
}

// NewFactorHandler はFactorHandlerを生成する。
func NewFactorHandler(registry FactorLister) *FactorHandler {
	return &FactorHandler{registry: registry}
}

// factorResponse は排出係数のAPIレスポンス。
type factorResponse struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Unit        string  `json:"unit"`
	FactorValue float64 `json:"factor_value"`
	Region      string  `json:"region"`
	Source      string  `json:"source,omitempty"`
}

// ListFactors は登録済みの排出係数を一覧で返す。
// 出力はカテゴリ、サブカテゴリ、地域の昇順でソートされる。
// GET /api/factors
func (h *FactorHandler) ListFactors(w http.ResponseWriter, r *http.Request) {
	factors := h.registry.List()

	sort.Slice(factors, func(i, j int) bool {
		if factors[i].Category != factors[j].Category {
			return factors[i].Category < factors[j].Category
		}
		if factors[i].Subcategory != factors[j].Subcategory {
			return factors[i].Subcategory < factors[j].Subcategory
		}
		return factors[i].Region < factors[j].Region
	})

	resp := make([]factorResponse, 0, len(factors))
	for _, f := range factors {
		resp = append(resp, factorResponse{
			Category:    f.Category,
			Subcategory: f.Subcategory,
			Unit:        f.Unit,
			FactorValue: f.FactorValue,
			Region:      f.Region,
			Source:      f.Source,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
