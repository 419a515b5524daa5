// Package factor は排出係数レジストリを提供する。
// (カテゴリ, サブカテゴリ, 地域) から排出係数への読み取り専用マッピングを保持し、
// 地域フォールバック付きの検索を行う。
package factor

import (
	"sync"

	"github.com/hitoshi/carbonlog/internal/model"
)

// factorKey はレジストリ内の一意キー。
type factorKey struct {
	category    string
	subcategory string
	region      string
}

// Registry は排出係数のインメモリレジストリ。
// 起動時にシードされた後は読み取り専用として扱われるが、
// Registerの再入に備えてRWMutexで保護する。検索は純粋で副作用を持たない。
type Registry struct {
	mu      sync.RWMutex
	factors map[factorKey]model.EmissionFactor
}

// NewRegistry は空のRegistryを生成する。
func NewRegistry() *Registry {
	return &Registry{
		factors: make(map[factorKey]model.EmissionFactor),
	}
}

// Register は排出係数を登録する。
// 同一キーが既に存在し、replaceが指定されていない場合はDuplicateFactorエラーを返す。
// FactorValueが0以下、またはCategoryが空の場合はInvalidInputエラーを返す。
func (r *Registry) Register(f model.EmissionFactor, replace bool) error {
	if f.Category == "" {
		return model.NewInvalidInputError("category", 0)
	}
	if f.FactorValue <= 0 {
		return model.NewInvalidInputError("factor_value", f.FactorValue)
	}
	if f.Region == "" {
		f.Region = model.RegionGlobal
	}

	key := factorKey{category: f.Category, subcategory: f.Subcategory, region: f.Region}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factors[key]; exists && !replace {
		return model.NewDuplicateFactorError(f.Category, f.Subcategory, f.Region)
	}
	r.factors[key] = f
	return nil
}

// Has は指定キーの係数が登録済みかを返す。
// 冪等なシード処理のcheck-before-insertに使用する。
func (r *Registry) Has(category, subcategory, region string) bool {
	if region == "" {
		region = model.RegionGlobal
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factors[factorKey{category: category, subcategory: subcategory, region: region}]
	return exists
}

// Lookup は排出係数をフォールバック付きで検索する。
//
// 解決順序:
//  1. (category, subcategory, region) の完全一致
//  2. (category, subcategory, Global)
//  3. (category, サブカテゴリなし, region)
//  4. (category, サブカテゴリなし, Global)
//  5. カテゴリ一致の登録が地域内（region/Global）にちょうど1件なら、その係数
//
// 5は食品のようにサブカテゴリ付きでのみシードされるカテゴリを
// サブカテゴリ未指定の検索でも一意に解決するための最終段。
// どの段でも解決できない場合はFactorNotFoundエラーを返す。
func (r *Registry) Lookup(category, subcategory, region string) (*model.EmissionFactor, error) {
	if region == "" {
		region = model.RegionGlobal
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := []factorKey{
		{category: category, subcategory: subcategory, region: region},
		{category: category, subcategory: subcategory, region: model.RegionGlobal},
		{category: category, subcategory: "", region: region},
		{category: category, subcategory: "", region: model.RegionGlobal},
	}
	for _, key := range candidates {
		if f, ok := r.factors[key]; ok {
			return &f, nil
		}
	}

	// 最終段: カテゴリ一致が地域内で一意なら採用する
	var match *model.EmissionFactor
	for key, f := range r.factors {
		if key.category != category {
			continue
		}
		if key.region != region && key.region != model.RegionGlobal {
			continue
		}
		if match != nil {
			// 複数候補があり一意に解決できない
			return nil, model.NewFactorNotFoundError(category, subcategory, region)
		}
		f := f
		match = &f
	}
	if match != nil {
		return match, nil
	}

	return nil, model.NewFactorNotFoundError(category, subcategory, region)
}

// Len は登録済み係数の件数を返す。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factors)
}

// List は登録済みの全係数を返す。順序は不定。
func (r *Registry) List() []model.EmissionFactor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factors := make([]model.EmissionFactor, 0, len(r.factors))
	for _, f := range r.factors {
		factors = append(factors, f)
	}
	return factors
}
