package factor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/carbonlog/internal/model"
)

// Defaults は出荷時の正規排出係数セットを返す。
// 電力のみ地域別の係数（Kenya）を持ち、それ以外はGlobalのみ。
// 値の出典と、重複していた参照値のどちらを採用したかはDESIGN.mdに記録している。
func Defaults() []model.EmissionFactor {
	return []model.EmissionFactor{
		{Category: "electricity", Unit: "kWh", FactorValue: 0.5, Region: model.RegionGlobal, Source: "Grid average"},
		{Category: "electricity", Unit: "kWh", FactorValue: 0.18, Region: "Kenya", Source: "Kenya Power Grid Mix 2023"},
		{Category: "gasoline_car", Unit: "liter", FactorValue: 2.31, Region: model.RegionGlobal, Source: "IPCC 2023"},
		{Category: "diesel_car", Unit: "liter", FactorValue: 2.68, Region: model.RegionGlobal, Source: "IPCC 2023"},
		{Category: "electric_car", Unit: "kWh", FactorValue: 0.05, Region: model.RegionGlobal, Source: "Clean grid assumption"},
		{Category: "car", Unit: "km", FactorValue: 0.12, Region: model.RegionGlobal, Source: "Average passenger vehicle"},
		{Category: "bus", Unit: "km", FactorValue: 0.05, Region: model.RegionGlobal, Source: "Public transport average"},
		{Category: "motorbike", Unit: "km", FactorValue: 0.08, Region: model.RegionGlobal, Source: "Average motorcycle"},
		{Category: "food", Subcategory: "meal", Unit: "meal", FactorValue: 2.5, Region: model.RegionGlobal, Source: "Average meal carbon footprint"},
		{Category: "electronics", Unit: "item", FactorValue: 50.0, Region: model.RegionGlobal, Source: "Average electronic device production"},
		{Category: "clothing", Unit: "item", FactorValue: 15.0, Region: model.RegionGlobal, Source: "Average clothing item production"},
	}
}

// Store はシード処理が必要とする永続化インターフェース。
// repository.FactorRepositoryの部分集合として定義する。
type Store interface {
	// FindByKey は一意キーで係数を検索する。見つからない場合はnilを返す。
	FindByKey(ctx context.Context, category, subcategory, region string) (*model.EmissionFactor, error)
	// Insert は係数を新規登録する。
	Insert(ctx context.Context, f *model.EmissionFactor) error
	// ListAll は登録済みの全係数を返す。
	ListAll(ctx context.Context) ([]model.EmissionFactor, error)
}

// SyncStore は係数セットをストアに冪等にシードする。
// 既存キーはcheck-before-insertでスキップし、再実行してもエラーにならない。
// 挿入した件数を返す。
func SyncStore(ctx context.Context, store Store, factors []model.EmissionFactor) (int, error) {
	inserted := 0
	for _, f := range factors {
		existing, err := store.FindByKey(ctx, f.Category, f.Subcategory, f.Region)
		if err != nil {
			return inserted, fmt.Errorf("排出係数の検索に失敗しました: %w", err)
		}
		if existing != nil {
			continue
		}

		if err := store.Insert(ctx, &f); err != nil {
			return inserted, fmt.Errorf("排出係数の登録に失敗しました: %w", err)
		}
		inserted++

		slog.Info("emission factor seeded",
			slog.String("category", f.Category),
			slog.String("region", f.Region),
			slog.Float64("factor_value", f.FactorValue),
		)
	}
	return inserted, nil
}

// LoadRegistry はストアの全係数からレジストリを構築する。
// ストアが空の場合はDefaultsを先にシードしてから読み込む。
func LoadRegistry(ctx context.Context, store Store) (*Registry, error) {
	rows, err := store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("排出係数の読み込みに失敗しました: %w", err)
	}

	if len(rows) == 0 {
		if _, err := SyncStore(ctx, store, Defaults()); err != nil {
			return nil, err
		}
		rows, err = store.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("排出係数の再読み込みに失敗しました: %w", err)
		}
	}

	reg := NewRegistry()
	for _, f := range rows {
		// DBの一意制約により重複はないが、再読み込みに備えてreplaceで登録する
		if err := reg.Register(f, true); err != nil {
			return nil, fmt.Errorf("レジストリの構築に失敗しました: %w", err)
		}
	}
	return reg, nil
}
