// Package model はドメインモデルを定義する。
package model

// EmissionFactor は物理量（kWh、リットル、km、個数）をkg CO2換算量に
// 変換する定数係数を表す。起動時にシードされ、以降は読み取り専用。
type EmissionFactor struct {
	Category    string  // 係数カテゴリ（electricity、gasoline_car等）
	Subcategory string  // 任意のサブカテゴリ（food/meal等）。空文字は未指定
	Unit        string  // 物理量の単位（kWh、liter、km、item、meal）
	FactorValue float64 // kg CO2e / 単位。正の値のみ有効
	Region      string  // 適用地域。地域固有の係数がない場合はRegionGlobal
	Source      string  // 出典
}

// RegionGlobal は地域固有の係数が存在しない場合のフォールバック地域。
const RegionGlobal = "Global"
