// Package model はドメインモデルを定義する。
package model

import "time"

// ActivityKind は活動記録の3種類の固定パーティションを表す。
// ダッシュボード集計はこの3分割に対して行われ、カテゴリは動的に増えない。
type ActivityKind string

const (
	// ActivityElectricity は電力使用の記録種別。
	ActivityElectricity ActivityKind = "electricity"
	// ActivityTransport は移動の記録種別。
	ActivityTransport ActivityKind = "transport"
	// ActivityPurchase は購入の記録種別。
	ActivityPurchase ActivityKind = "purchase"
)

// VehicleType は移動記録の車両タイプを表す。
type VehicleType string

const (
	// VehicleGasoline はガソリン車。
	VehicleGasoline VehicleType = "gasoline"
	// VehicleDiesel はディーゼル車。
	VehicleDiesel VehicleType = "diesel"
	// VehicleElectric は電気自動車。
	VehicleElectric VehicleType = "electric"
	// VehicleOther はその他の車両。排出係数はガソリン車にフォールバックする。
	VehicleOther VehicleType = "other"
)

// ElectricityRecord は電力使用の活動記録を表す。
// Emissionは作成時にEstimatorで一度だけ導出され、以降変更されない。
type ElectricityRecord struct {
	ID               string
	OwnerID          string
	Timestamp        time.Time
	ElectricityUsage float64 // kWh
	Emission         float64 // kg CO2e
}

// TransportRecord は移動の活動記録を表す。
// FuelEfficiencyの単位はガソリン/ディーゼル車ではL/100km、電気自動車ではkWh/100km。
type TransportRecord struct {
	ID             string
	OwnerID        string
	Timestamp      time.Time
	VehicleType    VehicleType
	Distance       float64 // km
	FuelEfficiency float64 // L/100km または kWh/100km
	Emission       float64 // kg CO2e
}

// PurchaseRecord は購入の活動記録を表す。
// Categoryは排出係数テーブルの検索キーとして使用される。
type PurchaseRecord struct {
	ID        string
	OwnerID   string
	Timestamp time.Time
	Item      string // 自由記述の品名
	Category  string
	Amount    float64 // 数量
	Emission  float64 // kg CO2e
}
