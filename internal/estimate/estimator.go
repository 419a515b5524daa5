// Package estimate は活動記録からCO2換算排出量を算出する。
// Estimatorは(入力, レジストリスナップショット)の純粋関数であり副作用を持たない。
package estimate

import (
	"log/slog"

	"github.com/hitoshi/carbonlog/internal/factor"
	"github.com/hitoshi/carbonlog/internal/model"
)

// 移動記録の車両タイプに対応する係数カテゴリ。
const (
	categoryElectricity = "electricity"
	categoryGasolineCar = "gasoline_car"
	categoryDieselCar   = "diesel_car"
	categoryElectricCar = "electric_car"
)

// SubstitutionRecorder はデフォルト係数への置換をメトリクスに記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type SubstitutionRecorder interface {
	RecordDefaultFactorSubstitution(category string)
}

// Config はEstimatorの設定を保持する。
type Config struct {
	// Region は係数検索に使用する地域。空の場合はGlobal。
	Region string
	// PurchaseDefaultFactor は未知の購入カテゴリに代用する中立係数。
	// nilの場合は代用せず、FactorNotFoundエラーを返す。
	PurchaseDefaultFactor *float64
}

// Estimator は活動記録1件の排出量を算出する。
// 丸め処理は行わずfloat64のまま返す。丸めは表示側の責務。
type Estimator struct {
	registry *factor.Registry
	config   Config
	recorder SubstitutionRecorder // nil可
}

// NewEstimator はEstimatorを生成する。
// recorderがnilの場合、デフォルト係数への置換はログのみに記録される。
func NewEstimator(registry *factor.Registry, config Config, recorder SubstitutionRecorder) *Estimator {
	return &Estimator{
		registry: registry,
		config:   config,
		recorder: recorder,
	}
}

// EstimateElectricity は電力使用の排出量（kg CO2e）を算出する。
// emission = usage_kWh × factor(electricity)
func (e *Estimator) EstimateElectricity(usageKWh float64) (float64, error) {
	if usageKWh < 0 {
		return 0, model.NewInvalidInputError("electricity_usage", usageKWh)
	}

	f, err := e.registry.Lookup(categoryElectricity, "", e.config.Region)
	if err != nil {
		return 0, err
	}
	return usageKWh * f.FactorValue, nil
}

// EstimateTransport は移動の排出量（kg CO2e）を算出する。
// energy = (distance_km / 100) × fuel_efficiency として消費エネルギーを求め
// （ガソリン/ディーゼル車ではリットル、電気自動車ではkWh）、係数を乗じる。
// 係数はelectric→electric_car、diesel→diesel_carを選択し、
// それ以外の車両タイプはエラーではなくgasoline_carにフォールバックする。
func (e *Estimator) EstimateTransport(vehicleType model.VehicleType, distanceKm, fuelEfficiency float64) (float64, error) {
	if vehicleType == "" {
		return 0, model.NewInvalidVehicleTypeError()
	}
	if distanceKm < 0 {
		return 0, model.NewInvalidInputError("distance", distanceKm)
	}
	if fuelEfficiency < 0 {
		return 0, model.NewInvalidInputError("fuel_efficiency", fuelEfficiency)
	}

	var category string
	switch vehicleType {
	case model.VehicleElectric:
		category = categoryElectricCar
	case model.VehicleDiesel:
		category = categoryDieselCar
	default:
		// gasoline・other を含む未知の車両タイプはガソリン係数を使用する
		category = categoryGasolineCar
	}

	f, err := e.registry.Lookup(category, "", e.config.Region)
	if err != nil {
		return 0, err
	}

	energyUsed := (distanceKm / 100) * fuelEfficiency
	return energyUsed * f.FactorValue, nil
}

// EstimatePurchase は購入の排出量（kg CO2e）を算出する。
// emission = amount × factor(category)。
// カテゴリが未登録の場合、デフォルト係数が設定されていればそれを代用し、
// WARNログとメトリクスに記録する。未設定の場合はFactorNotFoundエラーを返す。
func (e *Estimator) EstimatePurchase(category string, amount float64) (float64, error) {
	if amount < 0 {
		return 0, model.NewInvalidInputError("amount", amount)
	}

	f, err := e.registry.Lookup(category, "", e.config.Region)
	if err != nil {
		if e.config.PurchaseDefaultFactor == nil {
			return 0, err
		}

		// 置換は暗黙に行わず、必ず記録する
		slog.Warn("unknown purchase category, substituting default factor",
			slog.String("category", category),
			slog.Float64("default_factor", *e.config.PurchaseDefaultFactor),
		)
		if e.recorder != nil {
			e.recorder.RecordDefaultFactorSubstitution(category)
		}
		return amount * *e.config.PurchaseDefaultFactor, nil
	}

	return amount * f.FactorValue, nil
}
