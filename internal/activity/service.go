// Package activity は活動記録の作成・一覧取得機能を提供する。
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/carbonlog/internal/estimate"
	"github.com/hitoshi/carbonlog/internal/model"
	"github.com/hitoshi/carbonlog/internal/repository"
)

// MetricsRecorder は記録作成と算出失敗をメトリクスに記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordLogCreated(kind model.ActivityKind)
	RecordEstimateFailure(code string)
}

// Service は活動記録のサービス層。
// 入力検証 → 排出量の算出（Estimator） → 永続化を1つの操作として提供する。
// 排出量は作成時に一度だけ算出され、以降は再計算されない
// （係数テーブルが変わっても過去の記録は遡って変化しない）。
type Service struct {
	repo      repository.ActivityLogRepository
	estimator *estimate.Estimator
	metrics   MetricsRecorder // nil可
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ActivityLogRepository, estimator *estimate.Estimator, metrics MetricsRecorder) *Service {
	return &Service{
		repo:      repo,
		estimator: estimator,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateElectricityLog は電力使用記録を作成する。
// EstimatorとRegistryのエラーは呼び出し元へそのまま伝播し、リトライは行わない。
func (s *Service) CreateElectricityLog(ctx context.Context, ownerID string, usageKWh float64) (*model.ElectricityRecord, error) {
	emission, err := s.estimator.EstimateElectricity(usageKWh)
	if err != nil {
		s.recordEstimateFailure(err)
		return nil, err
	}

	rec := &model.ElectricityRecord{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Timestamp:        s.now(),
		ElectricityUsage: usageKWh,
		Emission:         emission,
	}

	if err := s.repo.CreateElectricity(ctx, rec); err != nil {
		return nil, fmt.Errorf("電力使用記録の保存に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogCreated(model.ActivityElectricity)
	}
	return rec, nil
}

// CreateTransportLog は移動記録を作成する。
func (s *Service) CreateTransportLog(ctx context.Context, ownerID string, vehicleType model.VehicleType, distanceKm, fuelEfficiency float64) (*model.TransportRecord, error) {
	emission, err := s.estimator.EstimateTransport(vehicleType, distanceKm, fuelEfficiency)
	if err != nil {
		s.recordEstimateFailure(err)
		return nil, err
	}

	rec := &model.TransportRecord{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Timestamp:      s.now(),
		VehicleType:    vehicleType,
		Distance:       distanceKm,
		FuelEfficiency: fuelEfficiency,
		Emission:       emission,
	}

	if err := s.repo.CreateTransport(ctx, rec); err != nil {
		return nil, fmt.Errorf("移動記録の保存に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogCreated(model.ActivityTransport)
	}
	return rec, nil
}

// CreatePurchaseLog は購入記録を作成する。
func (s *Service) CreatePurchaseLog(ctx context.Context, ownerID, item, category string, amount float64) (*model.PurchaseRecord, error) {
	emission, err := s.estimator.EstimatePurchase(category, amount)
	if err != nil {
		s.recordEstimateFailure(err)
		return nil, err
	}

	rec := &model.PurchaseRecord{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Timestamp: s.now(),
		Item:      item,
		Category:  category,
		Amount:    amount,
		Emission:  emission,
	}

	if err := s.repo.CreatePurchase(ctx, rec); err != nil {
		return nil, fmt.Errorf("購入記録の保存に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogCreated(model.ActivityPurchase)
	}
	return rec, nil
}

// recordEstimateFailure は算出失敗をエラーコード別にメトリクスへ記録する。
func (s *Service) recordEstimateFailure(err error) {
	if s.metrics == nil {
		return
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		s.metrics.RecordEstimateFailure(apiErr.Code)
	}
}

// ListElectricityLogs はユーザーの電力使用記録を日時降順で返す。
func (s *Service) ListElectricityLogs(ctx context.Context, ownerID string) ([]model.ElectricityRecord, error) {
	return s.repo.ListElectricityByOwner(ctx, ownerID)
}

// ListTransportLogs はユーザーの移動記録を日時降順で返す。
func (s *Service) ListTransportLogs(ctx context.Context, ownerID string) ([]model.TransportRecord, error) {
	return s.repo.ListTransportByOwner(ctx, ownerID)
}

// ListPurchaseLogs はユーザーの購入記録を日時降順で返す。
func (s *Service) ListPurchaseLogs(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error) {
	return s.repo.ListPurchaseByOwner(ctx, ownerID)
}
