package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/carbonlog/internal/model"
)

// PostgresActivityLogRepo はPostgreSQLを使用した活動記録リポジトリ。
// 3種類の記録はそれぞれ専用テーブル（electricity_logs、transport_logs、
// purchase_logs）に保存される。
type PostgresActivityLogRepo struct {
	db *sql.DB
}

// NewPostgresActivityLogRepo はPostgresActivityLogRepoを生成する。
func NewPostgresActivityLogRepo(db *sql.DB) *PostgresActivityLogRepo {
	return &PostgresActivityLogRepo{db: db}
}

// --- 電力使用記録 ---

// CreateElectricity は電力使用記録を作成する。
func (r *PostgresActivityLogRepo) CreateElectricity(ctx context.Context, rec *model.ElectricityRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO electricity_logs (id, owner_id, logged_at, electricity_usage, emission)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.OwnerID, rec.Timestamp, rec.ElectricityUsage, rec.Emission,
	)
	if err != nil {
		return fmt.Errorf("電力使用記録の作成に失敗しました: %w", err)
	}
	return nil
}

// ListElectricityByOwner はユーザーの電力使用記録を日時降順で返す。
func (r *PostgresActivityLogRepo) ListElectricityByOwner(ctx context.Context, ownerID string) ([]model.ElectricityRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, logged_at, electricity_usage, emission
		 FROM electricity_logs
		 WHERE owner_id = $1
		 ORDER BY logged_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("電力使用記録一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanElectricityRows(rows)
}

// ListElectricityByWindow はユーザーの電力使用記録を[from, to)の範囲で返す。
func (r *PostgresActivityLogRepo) ListElectricityByWindow(ctx context.Context, ownerID string, from, to time.Time) ([]model.ElectricityRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, logged_at, electricity_usage, emission
		 FROM electricity_logs
		 WHERE owner_id = $1 AND logged_at >= $2 AND logged_at < $3
		 ORDER BY logged_at ASC`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("電力使用記録の期間取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanElectricityRows(rows)
}

func scanElectricityRows(rows *sql.Rows) ([]model.ElectricityRecord, error) {
	var records []model.ElectricityRecord
	for rows.Next() {
		var rec model.ElectricityRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Timestamp, &rec.ElectricityUsage, &rec.Emission); err != nil {
			return nil, fmt.Errorf("電力使用記録行の読み取りに失敗しました: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("電力使用記録の走査に失敗しました: %w", err)
	}
	return records, nil
}

// --- 移動記録 ---

// CreateTransport は移動記録を作成する。
func (r *PostgresActivityLogRepo) CreateTransport(ctx context.Context, rec *model.TransportRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transport_logs (id, owner_id, logged_at, vehicle_type, distance, fuel_efficiency, emission)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.OwnerID, rec.Timestamp, string(rec.VehicleType), rec.Distance, rec.FuelEfficiency, rec.Emission,
	)
	if err != nil {
		return fmt.Errorf("移動記録の作成に失敗しました: %w", err)
	}
	return nil
}

// ListTransportByOwner はユーザーの移動記録を日時降順で返す。
func (r *PostgresActivityLogRepo) ListTransportByOwner(ctx context.Context, ownerID string) ([]model.TransportRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, logged_at, vehicle_type, distance, fuel_efficiency, emission
		 FROM transport_logs
		 WHERE owner_id = $1
		 ORDER BY logged_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("移動記録一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanTransportRows(rows)
}

// ListTransportByWindow はユーザーの移動記録を[from, to)の範囲で返す。
func (r *PostgresActivityLogRepo) ListTransportByWindow(ctx context.Context, ownerID string, from, to time.Time) ([]model.TransportRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, logged_at, vehicle_type, distance, fuel_efficiency, emission
		 FROM transport_logs
		 WHERE owner_id = $1 AND logged_at >= $2 AND logged_at < $3
		 ORDER BY logged_at ASC`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("移動記録の期間取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanTransportRows(rows)
}

func scanTransportRows(rows *sql.Rows) ([]model.TransportRecord, error) {
	var records []model.TransportRecord
	for rows.Next() {
		var rec model.TransportRecord
		var vehicleType string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Timestamp, &vehicleType, &rec.Distance, &rec.FuelEfficiency, &rec.Emission); err != nil {
			return nil, fmt.Errorf("移動記録行の読み取りに失敗しました: %w", err)
		}
		rec.VehicleType = model.VehicleType(vehicleType)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("移動記録の走査に失敗しました: %w", err)
	}
	return records, nil
}

// --- 購入記録 ---

// CreatePurchase は購入記録を作成する。
func (r *PostgresActivityLogRepo) CreatePurchase(ctx context.Context, rec *model.PurchaseRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO purchase_logs (id, owner_id, logged_at, item, category, amount, emission)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.OwnerID, rec.Timestamp, rec.Item, rec.Category, rec.Amount, rec.Emission,
	)
	if err != nil {
		return fmt.Errorf("購入記録の作成に失敗しました: %w", err)
	}
	return nil
}

// ListPurchaseByOwner はユーザーの購入記録を日時降順で返す。
func (r *PostgresActivityLogRepo) ListPurchaseByOwner(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, logged_at, item, category, amount, emission
		 FROM purchase_logs
		 WHERE owner_id = $1
		 ORDER BY logged_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("購入記録一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanPurchaseRows(rows)
}

// ListPurchaseByWindow はユーザーの購入記録を[from, to)の範囲で返す。
func (r *PostgresActivityLogRepo) ListPurchaseByWindow(ctx context.Context, ownerID string, from, to time.Time) ([]model.PurchaseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, logged_at, item, category, amount, emission
		 FROM purchase_logs
		 WHERE owner_id = $1 AND logged_at >= $2 AND logged_at < $3
		 ORDER BY logged_at ASC`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("購入記録の期間取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanPurchaseRows(rows)
}

func scanPurchaseRows(rows *sql.Rows) ([]model.PurchaseRecord, error) {
	var records []model.PurchaseRecord
	for rows.Next() {
		var rec model.PurchaseRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Timestamp, &rec.Item, &rec.Category, &rec.Amount, &rec.Emission); err != nil {
			return nil, fmt.Errorf("購入記録行の読み取りに失敗しました: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("購入記録の走査に失敗しました: %w", err)
	}
	return records, nil
}

// compile-time interface check
var _ ActivityLogRepository = (*PostgresActivityLogRepo)(nil)
