// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/carbonlog/internal/model"
)

// FactorRepository は排出係数の永続化インターフェース。
// 係数は起動時にシードされた後は読み取り専用で、ホットパスでの更新はない。
type FactorRepository interface {
	// FindByKey は(category, subcategory, region)の一意キーで係数を検索する。
	// 見つからない場合はnilを返す。
	FindByKey(ctx context.Context, category, subcategory, region string) (*model.EmissionFactor, error)

	// Insert は係数を新規登録する。
	Insert(ctx context.Context, f *model.EmissionFactor) error

	// ListAll は登録済みの全係数をカテゴリ順で返す。
	ListAll(ctx context.Context) ([]model.EmissionFactor, error)
}

// ActivityLogRepository は活動記録の永続化インターフェース。
// 記録は3種類の固定パーティション（電力・移動・購入）ごとに別テーブルに保存される。
// 各Createは1レコード単位でアトミックであり、記録の更新は行わない
// （emissionは作成時に導出されたキャッシュ値として不変）。
type ActivityLogRepository interface {
	// CreateElectricity は電力使用記録を作成する。
	CreateElectricity(ctx context.Context, rec *model.ElectricityRecord) error
	// ListElectricityByOwner はユーザーの電力使用記録を日時降順で返す。
	ListElectricityByOwner(ctx context.Context, ownerID string) ([]model.ElectricityRecord, error)
	// ListElectricityByWindow はユーザーの電力使用記録を[from, to)の範囲で返す。
	ListElectricityByWindow(ctx context.Context, ownerID string, from, to time.Time) ([]model.ElectricityRecord, error)

	// CreateTransport は移動記録を作成する。
	CreateTransport(ctx context.Context, rec *model.TransportRecord) error
	// ListTransportByOwner はユーザーの移動記録を日時降順で返す。
	ListTransportByOwner(ctx context.Context, ownerID string) ([]model.TransportRecord, error)
	// ListTransportByWindow はユーザーの移動記録を[from, to)の範囲で返す。
	ListTransportByWindow(ctx context.Context, ownerID string, from, to time.Time) ([]model.TransportRecord, error)

	// CreatePurchase は購入記録を作成する。
	CreatePurchase(ctx context.Context, rec *model.PurchaseRecord) error
	// ListPurchaseByOwner はユーザーの購入記録を日時降順で返す。
	ListPurchaseByOwner(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error)
	// ListPurchaseByWindow はユーザーの購入記録を[from, to)の範囲で返す。
	ListPurchaseByWindow(ctx context.Context, ownerID string, from, to time.Time) ([]model.PurchaseRecord, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れの全セッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
