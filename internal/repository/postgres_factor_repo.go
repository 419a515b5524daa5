package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/carbonlog/internal/model"
)

// PostgresFactorRepo はPostgreSQLを使用した排出係数リポジトリ。
type PostgresFactorRepo struct {
	db *sql.DB
}

// NewPostgresFactorRepo はPostgresFactorRepoを生成する。
func NewPostgresFactorRepo(db *sql.DB) *PostgresFactorRepo {
	return &PostgresFactorRepo{db: db}
}

// FindByKey は(category, subcategory, region)の一意キーで係数を検索する。
// 見つからない場合はnilを返す。
func (r *PostgresFactorRepo) FindByKey(ctx context.Context, category, subcategory, region string) (*model.EmissionFactor, error) {
	f := &model.EmissionFactor{}

	err := r.db.QueryRowContext(ctx,
		`SELECT category, subcategory, unit, factor_value, region, source
		 FROM emission_factors
		 WHERE category = $1 AND subcategory = $2 AND region = $3`,
		category, subcategory, region,
	).Scan(&f.Category, &f.Subcategory, &f.Unit, &f.FactorValue, &f.Region, &f.Source)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("排出係数の検索に失敗しました: %w", err)
	}

	return f, nil
}

// Insert は係数を新規登録する。
// 一意制約(category, subcategory, region)に違反した場合はエラーを返す。
func (r *PostgresFactorRepo) Insert(ctx context.Context, f *model.EmissionFactor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO emission_factors (category, subcategory, unit, factor_value, region, source)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.Category, f.Subcategory, f.Unit, f.FactorValue, f.Region, f.Source,
	)
	if err != nil {
		return fmt.Errorf("排出係数の登録に失敗しました: %w", err)
	}
	return nil
}

// ListAll は登録済みの全係数をカテゴリ順で返す。
func (r *PostgresFactorRepo) ListAll(ctx context.Context) ([]model.EmissionFactor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, subcategory, unit, factor_value, region, source
		 FROM emission_factors
		 ORDER BY category, subcategory, region`,
	)
	if err != nil {
		return nil, fmt.Errorf("排出係数一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var factors []model.EmissionFactor
	for rows.Next() {
		var f model.EmissionFactor
		if err := rows.Scan(&f.Category, &f.Subcategory, &f.Unit, &f.FactorValue, &f.Region, &f.Source); err != nil {
			return nil, fmt.Errorf("排出係数行の読み取りに失敗しました: %w", err)
		}
		factors = append(factors, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("排出係数一覧の走査に失敗しました: %w", err)
	}

	return factors, nil
}

// compile-time interface check
var _ FactorRepository = (*PostgresFactorRepo)(nil)
