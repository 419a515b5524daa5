// Package model はドメインモデルを定義する。
package model

// DashboardSummary はユーザーの活動記録を集計したダッシュボード表示用データ。
// リクエストごとに計算されるエフェメラルなビューであり、永続化されない。
// 不変条件: CategoryBreakdownのEmissions合計 ≈ TotalEmissions、
// TotalEmissions > 0 のときPercentage合計 ≈ 100、それ以外は全Percentageが0。
type DashboardSummary struct {
	TotalEmissions  float64 // ウィンドウ内の総排出量（kg CO2e）
	EmissionsTrend  float64 // 直前の同一長ウィンドウに対する増減率（%）
	LogsCount       int     // フェッチした記録の総数（重複排除なし）
	Breakdown       []CategoryBreakdown
	WeeklyTrend     []TrendPoint
	Recommendations []Recommendation
}

// CategoryBreakdown はカテゴリ別の排出量と全体に占める割合を表す。
type CategoryBreakdown struct {
	Category   string
	Emissions  float64 // kg CO2e
	Percentage float64 // 0-100
}

// TrendPoint はウィンドウを4等分した各期間の排出量を表す。
type TrendPoint struct {
	PeriodLabel string  // "Week 1" 等
	Emissions   float64 // kg CO2e
}

// Recommendation は排出削減の推奨アクションを表す。
// カテゴリ別排出量のシェアが大きい順にカタログから選択される。
type Recommendation struct {
	Title       string
	Description string
	Impact      string // 削減効果の目安（例: "Could reduce emissions by 15%"）
}
