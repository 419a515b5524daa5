// Package dashboard はユーザーの活動記録を集計したダッシュボードを生成する。
// 集計はレコードストアに対する読み取りのみで、副作用を持たない。
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hitoshi/carbonlog/internal/model"
	"github.com/hitoshi/carbonlog/internal/repository"
)

// trendPeriods はトレンド系列の分割数。ウィンドウを等間隔に4期間へ分ける。
// デフォルトの30日ウィンドウではおおよそ週単位になる。
const trendPeriods = 4

// カテゴリ表示名。APIレスポンスのcategory_breakdownで使用する。
const (
	CategoryElectricity = "Electricity"
	CategoryTransport   = "Transport"
	CategoryPurchases   = "Purchases"
)

// Window は集計対象の時間範囲[From, To)を表す。
type Window struct {
	From time.Time
	To   time.Time
}

// NewTrailingWindow はtoから遡ってdays日間のウィンドウを生成する。
func NewTrailingWindow(to time.Time, days int) Window {
	return Window{
		From: to.AddDate(0, 0, -days),
		To:   to,
	}
}

// Duration はウィンドウの長さを返す。
func (w Window) Duration() time.Duration {
	return w.To.Sub(w.From)
}

// previous は直前の同一長ウィンドウを返す。増減率の算出に使用する。
func (w Window) previous() Window {
	return Window{
		From: w.From.Add(-w.Duration()),
		To:   w.From,
	}
}

// Service はダッシュボード集計のサービス層。
// 共有可変状態を持たず、同一ユーザー・異なるユーザーの並行集計は安全。
type Service struct {
	repo repository.ActivityLogRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ActivityLogRepository) *Service {
	return &Service{repo: repo}
}

// categoryTotal は1カテゴリ分の集計中間値。
type categoryTotal struct {
	name      string
	emissions float64
}

// Summarize はユーザーの活動記録をウィンドウで集計しDashboardSummaryを返す。
//
// アルゴリズム:
//  1. 3種類の固定パーティションごとにウィンドウ内の記録をフェッチする
//  2. total = 全記録のemission合計
//  3. カテゴリ別合計と、totalに対する割合（total=0なら全カテゴリ0%）
//  4. ウィンドウを4等分し、各期間の実データ合計でトレンド系列を作る
//  5. 直前の同一長ウィンドウとの比較で増減率を算出する（前期間が空なら0）
//  6. カテゴリ別シェアの降順でカタログから推奨アクションを選択する
//
// レコードストアに到達できない場合はSourceUnavailableで中断し、
// 部分的なサマリーは返さない。書き込みを行わないため冪等。
func (s *Service) Summarize(ctx context.Context, ownerID string, window Window) (*model.DashboardSummary, error) {
	electricity, err := s.repo.ListElectricityByWindow(ctx, ownerID, window.From, window.To)
	if err != nil {
		return nil, model.NewSourceUnavailableError(err)
	}
	transport, err := s.repo.ListTransportByWindow(ctx, ownerID, window.From, window.To)
	if err != nil {
		return nil, model.NewSourceUnavailableError(err)
	}
	purchase, err := s.repo.ListPurchaseByWindow(ctx, ownerID, window.From, window.To)
	if err != nil {
		return nil, model.NewSourceUnavailableError(err)
	}

	// カテゴリ別合計と全体合計
	electricityTotal := 0.0
	for _, rec := range electricity {
		electricityTotal += rec.Emission
	}
	transportTotal := 0.0
	for _, rec := range transport {
		transportTotal += rec.Emission
	}
	purchaseTotal := 0.0
	for _, rec := range purchase {
		purchaseTotal += rec.Emission
	}
	total := electricityTotal + transportTotal + purchaseTotal

	totals := []categoryTotal{
		{name: CategoryElectricity, emissions: electricityTotal},
		{name: CategoryTransport, emissions: transportTotal},
		{name: CategoryPurchases, emissions: purchaseTotal},
	}

	breakdown := make([]model.CategoryBreakdown, len(totals))
	for i, ct := range totals {
		percentage := 0.0
		if total > 0 {
			percentage = ct.emissions / total * 100
		}
		breakdown[i] = model.CategoryBreakdown{
			Category:   ct.name,
			Emissions:  ct.emissions,
			Percentage: percentage,
		}
	}

	trend := s.buildTrend(window, electricity, transport, purchase)

	emissionsTrend, err := s.trendAgainstPrevious(ctx, ownerID, window, total)
	if err != nil {
		return nil, err
	}

	return &model.DashboardSummary{
		TotalEmissions:  total,
		EmissionsTrend:  emissionsTrend,
		LogsCount:       len(electricity) + len(transport) + len(purchase),
		Breakdown:       breakdown,
		WeeklyTrend:     trend,
		Recommendations: selectRecommendations(totals),
	}, nil
}

// buildTrend はウィンドウを4等分し、各期間のemission実合計を求める。
// 参照実装の固定乗数（0.8/0.9/1.1/1.0）はデータに基づく期間合計に置き換えている。
func (s *Service) buildTrend(
	window Window,
	electricity []model.ElectricityRecord,
	transport []model.TransportRecord,
	purchase []model.PurchaseRecord,
) []model.TrendPoint {
	periodLen := window.Duration() / trendPeriods

	sums := make([]float64, trendPeriods)
	add := func(ts time.Time, emission float64) {
		if periodLen <= 0 {
			return
		}
		idx := int(ts.Sub(window.From) / periodLen)
		if idx < 0 {
			idx = 0
		}
		if idx >= trendPeriods {
			// window.To ちょうどの境界値は最終期間に含める
			idx = trendPeriods - 1
		}
		sums[idx] += emission
	}

	for _, rec := range electricity {
		add(rec.Timestamp, rec.Emission)
	}
	for _, rec := range transport {
		add(rec.Timestamp, rec.Emission)
	}
	for _, rec := range purchase {
		add(rec.Timestamp, rec.Emission)
	}

	trend := make([]model.TrendPoint, trendPeriods)
	for i := range trend {
		trend[i] = model.TrendPoint{
			PeriodLabel: fmt.Sprintf("Week %d", i+1),
			Emissions:   sums[i],
		}
	}
	return trend
}

// trendAgainstPrevious は直前の同一長ウィンドウの総排出量と比較した増減率（%）を返す。
// 前ウィンドウの排出量が0の場合は0を返す（増減率が定義できないため）。
func (s *Service) trendAgainstPrevious(ctx context.Context, ownerID string, window Window, currentTotal float64) (float64, error) {
	prev := window.previous()

	electricity, err := s.repo.ListElectricityByWindow(ctx, ownerID, prev.From, prev.To)
	if err != nil {
		return 0, model.NewSourceUnavailableError(err)
	}
	transport, err := s.repo.ListTransportByWindow(ctx, ownerID, prev.From, prev.To)
	if err != nil {
		return 0, model.NewSourceUnavailableError(err)
	}
	purchase, err := s.repo.ListPurchaseByWindow(ctx, ownerID, prev.From, prev.To)
	if err != nil {
		return 0, model.NewSourceUnavailableError(err)
	}

	prevTotal := 0.0
	for _, rec := range electricity {
		prevTotal += rec.Emission
	}
	for _, rec := range transport {
		prevTotal += rec.Emission
	}
	for _, rec := range purchase {
		prevTotal += rec.Emission
	}

	if prevTotal == 0 {
		return 0, nil
	}
	return (currentTotal - prevTotal) / prevTotal * 100, nil
}

// recommendationCatalog はカテゴリごとの静的な推奨アクションカタログ。
var recommendationCatalog = map[string]model.Recommendation{
	CategoryElectricity: {
		Title:       "Reduce Electricity Usage",
		Description: "Try using energy-efficient appliances",
		Impact:      "Could reduce emissions by 15%",
	},
	CategoryTransport: {
		Title:       "Use Public Transport",
		Description: "Consider taking the bus or train instead of driving",
		Impact:      "Could reduce emissions by 30%",
	},
	CategoryPurchases: {
		Title:       "Rethink New Purchases",
		Description: "Prefer repairing or buying second-hand over new items",
		Impact:      "Could reduce emissions by 20%",
	},
}

// selectRecommendations はカテゴリ別排出量の降順でカタログ全件を並べて返す。
// 参照実装の無条件2件リストに代わり、シェアの大きいカテゴリの推奨が先頭に来る。
// 全カテゴリが0でも固定順（電力→移動→購入）で返るため、常に2件以上が保証される。
func selectRecommendations(totals []categoryTotal) []model.Recommendation {
	ranked := make([]categoryTotal, len(totals))
	copy(ranked, totals)

	// 同値の場合は元の固定順（電力→移動→購入）を保つ
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].emissions > ranked[j].emissions
	})

	recs := make([]model.Recommendation, 0, len(ranked))
	for _, ct := range ranked {
		if rec, ok := recommendationCatalog[ct.name]; ok {
			recs = append(recs, rec)
		}
	}
	return recs
}
