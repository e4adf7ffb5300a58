package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"farm-platform/internal/domain/farm"
	reportsDomain "farm-platform/internal/domain/reports"
	"farm-platform/internal/domain/stats"
	"farm-platform/internal/infrastructure/logging"
)

// fetchOr 執行單一區塊查詢；錯誤或 panic 時記錄警告並回傳 fallback 的空區塊。
func fetchOr[T any](
	ctx context.Context,
	log logging.Logger,
	section reportsDomain.Section,
	cropID int64,
	fetch func(ctx context.Context) (T, error),
	fallback func() T,
) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("report section panicked, using empty section",
				"section", string(section), "crop_id", cropID, "panic", fmt.Sprint(r))
			out = fallback()
		}
	}()
	v, err := fetch(ctx)
	if err != nil {
		log.Warn("report section fetch failed, using empty section",
			"section", string(section), "crop_id", cropID, "error", err.Error())
		return fallback()
	}
	return v
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func (g *Generator) metrics(ctx context.Context, plotID int64, f reportsDomain.Filters) (map[string]reportsDomain.MetricSeries, error) {
	rows, err := g.repo.FindReadingsInRange(ctx, plotID, f.PeriodStart, f.PeriodEnd)
	if err != nil {
		return nil, err
	}
	return groupReadings(rows, f.Metrics), nil
}

// groupReadings 依感測類型分組並計算摘要；requested 非空時只保留列出的類型，
// 且沒有讀數的類型仍以空序列出現。
func groupReadings(rows []farm.SensorReading, requested []string) map[string]reportsDomain.MetricSeries {
	wanted := make(map[string]bool, len(requested))
	for _, m := range requested {
		if key := metricKey(m); key != "" {
			wanted[key] = true
		}
	}

	sorted := make([]farm.SensorReading, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	readings := make(map[string][]reportsDomain.MetricReading)
	alerts := make(map[string]int)
	for _, r := range sorted {
		key := metricKey(r.SensorType)
		if key == "" {
			continue
		}
		if len(wanted) > 0 && !wanted[key] {
			continue
		}
		readings[key] = append(readings[key], reportsDomain.MetricReading{
			Timestamp:   r.Timestamp,
			Value:       r.Value,
			SensorID:    r.SensorID,
			SensorLabel: r.SensorLabel,
			Unit:        r.Unit,
		})
		if r.OutOfRange {
			alerts[key]++
		}
	}

	out := make(map[string]reportsDomain.MetricSeries, len(readings)+len(wanted))
	for key := range wanted {
		out[key] = reportsDomain.EmptyMetricSeries()
	}
	for key, list := range readings {
		series := reportsDomain.MetricSeries{Readings: list}
		s := stats.Summarize(series.Values())
		series.Summary = reportsDomain.MetricSummary{
			Average:    s.Mean,
			Max:        s.Max,
			Min:        s.Min,
			StdDev:     s.StdDev,
			Count:      s.Count,
			AlertCount: alerts[key],
		}
		out[key] = series
	}
	return out
}

func metricKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (g *Generator) activities(ctx context.Context, cropID int64, f reportsDomain.Filters) (reportsDomain.ActivitiesSection, error) {
	rows, err := g.repo.FindActivitiesInRange(ctx, cropID, f.PeriodStart, f.PeriodEnd)
	if err != nil {
		return reportsDomain.ActivitiesSection{}, err
	}
	rows = nonNil(rows)
	total := decimal.Zero
	for _, a := range rows {
		total = total.Add(decimal.NewFromFloat(a.LaborCost)).Add(decimal.NewFromFloat(a.MachineryCost))
	}
	return reportsDomain.ActivitiesSection{
		List: rows,
		Summary: reportsDomain.ActivitySummary{
			Total:       len(rows),
			CountByType: lo.CountValuesBy(rows, func(a farm.Activity) string { return a.Type }),
			TotalCost:   total.InexactFloat64(),
		},
	}, nil
}

// finance 將出庫成本與作業人工/機械成本併入同一成本帳，收入為期間內加總。
func (g *Generator) finance(ctx context.Context, cropID int64, f reportsDomain.Filters) (reportsDomain.FinanceSection, error) {
	incomes, err := g.repo.FindIncomeInRange(ctx, cropID, f.PeriodStart, f.PeriodEnd)
	if err != nil {
		return reportsDomain.FinanceSection{}, fmt.Errorf("income: %w", err)
	}
	outflows, err := g.repo.FindStockOutflowsInRange(ctx, cropID, f.PeriodStart, f.PeriodEnd)
	if err != nil {
		return reportsDomain.FinanceSection{}, fmt.Errorf("stock outflows: %w", err)
	}
	activities, err := g.repo.FindActivitiesInRange(ctx, cropID, f.PeriodStart, f.PeriodEnd)
	if err != nil {
		return reportsDomain.FinanceSection{}, fmt.Errorf("activity costs: %w", err)
	}
	return buildFinance(nonNil(incomes), outflows, activities), nil
}

func buildFinance(incomes []farm.Income, outflows []farm.StockOutflow, activities []farm.Activity) reportsDomain.FinanceSection {
	costs := make([]reportsDomain.CostRecord, 0, len(outflows)+len(activities))
	totalCosts := decimal.Zero
	for _, o := range outflows {
		amount := o.Cost()
		totalCosts = totalCosts.Add(amount)
		costs = append(costs, reportsDomain.CostRecord{
			Date:    o.Date,
			Concept: o.ItemName,
			Source:  reportsDomain.CostFromStock,
			Amount:  amount.InexactFloat64(),
		})
	}
	for _, a := range activities {
		amount := decimal.NewFromFloat(a.LaborCost).Add(decimal.NewFromFloat(a.MachineryCost))
		if amount.IsZero() {
			continue
		}
		totalCosts = totalCosts.Add(amount)
		costs = append(costs, reportsDomain.CostRecord{
			Date:    a.Date,
			Concept: a.Type,
			Source:  reportsDomain.CostFromActivity,
			Amount:  amount.InexactFloat64(),
		})
	}
	sort.SliceStable(costs, func(i, j int) bool {
		return costs[i].Date.Before(costs[j].Date)
	})

	totalIncome := decimal.Zero
	for _, in := range incomes {
		totalIncome = totalIncome.Add(decimal.NewFromFloat(in.Amount))
	}

	gross := totalIncome.Sub(totalCosts)
	hundred := decimal.NewFromInt(100)
	summary := reportsDomain.FinanceSummary{
		TotalCosts:  totalCosts.InexactFloat64(),
		TotalIncome: totalIncome.InexactFloat64(),
		GrossMargin: gross.InexactFloat64(),
	}
	if totalIncome.IsPositive() {
		summary.NetMargin = gross.Div(totalIncome).Mul(hundred).InexactFloat64()
	}
	if totalCosts.IsPositive() {
		summary.RoiPercent = gross.Div(totalCosts).Mul(hundred).InexactFloat64()
	}
	return reportsDomain.FinanceSection{
		Income:  incomes,
		Costs:   costs,
		Summary: summary,
	}
}

func (g *Generator) inventory(ctx context.Context) (reportsDomain.InventorySection, error) {
	items, err := g.repo.ListInventoryItems(ctx)
	if err != nil {
		return reportsDomain.InventorySection{}, err
	}
	items = nonNil(items)
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.UnitValue)))
	}
	return reportsDomain.InventorySection{
		Items: items,
		Summary: reportsDomain.InventorySummary{
			TotalItems:      len(items),
			TotalValue:      total.InexactFloat64(),
			ItemsByCategory: lo.CountValuesBy(items, func(it farm.InventoryItem) string { return it.Category }),
		},
	}, nil
}

func (g *Generator) alerts(ctx context.Context, f reportsDomain.Filters) (reportsDomain.AlertsSection, error) {
	rows, err := g.repo.FindAlertsInRange(ctx, f.PeriodStart, f.PeriodEnd)
	if err != nil {
		return reportsDomain.AlertsSection{}, err
	}
	rows = nonNil(rows)
	return reportsDomain.AlertsSection{
		List: rows,
		Summary: reportsDomain.AlertSummary{
			Total:       len(rows),
			CountByType: lo.CountValuesBy(rows, func(a farm.Alert) string { return a.Type }),
			Unresolved:  lo.CountBy(rows, func(a farm.Alert) bool { return !a.Resolved }),
		},
	}, nil
}

func (g *Generator) traceability(ctx context.Context, crop farm.Crop) (reportsDomain.TraceabilitySection, error) {
	events, err := g.repo.FindLifecycleEvents(ctx, crop.ID)
	if err != nil {
		return reportsDomain.TraceabilitySection{}, err
	}
	if len(events) == 0 {
		return reportsDomain.EmptyTraceability(), nil
	}
	sorted := make([]farm.LifecycleEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return reportsDomain.TraceabilitySection{
		Crop: &reportsDomain.TraceabilityTimeline{
			CropID:   crop.ID,
			CropName: crop.Name,
			Events:   sorted,
		},
		Message: fmt.Sprintf("%d lifecycle events registered", len(sorted)),
	}, nil
}
