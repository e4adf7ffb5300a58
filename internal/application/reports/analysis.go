package reports

import (
	"fmt"

	reportsDomain "farm-platform/internal/domain/reports"
)

const (
	// BasePerformanceScore 與 BaseHealthScore 目前為固定基準值，尚未由資料推導。
	BasePerformanceScore = 70
	BaseHealthScore      = 80

	activityCostThreshold   = 10_000
	inventoryValueThreshold = 5_000
)

// Analyze 依門檻規則由報表內容推導建議與關鍵點，不查詢任何資料。
func Analyze(r reportsDomain.CropReport) reportsDomain.Analysis {
	out := reportsDomain.Analysis{
		PerformanceScore: BasePerformanceScore,
		HealthScore:      BaseHealthScore,
		Recommendations:  []string{},
		CriticalPoints:   []reportsDomain.CriticalPoint{},
	}

	for _, name := range r.MetricNames() {
		series := r.Metrics[name]
		if series.Summary.AlertCount == 0 {
			continue
		}
		out.CriticalPoints = append(out.CriticalPoints, reportsDomain.CriticalPoint{
			Kind:              reportsDomain.PointAlert,
			Message:           fmt.Sprintf("%s: %d readings outside the configured range", name, series.Summary.AlertCount),
			RecommendedAction: fmt.Sprintf("Inspect the %s sensors and adjust crop conditions", name),
		})
	}

	if r.Activities != nil && r.Activities.Summary.TotalCost > activityCostThreshold {
		out.Recommendations = append(out.Recommendations,
			"Activity costs exceed 10,000: review labor and machinery scheduling to optimize costs")
	}

	if r.Finance != nil && r.Finance.Summary.GrossMargin < 0 {
		out.CriticalPoints = append(out.CriticalPoints, reportsDomain.CriticalPoint{
			Kind:              reportsDomain.PointRisk,
			Message:           fmt.Sprintf("Negative gross margin (%.2f) for the period", r.Finance.Summary.GrossMargin),
			RecommendedAction: "Review input costs and sale prices",
		})
	}

	if r.Inventory != nil && r.Inventory.Summary.TotalValue > inventoryValueThreshold {
		out.Recommendations = append(out.Recommendations,
			"Inventory value exceeds 5,000: optimize stock levels to free working capital")
	}

	if r.Alerts != nil && r.Alerts.Summary.Unresolved > 0 {
		out.CriticalPoints = append(out.CriticalPoints, reportsDomain.CriticalPoint{
			Kind:              reportsDomain.PointAlert,
			Message:           fmt.Sprintf("%d unresolved alerts in the period", r.Alerts.Summary.Unresolved),
			RecommendedAction: "Resolve pending alerts",
		})
	}

	return out
}
