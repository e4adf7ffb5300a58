package reports

import (
	"sort"
	"time"

	"farm-platform/internal/domain/farm"
)

// CropSnapshot 為報表產生當下的作物基本資料。
type CropSnapshot struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	SowingDate  time.Time       `json:"sowingDate"`
	HarvestDate *time.Time      `json:"harvestDate,omitempty"`
	Status      farm.CropStatus `json:"status"`
	Notes       string          `json:"notes"`
	PlotID      int64           `json:"plotId"`
	PlotName    string          `json:"plotName"`
}

// SnapshotOf 由作物實體建立快照。
func SnapshotOf(c farm.Crop) CropSnapshot {
	var harvest *time.Time
	if c.HarvestDate != nil {
		h := *c.HarvestDate
		harvest = &h
	}
	return CropSnapshot{
		ID:          c.ID,
		Name:        c.Name,
		Type:        c.Type,
		SowingDate:  c.SowingDate,
		HarvestDate: harvest,
		Status:      c.Status,
		Notes:       c.Notes,
		PlotID:      c.PlotID,
		PlotName:    c.PlotName,
	}
}

// Period 為報表涵蓋的時間區間（含端點）。
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MetricReading 為單一感測值。
type MetricReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Value       float64   `json:"value"`
	SensorID    int64     `json:"sensorId"`
	SensorLabel string    `json:"sensorLabel"`
	Unit        string    `json:"unit"`
}

// MetricSummary 為單一感測類型的統計，count 為 0 時全部為 0。
type MetricSummary struct {
	Average    float64 `json:"average"`
	Max        float64 `json:"max"`
	Min        float64 `json:"min"`
	StdDev     float64 `json:"stdDev"`
	Count      int     `json:"count"`
	AlertCount int     `json:"alertCount"`
}

// MetricSeries 為一個感測類型在期間內的讀數與摘要。
type MetricSeries struct {
	Readings []MetricReading `json:"readings"`
	Summary  MetricSummary   `json:"summary"`
}

// Values 依時間順序回傳讀數值。
func (s MetricSeries) Values() []float64 {
	out := make([]float64, len(s.Readings))
	for i, r := range s.Readings {
		out[i] = r.Value
	}
	return out
}

// Unit 回傳序列的量測單位（取第一筆）。
func (s MetricSeries) Unit() string {
	if len(s.Readings) == 0 {
		return ""
	}
	return s.Readings[0].Unit
}

// ActivitySummary 田間作業摘要。
type ActivitySummary struct {
	Total       int            `json:"total"`
	CountByType map[string]int `json:"countByType"`
	TotalCost   float64        `json:"totalCost"`
}

// ActivitiesSection 田間作業區塊。
type ActivitiesSection struct {
	List    []farm.Activity `json:"list"`
	Summary ActivitySummary `json:"summary"`
}

// CostSource 區分成本來源，讓輸出端可分開呈現。
type CostSource string

const (
	CostFromStock    CostSource = "stock"
	CostFromActivity CostSource = "activity"
)

// CostRecord 為成本帳中的一筆。
type CostRecord struct {
	Date    time.Time  `json:"date"`
	Concept string     `json:"concept"`
	Source  CostSource `json:"source"`
	Amount  float64    `json:"amount"`
}

// FinanceSummary 財務摘要；RoiPercent 在 TotalCosts 為 0 時為 0。
type FinanceSummary struct {
	TotalCosts  float64 `json:"totalCosts"`
	TotalIncome float64 `json:"totalIncome"`
	GrossMargin float64 `json:"grossMargin"`
	NetMargin   float64 `json:"netMargin"`
	RoiPercent  float64 `json:"roiPercent"`
}

// FinanceSection 財務區塊。
type FinanceSection struct {
	Income  []farm.Income  `json:"income"`
	Costs   []CostRecord   `json:"costs"`
	Summary FinanceSummary `json:"summary"`
}

// InventorySummary 庫存摘要。
type InventorySummary struct {
	TotalItems      int            `json:"totalItems"`
	TotalValue      float64        `json:"totalValue"`
	ItemsByCategory map[string]int `json:"itemsByCategory"`
}

// InventorySection 庫存區塊。
type InventorySection struct {
	Items   []farm.InventoryItem `json:"items"`
	Summary InventorySummary     `json:"summary"`
}

// AlertSummary 警報摘要。
type AlertSummary struct {
	Total       int            `json:"total"`
	CountByType map[string]int `json:"countByType"`
	Unresolved  int            `json:"unresolved"`
}

// AlertsSection 警報區塊。
type AlertsSection struct {
	List    []farm.Alert `json:"list"`
	Summary AlertSummary `json:"summary"`
}

// TraceabilityTimeline 作物履歷時間軸。
type TraceabilityTimeline struct {
	CropID   int64                 `json:"cropId"`
	CropName string                `json:"cropName"`
	Events   []farm.LifecycleEvent `json:"events"`
}

// TraceabilitySection 履歷區塊；查無履歷時 Crop 為 nil，Message 說明原因。
type TraceabilitySection struct {
	Crop    *TraceabilityTimeline `json:"crop"`
	Message string                `json:"message"`
}

// PointKind 列舉關鍵點類型。
type PointKind string

const (
	PointAlert       PointKind = "alert"
	PointOpportunity PointKind = "opportunity"
	PointRisk        PointKind = "risk"
)

// CriticalPoint 為分析標記出的風險或機會。
type CriticalPoint struct {
	Kind              PointKind `json:"kind"`
	Message           string    `json:"message"`
	RecommendedAction string    `json:"recommendedAction"`
}

// Analysis 為依門檻規則推導出的建議。
type Analysis struct {
	PerformanceScore float64         `json:"performanceScore"`
	HealthScore      float64         `json:"healthScore"`
	Recommendations  []string        `json:"recommendations"`
	CriticalPoints   []CriticalPoint `json:"criticalPoints"`
}

// CropReport 為單一作物在期間內的跨領域報表，建立後不再修改。
// 可選區塊以 nil 表示未請求。
type CropReport struct {
	GeneratedAt  time.Time               `json:"generatedAt"`
	Period       Period                  `json:"period"`
	Crop         CropSnapshot            `json:"crop"`
	SubPlots     []farm.SubPlot          `json:"subPlots"`
	Metrics      map[string]MetricSeries `json:"metrics"`
	Activities   *ActivitiesSection      `json:"activities,omitempty"`
	Finance      *FinanceSection         `json:"finance,omitempty"`
	Inventory    *InventorySection       `json:"inventory,omitempty"`
	Alerts       *AlertsSection          `json:"alerts,omitempty"`
	Traceability *TraceabilitySection    `json:"traceability,omitempty"`
	Analysis     *Analysis               `json:"analysis,omitempty"`
}

// MetricNames 回傳排序後的感測類型，供輸出端固定順序。
func (r CropReport) MetricNames() []string {
	names := make([]string, 0, len(r.Metrics))
	for k := range r.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// EmptyMetricSeries 回傳空序列。
func EmptyMetricSeries() MetricSeries {
	return MetricSeries{Readings: []MetricReading{}}
}

// EmptyActivities 回傳空的作業區塊。
func EmptyActivities() ActivitiesSection {
	return ActivitiesSection{
		List:    []farm.Activity{},
		Summary: ActivitySummary{CountByType: map[string]int{}},
	}
}

// EmptyFinance 回傳空的財務區塊。
func EmptyFinance() FinanceSection {
	return FinanceSection{Income: []farm.Income{}, Costs: []CostRecord{}}
}

// EmptyInventory 回傳空的庫存區塊。
func EmptyInventory() InventorySection {
	return InventorySection{
		Items:   []farm.InventoryItem{},
		Summary: InventorySummary{ItemsByCategory: map[string]int{}},
	}
}

// EmptyAlerts 回傳空的警報區塊。
func EmptyAlerts() AlertsSection {
	return AlertsSection{
		List:    []farm.Alert{},
		Summary: AlertSummary{CountByType: map[string]int{}},
	}
}

// EmptyTraceability 回傳查無履歷的區塊。
func EmptyTraceability() TraceabilitySection {
	return TraceabilitySection{Message: NoTraceabilityMessage}
}

// NoTraceabilityMessage 為查無履歷時的說明。
const NoTraceabilityMessage = "no traceability records registered for this crop"
