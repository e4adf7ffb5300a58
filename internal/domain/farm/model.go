package farm

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CropStatus 表示作物週期狀態。
type CropStatus string

const (
	CropPlanned   CropStatus = "planned"
	CropGrowing   CropStatus = "growing"
	CropHarvested CropStatus = "harvested"
	CropLost      CropStatus = "lost"
)

// Crop 為報表的主體：一個地塊上的一次種植週期。
type Crop struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	SowingDate  time.Time  `json:"sowingDate"`
	HarvestDate *time.Time `json:"harvestDate,omitempty"`
	Status      CropStatus `json:"status"`
	Notes       string     `json:"notes"`
	PlotID      int64      `json:"plotId"`
	PlotName    string     `json:"plotName"`
}

// SubPlot 為地塊下的分區。
type SubPlot struct {
	ID     int64   `json:"id"`
	PlotID int64   `json:"plotId"`
	Name   string  `json:"name"`
	Area   float64 `json:"area"`
}

// Activity 記錄田間作業與其人工、機械成本。
type Activity struct {
	ID            int64     `json:"id"`
	CropID        int64     `json:"cropId"`
	Type          string    `json:"type"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Responsible   string    `json:"responsible"`
	LaborCost     float64   `json:"laborCost"`
	MachineryCost float64   `json:"machineryCost"`
}

// TotalCost 回傳人工加機械成本。
func (a Activity) TotalCost() float64 {
	return a.LaborCost + a.MachineryCost
}

// SensorReading 為感測器在某時間點的一筆量測，OutOfRange 表示超出感測器設定門檻。
type SensorReading struct {
	SensorID    int64     `json:"sensorId"`
	SensorLabel string    `json:"sensorLabel"`
	SensorType  string    `json:"sensorType"`
	Unit        string    `json:"unit"`
	Timestamp   time.Time `json:"timestamp"`
	Value       float64   `json:"value"`
	OutOfRange  bool      `json:"outOfRange"`
}

// InventoryItem 為庫存品項目前的數量與單價。
type InventoryItem struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Unit      string  `json:"unit"`
	Quantity  float64 `json:"quantity"`
	UnitValue float64 `json:"unitValue"`
}

// Value 回傳庫存價值 quantity * unitValue。
func (i InventoryItem) Value() float64 {
	return i.Quantity * i.UnitValue
}

// StockOutflow 為出庫紀錄，CropID 指向使用此物料的作物。
type StockOutflow struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	ItemName  string    `json:"itemName"`
	CropID    int64     `json:"cropId"`
	Date      time.Time `json:"date"`
	Quantity  float64   `json:"quantity"`
	UnitValue float64   `json:"unitValue"`
}

// Cost 以十進位計算出庫成本 quantity * unitValue。
func (o StockOutflow) Cost() decimal.Decimal {
	return decimal.NewFromFloat(o.Quantity).Mul(decimal.NewFromFloat(o.UnitValue))
}

// Income 為作物銷售收入。
type Income struct {
	ID      int64     `json:"id"`
	CropID  int64     `json:"cropId"`
	Date    time.Time `json:"date"`
	Concept string    `json:"concept"`
	Buyer   string    `json:"buyer"`
	Amount  float64   `json:"amount"`
}

// Severity 列舉警報嚴重度。
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert 為平台警報（感測、庫存、病蟲害等）。
type Alert struct {
	ID       int64     `json:"id"`
	Type     string    `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Date     time.Time `json:"date"`
	Resolved bool      `json:"resolved"`
}

// Validate 基本欄位檢查。
func (a Alert) Validate() error {
	if a.Type == "" {
		return fmt.Errorf("alert type is required")
	}
	switch a.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return fmt.Errorf("unsupported severity: %s", a.Severity)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("alert date is required")
	}
	return nil
}

// LifecycleEvent 為作物履歷（播種、施肥、採收、出貨）中的一個事件。
type LifecycleEvent struct {
	ID          int64     `json:"id"`
	CropID      int64     `json:"cropId"`
	Stage       string    `json:"stage"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
}
