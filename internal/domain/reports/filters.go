package reports

import (
	"errors"
	"time"
)

// Section 為報表中可選的領域區塊。
type Section string

const (
	SectionMetrics      Section = "metrics"
	SectionActivities   Section = "activities"
	SectionFinance      Section = "finance"
	SectionInventory    Section = "inventory"
	SectionAlerts       Section = "alerts"
	SectionTraceability Section = "traceability"
)

// AllSections 依輸出順序列出所有區塊。
var AllSections = []Section{
	SectionMetrics,
	SectionActivities,
	SectionFinance,
	SectionInventory,
	SectionAlerts,
	SectionTraceability,
}

// SectionSet 為呼叫端選擇的區塊集合。
type SectionSet map[Section]bool

// NewSectionSet 建立區塊集合。
func NewSectionSet(sections ...Section) SectionSet {
	set := make(SectionSet, len(sections))
	for _, s := range sections {
		set[s] = true
	}
	return set
}

// Has 判斷是否包含區塊。
func (s SectionSet) Has(section Section) bool {
	return s[section]
}

var (
	// ErrInvalidPeriod 表示期間缺漏或起日晚於迄日。
	ErrInvalidPeriod = errors.New("invalid report period")
	// ErrMissingCrop 表示未指定作物。
	ErrMissingCrop = errors.New("cropId is required")
)

// Filters 為產生報表的輸入條件。
type Filters struct {
	CropID      int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	// Metrics 非空時只保留列出的感測類型。
	Metrics  []string
	Sections SectionSet
}

// Validate 檢查作物與期間。
func (f Filters) Validate() error {
	if f.CropID <= 0 {
		return ErrMissingCrop
	}
	if f.PeriodStart.IsZero() || f.PeriodEnd.IsZero() {
		return ErrInvalidPeriod
	}
	if f.PeriodStart.After(f.PeriodEnd) {
		return ErrInvalidPeriod
	}
	return nil
}

// AvailableMetrics 為可供篩選的感測類型。
var AvailableMetrics = []string{
	"temperature",
	"humidity",
	"soil_moisture",
	"ph",
	"luminosity",
	"conductivity",
}
