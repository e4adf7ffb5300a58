package workbook

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"farm-platform/internal/domain/reports"
)

// builder 逐列寫入工作表，遇到第一個錯誤後停止寫入。
type builder struct {
	f      *excelize.File
	loc    *time.Location
	header int
	title  int
	err    error
}

// sheet 為單一工作表的寫入位置。
type sheet struct {
	b    *builder
	name string
	row  int
}

func (b *builder) sheet(name string) *sheet {
	return &sheet{b: b, name: name, row: 1}
}

func (s *sheet) append(values ...interface{}) {
	if s.b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.b.err = err
		return
	}
	if err := s.b.f.SetSheetRow(s.name, cell, &values); err != nil {
		s.b.err = err
		return
	}
	s.row++
}

func (s *sheet) styled(style int, values ...interface{}) {
	row := s.row
	s.append(values...)
	if s.b.err != nil || len(values) == 0 {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(len(values), row)
	if err := s.b.f.SetCellStyle(s.name, from, to, style); err != nil {
		s.b.err = err
	}
}

func (s *sheet) headerRow(values ...interface{}) { s.styled(s.b.header, values...) }
func (s *sheet) titleRow(values ...interface{})  { s.styled(s.b.title, values...) }

func (s *sheet) noData() { s.append(NoDataText) }

func (s *sheet) widths(width float64, lastCol string) {
	if s.b.err != nil {
		return
	}
	if err := s.b.f.SetColWidth(s.name, "A", lastCol, width); err != nil {
		s.b.err = err
	}
}

func (b *builder) date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(b.loc).Format("2006-01-02")
}

func (b *builder) timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(b.loc).Format("2006-01-02 15:04:05")
}

func (b *builder) summary(r reports.CropReport) {
	s := b.sheet(SheetSummary)
	s.widths(24, "B")
	s.titleRow("Crop Report")
	s.headerRow("Field", "Value")
	harvest := ""
	if r.Crop.HarvestDate != nil {
		harvest = b.date(*r.Crop.HarvestDate)
	}
	s.append("Crop", r.Crop.Name)
	s.append("Crop ID", r.Crop.ID)
	s.append("Type", r.Crop.Type)
	s.append("Status", string(r.Crop.Status))
	s.append("Plot", r.Crop.PlotName)
	s.append("Sowing date", b.date(r.Crop.SowingDate))
	s.append("Harvest date", harvest)
	s.append("Period start", b.date(r.Period.Start))
	s.append("Period end", b.date(r.Period.End))
	s.append("Generated at", b.timestamp(r.GeneratedAt))
	s.append("Sub-plots", len(r.SubPlots))
	s.append("Metrics", len(r.Metrics))
	if r.Activities != nil {
		s.append("Activities", r.Activities.Summary.Total)
	}
	if r.Finance != nil {
		s.append("Total income", r.Finance.Summary.TotalIncome)
		s.append("Total costs", r.Finance.Summary.TotalCosts)
		s.append("Gross margin", r.Finance.Summary.GrossMargin)
	}
	if r.Inventory != nil {
		s.append("Inventory value", r.Inventory.Summary.TotalValue)
	}
	if r.Alerts != nil {
		s.append("Unresolved alerts", r.Alerts.Summary.Unresolved)
	}
}

// metrics 每個指標依序輸出名稱列、表頭與資料、統計區塊、分隔列。
func (b *builder) metrics(r reports.CropReport) {
	s := b.sheet(SheetMetrics)
	names := r.MetricNames()
	if len(names) == 0 {
		s.noData()
		return
	}
	s.widths(16, "I")
	for _, name := range names {
		series := r.Metrics[name]
		sum := series.Summary
		s.titleRow(name)
		s.headerRow("Timestamp", "Value", "Unit", "Sensor ID", "Sensor", "Average", "Max", "Min", "Std Dev")
		for _, rd := range series.Readings {
			s.append(b.timestamp(rd.Timestamp), rd.Value, rd.Unit, rd.SensorID, rd.SensorLabel,
				sum.Average, sum.Max, sum.Min, sum.StdDev)
		}
		s.append("Statistics")
		s.append("Average", sum.Average)
		s.append("Max", sum.Max)
		s.append("Min", sum.Min)
		s.append("Std Dev", sum.StdDev)
		s.append("Count", sum.Count)
		s.append("Out of range", sum.AlertCount)
		s.append(MetricSeparator)
	}
}

func (b *builder) activities(sec *reports.ActivitiesSection) {
	s := b.sheet(SheetActivities)
	if sec == nil {
		s.noData()
		return
	}
	s.widths(18, "G")
	s.headerRow("Date", "Type", "Description", "Responsible", "Labor Cost", "Machinery Cost", "Total Cost")
	for _, a := range sec.List {
		s.append(b.date(a.Date), a.Type, a.Description, a.Responsible, a.LaborCost, a.MachineryCost, a.TotalCost())
	}
	s.append()
	s.append("Total activities", sec.Summary.Total)
	s.append("Total cost", sec.Summary.TotalCost)
	for _, typ := range sortedKeys(sec.Summary.CountByType) {
		s.append("Type: "+typ, sec.Summary.CountByType[typ])
	}
}

func (b *builder) finance(sec *reports.FinanceSection) {
	s := b.sheet(SheetFinance)
	if sec == nil {
		s.noData()
		return
	}
	s.widths(18, "D")
	s.titleRow("Summary")
	s.append("Total income", sec.Summary.TotalIncome)
	s.append("Total costs", sec.Summary.TotalCosts)
	s.append("Gross margin", sec.Summary.GrossMargin)
	s.append("Net margin %", sec.Summary.NetMargin)
	s.append("ROI %", sec.Summary.RoiPercent)
	s.append()

	s.titleRow("Income")
	s.headerRow("Date", "Concept", "Buyer", "Amount")
	for _, in := range sec.Income {
		s.append(b.date(in.Date), in.Concept, in.Buyer, in.Amount)
	}
	s.append()

	s.titleRow("Costs")
	s.headerRow("Date", "Concept", "Source", "Amount")
	for _, c := range sec.Costs {
		s.append(b.date(c.Date), c.Concept, string(c.Source), c.Amount)
	}
}

func (b *builder) inventory(sec *reports.InventorySection) {
	s := b.sheet(SheetInventory)
	if sec == nil {
		s.noData()
		return
	}
	s.widths(16, "F")
	s.headerRow("Item", "Category", "Quantity", "Unit", "Unit Value", "Value")
	for _, it := range sec.Items {
		s.append(it.Name, it.Category, it.Quantity, it.Unit, it.UnitValue, it.Value())
	}
	s.append()
	s.append("Total items", sec.Summary.TotalItems)
	s.append("Total value", sec.Summary.TotalValue)
	for _, cat := range sortedKeys(sec.Summary.ItemsByCategory) {
		s.append("Category: "+cat, sec.Summary.ItemsByCategory[cat])
	}
}

func (b *builder) alerts(sec *reports.AlertsSection) {
	s := b.sheet(SheetAlerts)
	if sec == nil {
		s.noData()
		return
	}
	s.widths(16, "E")
	s.headerRow("Date", "Type", "Severity", "Message", "Resolved")
	for _, a := range sec.List {
		s.append(b.timestamp(a.Date), a.Type, string(a.Severity), a.Message, a.Resolved)
	}
	s.append()
	s.append("Total", sec.Summary.Total)
	s.append("Unresolved", sec.Summary.Unresolved)
}

func (b *builder) traceability(sec *reports.TraceabilitySection) {
	s := b.sheet(SheetTraceability)
	if sec == nil {
		s.noData()
		return
	}
	if sec.Crop == nil {
		s.append(sec.Message)
		return
	}
	s.widths(18, "D")
	s.titleRow(sec.Crop.CropName)
	s.headerRow("Date", "Stage", "Description", "Actor")
	for _, ev := range sec.Crop.Events {
		s.append(b.date(ev.Date), ev.Stage, ev.Description, ev.Actor)
	}
}

func (b *builder) analysis(a *reports.Analysis) {
	s := b.sheet(SheetAnalysis)
	if a == nil {
		s.noData()
		return
	}
	s.widths(30, "C")
	s.append("Performance score", a.PerformanceScore)
	s.append("Health score", a.HealthScore)
	s.append()
	s.titleRow("Recommendations")
	for _, rec := range a.Recommendations {
		s.append(rec)
	}
	s.append()
	s.titleRow("Critical Points")
	s.headerRow("Kind", "Message", "Recommended Action")
	for _, p := range a.CriticalPoints {
		s.append(string(p.Kind), p.Message, p.RecommendedAction)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
