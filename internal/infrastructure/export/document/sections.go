package document

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"farm-platform/internal/domain/reports"
)

func (w *writer) header(r reports.CropReport) cursor {
	c := w.newPage()
	w.fillColor(colorBrand)
	w.pdf.Rect(0, 0, pageWidth, 12, "F")
	w.pdf.SetFont("Helvetica", "B", 10)
	w.textColor(colorWhite)
	w.pdf.SetXY(marginLeft, 3)
	w.pdf.CellFormat(contentWidth, 6, w.tr(w.opts.Branding), "", 0, "L", false, 0, "")

	w.pdf.SetFont("Helvetica", "B", 18)
	w.textColor(colorText)
	w.pdf.SetXY(marginLeft, c.y)
	w.pdf.CellFormat(contentWidth, 10, w.tr("Crop Report: "+r.Crop.Name), "", 0, "L", false, 0, "")
	c = c.advance(11)

	w.pdf.SetFont("Helvetica", "", 10)
	w.textColor(colorMuted)
	w.pdf.SetXY(marginLeft, c.y)
	w.pdf.CellFormat(contentWidth, 5, w.tr(fmt.Sprintf("Period %s to %s", w.date(r.Period.Start), w.date(r.Period.End))), "", 0, "L", false, 0, "")
	c = c.advance(5)
	w.pdf.SetXY(marginLeft, c.y)
	w.pdf.CellFormat(contentWidth, 5, w.tr("Generated "+w.timestamp(r.GeneratedAt)), "", 0, "L", false, 0, "")
	return c.advance(9)
}

func (w *writer) summary(c cursor, r reports.CropReport) cursor {
	c = w.sectionTitle(c, "Executive Summary")
	harvest := "-"
	if r.Crop.HarvestDate != nil {
		harvest = w.date(*r.Crop.HarvestDate)
	}
	rows := [][]string{
		{"Crop", r.Crop.Name},
		{"Type", r.Crop.Type},
		{"Status", string(r.Crop.Status)},
		{"Plot", r.Crop.PlotName},
		{"Sowing date", w.date(r.Crop.SowingDate)},
		{"Harvest date", harvest},
		{"Sub-plots", strconv.Itoa(len(r.SubPlots))},
		{"Monitored metrics", strconv.Itoa(len(r.Metrics))},
	}
	if r.Activities != nil {
		rows = append(rows, []string{"Activities", strconv.Itoa(r.Activities.Summary.Total)})
	}
	if r.Finance != nil {
		rows = append(rows,
			[]string{"Total income", formatMoney(r.Finance.Summary.TotalIncome)},
			[]string{"Total costs", formatMoney(r.Finance.Summary.TotalCosts)},
			[]string{"Gross margin", formatMoney(r.Finance.Summary.GrossMargin)},
		)
	}
	if r.Inventory != nil {
		rows = append(rows, []string{"Inventory value", formatMoney(r.Inventory.Summary.TotalValue)})
	}
	if r.Alerts != nil {
		rows = append(rows, []string{"Unresolved alerts", strconv.Itoa(r.Alerts.Summary.Unresolved)})
	}
	if r.Analysis != nil {
		rows = append(rows,
			[]string{"Performance score", formatValue(r.Analysis.PerformanceScore)},
			[]string{"Health score", formatValue(r.Analysis.HealthScore)},
		)
	}
	c = w.drawTable(c, table{headers: []string{"Indicator", "Value"}, rows: rows})
	if r.Crop.Notes != "" {
		c = w.subTitle(c, "Notes")
		c = w.paragraph(c, r.Crop.Notes, "", colorText)
	}
	return c
}

// metricDetail 每個感測類型輸出完整序列圖、讀數表與統計列。
func (w *writer) metricDetail(c cursor, r reports.CropReport) cursor {
	names := r.MetricNames()
	if len(names) == 0 {
		return w.placeholder(c, "Sensor Metrics")
	}
	c = w.sectionTitle(c, "Sensor Metrics")
	for _, name := range names {
		series := r.Metrics[name]
		title := name
		if unit := series.Unit(); unit != "" {
			title = fmt.Sprintf("%s (%s)", name, unit)
		}
		c = w.ensure(c, detailChartH+30)
		c = w.subTitle(c, title)
		w.lineChart(frame{x: marginLeft, y: c.y, w: contentWidth, h: detailChartH}, series.Values(), true)
		c = c.advance(detailChartH + 4)

		s := series.Summary
		c = w.drawTable(c, table{
			headers: []string{"Average", "Min", "Max", "Std dev", "Out of range"},
			rows: [][]string{{
				formatValue(s.Average), formatValue(s.Min), formatValue(s.Max),
				formatValue(s.StdDev), strconv.Itoa(s.AlertCount),
			}},
			align: []string{"R", "R", "R", "R", "R"},
		})

		rows := make([][]string, 0, len(series.Readings))
		for _, rd := range series.Readings {
			rows = append(rows, []string{w.timestamp(rd.Timestamp), formatValue(rd.Value), sensorName(rd)})
		}
		if len(rows) == 0 {
			c = w.paragraph(c, "No readings in the period", "I", colorMuted)
			continue
		}
		c = w.drawTable(c, table{
			headers: []string{"Timestamp", "Value", "Sensor"},
			rows:    rows,
			align:   []string{"L", "R", "L"},
		})
	}
	return c
}

func sensorName(rd reports.MetricReading) string {
	if rd.SensorLabel != "" {
		return rd.SensorLabel
	}
	return "#" + strconv.FormatInt(rd.SensorID, 10)
}

func (w *writer) activities(c cursor, sec *reports.ActivitiesSection) cursor {
	if sec == nil {
		return w.placeholder(c, "Field Activities")
	}
	c = w.sectionTitle(c, "Field Activities")
	c = w.paragraph(c, fmt.Sprintf("%d activities, total cost %s",
		sec.Summary.Total, formatMoney(sec.Summary.TotalCost)), "", colorText)
	if len(sec.List) == 0 {
		return w.paragraph(c, "No activities in the period", "I", colorMuted)
	}
	rows := make([][]string, 0, len(sec.List))
	for _, a := range sec.List {
		rows = append(rows, []string{w.date(a.Date), a.Type, a.Description, a.Responsible, formatMoney(a.TotalCost())})
	}
	return w.drawTable(c, table{
		headers: []string{"Date", "Type", "Description", "Responsible", "Cost"},
		rows:    rows,
		align:   []string{"L", "L", "L", "L", "R"},
	})
}

func (w *writer) finance(c cursor, sec *reports.FinanceSection) cursor {
	if sec == nil {
		return w.placeholder(c, "Finance")
	}
	c = w.sectionTitle(c, "Finance")
	s := sec.Summary
	c = w.drawTable(c, table{
		headers: []string{"Indicator", "Value"},
		rows: [][]string{
			{"Total income", formatMoney(s.TotalIncome)},
			{"Total costs", formatMoney(s.TotalCosts)},
			{"Gross margin", formatMoney(s.GrossMargin)},
			{"Net margin", formatPercent(s.NetMargin)},
			{"ROI", formatPercent(s.RoiPercent)},
		},
		align: []string{"L", "R"},
	})

	c = w.subTitle(c, "Income")
	if len(sec.Income) == 0 {
		c = w.paragraph(c, "No income in the period", "I", colorMuted)
	} else {
		rows := make([][]string, 0, len(sec.Income))
		for _, in := range sec.Income {
			rows = append(rows, []string{w.date(in.Date), in.Concept, in.Buyer, formatMoney(in.Amount)})
		}
		c = w.drawTable(c, table{
			headers: []string{"Date", "Concept", "Buyer", "Amount"},
			rows:    rows,
			align:   []string{"L", "L", "L", "R"},
		})
	}

	c = w.subTitle(c, "Costs")
	if len(sec.Costs) == 0 {
		return w.paragraph(c, "No costs in the period", "I", colorMuted)
	}
	rows := make([][]string, 0, len(sec.Costs))
	for _, cost := range sec.Costs {
		rows = append(rows, []string{w.date(cost.Date), cost.Concept, string(cost.Source), formatMoney(cost.Amount)})
	}
	return w.drawTable(c, table{
		headers: []string{"Date", "Concept", "Source", "Amount"},
		rows:    rows,
		align:   []string{"L", "L", "L", "R"},
	})
}

func (w *writer) inventory(c cursor, sec *reports.InventorySection) cursor {
	if sec == nil {
		return w.placeholder(c, "Inventory")
	}
	c = w.sectionTitle(c, "Inventory")
	c = w.paragraph(c, fmt.Sprintf("%d items, total value %s",
		sec.Summary.TotalItems, formatMoney(sec.Summary.TotalValue)), "", colorText)
	if len(sec.Items) == 0 {
		return w.paragraph(c, "No inventory items", "I", colorMuted)
	}
	rows := make([][]string, 0, len(sec.Items))
	for _, it := range sec.Items {
		qty := formatValue(it.Quantity)
		if it.Unit != "" {
			qty += " " + it.Unit
		}
		rows = append(rows, []string{it.Name, it.Category, qty, formatMoney(it.UnitValue), formatMoney(it.Value())})
	}
	return w.drawTable(c, table{
		headers: []string{"Item", "Category", "Quantity", "Unit value", "Value"},
		rows:    rows,
		align:   []string{"L", "L", "R", "R", "R"},
	})
}

func (w *writer) alerts(c cursor, sec *reports.AlertsSection) cursor {
	if sec == nil {
		return w.placeholder(c, "Alerts")
	}
	c = w.sectionTitle(c, "Alerts")
	c = w.paragraph(c, fmt.Sprintf("%d alerts, %d unresolved",
		sec.Summary.Total, sec.Summary.Unresolved), "", colorText)
	if len(sec.List) == 0 {
		return w.paragraph(c, "No alerts in the period", "I", colorMuted)
	}
	rows := make([][]string, 0, len(sec.List))
	for _, a := range sec.List {
		status := "open"
		if a.Resolved {
			status = "resolved"
		}
		rows = append(rows, []string{w.date(a.Date), a.Type, string(a.Severity), a.Message, status})
	}
	return w.drawTable(c, table{
		headers: []string{"Date", "Type", "Severity", "Message", "Status"},
		rows:    rows,
	})
}

func (w *writer) traceability(c cursor, sec *reports.TraceabilitySection) cursor {
	if sec == nil {
		return w.placeholder(c, "Traceability")
	}
	c = w.sectionTitle(c, "Traceability")
	if sec.Crop == nil {
		return w.paragraph(c, sec.Message, "I", colorMuted)
	}
	rows := make([][]string, 0, len(sec.Crop.Events))
	for _, ev := range sec.Crop.Events {
		rows = append(rows, []string{w.date(ev.Date), ev.Stage, ev.Description, ev.Actor})
	}
	return w.drawTable(c, table{
		headers: []string{"Date", "Stage", "Description", "Actor"},
		rows:    rows,
	})
}

func (w *writer) analysis(c cursor, a *reports.Analysis) cursor {
	if a == nil {
		return w.placeholder(c, "Analysis")
	}
	c = w.sectionTitle(c, "Analysis")
	c = w.paragraph(c, fmt.Sprintf("Performance score %s, health score %s",
		formatValue(a.PerformanceScore), formatValue(a.HealthScore)), "B", colorText)

	c = w.subTitle(c, "Recommendations")
	if len(a.Recommendations) == 0 {
		c = w.paragraph(c, "No recommendations", "I", colorMuted)
	}
	for _, rec := range a.Recommendations {
		c = w.paragraph(c, "- "+rec, "", colorText)
	}

	c = w.subTitle(c, "Critical Points")
	if len(a.CriticalPoints) == 0 {
		return w.paragraph(c, "No critical points", "I", colorMuted)
	}
	rows := make([][]string, 0, len(a.CriticalPoints))
	for _, p := range a.CriticalPoints {
		rows = append(rows, []string{string(p.Kind), p.Message, p.RecommendedAction})
	}
	c = w.drawTable(c, table{
		headers: []string{"Kind", "Message", "Recommended action"},
		rows:    rows,
	})
	if lo.ContainsBy(a.CriticalPoints, func(p reports.CriticalPoint) bool { return p.Kind == reports.PointAlert }) {
		c = w.paragraph(c, "Alert points require attention before the next report.", "B", colorAlert)
	}
	return c
}
