package document

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-platform/internal/domain/farm"
	"farm-platform/internal/domain/reports"
	"farm-platform/internal/infrastructure/logging"
)

func TestGalleryPages(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 6: 1, 7: 2, 12: 2, 13: 3}
	for n, want := range cases {
		assert.Equal(t, want, galleryPages(n), "metrics=%d", n)
	}
}

func TestGallerySlot(t *testing.T) {
	assert.Equal(t, gridSlot{page: 0, col: 0, row: 0}, gallerySlot(0))
	assert.Equal(t, gridSlot{page: 0, col: 1, row: 0}, gallerySlot(1))
	assert.Equal(t, gridSlot{page: 0, col: 1, row: 2}, gallerySlot(5))
	assert.Equal(t, gridSlot{page: 1, col: 0, row: 0}, gallerySlot(6))
}

func TestScaleY(t *testing.T) {
	f := frame{x: 10, y: 20, w: 100, h: 50}
	assert.InDelta(t, 70, scaleY(0, 0, 10, f), 1e-9)
	assert.InDelta(t, 20, scaleY(10, 0, 10, f), 1e-9)
	assert.InDelta(t, 45, scaleY(5, 0, 10, f), 1e-9)
	assert.InDelta(t, 45, scaleY(3, 3, 3, f), 1e-9)
}

func TestPlotPoints_FlatSeriesAtMidpoint(t *testing.T) {
	f := frame{x: 0, y: 0, w: 90, h: 40}
	pts := plotPoints([]float64{7, 7, 7, 7}, f)
	require.Len(t, pts, 4)
	for i, p := range pts {
		assert.InDelta(t, 20, p.Y, 1e-9)
		assert.InDelta(t, float64(i)*30, p.X, 1e-9)
	}
}

func TestPlotPoints_SinglePointCentered(t *testing.T) {
	pts := plotPoints([]float64{3}, frame{x: 0, y: 0, w: 80, h: 40})
	require.Len(t, pts, 1)
	assert.InDelta(t, 40, pts[0].X, 1e-9)
	assert.InDelta(t, 20, pts[0].Y, 1e-9)
	assert.Nil(t, plotPoints(nil, frame{}))
}

func TestThumbnailValuesCapped(t *testing.T) {
	values := make([]float64, 30)
	assert.Len(t, thumbnailValues(values), thumbnailPoints)
	assert.Len(t, thumbnailValues(values[:5]), 5)
}

func TestColumnWidths(t *testing.T) {
	for n := 2; n <= 5; n++ {
		widths := columnWidths(n)
		require.Len(t, widths, n)
		var sum float64
		for _, w := range widths {
			sum += w
		}
		assert.InDelta(t, contentWidth, sum, 1e-9, "columns=%d", n)
	}
	widths := columnWidths(6)
	require.Len(t, widths, 6)
	for _, w := range widths {
		assert.InDelta(t, contentWidth/6, w, 1e-9)
	}
	columnWidths(3)[0] = 1
	assert.Equal(t, 60.0, tunedWidths[3][0])
}

func sampleReport(metricCount int) reports.CropReport {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	metrics := make(map[string]reports.MetricSeries, metricCount)
	for i := 0; i < metricCount; i++ {
		series := reports.MetricSeries{}
		for j := 0; j < 20; j++ {
			series.Readings = append(series.Readings, reports.MetricReading{
				Timestamp: start.Add(time.Duration(j) * time.Hour),
				Value:     float64(10 + (i+j)%7),
				SensorID:  int64(i + 1),
				Unit:      "u",
			})
		}
		series.Summary = reports.MetricSummary{Average: 12, Min: 10, Max: 16, Count: 20}
		metrics[fmt.Sprintf("metric_%02d", i)] = series
	}
	return reports.CropReport{
		GeneratedAt: start.AddDate(0, 1, 0),
		Period:      reports.Period{Start: start, End: start.AddDate(0, 0, 30)},
		Crop:        reports.CropSnapshot{ID: 1, Name: "Maize North", Type: "maize", PlotName: "North"},
		SubPlots:    []farm.SubPlot{},
		Metrics:     metrics,
		Analysis: &reports.Analysis{
			PerformanceScore: 70,
			HealthScore:      80,
			Recommendations:  []string{"Review irrigation"},
			CriticalPoints:   []reports.CriticalPoint{},
		},
	}
}

func render(t *testing.T, r reports.CropReport) []byte {
	t.Helper()
	out, err := NewExporter(Options{}, logging.Nop()).Render(r)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	return out
}

func TestRender_GalleryPagination(t *testing.T) {
	out := render(t, sampleReport(7))
	assert.Contains(t, string(out), "Metric Charts 1/2")
	assert.Contains(t, string(out), "Metric Charts 2/2")
	assert.NotContains(t, string(out), "Metric Charts 3/")
}

func TestRender_NoMetricsSkipsGallery(t *testing.T) {
	out := render(t, sampleReport(0))
	assert.NotContains(t, string(out), "Metric Charts")
	assert.Contains(t, string(out), "Executive Summary")
	assert.Contains(t, string(out), "Page 1/")
}

func TestRender_AbsentSectionsUsePlaceholder(t *testing.T) {
	out := string(render(t, sampleReport(1)))
	for _, title := range []string{"Field Activities", "Finance", "Inventory", "Alerts", "Traceability"} {
		assert.Contains(t, out, "("+title+")")
	}
	assert.GreaterOrEqual(t, bytes.Count([]byte(out), []byte(noDataText)), 5)
}

func TestRender_FlatSeries(t *testing.T) {
	r := sampleReport(1)
	s := r.Metrics["metric_00"]
	for i := range s.Readings {
		s.Readings[i].Value = 21.5
	}
	r.Metrics["metric_00"] = s
	render(t, r)
}

func TestRender_LongTableRepeatsHeader(t *testing.T) {
	r := sampleReport(0)
	sec := reports.EmptyActivities()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		sec.List = append(sec.List, farm.Activity{ID: int64(i), Type: "irrigation", Date: day, Responsible: "crew", LaborCost: 10})
	}
	sec.Summary.Total = len(sec.List)
	r.Activities = &sec
	out := render(t, r)
	assert.GreaterOrEqual(t, bytes.Count(out, []byte("(Responsible)")), 2)
}

func TestRender_FullReport(t *testing.T) {
	r := sampleReport(3)
	day := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	act := reports.EmptyActivities()
	act.List = []farm.Activity{{Type: "sowing", Date: day, LaborCost: 50}}
	fin := reports.FinanceSection{
		Income: []farm.Income{{Date: day, Concept: "sale", Buyer: "Coop", Amount: 900}},
		Costs:  []reports.CostRecord{{Date: day, Concept: "Urea", Source: reports.CostFromStock, Amount: 150}},
		Summary: reports.FinanceSummary{
			TotalIncome: 900, TotalCosts: 150, GrossMargin: 750, NetMargin: 83.3, RoiPercent: 500,
		},
	}
	inv := reports.EmptyInventory()
	inv.Items = []farm.InventoryItem{{Name: "Urea", Category: "fertilizer", Unit: "kg", Quantity: 40, UnitValue: 2}}
	al := reports.EmptyAlerts()
	al.List = []farm.Alert{{Type: "low_stock", Severity: farm.SeverityHigh, Date: day, Message: "Urea below 50"}}
	tr := reports.TraceabilitySection{Crop: &reports.TraceabilityTimeline{
		CropID: 1, CropName: "Maize North",
		Events: []farm.LifecycleEvent{{Stage: "sowing", Date: day, Actor: "crew"}},
	}}
	r.Activities, r.Finance, r.Inventory, r.Alerts, r.Traceability = &act, &fin, &inv, &al, &tr
	r.Analysis.CriticalPoints = []reports.CriticalPoint{{Kind: reports.PointAlert, Message: "1 unresolved alerts in the period"}}

	out := string(render(t, r))
	assert.Contains(t, out, "(Coop)")
	assert.Contains(t, out, "(stock)")
	assert.Contains(t, out, "(750.00)")
	assert.NotContains(t, out, noDataText)
}

func newTestWriter() *writer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	w := newWriter(pdf, Options{})
	pdf.SetFooterFunc(w.footer)
	w.newPage()
	return w
}

func TestParagraph_LongTextBreaksBeforeFooter(t *testing.T) {
	w := newTestWriter()
	text := strings.Repeat("Irrigation lines were flushed and inspected along the north rows. ", 30)
	w.pdf.SetFont("Helvetica", "", 10)
	lines := w.pdf.SplitLines([]byte(text), contentWidth)
	require.Greater(t, len(lines), 2)

	c := w.paragraph(cursor{y: pageBottom - 12}, text, "", colorText)
	assert.Equal(t, 2, w.pdf.PageNo())
	assert.LessOrEqual(t, c.y, pageBottom+2)
	assert.InDelta(t, marginTop+float64(len(lines))*lineHeight+2, c.y, 0.001)
}

func TestParagraph_ShortTextStaysOnPage(t *testing.T) {
	w := newTestWriter()
	c := w.paragraph(cursor{y: 100}, "Review irrigation", "", colorText)
	assert.Equal(t, 1, w.pdf.PageNo())
	assert.InDelta(t, 100+lineHeight+2, c.y, 0.001)
}

func TestParagraph_TallerThanPageSplitsAcrossPages(t *testing.T) {
	w := newTestWriter()
	text := strings.Repeat("Soil samples taken from every sub-plot after the spring rains. ", 200)
	c := w.paragraph(cursor{y: 100}, text, "", colorText)
	assert.GreaterOrEqual(t, w.pdf.PageNo(), 3)
	assert.LessOrEqual(t, c.y, pageBottom+2)
	require.False(t, w.pdf.Err())
}

func TestRender_NotesPrintedInFull(t *testing.T) {
	r := sampleReport(0)
	r.Crop.Notes = strings.Repeat("Leaf spotting noticed on the eastern edge after heavy rain. ", 12) + "fungicide-trial-booked"
	out := string(render(t, r))
	assert.Contains(t, out, "(Notes)")
	assert.Contains(t, out, "fungicide-trial-booked")
}
