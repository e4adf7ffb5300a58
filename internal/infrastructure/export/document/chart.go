package document

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"farm-platform/internal/domain/reports"
	"farm-platform/internal/domain/stats"
)

const (
	galleryColumns  = 2
	galleryRows     = 3
	galleryPerPage  = galleryColumns * galleryRows
	galleryGap      = 6.0
	thumbnailPoints = 12
	detailChartH    = 55.0
)

// frame 為繪圖區域（mm）。
type frame struct {
	x, y, w, h float64
}

func (f frame) inset(left, top, right, bottom float64) frame {
	return frame{x: f.x + left, y: f.y + top, w: f.w - left - right, h: f.h - top - bottom}
}

// galleryPages 回傳 n 張縮圖需要的頁數；0 表示略過圖庫。
func galleryPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + galleryPerPage - 1) / galleryPerPage
}

// gridSlot 為縮圖在圖庫中的位置。
type gridSlot struct {
	page, col, row int
}

// gallerySlot 依序以列優先填滿 2x3 格。
func gallerySlot(i int) gridSlot {
	slot := i % galleryPerPage
	return gridSlot{
		page: i / galleryPerPage,
		col:  slot % galleryColumns,
		row:  slot / galleryColumns,
	}
}

// scaleY 將數值映射到繪圖區的 y 座標；平坦序列畫在垂直中線。
func scaleY(v, lo, hi float64, f frame) float64 {
	if hi == lo {
		return f.y + f.h/2
	}
	return f.y + f.h - (v-lo)/(hi-lo)*f.h
}

// scaleX 依索引平均分配 x 座標；單點置中。
func scaleX(i, n int, f frame) float64 {
	if n <= 1 {
		return f.x + f.w/2
	}
	return f.x + float64(i)*f.w/float64(n-1)
}

func plotPoints(values []float64, f frame) []fpdf.PointType {
	if len(values) == 0 {
		return nil
	}
	lo, hi := stats.Bounds(values)
	pts := make([]fpdf.PointType, len(values))
	for i, v := range values {
		pts[i] = fpdf.PointType{X: scaleX(i, len(values), f), Y: scaleY(v, lo, hi, f)}
	}
	return pts
}

func thumbnailValues(values []float64) []float64 {
	if len(values) > thumbnailPoints {
		return values[:thumbnailPoints]
	}
	return values
}

// lineChart 以線段與圓點手繪折線圖，左側標示最小與最大值。
func (w *writer) lineChart(f frame, values []float64, markers bool) {
	w.drawColor(colorDivider)
	w.pdf.SetLineWidth(0.2)
	w.pdf.Rect(f.x, f.y, f.w, f.h, "D")

	plot := f.inset(14, 4, 4, 4)
	w.pdf.Line(plot.x, plot.y, plot.x, plot.y+plot.h)
	w.pdf.Line(plot.x, plot.y+plot.h, plot.x+plot.w, plot.y+plot.h)

	w.pdf.SetFont("Helvetica", "", 6)
	w.textColor(colorMuted)
	if len(values) == 0 {
		w.pdf.SetXY(plot.x, plot.y+plot.h/2-2)
		w.pdf.CellFormat(plot.w, 4, w.tr("No readings"), "", 0, "C", false, 0, "")
		return
	}
	lo, hi := stats.Bounds(values)
	w.pdf.Text(f.x+1, plot.y+2, formatAxis(hi))
	w.pdf.Text(f.x+1, plot.y+plot.h, formatAxis(lo))

	pts := plotPoints(values, plot)
	w.drawColor(colorLine)
	w.fillColor(colorLine)
	w.pdf.SetLineWidth(0.4)
	if len(pts) == 1 {
		w.pdf.Circle(pts[0].X, pts[0].Y, 0.9, "F")
		return
	}
	for i := 1; i < len(pts); i++ {
		w.pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
	if markers {
		for _, p := range pts {
			w.pdf.Circle(p.X, p.Y, 0.5, "F")
		}
	}
}

// gallery 每頁以 2x3 格放置縮圖，未填滿的格子不繪製。
func (w *writer) gallery(c cursor, r reports.CropReport) cursor {
	names := r.MetricNames()
	pages := galleryPages(len(names))
	if pages == 0 {
		return c
	}
	for p := 0; p < pages; p++ {
		c = w.newPage()
		c = w.sectionTitle(c, fmt.Sprintf("Metric Charts %d/%d", p+1, pages))
		cellW := (contentWidth - galleryGap*(galleryColumns-1)) / galleryColumns
		cellH := (c.remaining() - galleryGap*(galleryRows-1)) / galleryRows
		top := c.y
		for i := p * galleryPerPage; i < len(names) && i < (p+1)*galleryPerPage; i++ {
			slot := gallerySlot(i)
			cell := frame{
				x: marginLeft + float64(slot.col)*(cellW+galleryGap),
				y: top + float64(slot.row)*(cellH+galleryGap),
				w: cellW,
				h: cellH,
			}
			w.thumbnail(cell, names[i], r.Metrics[names[i]])
		}
	}
	return w.newPage()
}

func (w *writer) thumbnail(cell frame, name string, series reports.MetricSeries) {
	w.pdf.SetFont("Helvetica", "B", 9)
	w.textColor(colorText)
	w.pdf.SetXY(cell.x, cell.y)
	label := name
	if unit := series.Unit(); unit != "" {
		label = fmt.Sprintf("%s (%s)", name, unit)
	}
	w.pdf.CellFormat(cell.w, 5, w.tr(label), "", 0, "L", false, 0, "")

	w.pdf.SetFont("Helvetica", "", 7)
	w.textColor(colorMuted)
	w.pdf.SetXY(cell.x, cell.y+cell.h-5)
	w.pdf.CellFormat(cell.w, 5, w.tr(fmt.Sprintf("avg %s  n=%d  out of range %d",
		formatValue(series.Summary.Average), series.Summary.Count, series.Summary.AlertCount)), "", 0, "L", false, 0, "")

	w.lineChart(cell.inset(0, 6, 0, 6), thumbnailValues(series.Values()), false)
}
