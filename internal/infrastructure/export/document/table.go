package document

// table 為共用表格的內容，所有區塊表格都經過 drawTable。
type table struct {
	headers []string
	rows    [][]string
	align   []string
}

const rowHeight = 7.0

// tunedWidths 為 2 到 5 欄的手調欄寬，總和等於內容寬度。
var tunedWidths = map[int][]float64{
	2: {80, 100},
	3: {60, 60, 60},
	4: {32, 68, 40, 40},
	5: {30, 38, 52, 30, 30},
}

// columnWidths 依欄數查表，查無時平均分配。
func columnWidths(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if tuned, ok := tunedWidths[n]; ok {
		out := make([]float64, n)
		copy(out, tuned)
		return out
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = contentWidth / float64(n)
	}
	return out
}

// drawTable 輸出反白表頭與斑馬紋資料列，換頁後重繪表頭。
func (w *writer) drawTable(c cursor, t table) cursor {
	widths := columnWidths(len(t.headers))
	c = w.ensure(c, rowHeight*2)
	c = w.tableHeader(c, t.headers, widths)

	w.pdf.SetFont("Helvetica", "", 8)
	for i, row := range t.rows {
		if c.y+rowHeight > pageBottom {
			c = w.newPage()
			c = w.tableHeader(c, t.headers, widths)
			w.pdf.SetFont("Helvetica", "", 8)
		}
		fill := i%2 == 1
		if fill {
			w.fillColor(colorStripe)
		}
		w.textColor(colorText)
		w.pdf.SetXY(marginLeft, c.y)
		for j, width := range widths {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			w.pdf.CellFormat(width, rowHeight, w.fit(cell, width-2), "", 0, alignOf(t.align, j), fill, 0, "")
		}
		c = c.advance(rowHeight)
	}
	return c.advance(4)
}

func (w *writer) tableHeader(c cursor, headers []string, widths []float64) cursor {
	w.pdf.SetFont("Helvetica", "B", 8)
	w.fillColor(colorBrand)
	w.textColor(colorWhite)
	w.pdf.SetXY(marginLeft, c.y)
	for i, h := range headers {
		w.pdf.CellFormat(widths[i], rowHeight, w.fit(h, widths[i]-2), "", 0, "L", true, 0, "")
	}
	return c.advance(rowHeight)
}

func alignOf(align []string, i int) string {
	if i < len(align) && align[i] != "" {
		return align[i]
	}
	return "L"
}

// fit 轉碼並截斷超過欄寬的文字。
func (w *writer) fit(text string, width float64) string {
	s := w.tr(text)
	if w.pdf.GetStringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	// 轉碼後為單位元組編碼，可直接以位元組截斷。
	n := len(s)
	for n > 0 && w.pdf.GetStringWidth(s[:n]+ellipsis) > width {
		n--
	}
	return s[:n] + ellipsis
}
