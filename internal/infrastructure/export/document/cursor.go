package document

import (
	"github.com/go-pdf/fpdf"
)

// A4 直式，單位 mm。
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginTop    = 18.0
	footerHeight = 15.0
	contentWidth = pageWidth - 2*marginLeft
	pageBottom   = pageHeight - footerHeight - 5
)

// cursor 為目前排版位置；每個繪圖函式接收 cursor 並回傳前進後的新值。
type cursor struct {
	y float64
}

func (c cursor) advance(h float64) cursor {
	c.y += h
	return c
}

// remaining 回傳本頁剩餘高度。
func (c cursor) remaining() float64 {
	return pageBottom - c.y
}

type rgb struct{ r, g, b int }

var (
	colorBrand   = rgb{34, 94, 52}
	colorText    = rgb{33, 33, 33}
	colorMuted   = rgb{110, 110, 110}
	colorDivider = rgb{190, 190, 190}
	colorStripe  = rgb{236, 244, 238}
	colorWhite   = rgb{255, 255, 255}
	colorLine    = rgb{40, 110, 170}
	colorAlert   = rgb{200, 60, 50}
)

// writer 持有 fpdf 實例與文字轉碼；排版位置不存在這裡，而是由 cursor 傳遞。
type writer struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts Options
}

func newWriter(pdf *fpdf.Fpdf, opts Options) *writer {
	return &writer{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		opts: opts,
	}
}

func (w *writer) newPage() cursor {
	w.pdf.AddPage()
	return cursor{y: marginTop}
}

// ensure 在剩餘空間不足 h 時換頁。
func (w *writer) ensure(c cursor, h float64) cursor {
	if c.y+h > pageBottom {
		return w.newPage()
	}
	return c
}

func (w *writer) textColor(c rgb) { w.pdf.SetTextColor(c.r, c.g, c.b) }
func (w *writer) fillColor(c rgb) { w.pdf.SetFillColor(c.r, c.g, c.b) }
func (w *writer) drawColor(c rgb) { w.pdf.SetDrawColor(c.r, c.g, c.b) }

// sectionTitle 輸出區塊標題與分隔線。
func (w *writer) sectionTitle(c cursor, title string) cursor {
	c = w.ensure(c, 24)
	w.pdf.SetFont("Helvetica", "B", 14)
	w.textColor(colorBrand)
	w.pdf.SetXY(marginLeft, c.y)
	w.pdf.CellFormat(contentWidth, 8, w.tr(title), "", 0, "L", false, 0, "")
	c = c.advance(9)
	w.drawColor(colorDivider)
	w.pdf.SetLineWidth(0.3)
	w.pdf.Line(marginLeft, c.y, marginLeft+contentWidth, c.y)
	return c.advance(4)
}

func (w *writer) subTitle(c cursor, title string) cursor {
	c = w.ensure(c, 14)
	w.pdf.SetFont("Helvetica", "B", 11)
	w.textColor(colorText)
	w.pdf.SetXY(marginLeft, c.y)
	w.pdf.CellFormat(contentWidth, 6, w.tr(title), "", 0, "L", false, 0, "")
	return c.advance(8)
}

const lineHeight = 5.0

// paragraph 輸出可換行的文字；放得下一頁的段落不拆頁，過長的段落逐行換頁。
func (w *writer) paragraph(c cursor, text string, style string, color rgb) cursor {
	w.pdf.SetFont("Helvetica", style, 10)
	lines := w.pdf.SplitLines([]byte(w.tr(text)), contentWidth)
	if len(lines) == 0 {
		lines = [][]byte{nil}
	}
	if h := float64(len(lines)) * lineHeight; h <= pageBottom-marginTop {
		c = w.ensure(c, h)
	}
	for i, line := range lines {
		if i == 0 || c.y+lineHeight > pageBottom {
			c = w.ensure(c, lineHeight)
			w.pdf.SetFont("Helvetica", style, 10)
			w.textColor(color)
		}
		w.pdf.SetXY(marginLeft, c.y)
		w.pdf.CellFormat(contentWidth, lineHeight, string(line), "", 0, "L", false, 0, "")
		c = c.advance(lineHeight)
	}
	return c.advance(2)
}

// placeholder 為缺少的區塊輸出標題、分隔線與一行說明。
func (w *writer) placeholder(c cursor, title string) cursor {
	c = w.sectionTitle(c, title)
	return w.paragraph(c, noDataText, "I", colorMuted)
}

const noDataText = "No data available"

func (w *writer) footer() {
	w.pdf.SetY(-footerHeight)
	w.pdf.SetFont("Helvetica", "I", 8)
	w.textColor(colorMuted)
	w.pdf.SetX(marginLeft)
	w.pdf.CellFormat(contentWidth/2, 10, w.tr(w.opts.Branding), "", 0, "L", false, 0, "")
	w.pdf.CellFormat(contentWidth/2, 10, footerText(w.pdf.PageNo()), "", 0, "R", false, 0, "")
}
