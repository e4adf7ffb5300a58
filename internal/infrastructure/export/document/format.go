package document

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func footerText(page int) string {
	return fmt.Sprintf("Page %d/{nb}", page)
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatAxis(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

func (w *writer) date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(w.opts.Location).Format("2006-01-02")
}

func (w *writer) timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(w.opts.Location).Format("2006-01-02 15:04")
}
