package workbook

import (
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"farm-platform/internal"
	"farm-platform/internal/domain/reports"
	"farm-platform/internal/infrastructure/logging"
)

// ErrRender 表示產生 XLSX 時失敗，不會回傳部分內容。
var ErrRender = errors.New("render xlsx workbook")

// 工作表固定順序，下游以位置解析。
const (
	SheetSummary      = "Summary"
	SheetMetrics      = "Metrics"
	SheetActivities   = "Activities"
	SheetFinance      = "Finance"
	SheetInventory    = "Inventory"
	SheetAlerts       = "Alerts"
	SheetTraceability = "Traceability"
	SheetAnalysis     = "Analysis"
)

// SheetOrder 列出輸出的工作表。
var SheetOrder = []string{
	SheetSummary,
	SheetMetrics,
	SheetActivities,
	SheetFinance,
	SheetInventory,
	SheetAlerts,
	SheetTraceability,
	SheetAnalysis,
}

// NoDataText 為缺少區塊時的唯一一列。
const NoDataText = "No data"

// MetricSeparator 為指標區塊之間的分隔列。
const MetricSeparator = "----------"

// Exporter 將 CropReport 輸出為多工作表的活頁簿。
type Exporter struct {
	loc *time.Location
	log logging.Logger
}

// NewExporter 建立活頁簿匯出器，loc 為 nil 時使用 UTC。
func NewExporter(loc *time.Location, log logging.Logger) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	if internal.IsNil(log) {
		log = logging.Nop()
	}
	return &Exporter{loc: loc, log: log}
}

// Render 產生完整活頁簿並回傳位元組。
func (e *Exporter) Render(r reports.CropReport) (out []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			out, err = nil, fmt.Errorf("%w: close: %w", ErrRender, cerr)
		}
		if err != nil {
			e.log.Error("xlsx render failed", err, "crop_id", r.Crop.ID)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	for _, name := range SheetOrder[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("%w: create sheet %s: %w", ErrRender, name, err)
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#225E34"}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: header style: %w", ErrRender, err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, fmt.Errorf("%w: title style: %w", ErrRender, err)
	}

	b := &builder{f: f, loc: e.loc, header: headerStyle, title: titleStyle}
	b.summary(r)
	b.metrics(r)
	b.activities(r.Activities)
	b.finance(r.Finance)
	b.inventory(r.Inventory)
	b.alerts(r.Alerts)
	b.traceability(r.Traceability)
	b.analysis(r.Analysis)
	if b.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, b.err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	e.log.Info("xlsx report rendered", "crop_id", r.Crop.ID, "bytes", buf.Len())
	return buf.Bytes(), nil
}
