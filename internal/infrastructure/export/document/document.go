package document

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"farm-platform/internal"
	"farm-platform/internal/domain/reports"
	"farm-platform/internal/infrastructure/logging"
)

// ErrRender 表示寫入 PDF 位元組時失敗，不會回傳部分內容。
var ErrRender = errors.New("render pdf document")

// Options 控制文件外觀。
type Options struct {
	// Branding 顯示在頁首與頁尾的平台名稱。
	Branding string
	// Location 決定日期顯示的時區，nil 時使用 UTC。
	Location *time.Location
	// Compress 關閉時內容串流為純文字，方便測試檢查。
	Compress bool
}

// Exporter 將 CropReport 排版為分頁 PDF。
type Exporter struct {
	opts Options
	log  logging.Logger
}

// NewExporter 建立 PDF 匯出器。
func NewExporter(opts Options, log logging.Logger) *Exporter {
	if opts.Branding == "" {
		opts.Branding = "Farm Platform"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if internal.IsNil(log) {
		log = logging.Nop()
	}
	return &Exporter{opts: opts, log: log}
}

// Render 依固定順序輸出所有區塊；整份文件寫入記憶體後才回傳。
func (e *Exporter) Render(r reports.CropReport) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrRender, rec)
		}
		if err != nil {
			e.log.Error("pdf render failed", err, "crop_id", r.Crop.ID)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.opts.Compress)
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pdf.SetTitle(fmt.Sprintf("Crop report %s", r.Crop.Name), true)
	pdf.SetCreator(e.opts.Branding, true)

	w := newWriter(pdf, e.opts)
	pdf.SetFooterFunc(w.footer)

	c := w.header(r)
	c = w.summary(c, r)
	c = w.gallery(c, r)
	c = w.metricDetail(c, r)
	c = w.activities(c, r.Activities)
	c = w.finance(c, r.Finance)
	c = w.inventory(c, r.Inventory)
	c = w.alerts(c, r.Alerts)
	c = w.traceability(c, r.Traceability)
	_ = w.analysis(c, r.Analysis)

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %w", ErrRender, pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	e.log.Info("pdf report rendered",
		"crop_id", r.Crop.ID,
		"pages", pdf.PageNo(),
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}
