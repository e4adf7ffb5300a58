package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"farm-platform/internal"
	"farm-platform/internal/domain/farm"
	reportsDomain "farm-platform/internal/domain/reports"
	"farm-platform/internal/infrastructure/logging"
)

// ErrCropNotFound 表示 cropId 查無作物，是唯一會中止報表的錯誤。
var ErrCropNotFound = errors.New("crop not found")

// CropReader 依 ID 查詢作物；查無資料時回傳 nil, nil。
type CropReader interface {
	FindCropByID(ctx context.Context, id int64) (*farm.Crop, error)
}

// SubPlotReader 查詢地塊下的分區。
type SubPlotReader interface {
	FindSubPlotsByPlot(ctx context.Context, plotID int64) ([]farm.SubPlot, error)
}

// ActivityReader 查詢期間內的田間作業。
type ActivityReader interface {
	FindActivitiesInRange(ctx context.Context, cropID int64, start, end time.Time) ([]farm.Activity, error)
}

// ReadingReader 查詢地塊感測器在期間內的讀數。
type ReadingReader interface {
	FindReadingsInRange(ctx context.Context, plotID int64, start, end time.Time) ([]farm.SensorReading, error)
}

// FinanceReader 查詢期間內的收入與出庫成本。
type FinanceReader interface {
	FindIncomeInRange(ctx context.Context, cropID int64, start, end time.Time) ([]farm.Income, error)
	FindStockOutflowsInRange(ctx context.Context, cropID int64, start, end time.Time) ([]farm.StockOutflow, error)
}

// InventoryReader 查詢目前庫存。
type InventoryReader interface {
	ListInventoryItems(ctx context.Context) ([]farm.InventoryItem, error)
}

// AlertReader 查詢期間內的警報。
type AlertReader interface {
	FindAlertsInRange(ctx context.Context, start, end time.Time) ([]farm.Alert, error)
}

// TraceabilityReader 查詢作物履歷事件。
type TraceabilityReader interface {
	FindLifecycleEvents(ctx context.Context, cropID int64) ([]farm.LifecycleEvent, error)
}

// FarmRepository 彙整報表需要的所有查詢。
type FarmRepository interface {
	CropReader
	SubPlotReader
	ActivityReader
	ReadingReader
	FinanceReader
	InventoryReader
	AlertReader
	TraceabilityReader
}

// Generator 匯整六個領域的資料成為單一 CropReport。
type Generator struct {
	repo FarmRepository
	log  logging.Logger
	now  func() time.Time
}

// NewGenerator 建立報表匯整器。
func NewGenerator(repo FarmRepository, log logging.Logger) *Generator {
	if internal.IsNil(log) {
		log = logging.Nop()
	}
	return &Generator{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Generate 依條件產生報表。作物查詢與分區查詢依序執行，其餘區塊並行查詢；
// 區塊查詢失敗只會記錄警告並以空區塊取代。
func (g *Generator) Generate(ctx context.Context, f reportsDomain.Filters) (reportsDomain.CropReport, error) {
	if err := f.Validate(); err != nil {
		return reportsDomain.CropReport{}, err
	}

	crop, err := g.repo.FindCropByID(ctx, f.CropID)
	if err != nil {
		return reportsDomain.CropReport{}, fmt.Errorf("find crop %d: %w", f.CropID, err)
	}
	if crop == nil {
		return reportsDomain.CropReport{}, fmt.Errorf("crop %d: %w", f.CropID, ErrCropNotFound)
	}

	report := reportsDomain.CropReport{
		Period: reportsDomain.Period{Start: f.PeriodStart, End: f.PeriodEnd},
		Crop:   reportsDomain.SnapshotOf(*crop),
	}
	report.SubPlots = fetchOr(ctx, g.log, "subPlots", crop.ID,
		func(ctx context.Context) ([]farm.SubPlot, error) {
			rows, err := g.repo.FindSubPlotsByPlot(ctx, crop.PlotID)
			return nonNil(rows), err
		},
		func() []farm.SubPlot { return []farm.SubPlot{} },
	)

	// 每個 goroutine 只寫入 report 的不同欄位。
	var eg errgroup.Group
	eg.Go(func() error {
		report.Metrics = fetchOr(ctx, g.log, reportsDomain.SectionMetrics, crop.ID,
			func(ctx context.Context) (map[string]reportsDomain.MetricSeries, error) {
				return g.metrics(ctx, crop.PlotID, f)
			},
			func() map[string]reportsDomain.MetricSeries { return groupReadings(nil, f.Metrics) },
		)
		return nil
	})
	if f.Sections.Has(reportsDomain.SectionActivities) {
		eg.Go(func() error {
			sec := fetchOr(ctx, g.log, reportsDomain.SectionActivities, crop.ID,
				func(ctx context.Context) (reportsDomain.ActivitiesSection, error) {
					return g.activities(ctx, crop.ID, f)
				},
				reportsDomain.EmptyActivities,
			)
			report.Activities = &sec
			return nil
		})
	}
	if f.Sections.Has(reportsDomain.SectionFinance) {
		eg.Go(func() error {
			sec := fetchOr(ctx, g.log, reportsDomain.SectionFinance, crop.ID,
				func(ctx context.Context) (reportsDomain.FinanceSection, error) {
					return g.finance(ctx, crop.ID, f)
				},
				reportsDomain.EmptyFinance,
			)
			report.Finance = &sec
			return nil
		})
	}
	if f.Sections.Has(reportsDomain.SectionInventory) {
		eg.Go(func() error {
			sec := fetchOr(ctx, g.log, reportsDomain.SectionInventory, crop.ID,
				g.inventory,
				reportsDomain.EmptyInventory,
			)
			report.Inventory = &sec
			return nil
		})
	}
	if f.Sections.Has(reportsDomain.SectionAlerts) {
		eg.Go(func() error {
			sec := fetchOr(ctx, g.log, reportsDomain.SectionAlerts, crop.ID,
				func(ctx context.Context) (reportsDomain.AlertsSection, error) {
					return g.alerts(ctx, f)
				},
				reportsDomain.EmptyAlerts,
			)
			report.Alerts = &sec
			return nil
		})
	}
	if f.Sections.Has(reportsDomain.SectionTraceability) {
		eg.Go(func() error {
			sec := fetchOr(ctx, g.log, reportsDomain.SectionTraceability, crop.ID,
				func(ctx context.Context) (reportsDomain.TraceabilitySection, error) {
					return g.traceability(ctx, *crop)
				},
				reportsDomain.EmptyTraceability,
			)
			report.Traceability = &sec
			return nil
		})
	}
	// fetchOr 吸收錯誤與 panic，所有 goroutine 皆回傳 nil。
	_ = eg.Wait()

	analysis := Analyze(report)
	report.Analysis = &analysis
	report.GeneratedAt = g.now()

	g.log.Info("crop report generated",
		"crop_id", crop.ID,
		"metrics", len(report.Metrics),
		"period_start", f.PeriodStart.Format(time.RFC3339),
		"period_end", f.PeriodEnd.Format(time.RFC3339),
	)
	return report, nil
}
