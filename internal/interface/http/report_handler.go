package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"farm-platform/internal/application/reports"
	reportsDomain "farm-platform/internal/domain/reports"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// reportRequest 為匯出與預覽共用的請求內容。
type reportRequest struct {
	CropID              int64    `json:"cropId"`
	PeriodStart         string   `json:"periodStart"`
	PeriodEnd           string   `json:"periodEnd"`
	Metrics             []string `json:"metrics"`
	IncludeActivities   bool     `json:"includeActivities"`
	IncludeFinance      bool     `json:"includeFinance"`
	IncludeInventory    bool     `json:"includeInventory"`
	IncludeAlerts       bool     `json:"includeAlerts"`
	IncludeTraceability bool     `json:"includeTraceability"`
}

// filters 轉換為報表條件；只給日期的迄日延伸到當天結束。
func (req reportRequest) filters(loc *time.Location) (reportsDomain.Filters, error) {
	start, err := parsePeriodBound(req.PeriodStart, loc, false)
	if err != nil {
		return reportsDomain.Filters{}, fmt.Errorf("periodStart: %w", err)
	}
	end, err := parsePeriodBound(req.PeriodEnd, loc, true)
	if err != nil {
		return reportsDomain.Filters{}, fmt.Errorf("periodEnd: %w", err)
	}

	sections := reportsDomain.NewSectionSet(reportsDomain.SectionMetrics)
	for sec, on := range map[reportsDomain.Section]bool{
		reportsDomain.SectionActivities:   req.IncludeActivities,
		reportsDomain.SectionFinance:      req.IncludeFinance,
		reportsDomain.SectionInventory:    req.IncludeInventory,
		reportsDomain.SectionAlerts:       req.IncludeAlerts,
		reportsDomain.SectionTraceability: req.IncludeTraceability,
	} {
		if on {
			sections[sec] = true
		}
	}

	f := reportsDomain.Filters{
		CropID:      req.CropID,
		PeriodStart: start,
		PeriodEnd:   end,
		Metrics:     req.Metrics,
		Sections:    sections,
	}
	return f, f.Validate()
}

func parsePeriodBound(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, reportsDomain.ErrInvalidPeriod
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", reportsDomain.ErrInvalidPeriod, value)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

// generate 解析請求並在逾時限制內產生報表；失敗時已寫出錯誤回應。
func (s *Server) generate(c *gin.Context) (reportsDomain.CropReport, bool) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, errCodeBadRequest, "Invalid request body", err)
		return reportsDomain.CropReport{}, false
	}
	f, err := req.filters(s.loc)
	if err != nil {
		abortError(c, http.StatusBadRequest, errCodeInvalidFilters, "Invalid report filters", err)
		return reportsDomain.CropReport{}, false
	}

	ctx := c.Request.Context()
	if s.reportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reportTimeout)
		defer cancel()
	}

	report, err := s.generator.Generate(ctx, f)
	if err != nil {
		s.abortGenerate(c, f, err)
		return reportsDomain.CropReport{}, false
	}
	return report, true
}

func (s *Server) abortGenerate(c *gin.Context, f reportsDomain.Filters, err error) {
	switch {
	case errors.Is(err, reportsDomain.ErrInvalidPeriod), errors.Is(err, reportsDomain.ErrMissingCrop):
		abortError(c, http.StatusBadRequest, errCodeInvalidFilters, "Invalid report filters", err)
	case errors.Is(err, reports.ErrCropNotFound):
		abortError(c, http.StatusNotFound, errCodeCropNotFound, "Crop not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warn("report generation timed out", "crop_id", f.CropID, "timeout", s.reportTimeout.String())
		abortError(c, http.StatusGatewayTimeout, errCodeReportTimeout, "Report generation timed out", err)
	default:
		s.log.Error("report generation failed", err, "crop_id", f.CropID)
		abortError(c, http.StatusInternalServerError, errCodeInternal, "Error generating report", err)
	}
}

func (s *Server) handleExport(r reportRenderer, contentType, ext string) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, ok := s.generate(c)
		if !ok {
			return
		}
		data, err := r.Render(report)
		if err != nil {
			s.log.Error("report export failed", err, "format", ext, "crop_id", report.Crop.ID)
			abortError(c, http.StatusInternalServerError, errCodeExportFailed, "Error generating report", err)
			return
		}
		filename := fmt.Sprintf("report-%d.%s", s.now().UnixMilli(), ext)
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) handlePreview(c *gin.Context) {
	report, ok := s.generate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

func (s *Server) handleFilterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"metrics":  reportsDomain.AvailableMetrics,
		"sections": reportsDomain.AllSections,
	})
}
