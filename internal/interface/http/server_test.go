package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"farm-platform/internal/application/reports"
	"farm-platform/internal/domain/farm"
	reportsDomain "farm-platform/internal/domain/reports"
	"farm-platform/internal/infra/memory"
	"farm-platform/internal/infrastructure/config"
	"farm-platform/internal/infrastructure/logging"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{}
	cfg.HTTP.ReportTimeout = 5 * time.Second
	cfg.Report.Branding = "Test Farm"
	cfg.Report.SeedDemo = true
	s := NewServer(cfg, nil, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func do(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func demoRequest() map[string]interface{} {
	today := time.Now().UTC()
	return map[string]interface{}{
		"cropId":              memory.DemoCropID,
		"periodStart":         today.AddDate(0, 0, -40).Format(dateLayout),
		"periodEnd":           today.AddDate(0, 0, 1).Format(dateLayout),
		"includeActivities":   true,
		"includeFinance":      true,
		"includeInventory":    true,
		"includeAlerts":       true,
		"includeTraceability": true,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	if resp.Success {
		t.Fatalf("expected success=false, got %s", rec.Body.String())
	}
	return resp
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/ping", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "pong" || body["status"] != "alive" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(headerRequestID, "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "req-42" {
		t.Fatalf("expected request id req-42, got %q", got)
	}
}

func TestHealth_MemoryStore(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/health", nil)
	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["db"] != "using_memory" {
		t.Fatalf("expected using_memory, got %v", body["db"])
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodOptions, "/api/reports/export/pdf", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestRecovery_PanicReturnsInternalError(t *testing.T) {
	var logs bytes.Buffer
	cfg := config.Config{}
	cfg.Report.SeedDemo = true
	s := NewServer(cfg, nil, logging.New(&logs, "info", false))
	s.engine.GET("/api/boom", func(c *gin.Context) { panic("boom") })

	rec := do(s, http.MethodGet, "/api/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.ErrorCode != errCodeInternal || resp.Message != "Internal server error" {
		t.Fatalf("unexpected error body %+v", resp)
	}
	if !strings.Contains(logs.String(), "handler panic recovered") || !strings.Contains(logs.String(), "boom") {
		t.Fatalf("expected panic to be logged, got %s", logs.String())
	}

	if rec := do(s, http.MethodGet, "/api/ping", nil); rec.Code != http.StatusOK {
		t.Fatalf("server must keep serving after a panic, got %d", rec.Code)
	}
}

func TestFilterOptions(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/reports/filter-options", nil)
	var body struct {
		Metrics  []string `json:"metrics"`
		Sections []string `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Metrics) != len(reportsDomain.AvailableMetrics) {
		t.Fatalf("expected %d metrics, got %v", len(reportsDomain.AvailableMetrics), body.Metrics)
	}
	if len(body.Sections) != len(reportsDomain.AllSections) {
		t.Fatalf("expected %d sections, got %v", len(reportsDomain.AllSections), body.Sections)
	}
}

func TestExportPDF(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/reports/export/pdf", demoRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != mimePDF {
		t.Fatalf("unexpected content type %q", ct)
	}
	want := "attachment; filename=report-1741944600000.pdf"
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Fatalf("expected %q, got %q", want, cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF")
	}
}

func TestExportExcel(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/reports/export/excel", demoRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != mimeXLSX {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, ".xlsx") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) == 0 || sheets[0] != "Summary" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}

func TestExport_CropNotFound(t *testing.T) {
	s := newTestServer(t)
	req := demoRequest()
	req["cropId"] = 999
	rec := do(s, http.MethodPost, "/api/reports/export/pdf", req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.ErrorCode != errCodeCropNotFound || resp.Message != "Crop not found" {
		t.Fatalf("unexpected error body %+v", resp)
	}
}

func TestExport_InvalidFilters(t *testing.T) {
	s := newTestServer(t)
	cases := map[string]func(map[string]interface{}){
		"start after end": func(r map[string]interface{}) {
			r["periodStart"] = "2025-03-10"
			r["periodEnd"] = "2025-03-01"
		},
		"missing crop":  func(r map[string]interface{}) { delete(r, "cropId") },
		"bad date":      func(r map[string]interface{}) { r["periodStart"] = "10/03/2025" },
		"missing start": func(r map[string]interface{}) { delete(r, "periodStart") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := demoRequest()
			mutate(req)
			rec := do(s, http.MethodPost, "/api/reports/export/excel", req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp := decodeError(t, rec); resp.ErrorCode != errCodeInvalidFilters {
				t.Fatalf("unexpected error code %q", resp.ErrorCode)
			}
		})
	}
}

func TestExport_BadBody(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/reports/export/pdf", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.ErrorCode != errCodeBadRequest {
		t.Fatalf("unexpected error code %q", resp.ErrorCode)
	}
}

func TestPreview_SectionsFollowFlags(t *testing.T) {
	s := newTestServer(t)
	req := demoRequest()
	req["includeActivities"] = false
	req["includeInventory"] = false
	req["includeAlerts"] = false
	req["includeTraceability"] = false
	req["metrics"] = []string{"Temperature"}

	rec := do(s, http.MethodPost, "/api/reports/preview", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body.Data["finance"]; !ok {
		t.Fatalf("expected finance section")
	}
	for _, absent := range []string{"activities", "inventory", "alerts", "traceability"} {
		if _, ok := body.Data[absent]; ok {
			t.Fatalf("section %s should be absent", absent)
		}
	}
	var metrics map[string]json.RawMessage
	_ = json.Unmarshal(body.Data["metrics"], &metrics)
	if len(metrics) != 1 {
		t.Fatalf("expected only temperature, got %d metrics", len(metrics))
	}
	if _, ok := metrics["temperature"]; !ok {
		t.Fatalf("expected temperature series")
	}
}

type slowCropRepo struct {
	*memory.Store
}

func (slowCropRepo) FindCropByID(ctx context.Context, _ int64) (*farm.Crop, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestExport_Timeout(t *testing.T) {
	s := newTestServer(t)
	s.generator = reports.NewGenerator(slowCropRepo{s.memory}, logging.Nop())
	s.reportTimeout = 20 * time.Millisecond

	rec := do(s, http.MethodPost, "/api/reports/export/pdf", demoRequest())
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.ErrorCode != errCodeReportTimeout {
		t.Fatalf("unexpected error code %q", resp.ErrorCode)
	}
}

type failingRenderer struct{}

func (failingRenderer) Render(reportsDomain.CropReport) ([]byte, error) {
	return nil, errors.New("boom")
}

func TestExport_RenderFailure(t *testing.T) {
	s := newTestServer(t)
	s.pdf = failingRenderer{}
	s.engine = s.routes()

	rec := do(s, http.MethodPost, "/api/reports/export/pdf", demoRequest())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.ErrorCode != errCodeExportFailed || resp.Message != "Error generating report" || resp.Error != "boom" {
		t.Fatalf("unexpected error body %+v", resp)
	}
}

func TestParsePeriodBound(t *testing.T) {
	start, err := parsePeriodBound("2025-03-01", time.UTC, false)
	if err != nil || !start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v (%v)", start, err)
	}
	end, err := parsePeriodBound("2025-03-01", time.UTC, true)
	if err != nil || !end.Equal(time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.UTC)) {
		t.Fatalf("unexpected end %v (%v)", end, err)
	}
	exact, err := parsePeriodBound("2025-03-01T12:00:00Z", time.UTC, true)
	if err != nil || exact.Hour() != 12 {
		t.Fatalf("RFC3339 bound should be kept as given, got %v (%v)", exact, err)
	}
	if _, err := parsePeriodBound("yesterday", time.UTC, false); !errors.Is(err, reportsDomain.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func findItem(t *testing.T, s *Server, name string) farm.InventoryItem {
	t.Helper()
	items, err := s.memory.ListInventoryItems(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	for _, it := range items {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("item %s not seeded", name)
	return farm.InventoryItem{}
}

func TestOutflow_RaisesLowStockAlert(t *testing.T) {
	s := newTestServer(t)
	urea := findItem(t, s, "Urea")

	path := "/api/inventory/items/" + strconv.FormatInt(urea.ID, 10) + "/outflows"
	rec := do(s, http.MethodPost, path, map[string]interface{}{
		"cropId":   memory.DemoCropID,
		"quantity": urea.Quantity - 10,
		"date":     "2025-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Item  farm.InventoryItem `json:"item"`
			Alert *farm.Alert        `json:"alert"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Item.Quantity != 10 {
		t.Fatalf("expected 10 left, got %v", body.Data.Item.Quantity)
	}
	if body.Data.Alert == nil || body.Data.Alert.Severity != farm.SeverityHigh {
		t.Fatalf("expected high severity alert, got %+v", body.Data.Alert)
	}
}

func TestOutflow_Errors(t *testing.T) {
	s := newTestServer(t)
	urea := findItem(t, s, "Urea")
	ureaPath := "/api/inventory/items/" + strconv.FormatInt(urea.ID, 10) + "/outflows"

	cases := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"bad id", "/api/inventory/items/abc/outflows", map[string]interface{}{"quantity": 1}, http.StatusBadRequest, errCodeBadRequest},
		{"zero quantity", ureaPath, map[string]interface{}{"quantity": 0}, http.StatusBadRequest, errCodeBadRequest},
		{"unknown item", "/api/inventory/items/9999/outflows", map[string]interface{}{"quantity": 1}, http.StatusNotFound, errCodeItemNotFound},
		{"insufficient", ureaPath, map[string]interface{}{"quantity": urea.Quantity + 1}, http.StatusConflict, errCodeInsufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.ErrorCode != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, resp.ErrorCode)
			}
		})
	}
}
