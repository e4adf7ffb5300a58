package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"farm-platform/internal/application/inventory"
	"farm-platform/internal/domain/farm"
)

func newMock(t *testing.T) (*FarmRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFarmRepo(db), mock
}

func TestFarmRepo_FindCropByID(t *testing.T) {
	repo, mock := newMock(t)
	sowing := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	harvest := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "name", "crop_type", "sowing_date", "harvest_date", "status", "notes", "plot_id", "name"}).
		AddRow(7, "Maize North", "maize", sowing, harvest, "growing", "", 3, "North")
	mock.ExpectQuery("SELECT (.+) FROM crops c").WithArgs(int64(7)).WillReturnRows(rows)

	c, err := repo.FindCropByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindCropByID failed: %v", err)
	}
	if c == nil || c.Name != "Maize North" || c.PlotName != "North" || c.Status != farm.CropGrowing {
		t.Fatalf("unexpected crop: %+v", c)
	}
	if c.HarvestDate == nil || !c.HarvestDate.Equal(harvest) {
		t.Fatalf("unexpected harvest date: %v", c.HarvestDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestFarmRepo_FindCropByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM crops c").WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, err := repo.FindCropByID(context.Background(), 99)
	if err != nil || c != nil {
		t.Fatalf("expected nil, nil; got %v, %v", c, err)
	}
}

func TestFarmRepo_FindReadingsInRange(t *testing.T) {
	repo, mock := newMock(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows := sqlmock.NewRows([]string{"id", "label", "sensor_type", "unit", "recorded_at", "value", "out_of_range"}).
		AddRow(1, "T-1", "temperature", "C", start, 21.5, false).
		AddRow(1, "T-1", "temperature", "C", start.Add(time.Hour), 35.0, true)
	mock.ExpectQuery("SELECT (.+) FROM sensor_readings sr").WithArgs(int64(3), start, end).WillReturnRows(rows)

	list, err := repo.FindReadingsInRange(context.Background(), 3, start, end)
	if err != nil {
		t.Fatalf("FindReadingsInRange failed: %v", err)
	}
	if len(list) != 2 || !list[1].OutOfRange || list[0].SensorType != "temperature" {
		t.Fatalf("unexpected readings: %+v", list)
	}
}

func TestFarmRepo_QueryErrorPropagates(t *testing.T) {
	repo, mock := newMock(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM alerts").WillReturnError(errors.New("connection reset"))

	if _, err := repo.FindAlertsInRange(context.Background(), start, start.AddDate(0, 1, 0)); err == nil {
		t.Fatal("expected error")
	}
}

func TestFarmRepo_EmptyResultIsNonNil(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM lifecycle_events").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "crop_id", "stage", "event_date", "description", "actor"}))

	events, err := repo.FindLifecycleEvents(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", events)
	}
}

func TestFarmRepo_RecordOutflow(t *testing.T) {
	repo, mock := newMock(t)
	date := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE inventory_items").WithArgs(int64(4), 15.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "unit", "quantity", "unit_value"}).
			AddRow(4, "Urea", "fertilizer", "kg", 45.0, 2.5))
	mock.ExpectQuery("INSERT INTO stock_outflows").WithArgs(int64(4), int64(7), date, 15.0, 2.5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectCommit()

	o, it, err := repo.RecordOutflow(context.Background(), farm.StockOutflow{ItemID: 4, CropID: 7, Date: date, Quantity: 15, UnitValue: 2.5})
	if err != nil {
		t.Fatalf("RecordOutflow failed: %v", err)
	}
	if o.ID != 31 || o.ItemName != "Urea" || it.Quantity != 45 {
		t.Fatalf("unexpected result: %+v %+v", o, it)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestFarmRepo_RecordOutflow_Insufficient(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE inventory_items").WithArgs(int64(4), 500.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "unit", "quantity", "unit_value"}))
	mock.ExpectRollback()

	_, _, err := repo.RecordOutflow(context.Background(), farm.StockOutflow{ItemID: 4, Quantity: 500, Date: time.Now()})
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestFarmRepo_CreateAlert(t *testing.T) {
	repo, mock := newMock(t)
	date := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO alerts").
		WithArgs("low_stock", "high", "Urea low", date, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	id, err := repo.CreateAlert(context.Background(), farm.Alert{Type: "low_stock", Severity: farm.SeverityHigh, Message: "Urea low", Date: date})
	if err != nil || id != 12 {
		t.Fatalf("unexpected %v %v", id, err)
	}
}
