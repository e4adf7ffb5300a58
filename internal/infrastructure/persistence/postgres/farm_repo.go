package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"farm-platform/internal/application/inventory"
	"farm-platform/internal/domain/farm"
)

// FarmRepo 提供報表與庫存所需的 Postgres 查詢。
type FarmRepo struct {
	db *sql.DB
}

// NewFarmRepo 建立 Postgres 資料存取實例。
func NewFarmRepo(db *sql.DB) *FarmRepo {
	return &FarmRepo{db: db}
}

// FindCropByID 查無作物時回傳 nil, nil。
func (r *FarmRepo) FindCropByID(ctx context.Context, id int64) (*farm.Crop, error) {
	const q = `
SELECT c.id, c.name, c.crop_type, c.sowing_date, c.harvest_date, c.status, COALESCE(c.notes, ''), c.plot_id, p.name
FROM crops c
JOIN plots p ON p.id = c.plot_id
WHERE c.id = $1;
`
	var c farm.Crop
	var harvest sql.NullTime
	var status string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.Type, &c.SowingDate, &harvest, &status, &c.Notes, &c.PlotID, &c.PlotName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Status = farm.CropStatus(status)
	if harvest.Valid {
		h := harvest.Time
		c.HarvestDate = &h
	}
	return &c, nil
}

func (r *FarmRepo) FindSubPlotsByPlot(ctx context.Context, plotID int64) ([]farm.SubPlot, error) {
	const q = `
SELECT id, plot_id, name, area
FROM sub_plots
WHERE plot_id = $1
ORDER BY name;
`
	rows, err := r.db.QueryContext(ctx, q, plotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.SubPlot{}
	for rows.Next() {
		var p farm.SubPlot
		if err := rows.Scan(&p.ID, &p.PlotID, &p.Name, &p.Area); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *FarmRepo) FindActivitiesInRange(ctx context.Context, cropID int64, start, end time.Time) ([]farm.Activity, error) {
	const q = `
SELECT id, crop_id, activity_type, activity_date, COALESCE(description, ''), COALESCE(responsible, ''), labor_cost, machinery_cost
FROM activities
WHERE crop_id = $1 AND activity_date BETWEEN $2 AND $3
ORDER BY activity_date, id;
`
	rows, err := r.db.QueryContext(ctx, q, cropID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.Activity{}
	for rows.Next() {
		var a farm.Activity
		if err := rows.Scan(&a.ID, &a.CropID, &a.Type, &a.Date, &a.Description, &a.Responsible, &a.LaborCost, &a.MachineryCost); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindReadingsInRange 以感測器所屬地塊篩選讀數，超出感測器門檻者標記 out_of_range。
func (r *FarmRepo) FindReadingsInRange(ctx context.Context, plotID int64, start, end time.Time) ([]farm.SensorReading, error) {
	const q = `
SELECT s.id, s.label, s.sensor_type, s.unit, sr.recorded_at, sr.value,
       COALESCE(sr.value < s.min_threshold OR sr.value > s.max_threshold, FALSE) AS out_of_range
FROM sensor_readings sr
JOIN sensors s ON s.id = sr.sensor_id
WHERE s.plot_id = $1 AND sr.recorded_at BETWEEN $2 AND $3
ORDER BY sr.recorded_at, s.id;
`
	rows, err := r.db.QueryContext(ctx, q, plotID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.SensorReading{}
	for rows.Next() {
		var rd farm.SensorReading
		if err := rows.Scan(&rd.SensorID, &rd.SensorLabel, &rd.SensorType, &rd.Unit, &rd.Timestamp, &rd.Value, &rd.OutOfRange); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *FarmRepo) FindIncomeInRange(ctx context.Context, cropID int64, start, end time.Time) ([]farm.Income, error) {
	const q = `
SELECT id, crop_id, income_date, concept, COALESCE(buyer, ''), amount
FROM income
WHERE crop_id = $1 AND income_date BETWEEN $2 AND $3
ORDER BY income_date, id;
`
	rows, err := r.db.QueryContext(ctx, q, cropID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.Income{}
	for rows.Next() {
		var in farm.Income
		if err := rows.Scan(&in.ID, &in.CropID, &in.Date, &in.Concept, &in.Buyer, &in.Amount); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *FarmRepo) FindStockOutflowsInRange(ctx context.Context, cropID int64, start, end time.Time) ([]farm.StockOutflow, error) {
	const q = `
SELECT o.id, o.item_id, i.name, o.crop_id, o.outflow_date, o.quantity, o.unit_value
FROM stock_outflows o
JOIN inventory_items i ON i.id = o.item_id
WHERE o.crop_id = $1 AND o.outflow_date BETWEEN $2 AND $3
ORDER BY o.outflow_date, o.id;
`
	rows, err := r.db.QueryContext(ctx, q, cropID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.StockOutflow{}
	for rows.Next() {
		var o farm.StockOutflow
		if err := rows.Scan(&o.ID, &o.ItemID, &o.ItemName, &o.CropID, &o.Date, &o.Quantity, &o.UnitValue); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *FarmRepo) ListInventoryItems(ctx context.Context) ([]farm.InventoryItem, error) {
	const q = `
SELECT id, name, category, unit, quantity, unit_value
FROM inventory_items
ORDER BY name, id;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.InventoryItem{}
	for rows.Next() {
		var it farm.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.Unit, &it.Quantity, &it.UnitValue); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *FarmRepo) FindAlertsInRange(ctx context.Context, start, end time.Time) ([]farm.Alert, error) {
	const q = `
SELECT id, alert_type, severity, message, alert_date, resolved
FROM alerts
WHERE alert_date BETWEEN $1 AND $2
ORDER BY alert_date, id;
`
	rows, err := r.db.QueryContext(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.Alert{}
	for rows.Next() {
		var a farm.Alert
		var severity string
		if err := rows.Scan(&a.ID, &a.Type, &severity, &a.Message, &a.Date, &a.Resolved); err != nil {
			return nil, err
		}
		a.Severity = farm.Severity(severity)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *FarmRepo) FindLifecycleEvents(ctx context.Context, cropID int64) ([]farm.LifecycleEvent, error) {
	const q = `
SELECT id, crop_id, stage, event_date, COALESCE(description, ''), COALESCE(actor, '')
FROM lifecycle_events
WHERE crop_id = $1
ORDER BY event_date, id;
`
	rows, err := r.db.QueryContext(ctx, q, cropID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []farm.LifecycleEvent{}
	for rows.Next() {
		var ev farm.LifecycleEvent
		if err := rows.Scan(&ev.ID, &ev.CropID, &ev.Stage, &ev.Date, &ev.Description, &ev.Actor); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// FindInventoryItem 查無品項時回傳 nil, nil。
func (r *FarmRepo) FindInventoryItem(ctx context.Context, id int64) (*farm.InventoryItem, error) {
	const q = `
SELECT id, name, category, unit, quantity, unit_value
FROM inventory_items
WHERE id = $1;
`
	var it farm.InventoryItem
	err := r.db.QueryRowContext(ctx, q, id).Scan(&it.ID, &it.Name, &it.Category, &it.Unit, &it.Quantity, &it.UnitValue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// RecordOutflow 在同一交易內扣減庫存並寫入出庫；庫存不足時不寫入。
func (r *FarmRepo) RecordOutflow(ctx context.Context, o farm.StockOutflow) (farm.StockOutflow, farm.InventoryItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return farm.StockOutflow{}, farm.InventoryItem{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const decrement = `
UPDATE inventory_items
SET quantity = quantity - $2, updated_at = NOW()
WHERE id = $1 AND quantity >= $2
RETURNING id, name, category, unit, quantity, unit_value;
`
	var it farm.InventoryItem
	err = tx.QueryRowContext(ctx, decrement, o.ItemID, o.Quantity).
		Scan(&it.ID, &it.Name, &it.Category, &it.Unit, &it.Quantity, &it.UnitValue)
	if errors.Is(err, sql.ErrNoRows) {
		return farm.StockOutflow{}, farm.InventoryItem{}, fmt.Errorf("item %d: %w", o.ItemID, inventory.ErrInsufficientStock)
	}
	if err != nil {
		return farm.StockOutflow{}, farm.InventoryItem{}, err
	}

	const insert = `
INSERT INTO stock_outflows (item_id, crop_id, outflow_date, quantity, unit_value)
VALUES ($1, NULLIF($2, 0), $3, $4, $5)
RETURNING id;
`
	if err := tx.QueryRowContext(ctx, insert, o.ItemID, o.CropID, o.Date, o.Quantity, o.UnitValue).Scan(&o.ID); err != nil {
		return farm.StockOutflow{}, farm.InventoryItem{}, err
	}
	if err := tx.Commit(); err != nil {
		return farm.StockOutflow{}, farm.InventoryItem{}, err
	}
	o.ItemName = it.Name
	return o, it, nil
}

// CreateAlert 寫入警報並回傳 ID。
func (r *FarmRepo) CreateAlert(ctx context.Context, a farm.Alert) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	const q = `
INSERT INTO alerts (alert_type, severity, message, alert_date, resolved)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, a.Type, string(a.Severity), a.Message, a.Date, a.Resolved).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
