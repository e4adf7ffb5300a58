package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"farm-platform/internal/application/inventory"
	"farm-platform/internal/domain/farm"
)

// Store 為未設定資料庫時使用的記憶體資料來源，可併發讀寫。
type Store struct {
	mu         sync.RWMutex
	crops      map[int64]farm.Crop
	subPlots   []farm.SubPlot
	activities []farm.Activity
	readings   map[int64][]farm.SensorReading // plotID -> readings
	incomes    []farm.Income
	outflows   []farm.StockOutflow
	items      map[int64]farm.InventoryItem
	alerts     []farm.Alert
	events     []farm.LifecycleEvent
	idSeq      int64
}

// NewStore 建立空的記憶體 Store。
func NewStore() *Store {
	return &Store{
		crops:    make(map[int64]farm.Crop),
		readings: make(map[int64][]farm.SensorReading),
		items:    make(map[int64]farm.InventoryItem),
	}
}

func (s *Store) nextID() int64 {
	s.idSeq++
	return s.idSeq
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// AddCrop 寫入作物；ID 為 0 時自動配號。
func (s *Store) AddCrop(c farm.Crop) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextID()
	}
	s.crops[c.ID] = c
	return c.ID
}

// AddSubPlot 寫入分區。
func (s *Store) AddSubPlot(p farm.SubPlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	s.subPlots = append(s.subPlots, p)
}

// AddActivity 寫入田間作業。
func (s *Store) AddActivity(a farm.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	s.activities = append(s.activities, a)
}

// AddReading 寫入地塊的感測讀數。
func (s *Store) AddReading(plotID int64, r farm.SensorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[plotID] = append(s.readings[plotID], r)
}

// AddIncome 寫入收入。
func (s *Store) AddIncome(in farm.Income) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.nextID()
	s.incomes = append(s.incomes, in)
}

// AddInventoryItem 寫入庫存品項並回傳 ID。
func (s *Store) AddInventoryItem(it farm.InventoryItem) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID == 0 {
		it.ID = s.nextID()
	}
	s.items[it.ID] = it
	return it.ID
}

// AddLifecycleEvent 寫入履歷事件。
func (s *Store) AddLifecycleEvent(ev farm.LifecycleEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = s.nextID()
	s.events = append(s.events, ev)
}

// FindCropByID 查無作物時回傳 nil, nil。
func (s *Store) FindCropByID(_ context.Context, id int64) (*farm.Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.crops[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) FindSubPlotsByPlot(_ context.Context, plotID int64) ([]farm.SubPlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []farm.SubPlot{}
	for _, p := range s.subPlots {
		if p.PlotID == plotID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) FindActivitiesInRange(_ context.Context, cropID int64, start, end time.Time) ([]farm.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []farm.Activity{}
	for _, a := range s.activities {
		if a.CropID == cropID && inRange(a.Date, start, end) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) FindReadingsInRange(_ context.Context, plotID int64, start, end time.Time) ([]farm.SensorReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []farm.SensorReading{}
	for _, r := range s.readings[plotID] {
		if inRange(r.Timestamp, start, end) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) FindIncomeInRange(_ context.Context, cropID int64, start, end time.Time) ([]farm.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []farm.Income{}
	for _, in := range s.incomes {
		if in.CropID == cropID && inRange(in.Date, start, end) {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) FindStockOutflowsInRange(_ context.Context, cropID int64, start, end time.Time) ([]farm.StockOutflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []farm.StockOutflow{}
	for _, o := range s.outflows {
		if o.CropID == cropID && inRange(o.Date, start, end) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ListInventoryItems 依名稱排序回傳全部庫存。
func (s *Store) ListInventoryItems(_ context.Context) ([]farm.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]farm.InventoryItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) FindAlertsInRange(_ context.Context, start, end time.Time) ([]farm.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []farm.Alert{}
	for _, a := range s.alerts {
		if inRange(a.Date, start, end) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) FindLifecycleEvents(_ context.Context, cropID int64) ([]farm.LifecycleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []farm.LifecycleEvent{}
	for _, ev := range s.events {
		if ev.CropID == cropID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// FindInventoryItem 查無品項時回傳 nil, nil。
func (s *Store) FindInventoryItem(_ context.Context, id int64) (*farm.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// RecordOutflow 在同一把鎖內寫入出庫並扣減庫存。
func (s *Store) RecordOutflow(_ context.Context, o farm.StockOutflow) (farm.StockOutflow, farm.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[o.ItemID]
	if !ok {
		return farm.StockOutflow{}, farm.InventoryItem{}, fmt.Errorf("item %d: %w", o.ItemID, inventory.ErrItemNotFound)
	}
	if it.Quantity < o.Quantity {
		return farm.StockOutflow{}, farm.InventoryItem{}, fmt.Errorf("item %d: %w", o.ItemID, inventory.ErrInsufficientStock)
	}
	it.Quantity -= o.Quantity
	s.items[it.ID] = it
	o.ID = s.nextID()
	s.outflows = append(s.outflows, o)
	return o, it, nil
}

// CreateAlert 寫入警報並回傳 ID。
func (s *Store) CreateAlert(_ context.Context, a farm.Alert) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	s.alerts = append(s.alerts, a)
	return a.ID, nil
}
