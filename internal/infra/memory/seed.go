package memory

import (
	"math"
	"time"

	"farm-platform/internal/domain/farm"
)

// DemoCropID 為示範資料中有完整紀錄的作物。
const DemoCropID int64 = 1

type demoSensor struct {
	id       int64
	label    string
	typ      string
	unit     string
	base     float64
	swing    float64
	min, max float64
}

var demoSensors = []demoSensor{
	{id: 101, label: "GH-A temp", typ: "temperature", unit: "C", base: 24, swing: 7, min: 15, max: 30},
	{id: 102, label: "GH-A humidity", typ: "humidity", unit: "%", base: 68, swing: 12, min: 50, max: 85},
	{id: 103, label: "GH-A soil", typ: "soil_moisture", unit: "%", base: 35, swing: 6, min: 25, max: 45},
	{id: 104, label: "GH-A pH", typ: "ph", unit: "pH", base: 6.4, swing: 0.2, min: 5.5, max: 7.5},
}

// SeedDemo 寫入以 now 為結尾、涵蓋 30 天的示範資料。
func (s *Store) SeedDemo(now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := day.AddDate(0, 0, -30)

	s.AddCrop(farm.Crop{
		ID: DemoCropID, Name: "Tomato Greenhouse A", Type: "tomato",
		SowingDate: start.AddDate(0, 0, -20), Status: farm.CropGrowing,
		Notes: "Drip irrigation, cherry variety", PlotID: 1, PlotName: "Greenhouse A",
	})
	s.AddCrop(farm.Crop{
		ID: 2, Name: "Lettuce Field B", Type: "lettuce",
		SowingDate: start, Status: farm.CropPlanned, PlotID: 2, PlotName: "Field B",
	})
	s.mu.Lock()
	s.idSeq = 2
	s.mu.Unlock()
	s.AddSubPlot(farm.SubPlot{PlotID: 1, Name: "A-North", Area: 0.6})
	s.AddSubPlot(farm.SubPlot{PlotID: 1, Name: "A-South", Area: 0.4})

	for h := 0; h <= 30*24; h += 6 {
		ts := start.Add(time.Duration(h) * time.Hour)
		for i, sensor := range demoSensors {
			v := sensor.base + sensor.swing*math.Sin(float64(h)/24*math.Pi/3+float64(i))
			v = math.Round(v*100) / 100
			s.AddReading(1, farm.SensorReading{
				SensorID: sensor.id, SensorLabel: sensor.label, SensorType: sensor.typ, Unit: sensor.unit,
				Timestamp: ts, Value: v, OutOfRange: v < sensor.min || v > sensor.max,
			})
		}
	}

	activities := []farm.Activity{
		{Type: "irrigation", Date: start.AddDate(0, 0, 2), Description: "Drip cycle", Responsible: "Crew 1", LaborCost: 120, MachineryCost: 40},
		{Type: "fertilization", Date: start.AddDate(0, 0, 6), Description: "NPK top dressing", Responsible: "Crew 2", LaborCost: 260, MachineryCost: 90},
		{Type: "pruning", Date: start.AddDate(0, 0, 12), Description: "Lateral shoots", Responsible: "Crew 1", LaborCost: 340},
		{Type: "pest_control", Date: start.AddDate(0, 0, 18), Description: "Whitefly treatment", Responsible: "Crew 3", LaborCost: 180, MachineryCost: 150},
		{Type: "irrigation", Date: start.AddDate(0, 0, 24), Description: "Drip cycle", Responsible: "Crew 1", LaborCost: 120, MachineryCost: 40},
		{Type: "inspection", Date: start.AddDate(0, 0, 28), Description: "Weekly walk", Responsible: "Agronomist"},
	}
	for _, a := range activities {
		a.CropID = DemoCropID
		s.AddActivity(a)
	}

	s.AddIncome(farm.Income{CropID: DemoCropID, Date: start.AddDate(0, 0, 21), Concept: "First harvest", Buyer: "Central Market", Amount: 2400})
	s.AddIncome(farm.Income{CropID: DemoCropID, Date: start.AddDate(0, 0, 29), Concept: "Second harvest", Buyer: "Coop Norte", Amount: 1850})

	urea := s.AddInventoryItem(farm.InventoryItem{Name: "Urea", Category: "fertilizer", Unit: "kg", Quantity: 180, UnitValue: 1.8})
	s.AddInventoryItem(farm.InventoryItem{Name: "Tomato seeds", Category: "seed", Unit: "pack", Quantity: 40, UnitValue: 12})
	s.AddInventoryItem(farm.InventoryItem{Name: "Neem oil", Category: "pesticide", Unit: "l", Quantity: 65, UnitValue: 22})
	s.AddInventoryItem(farm.InventoryItem{Name: "Drip tape", Category: "equipment", Unit: "roll", Quantity: 12, UnitValue: 95})

	s.mu.Lock()
	s.outflows = append(s.outflows,
		farm.StockOutflow{ID: s.nextID(), ItemID: urea, ItemName: "Urea", CropID: DemoCropID, Date: start.AddDate(0, 0, 6), Quantity: 40, UnitValue: 1.8},
	)
	s.alerts = append(s.alerts,
		farm.Alert{ID: s.nextID(), Type: "sensor", Severity: farm.SeverityMedium, Message: "Temperature above 30C in Greenhouse A", Date: start.AddDate(0, 0, 4), Resolved: true},
		farm.Alert{ID: s.nextID(), Type: "pest", Severity: farm.SeverityHigh, Message: "Whitefly detected", Date: start.AddDate(0, 0, 17)},
		farm.Alert{ID: s.nextID(), Type: "low_stock", Severity: farm.SeverityHigh, Message: "Tomato seeds below 50 packs", Date: start.AddDate(0, 0, 25)},
	)
	s.mu.Unlock()

	for _, ev := range []farm.LifecycleEvent{
		{Stage: "sowing", Date: start.AddDate(0, 0, -20), Description: "Seedlings transplanted", Actor: "Crew 1"},
		{Stage: "fertilization", Date: start.AddDate(0, 0, 6), Description: "NPK top dressing", Actor: "Crew 2"},
		{Stage: "harvest", Date: start.AddDate(0, 0, 21), Description: "First harvest 800 kg", Actor: "Crew 1"},
		{Stage: "shipment", Date: start.AddDate(0, 0, 22), Description: "Shipped to Central Market", Actor: "Logistics"},
	} {
		ev.CropID = DemoCropID
		s.AddLifecycleEvent(ev)
	}
}
