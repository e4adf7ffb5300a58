package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"farm-platform/internal/domain/farm"
	"farm-platform/internal/infrastructure/logging"
)

type fakeRepo struct {
	items    map[int64]farm.InventoryItem
	outflows []farm.StockOutflow
	alerts   []farm.Alert
	alertErr error
}

func (r *fakeRepo) FindInventoryItem(_ context.Context, id int64) (*farm.InventoryItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *fakeRepo) RecordOutflow(_ context.Context, o farm.StockOutflow) (farm.StockOutflow, farm.InventoryItem, error) {
	it := r.items[o.ItemID]
	it.Quantity -= o.Quantity
	r.items[o.ItemID] = it
	o.ID = int64(len(r.outflows) + 1)
	r.outflows = append(r.outflows, o)
	return o, it, nil
}

func (r *fakeRepo) CreateAlert(_ context.Context, a farm.Alert) (int64, error) {
	if r.alertErr != nil {
		return 0, r.alertErr
	}
	r.alerts = append(r.alerts, a)
	return int64(len(r.alerts)), nil
}

type fakeNotifier struct {
	sent []farm.Alert
	err  error
}

func (n *fakeNotifier) NotifyAlert(_ context.Context, a farm.Alert) error {
	n.sent = append(n.sent, a)
	return n.err
}

var fixedNow = time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)

func newRepo(qty float64) *fakeRepo {
	return &fakeRepo{items: map[int64]farm.InventoryItem{
		1: {ID: 1, Name: "Urea", Category: "fertilizer", Unit: "kg", Quantity: qty, UnitValue: 2.5},
	}}
}

func newUseCase(repo Repository, n Notifier) *OutflowUseCase {
	uc := NewOutflowUseCase(repo, n, logging.Nop())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestOutflow_BelowThresholdRaisesHighAlert(t *testing.T) {
	repo := newRepo(60)
	notifier := &fakeNotifier{}
	res, err := newUseCase(repo, notifier).Execute(context.Background(), OutflowInput{ItemID: 1, CropID: 7, Quantity: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Item.Quantity != 45 {
		t.Fatalf("expected 45 left, got %v", res.Item.Quantity)
	}
	if res.Outflow.UnitValue != 2.5 || res.Outflow.ItemName != "Urea" || !res.Outflow.Date.Equal(fixedNow) {
		t.Fatalf("unexpected outflow: %+v", res.Outflow)
	}
	if res.Alert == nil || len(repo.alerts) != 1 {
		t.Fatalf("expected a low stock alert")
	}
	a := repo.alerts[0]
	if a.Type != AlertTypeLowStock || a.Severity != farm.SeverityHigh || !a.Date.Equal(fixedNow) {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected notifier call")
	}
}

func TestOutflow_AtThresholdNoAlert(t *testing.T) {
	repo := newRepo(60)
	res, err := newUseCase(repo, nil).Execute(context.Background(), OutflowInput{ItemID: 1, Quantity: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Alert != nil || len(repo.alerts) != 0 {
		t.Fatalf("50 units left must not raise an alert")
	}
}

func TestOutflow_Validation(t *testing.T) {
	repo := newRepo(20)
	uc := newUseCase(repo, nil)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, OutflowInput{ItemID: 1, Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := uc.Execute(ctx, OutflowInput{ItemID: 9, Quantity: 1}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := uc.Execute(ctx, OutflowInput{ItemID: 1, Quantity: 21}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(repo.outflows) != 0 {
		t.Fatalf("rejected outflows must not be recorded")
	}
}

func TestOutflow_SideEffectFailuresAreNotFatal(t *testing.T) {
	repo := newRepo(55)
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	res, err := newUseCase(repo, notifier).Execute(context.Background(), OutflowInput{ItemID: 1, Quantity: 10})
	if err != nil {
		t.Fatalf("notifier failure must not fail the outflow: %v", err)
	}
	if res.Alert == nil {
		t.Fatalf("alert should still be returned")
	}

	repo = newRepo(55)
	repo.alertErr = errors.New("db down")
	res, err = newUseCase(repo, nil).Execute(context.Background(), OutflowInput{ItemID: 1, Quantity: 10})
	if err != nil {
		t.Fatalf("alert failure must not fail the outflow: %v", err)
	}
	if res.Alert != nil || len(repo.outflows) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
