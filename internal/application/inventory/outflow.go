package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farm-platform/internal"
	"farm-platform/internal/domain/farm"
	"farm-platform/internal/infrastructure/logging"
)

// LowStockThreshold 出庫後數量低於此值即建立高嚴重度警報。
const LowStockThreshold = 50.0

// AlertTypeLowStock 為低庫存警報類型。
const AlertTypeLowStock = "low_stock"

var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// Repository 提供庫存讀寫；RecordOutflow 需原子地寫入出庫並扣減數量。
type Repository interface {
	FindInventoryItem(ctx context.Context, id int64) (*farm.InventoryItem, error)
	RecordOutflow(ctx context.Context, outflow farm.StockOutflow) (farm.StockOutflow, farm.InventoryItem, error)
	CreateAlert(ctx context.Context, alert farm.Alert) (int64, error)
}

// Notifier 推送警報到外部通道。
type Notifier interface {
	NotifyAlert(ctx context.Context, alert farm.Alert) error
}

// OutflowInput 為出庫請求。
type OutflowInput struct {
	ItemID   int64
	CropID   int64
	Quantity float64
	Date     time.Time
}

// OutflowResult 為出庫結果；Alert 僅在觸發低庫存時存在。
type OutflowResult struct {
	Outflow farm.StockOutflow `json:"outflow"`
	Item    farm.InventoryItem `json:"item"`
	Alert   *farm.Alert       `json:"alert,omitempty"`
}

// OutflowUseCase 處理出庫與低庫存警報。
type OutflowUseCase struct {
	repo     Repository
	notifier Notifier
	log      logging.Logger
	now      func() time.Time
}

// NewOutflowUseCase 建立出庫用例，notifier 可為 nil。
func NewOutflowUseCase(repo Repository, notifier Notifier, log logging.Logger) *OutflowUseCase {
	if internal.IsNil(notifier) {
		notifier = nil
	}
	if internal.IsNil(log) {
		log = logging.Nop()
	}
	return &OutflowUseCase{repo: repo, notifier: notifier, log: log, now: time.Now}
}

// Execute 以品項目前單價記錄出庫並扣減庫存。
func (u *OutflowUseCase) Execute(ctx context.Context, in OutflowInput) (OutflowResult, error) {
	if in.Quantity <= 0 {
		return OutflowResult{}, ErrInvalidQuantity
	}
	item, err := u.repo.FindInventoryItem(ctx, in.ItemID)
	if err != nil {
		return OutflowResult{}, fmt.Errorf("find item %d: %w", in.ItemID, err)
	}
	if item == nil {
		return OutflowResult{}, fmt.Errorf("item %d: %w", in.ItemID, ErrItemNotFound)
	}
	if in.Quantity > item.Quantity {
		return OutflowResult{}, fmt.Errorf("item %d has %.2f %s: %w", item.ID, item.Quantity, item.Unit, ErrInsufficientStock)
	}

	date := in.Date
	if date.IsZero() {
		date = u.now()
	}
	saved, updated, err := u.repo.RecordOutflow(ctx, farm.StockOutflow{
		ItemID:    item.ID,
		ItemName:  item.Name,
		CropID:    in.CropID,
		Date:      date,
		Quantity:  in.Quantity,
		UnitValue: item.UnitValue,
	})
	if err != nil {
		return OutflowResult{}, fmt.Errorf("record outflow: %w", err)
	}

	res := OutflowResult{Outflow: saved, Item: updated}
	if updated.Quantity < LowStockThreshold {
		res.Alert = u.raiseLowStock(ctx, updated)
	}
	return res, nil
}

// raiseLowStock 建立低庫存警報；寫入或推送失敗只記錄，不影響出庫結果。
func (u *OutflowUseCase) raiseLowStock(ctx context.Context, item farm.InventoryItem) *farm.Alert {
	alert := farm.Alert{
		Type:     AlertTypeLowStock,
		Severity: farm.SeverityHigh,
		Message:  fmt.Sprintf("Low stock: %s has %.2f %s left (threshold %.0f)", item.Name, item.Quantity, item.Unit, LowStockThreshold),
		Date:     u.now(),
	}
	id, err := u.repo.CreateAlert(ctx, alert)
	if err != nil {
		u.log.Error("create low stock alert failed", err, "item_id", item.ID)
		return nil
	}
	alert.ID = id
	u.log.Warn("low stock alert raised", "item_id", item.ID, "quantity", item.Quantity)

	if u.notifier != nil {
		if err := u.notifier.NotifyAlert(ctx, alert); err != nil {
			u.log.Error("notify low stock alert failed", err, "alert_id", alert.ID)
		}
	}
	return &alert
}
