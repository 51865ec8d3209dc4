package stock

import "maintdesk/domain/shared"

const StockAdjustedEventName = "stock.adjusted"

// StockAdjustedEvent is raised on every approved import or export.
type StockAdjustedEvent struct {
	shared.BaseEvent
}

func NewStockAdjustedEvent(accessoryID, direction string, quantity, remaining int) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseEvent: shared.NewBaseEvent(StockAdjustedEventName, accessoryID, map[string]any{
			"accessory_id": accessoryID,
			"direction":    direction,
			"quantity":     quantity,
			"remaining":    remaining,
		}),
	}
}
