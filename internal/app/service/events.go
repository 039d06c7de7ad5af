package service

import (
	"github.com/umichkisa/pocha-backend/internal/app/model"
)

// EventEmitter publishes real-time events to dashboard clients.
// Delivery is best effort; callers log and drop errors.
type EventEmitter interface {
	Emit(event string, payload interface{}) error
}

const EventOrderCreated = "order-created"

// StatusChangeEvent is the per-user event name for item status updates
func StatusChangeEvent(email string) string {
	return "status-change-" + email
}

// OrderItemView 대시보드/이벤트용 주문 항목 표현
type OrderItemView struct {
	OrderItemID  uint                  `json:"orderItemID"`
	Status       model.OrderItemStatus `json:"status"`
	Quantity     int                   `json:"quantity"`
	Menu         *model.Menu           `json:"menu"`
	OrdererName  string                `json:"ordererName,omitempty"`
	OrdererEmail string                `json:"ordererEmail,omitempty"`
}

func newOrderItemView(item model.OrderItem) OrderItemView {
	return OrderItemView{
		OrderItemID: item.ID,
		Status:      item.Status,
		Quantity:    item.Quantity,
		Menu:        item.Menu,
	}
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, interface{}) error { return nil }
