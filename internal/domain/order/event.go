package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventCreated       EventType = "order.created"
	EventUpdated       EventType = "order.updated"
	EventStatusChanged EventType = "order.status_changed"
	EventDeleted       EventType = "order.deleted"
)

// Event is the payload published when an order changes.
type Event struct {
	Type           EventType       `json:"type"`
	OrderID        int64           `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	UserID         int64           `json:"userId"`
	Status         Status          `json:"status"`
	PreviousStatus Status          `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// NewEvent snapshots o into an event of the given type.
func NewEvent(typ EventType, o *Order, at time.Time) Event {
	return Event{
		Type:        typ,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  at.UTC(),
	}
}
