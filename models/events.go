package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderCreated = "order.created"

// OrderCreatedEvent is published after a successful checkout.
type OrderCreatedEvent struct {
	Event     string          `json:"event"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewOrderCreatedEvent builds the event for o.
func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		Event:     EventOrderCreated,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Items:     o.Items,
		Total:     o.Total(),
		Timestamp: o.Date,
	}
}
