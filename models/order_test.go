package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/yashrajoria/storefront-service/models"
)

func TestNewOrderItem_SnapshotsPrice(t *testing.T) {
	product := models.Product{ID: "p1", Name: "Unico", Price: decimal.RequireFromString("25200.00")}

	item := models.NewOrderItem(product, 2)
	product.Price = decimal.RequireFromString("1.00")

	assert.True(t, item.Price.Equal(decimal.RequireFromString("25200.00")))
	assert.Equal(t, "p1", item.ProductID)
	assert.Equal(t, 2, item.Qty)
}

func TestOrder_Total(t *testing.T) {
	order := &models.Order{Items: []models.OrderItem{
		{ProductID: "p1", Qty: 2, Price: decimal.RequireFromString("10.50")},
		{ProductID: "p2", Qty: 1, Price: decimal.RequireFromString("0.25")},
	}}

	assert.Equal(t, "21.25", order.Total().StringFixed(2))
}

func TestNewOrderCreatedEvent(t *testing.T) {
	now := time.Now()
	order := &models.Order{
		ID:     "o1",
		UserID: "u1",
		Date:   now,
		Items:  []models.OrderItem{{ProductID: "p1", Qty: 3, Price: decimal.NewFromInt(5)}},
	}

	event := models.NewOrderCreatedEvent(order)

	assert.Equal(t, models.EventOrderCreated, event.Event)
	assert.Equal(t, "o1", event.OrderID)
	assert.Equal(t, "u1", event.UserID)
	assert.True(t, event.Total.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, now, event.Timestamp)
}
