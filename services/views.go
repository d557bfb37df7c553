package services

import (
	"context"

	"github.com/samber/lo"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
)

// resolveProducts loads every distinct product referenced by ids.
func resolveProducts(ctx context.Context, catalog repository.ProductRepository, ids []string) (map[string]models.Product, *ServiceError) {
	if len(ids) == 0 {
		return map[string]models.Product{}, nil
	}
	products, err := catalog.FindByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, StorageUnavailable("failed to load products", err)
	}
	return products, nil
}

// cartView keeps cart order and omits entries whose product no longer exists.
func cartView(account *models.Account, products map[string]models.Product) *models.CartView {
	lines := lo.FilterMap(account.CartItems, func(item models.CartItem, _ int) (models.CartLine, bool) {
		p, ok := products[item.ProductID]
		return models.CartLine{Product: p, Qty: item.Qty}, ok
	})
	return &models.CartView{UserID: account.ID, CartItems: lines}
}

func orderView(order *models.Order, products map[string]models.Product) models.OrderView {
	lines := lo.FilterMap(order.Items, func(item models.OrderItem, _ int) (models.OrderLine, bool) {
		p, ok := products[item.ProductID]
		return models.OrderLine{Product: p, Qty: item.Qty, Price: item.Price}, ok
	})
	return models.OrderView{
		ID:         order.ID,
		UserID:     order.UserID,
		OrderItems: lines,
		Address:    order.Address,
		Date:       order.Date,
		CardHolder: order.CardHolder,
		CardNumber: order.CardNumber,
		Total:      order.Total(),
	}
}

func cartProductIDs(items []models.CartItem) []string {
	return lo.Map(items, func(item models.CartItem, _ int) string { return item.ProductID })
}

func orderProductIDs(orders ...models.Order) []string {
	return lo.FlatMap(orders, func(o models.Order, _ int) []string {
		return lo.Map(o.Items, func(item models.OrderItem, _ int) string { return item.ProductID })
	})
}
