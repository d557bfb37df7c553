package services

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
	"go.uber.org/zap"
)

type OrderListResponse struct {
	Orders []models.OrderView `json:"orders"`
	Meta   MetaData           `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderQueryService reads orders for display. GetOrderByID skips the
// ownership check and must only be routed behind admin authorization.
type OrderQueryService interface {
	GetOrder(ctx context.Context, userID, orderID string) (*models.OrderView, *ServiceError)
	GetOrderByID(ctx context.Context, orderID string) (*models.OrderView, *ServiceError)
	GetUserOrders(ctx context.Context, userID string) ([]models.OrderView, *ServiceError)
	ListOrders(ctx context.Context, page, limit int) (*OrderListResponse, *ServiceError)
}

type orderQueryServiceImpl struct {
	orders   repository.OrderRepository
	accounts repository.AccountRepository
	catalog  repository.ProductRepository
	logger   *zap.Logger
}

func NewOrderQueryService(
	orders repository.OrderRepository,
	accounts repository.AccountRepository,
	catalog repository.ProductRepository,
	logger *zap.Logger,
) OrderQueryService {
	return &orderQueryServiceImpl{
		orders:   orders,
		accounts: accounts,
		catalog:  catalog,
		logger:   logger,
	}
}

// GetOrder answers NotFound both for a missing order and for one owned by
// someone else.
func (s *orderQueryServiceImpl) GetOrder(ctx context.Context, userID, orderID string) (*models.OrderView, *ServiceError) {
	if !models.IsValidID(userID) {
		return nil, InvalidInput("invalid user id")
	}
	if !models.IsValidID(orderID) {
		return nil, InvalidInput("invalid order id")
	}
	order, err := s.orders.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		return nil, s.orderError(err, orderID)
	}
	return s.resolveOne(ctx, order)
}

func (s *orderQueryServiceImpl) GetOrderByID(ctx context.Context, orderID string) (*models.OrderView, *ServiceError) {
	if !models.IsValidID(orderID) {
		return nil, InvalidInput("invalid order id")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, s.orderError(err, orderID)
	}
	return s.resolveOne(ctx, order)
}

// GetUserOrders returns orders in the sequence the account references them.
// References whose order record is missing are skipped.
func (s *orderQueryServiceImpl) GetUserOrders(ctx context.Context, userID string) ([]models.OrderView, *ServiceError) {
	if !models.IsValidID(userID) {
		return nil, InvalidInput("invalid user id")
	}
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, fromRepository(err, "account not found")
	}
	if len(account.Orders) == 0 {
		return []models.OrderView{}, nil
	}

	found, err := s.orders.FindByIDs(ctx, account.Orders)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", userID), zap.Error(err))
		return nil, StorageUnavailable("failed to fetch orders", err)
	}
	byID := lo.KeyBy(found, func(o models.Order) string { return o.ID })

	ordered := make([]models.Order, 0, len(account.Orders))
	for _, id := range account.Orders {
		if o, ok := byID[id]; ok {
			ordered = append(ordered, o)
		} else {
			s.logger.Warn("Account references missing order", zap.String("user_id", userID), zap.String("order_id", id))
		}
	}
	return s.resolveMany(ctx, ordered)
}

// ListOrders retrieves all orders with pagination, newest first.
func (s *orderQueryServiceImpl) ListOrders(ctx context.Context, page, limit int) (*OrderListResponse, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	orders, total, err := s.orders.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, StorageUnavailable("failed to fetch orders", err)
	}
	views, serr := s.resolveMany(ctx, orders)
	if serr != nil {
		return nil, serr
	}

	return &OrderListResponse{
		Orders: views,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

func (s *orderQueryServiceImpl) orderError(err error, orderID string) *ServiceError {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound("order not found")
	}
	s.logger.Error("Failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
	return StorageUnavailable("failed to fetch order", err)
}

func (s *orderQueryServiceImpl) resolveOne(ctx context.Context, order *models.Order) (*models.OrderView, *ServiceError) {
	products, serr := resolveProducts(ctx, s.catalog, orderProductIDs(*order))
	if serr != nil {
		return nil, serr
	}
	view := orderView(order, products)
	return &view, nil
}

func (s *orderQueryServiceImpl) resolveMany(ctx context.Context, orders []models.Order) ([]models.OrderView, *ServiceError) {
	products, serr := resolveProducts(ctx, s.catalog, orderProductIDs(orders...))
	if serr != nil {
		return nil, serr
	}
	views := make([]models.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderView(&orders[i], products))
	}
	return views, nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
