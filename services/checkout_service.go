package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yashrajoria/storefront-service/events"
	"github.com/yashrajoria/storefront-service/locker"
	"github.com/yashrajoria/storefront-service/models"
	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
	"github.com/yashrajoria/storefront-service/repository"
	"go.uber.org/zap"
)

// CheckoutService converts a cart into an order.
type CheckoutService interface {
	CreateOrder(ctx context.Context, userID string, req *models.CheckoutRequest) (string, *ServiceError)
	// FinalizeCheckout takes the ordered lines out of the cart and records
	// orderID on the account. An order that was never stored only releases
	// the pending marker. Safe to repeat.
	FinalizeCheckout(ctx context.Context, userID, orderID string) *ServiceError
}

type CheckoutOptions struct {
	FinalizeAttempts int
	FinalizeBackoff  time.Duration
}

type checkoutServiceImpl struct {
	accounts  repository.AccountRepository
	orders    repository.OrderRepository
	catalog   repository.ProductRepository
	locker    locker.Locker
	queue     ReconciliationQueue
	publisher events.Publisher
	metrics   MetricsRecorder
	opts      CheckoutOptions
	now       func() time.Time
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. catalog must read the
// store directly so snapshot prices are current.
func NewCheckoutService(
	accounts repository.AccountRepository,
	orders repository.OrderRepository,
	catalog repository.ProductRepository,
	lk locker.Locker,
	queue ReconciliationQueue,
	publisher events.Publisher,
	metrics MetricsRecorder,
	opts CheckoutOptions,
	logger *zap.Logger,
) CheckoutService {
	if opts.FinalizeAttempts < 1 {
		opts.FinalizeAttempts = 3
	}
	if opts.FinalizeBackoff <= 0 {
		opts.FinalizeBackoff = 50 * time.Millisecond
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &checkoutServiceImpl{
		accounts:  accounts,
		orders:    orders,
		catalog:   catalog,
		locker:    lk,
		queue:     queue,
		publisher: publisher,
		metrics:   metricsOrNoop(metrics),
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

func validateCheckout(req *models.CheckoutRequest) *ServiceError {
	if req == nil {
		return InvalidInput("address is required")
	}
	switch {
	case strings.TrimSpace(req.Address) == "":
		return InvalidInput("address is required")
	case strings.TrimSpace(req.CardHolder) == "":
		return InvalidInput("cardHolder is required")
	case strings.TrimSpace(req.CardNumber) == "":
		return InvalidInput("cardNumber is required")
	}
	return nil
}

// CreateOrder snapshots the cart into a new order while holding the account
// lock, then finalizes the account. The cart is never cleared unless the
// order was stored first.
func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, userID string, req *models.CheckoutRequest) (string, *ServiceError) {
	if !models.IsValidID(userID) {
		return "", InvalidInput("invalid user id")
	}
	if serr := validateCheckout(req); serr != nil {
		return "", serr
	}

	unlock, serr := acquire(ctx, s.locker, userID)
	if serr != nil {
		return "", serr
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn("Failed to release account lock", zap.String("user_id", userID), zap.Error(err))
		}
	}()

	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", EmptyCart()
		}
		return "", StorageUnavailable("failed to load account", err)
	}
	if account.PendingOrder != "" {
		return "", s.settlePending(ctx, account)
	}
	if len(account.CartItems) == 0 {
		return "", EmptyCart()
	}

	products, serr := resolveProducts(ctx, s.catalog, cartProductIDs(account.CartItems))
	if serr != nil {
		return "", serr
	}
	items := make([]models.OrderItem, 0, len(account.CartItems))
	for _, entry := range account.CartItems {
		p, ok := products[entry.ProductID]
		if !ok {
			return "", NotFound("product %s is no longer available", entry.ProductID)
		}
		items = append(items, models.NewOrderItem(p, entry.Qty))
	}

	order := &models.Order{
		ID:         models.NewID(),
		UserID:     userID,
		Items:      items,
		Address:    strings.TrimSpace(req.Address),
		Date:       s.now().UTC(),
		CardHolder: req.CardHolder,
		CardNumber: req.CardNumber,
	}
	if _, err := s.accounts.ReserveCheckout(ctx, userID, order.ID, account.Version); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return "", EmptyCart()
		case errors.Is(err, repository.ErrConflict):
			return "", Conflict("concurrent update, try again", err)
		}
		return "", StorageUnavailable("failed to reserve checkout", err)
	}

	// Until the account is finalized it names the order as pending, so no
	// second checkout can start from the same cart.
	durable := context.WithoutCancel(ctx)
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.String("user_id", userID), zap.Error(err))
		if rerr := s.accounts.ReleaseCheckout(durable, userID, order.ID); rerr != nil {
			s.logger.Error("Failed to release pending checkout", zap.String("order_id", order.ID), zap.Error(rerr))
			_ = s.reportPartial(durable, userID, order.ID, rerr)
		}
		return "", StorageUnavailable("failed to create order", err)
	}

	if err := s.finalizeWithRetry(durable, userID, order.ID, order.Items); err != nil {
		if serr := s.reportPartial(durable, userID, order.ID, err); serr != nil {
			return order.ID, serr
		}
	}

	if err := s.publisher.PublishOrderCreated(durable, models.NewOrderCreatedEvent(order)); err != nil {
		s.logger.Warn("Failed to publish order event", zap.String("order_id", order.ID), zap.Error(err))
	}
	_ = s.metrics.RecordCount(durable, aws_pkg.MetricOrdersCreated, serviceDimension)
	_ = s.metrics.RecordCount(durable, aws_pkg.MetricCartCheckouts, serviceDimension)

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total().String()),
	)
	return order.ID, nil
}

func (s *checkoutServiceImpl) finalizeWithRetry(ctx context.Context, userID, orderID string, purchased []models.OrderItem) error {
	var err error
	backoff := s.opts.FinalizeBackoff
	for attempt := 1; attempt <= s.opts.FinalizeAttempts; attempt++ {
		if err = s.accounts.FinalizeCheckout(ctx, userID, orderID, purchased); err == nil {
			return nil
		}
		s.logger.Warn("Checkout finalize failed",
			zap.String("order_id", orderID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < s.opts.FinalizeAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return err
}

// reportPartial queues the unfinished checkout for the reconciler. It only
// returns an error when the job could not be queued either.
func (s *checkoutServiceImpl) reportPartial(ctx context.Context, userID, orderID string, cause error) *ServiceError {
	s.logger.Error("Partial checkout, queuing reconciliation",
		zap.String("order_id", orderID),
		zap.String("user_id", userID),
		zap.Error(cause),
	)
	_ = s.metrics.RecordCount(ctx, aws_pkg.MetricCheckoutPartial, serviceDimension)

	job := ReconcileJob{UserID: userID, OrderID: orderID, Attempts: s.opts.FinalizeAttempts, EnqueuedAt: s.now().UTC()}
	if s.queue == nil {
		return PartialCheckout(orderID, cause)
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("Failed to queue reconciliation",
			zap.String("order_id", orderID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return PartialCheckout(orderID, err)
	}
	return nil
}

func (s *checkoutServiceImpl) FinalizeCheckout(ctx context.Context, userID, orderID string) *ServiceError {
	if !models.IsValidID(userID) || !models.IsValidID(orderID) {
		return InvalidInput("invalid id")
	}
	unlock, serr := acquire(ctx, s.locker, userID)
	if serr != nil {
		return serr
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn("Failed to release account lock", zap.String("user_id", userID), zap.Error(err))
		}
	}()

	return s.settle(ctx, userID, orderID)
}

// settle finalizes orderID if it was stored and releases it otherwise. The
// caller holds the account lock.
func (s *checkoutServiceImpl) settle(ctx context.Context, userID, orderID string) *ServiceError {
	order, err := s.orders.FindByIDAndUserID(ctx, orderID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		if err := s.accounts.ReleaseCheckout(ctx, userID, orderID); err != nil {
			return fromRepository(err, "account not found")
		}
		return nil
	}
	if err != nil {
		return StorageUnavailable("failed to load order", err)
	}
	if err := s.accounts.FinalizeCheckout(ctx, userID, orderID, order.Items); err != nil {
		return fromRepository(err, "account not found")
	}
	return nil
}

// settlePending completes the checkout still pending on account and refuses
// the new one. The caller sees the settled cart before trying again.
func (s *checkoutServiceImpl) settlePending(ctx context.Context, account *models.Account) *ServiceError {
	pending := account.PendingOrder
	if serr := s.settle(context.WithoutCancel(ctx), account.ID, pending); serr != nil {
		s.logger.Warn("Pending checkout is still unsettled",
			zap.String("order_id", pending),
			zap.String("user_id", account.ID),
			zap.Error(serr),
		)
	}
	return Conflict("a previous checkout is still being completed, review the cart and try again", nil)
}
