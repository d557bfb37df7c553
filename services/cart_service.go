package services

import (
	"context"
	"errors"

	"github.com/yashrajoria/storefront-service/locker"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
	"go.uber.org/zap"
)

// CartMutation is the cart after a change. Created is true when the change
// appended a new entry.
type CartMutation struct {
	Cart    *models.CartView
	Created bool
}

// CartService defines the interface for cart business logic.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.CartView, *ServiceError)
	// AddItem adds qty to the existing quantity of productID.
	AddItem(ctx context.Context, userID, productID string, qty int) (*CartMutation, *ServiceError)
	// SetItemQuantity replaces the quantity of productID with qty.
	SetItemQuantity(ctx context.Context, userID, productID string, qty int) (*CartMutation, *ServiceError)
	RemoveItem(ctx context.Context, userID, productID string) (*models.CartView, *ServiceError)
}

// cartServiceImpl implements CartService.
type cartServiceImpl struct {
	accounts repository.AccountRepository
	catalog  repository.ProductRepository
	locker   locker.Locker
	logger   *zap.Logger
}

// maxSaveAttempts bounds the read-modify-write retries on a version conflict.
const maxSaveAttempts = 2

// NewCartService creates a new CartService. catalog may be the cached
// repository since it is only used for existence checks and display.
func NewCartService(
	accounts repository.AccountRepository,
	catalog repository.ProductRepository,
	lk locker.Locker,
	logger *zap.Logger,
) CartService {
	return &cartServiceImpl{
		accounts: accounts,
		catalog:  catalog,
		locker:   lk,
		logger:   logger,
	}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*models.CartView, *ServiceError) {
	if !models.IsValidID(userID) {
		return nil, InvalidInput("invalid user id")
	}
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, fromRepository(err, "account not found")
	}
	return s.view(ctx, account)
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID, productID string, qty int) (*CartMutation, *ServiceError) {
	return s.upsert(ctx, userID, productID, qty, (*models.Account).AddToCart)
}

func (s *cartServiceImpl) SetItemQuantity(ctx context.Context, userID, productID string, qty int) (*CartMutation, *ServiceError) {
	return s.upsert(ctx, userID, productID, qty, (*models.Account).SetCartQuantity)
}

func (s *cartServiceImpl) upsert(
	ctx context.Context,
	userID, productID string,
	qty int,
	apply func(a *models.Account, productID string, qty int) bool,
) (*CartMutation, *ServiceError) {
	if !models.IsValidID(userID) {
		return nil, InvalidInput("invalid user id")
	}
	if !models.IsValidID(productID) {
		return nil, InvalidInput("invalid product id")
	}
	if qty < 1 {
		return nil, InvalidInput("quantity must be at least 1")
	}

	exists, err := s.catalog.Exists(ctx, productID)
	if err != nil {
		return nil, StorageUnavailable("failed to check product", err)
	}
	if !exists {
		return nil, NotFound("product not found")
	}

	var created bool
	account, serr := s.mutate(ctx, userID, func(a *models.Account) bool {
		created = apply(a, productID, qty)
		return true
	})
	if serr != nil {
		return nil, serr
	}

	view, serr := s.view(ctx, account)
	if serr != nil {
		return nil, serr
	}
	s.logger.Info("Cart updated",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("qty", qty),
		zap.Bool("created", created),
	)
	return &CartMutation{Cart: view, Created: created}, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, productID string) (*models.CartView, *ServiceError) {
	if !models.IsValidID(userID) {
		return nil, InvalidInput("invalid user id")
	}
	if !models.IsValidID(productID) {
		return nil, InvalidInput("invalid product id")
	}

	account, serr := s.mutate(ctx, userID, func(a *models.Account) bool {
		return a.RemoveFromCart(productID)
	})
	if serr != nil {
		return nil, serr
	}
	return s.view(ctx, account)
}

// mutate runs apply on a fresh copy of the account under the account lock
// and persists the cart when apply reports a change. A version conflict
// restarts the read-modify-write.
func (s *cartServiceImpl) mutate(ctx context.Context, userID string, apply func(a *models.Account) bool) (*models.Account, *ServiceError) {
	unlock, serr := acquire(ctx, s.locker, userID)
	if serr != nil {
		return nil, serr
	}
	defer s.release(unlock, userID)

	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		account, err := s.accounts.FindByID(ctx, userID)
		if err != nil {
			return nil, fromRepository(err, "account not found")
		}
		if !apply(account) {
			return account, nil
		}

		version, err := s.accounts.SaveCart(ctx, userID, account.Version, account.CartItems)
		if errors.Is(err, repository.ErrConflict) {
			lastErr = err
			s.logger.Warn("Cart version conflict, retrying", zap.String("user_id", userID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, fromRepository(err, "account not found")
		}
		account.Version = version
		return account, nil
	}
	return nil, Conflict("cart was modified concurrently, try again", lastErr)
}

func (s *cartServiceImpl) view(ctx context.Context, account *models.Account) (*models.CartView, *ServiceError) {
	products, serr := resolveProducts(ctx, s.catalog, cartProductIDs(account.CartItems))
	if serr != nil {
		return nil, serr
	}
	return cartView(account, products), nil
}

func (s *cartServiceImpl) release(unlock locker.Unlock, userID string) {
	if err := unlock(); err != nil {
		s.logger.Warn("Failed to release account lock", zap.String("user_id", userID), zap.Error(err))
	}
}

// acquire takes the account lock. A wait timeout is a retryable Conflict.
func acquire(ctx context.Context, lk locker.Locker, userID string) (locker.Unlock, *ServiceError) {
	unlock, err := lk.Acquire(ctx, locker.AccountKey(userID))
	if err != nil {
		if errors.Is(err, locker.ErrLockTimeout) {
			return nil, Conflict("account is busy, try again", err)
		}
		return nil, StorageUnavailable("failed to lock account", err)
	}
	return unlock, nil
}
