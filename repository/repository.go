package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yashrajoria/storefront-service/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrConflict       = errors.New("version conflict")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUnavailable    = errors.New("storage unavailable")
)

// unavailable tags a driver failure so callers can match ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// ProductRepository is the catalog read interface plus the seeding write.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// FindByIDs returns the products that exist, keyed by id. Missing ids are absent from the map.
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
}

// AccountRepository stores accounts with their embedded cart.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// SaveCart replaces the cart when the stored version equals expectedVersion
	// and returns the new version. A stale version yields ErrConflict.
	SaveCart(ctx context.Context, id string, expectedVersion int64, items []models.CartItem) (int64, error)
	// ReserveCheckout marks orderID as the account's pending checkout when the
	// stored version equals expectedVersion and no checkout is pending. The
	// cart is left as is. A stale version or another pending order yields
	// ErrConflict.
	ReserveCheckout(ctx context.Context, userID, orderID string, expectedVersion int64) (int64, error)
	// ReleaseCheckout drops the pending marker if it still names orderID.
	ReleaseCheckout(ctx context.Context, userID, orderID string) error
	// FinalizeCheckout removes the purchased quantities from the cart, appends
	// orderID and clears its pending marker in one update. It is a no-op when
	// orderID is already referenced.
	FinalizeCheckout(ctx context.Context, userID, orderID string, purchased []models.OrderItem) error
}

// OrderRepository stores immutable orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, id, userID string) (*models.Order, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Order, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
}
