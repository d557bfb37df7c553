package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront-service/models"
)

// In-memory stores back STORE_BACKEND=memory and the service tests.
// Values are copied on the way in and out so callers never share state.

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemoryProductRepository(products ...models.Product) *MemoryProductRepository {
	r := &MemoryProductRepository{products: make(map[string]models.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) FindByIDs(_ context.Context, ids []string) (map[string]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := make(map[string]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func (r *MemoryProductRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.products[id]
	return ok, nil
}

func (r *MemoryProductRepository) FindAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == "" {
		product.ID = models.NewID()
	}
	r.products[product.ID] = *product
	return nil
}

// SetPrice changes a catalog price. Only used to exercise snapshot semantics.
func (r *MemoryProductRepository) SetPrice(id string, price decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Price = price
		r.products[id] = p
	}
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.CartItems = append([]models.CartItem{}, a.CartItems...)
	c.Orders = append([]string{}, a.Orders...)
	return &c
}

type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]*models.Account)}
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return ErrDuplicateEmail
		}
	}
	if account.ID == "" {
		account.ID = models.NewID()
	}
	if account.CartItems == nil {
		account.CartItems = []models.CartItem{}
	}
	if account.Orders == nil {
		account.Orders = []string{}
	}
	r.accounts[account.ID] = copyAccount(account)
	return nil
}

func (r *MemoryAccountRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAccount(a), nil
}

func (r *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return copyAccount(a), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAccountRepository) SaveCart(_ context.Context, id string, expectedVersion int64, items []models.CartItem) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}
	if a.Version != expectedVersion {
		return 0, ErrConflict
	}
	a.CartItems = append([]models.CartItem{}, items...)
	a.Version++
	return a.Version, nil
}

func (r *MemoryAccountRepository) ReserveCheckout(_ context.Context, userID, orderID string, expectedVersion int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return 0, ErrNotFound
	}
	if a.Version != expectedVersion || a.PendingOrder != "" {
		return 0, ErrConflict
	}
	a.PendingOrder = orderID
	a.Version++
	return a.Version, nil
}

func (r *MemoryAccountRepository) ReleaseCheckout(_ context.Context, userID, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return ErrNotFound
	}
	if a.PendingOrder == orderID {
		a.PendingOrder = ""
		a.Version++
	}
	return nil
}

func (r *MemoryAccountRepository) FinalizeCheckout(_ context.Context, userID, orderID string, purchased []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return ErrNotFound
	}
	if a.SettleCheckout(orderID, purchased) {
		a.Version++
	}
	return nil
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem{}, o.Items...)
	return &c
}

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	seq    []string
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*models.Order)}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == "" {
		order.ID = models.NewID()
	}
	r.orders[order.ID] = copyOrder(order)
	r.seq = append(r.seq, order.ID)
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyOrder(o), nil
}

func (r *MemoryOrderRepository) FindByIDAndUserID(ctx context.Context, id, userID string) (*models.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *MemoryOrderRepository) FindByIDs(_ context.Context, ids []string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			found = append(found, *copyOrder(o))
		}
	}
	return found, nil
}

// FindAll pages over orders newest first.
func (r *MemoryOrderRepository) FindAll(_ context.Context, page, limit int) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := int64(len(r.seq))
	offset := (page - 1) * limit
	result := []models.Order{}
	for i := len(r.seq) - 1 - offset; i >= 0 && len(result) < limit; i-- {
		result = append(result, *copyOrder(r.orders[r.seq[i]]))
	}
	return result, total, nil
}
