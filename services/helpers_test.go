package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront-service/events"
	"github.com/yashrajoria/storefront-service/locker"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
	"github.com/yashrajoria/storefront-service/services"
	"go.uber.org/zap"
)

type fixture struct {
	products *repository.MemoryProductRepository
	accounts *repository.MemoryAccountRepository
	orders   *repository.MemoryOrderRepository
	locker   *locker.LocalLocker
	queue    *services.MemoryQueue
	metrics  *countingMetrics
}

func newFixture() *fixture {
	return &fixture{
		products: repository.NewMemoryProductRepository(),
		accounts: repository.NewMemoryAccountRepository(),
		orders:   repository.NewMemoryOrderRepository(),
		locker:   locker.NewLocalLocker(2 * time.Second),
		queue:    services.NewMemoryQueue(),
		metrics:  &countingMetrics{counts: map[string]int{}},
	}
}

func (f *fixture) addProduct(t *testing.T, price string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        gofakeit.ProductName(),
		Price:       decimal.RequireFromString(price),
		Img:         "/img/" + gofakeit.Word() + ".png",
		Description: "Automatic " + gofakeit.Word(),
	}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func (f *fixture) addAccount(t *testing.T) *models.Account {
	t.Helper()
	a := &models.Account{
		Email:   gofakeit.Email(),
		Name:    gofakeit.FirstName(),
		Surname: gofakeit.LastName(),
		Address: gofakeit.Street(),
	}
	require.NoError(t, f.accounts.Create(context.Background(), a))
	return a
}

func (f *fixture) cartService() services.CartService {
	return services.NewCartService(f.accounts, f.products, f.locker, zap.NewNop())
}

func (f *fixture) checkoutService(accounts repository.AccountRepository, orders repository.OrderRepository, queue services.ReconciliationQueue, publisher *recordingPublisher) services.CheckoutService {
	if accounts == nil {
		accounts = f.accounts
	}
	if orders == nil {
		orders = f.orders
	}
	if queue == nil {
		queue = f.queue
	}
	var pub events.Publisher
	if publisher != nil {
		pub = publisher
	}
	return services.NewCheckoutService(accounts, orders, f.products, f.locker, queue, pub, f.metrics,
		services.CheckoutOptions{FinalizeAttempts: 3, FinalizeBackoff: time.Millisecond}, zap.NewNop())
}

func (f *fixture) orderQueryService() services.OrderQueryService {
	return services.NewOrderQueryService(f.orders, f.accounts, f.products, zap.NewNop())
}

// storeOrder writes an order for userID without touching the account.
func (f *fixture) storeOrder(t *testing.T, userID string, items ...models.OrderItem) string {
	t.Helper()
	o := &models.Order{
		UserID:     userID,
		Items:      items,
		Address:    gofakeit.Street(),
		Date:       time.Now().UTC(),
		CardHolder: gofakeit.Name(),
		CardNumber: gofakeit.CreditCardNumber(nil),
	}
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o.ID
}

func checkoutRequest() *models.CheckoutRequest {
	return &models.CheckoutRequest{
		Address:    gofakeit.Street(),
		CardHolder: gofakeit.Name(),
		CardNumber: gofakeit.CreditCardNumber(nil),
	}
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
	return nil
}

func (m *countingMetrics) get(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var errStoreDown = errors.New("connection refused")

// flakyAccounts fails FinalizeCheckout a configurable number of times.
type flakyAccounts struct {
	*repository.MemoryAccountRepository
	finalizeFailures atomic.Int32
	saveConflicts    atomic.Int32
	finalizeCalls    atomic.Int32
}

func (a *flakyAccounts) FinalizeCheckout(ctx context.Context, userID, orderID string, purchased []models.OrderItem) error {
	a.finalizeCalls.Add(1)
	if a.finalizeFailures.Load() > 0 {
		a.finalizeFailures.Add(-1)
		return errStoreDown
	}
	return a.MemoryAccountRepository.FinalizeCheckout(ctx, userID, orderID, purchased)
}

func (a *flakyAccounts) SaveCart(ctx context.Context, id string, expectedVersion int64, items []models.CartItem) (int64, error) {
	if a.saveConflicts.Load() > 0 {
		a.saveConflicts.Add(-1)
		return 0, repository.ErrConflict
	}
	return a.MemoryAccountRepository.SaveCart(ctx, id, expectedVersion, items)
}

type failingOrders struct {
	*repository.MemoryOrderRepository
}

func (failingOrders) Create(context.Context, *models.Order) error {
	return errStoreDown
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, services.ReconcileJob) error { return errStoreDown }

func (failingQueue) Receive(context.Context, int) ([]services.ReceivedJob, error) { return nil, nil }
