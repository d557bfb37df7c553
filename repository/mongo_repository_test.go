package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("storefront_test")
}

func TestMongoRepositories_CartAndCheckout(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()

	products := repository.NewMongoProductRepository(db)
	accounts := repository.NewMongoAccountRepository(db)
	orders := repository.NewMongoOrderRepository(db)
	require.NoError(t, accounts.CreateIndexes(ctx))
	require.NoError(t, orders.CreateIndexes(ctx))

	watch := &models.Product{Name: "Unico Sailing Team", Price: decimal.RequireFromString("25200.50")}
	require.NoError(t, products.Create(ctx, watch))

	got, err := products.FindByID(ctx, watch.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(watch.Price))

	account := &models.Account{Email: "Demo@Example.com", Name: "Demo"}
	require.NoError(t, accounts.Create(ctx, account))
	err = accounts.Create(ctx, &models.Account{Email: "demo@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	version, err := accounts.SaveCart(ctx, account.ID, 0, []models.CartItem{{ProductID: watch.ID, Qty: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = accounts.SaveCart(ctx, account.ID, 0, nil)
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = accounts.SaveCart(ctx, models.NewID(), 0, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	order := &models.Order{
		UserID:     account.ID,
		Items:      []models.OrderItem{models.NewOrderItem(*watch, 2)},
		Address:    "Calle 1",
		Date:       time.Now().UTC().Truncate(time.Millisecond),
		CardHolder: "Demo",
		CardNumber: "4111",
	}
	order.ID = models.NewID()
	version, err = accounts.ReserveCheckout(ctx, account.ID, order.ID, version)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	_, err = accounts.ReserveCheckout(ctx, account.ID, models.NewID(), version)
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = accounts.SaveCart(ctx, account.ID, version, []models.CartItem{{ProductID: watch.ID, Qty: 3}})
	require.NoError(t, err)

	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, accounts.FinalizeCheckout(ctx, account.ID, order.ID, order.Items))
	require.NoError(t, accounts.FinalizeCheckout(ctx, account.ID, order.ID, order.Items))

	stored, err := accounts.FindByEmail(ctx, "DEMO@example.com")
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: watch.ID, Qty: 1}}, stored.CartItems)
	assert.Equal(t, []string{order.ID}, stored.Orders)
	assert.Empty(t, stored.PendingOrder)
	assert.Equal(t, int64(4), stored.Version)

	ghost := models.NewID()
	_, err = accounts.ReserveCheckout(ctx, account.ID, ghost, stored.Version)
	require.NoError(t, err)
	require.NoError(t, accounts.ReleaseCheckout(ctx, account.ID, ghost))
	stored, err = accounts.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PendingOrder)

	owned, err := orders.FindByIDAndUserID(ctx, order.ID, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "50401", owned.Total().String())

	_, err = orders.FindByIDAndUserID(ctx, order.ID, models.NewID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	page, total, err := orders.FindAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, page, 1)
}
