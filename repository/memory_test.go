package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
)

func TestMemoryAccount_SaveCart_VersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	acct := &models.Account{Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, acct))

	v, err := repo.SaveCart(ctx, acct.ID, 0, []models.CartItem{{ProductID: "p1", Qty: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = repo.SaveCart(ctx, acct.ID, 0, []models.CartItem{{ProductID: "p1", Qty: 9}})
	assert.ErrorIs(t, err, repository.ErrConflict)

	stored, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "p1", Qty: 1}}, stored.CartItems)

	_, err = repo.SaveCart(ctx, models.NewID(), 0, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryAccount_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	require.NoError(t, repo.Create(ctx, &models.Account{Email: "ana@example.com"}))

	err := repo.Create(ctx, &models.Account{Email: "ANA@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestMemoryAccount_FinalizeCheckout_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	acct := &models.Account{Email: "ana@example.com", CartItems: []models.CartItem{{ProductID: "p1", Qty: 2}}}
	require.NoError(t, repo.Create(ctx, acct))

	purchased := []models.OrderItem{{ProductID: "p1", Qty: 2}}
	require.NoError(t, repo.FinalizeCheckout(ctx, acct.ID, "o1", purchased))
	require.NoError(t, repo.FinalizeCheckout(ctx, acct.ID, "o1", purchased))

	stored, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CartItems)
	assert.Equal(t, []string{"o1"}, stored.Orders)

	assert.ErrorIs(t, repo.FinalizeCheckout(ctx, models.NewID(), "o1", nil), repository.ErrNotFound)
}

func TestMemoryAccount_ReserveCheckout(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	acct := &models.Account{Email: "ana@example.com", CartItems: []models.CartItem{{ProductID: "p1", Qty: 2}}}
	require.NoError(t, repo.Create(ctx, acct))

	version, err := repo.ReserveCheckout(ctx, acct.ID, "o1", acct.Version)
	require.NoError(t, err)
	assert.Equal(t, acct.Version+1, version)

	_, err = repo.ReserveCheckout(ctx, acct.ID, "o2", version)
	assert.ErrorIs(t, err, repository.ErrConflict)

	stored, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "o1", stored.PendingOrder)
	assert.Len(t, stored.CartItems, 1)

	require.NoError(t, repo.ReleaseCheckout(ctx, acct.ID, "o2"))
	stored, err = repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "o1", stored.PendingOrder)

	require.NoError(t, repo.ReleaseCheckout(ctx, acct.ID, "o1"))
	stored, err = repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PendingOrder)

	_, err = repo.ReserveCheckout(ctx, models.NewID(), "o3", 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryAccount_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	acct := &models.Account{Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, acct))

	loaded, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	loaded.AddToCart("p1", 3)

	again, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, again.CartItems)
}

func TestMemoryOrder_FindAll_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryOrderRepository()
	var ids []string
	for i := 0; i < 5; i++ {
		o := &models.Order{UserID: "u1", Date: time.Now()}
		require.NoError(t, repo.Create(ctx, o))
		ids = append(ids, o.ID)
	}

	page, total, err := repo.FindAll(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	last, _, err := repo.FindAll(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, ids[0], last[0].ID)
}

func TestMemoryOrder_FindByIDAndUserID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryOrderRepository()
	o := &models.Order{UserID: "u1"}
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.FindByIDAndUserID(ctx, o.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)

	_, err = repo.FindByIDAndUserID(ctx, o.ID, "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
