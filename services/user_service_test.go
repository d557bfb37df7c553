package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront-service/auth"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
	"go.uber.org/zap"
)

func registerRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		Email:     "Watch.Lover@example.com",
		Password:  "s3cret-pass",
		Name:      "Ada",
		Surname:   "Lovelace",
		Address:   "12 St James's Square",
		Birthdate: "1990-12-10",
	}
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	f := newFixture()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	svc := services.NewUserService(f.accounts, tokens, zap.NewNop())
	ctx := context.Background()

	id, serr := svc.Register(ctx, registerRequest())
	require.Nil(t, serr)
	require.True(t, models.IsValidID(id))

	stored, err := f.accounts.FindByID(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.Empty(t, stored.CartItems)
	assert.Empty(t, stored.Orders)

	token, serr := svc.Authenticate(ctx, "watch.lover@example.com", "s3cret-pass")
	require.Nil(t, serr)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, auth.RoleUser, claims.Role)

	_, serr = svc.Authenticate(ctx, "watch.lover@example.com", "wrong")
	require.NotNil(t, serr)
	assert.Equal(t, services.CodeUnauthorized, serr.Code)

	_, serr = svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	require.NotNil(t, serr)
	assert.Equal(t, 401, serr.StatusCode)
}

func TestUserService_RegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture()
	svc := services.NewUserService(f.accounts, nil, zap.NewNop())

	_, serr := svc.Register(context.Background(), registerRequest())
	require.Nil(t, serr)

	dup := registerRequest()
	dup.Email = "WATCH.LOVER@example.com"
	_, serr = svc.Register(context.Background(), dup)
	require.NotNil(t, serr)
	assert.Equal(t, services.CodeUserExists, serr.Code)
	assert.Equal(t, 400, serr.StatusCode)
}

func TestUserService_RegisterValidatesBirthdate(t *testing.T) {
	f := newFixture()
	svc := services.NewUserService(f.accounts, nil, zap.NewNop())

	req := registerRequest()
	req.Birthdate = "10/12/1990"
	_, serr := svc.Register(context.Background(), req)
	require.NotNil(t, serr)
	assert.Equal(t, services.CodeInvalidData, serr.Code)
}

func TestUserService_GetProfile(t *testing.T) {
	f := newFixture()
	svc := services.NewUserService(f.accounts, nil, zap.NewNop())

	id, serr := svc.Register(context.Background(), registerRequest())
	require.Nil(t, serr)

	profile, serr := svc.GetProfile(context.Background(), id)
	require.Nil(t, serr)
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "Lovelace", profile.Surname)
	assert.Equal(t, 1990, profile.Birthdate.Year())

	_, serr = svc.GetProfile(context.Background(), models.NewID())
	require.NotNil(t, serr)
	assert.Equal(t, services.CodeNotFound, serr.Code)
}

type failingTokens struct{}

func (failingTokens) Issue(auth.Claims) (string, error) { return "", errStoreDown }
func (failingTokens) Parse(string) (*auth.Claims, error) { return nil, errStoreDown }

func TestUserService_ErrorCodesMatchStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, serr := services.NewUserService(f.accounts, nil, zap.NewNop()).Register(ctx, registerRequest())
	require.Nil(t, serr)

	_, serr = services.NewUserService(f.accounts, nil, zap.NewNop()).Authenticate(ctx, "watch.lover@example.com", "s3cret-pass")
	require.NotNil(t, serr)
	assert.Equal(t, 501, serr.StatusCode)
	assert.Equal(t, services.CodeNotImplemented, serr.Code)

	_, serr = services.NewUserService(f.accounts, failingTokens{}, zap.NewNop()).Authenticate(ctx, "watch.lover@example.com", "s3cret-pass")
	require.NotNil(t, serr)
	assert.Equal(t, 500, serr.StatusCode)
	assert.Equal(t, services.CodeInternal, serr.Code)

	long := registerRequest()
	long.Email = "long.password@example.com"
	long.Password = strings.Repeat("x", 80)
	_, serr = services.NewUserService(f.accounts, nil, zap.NewNop()).Register(ctx, long)
	require.NotNil(t, serr)
	assert.Equal(t, 500, serr.StatusCode)
	assert.Equal(t, services.CodeInternal, serr.Code)
}
