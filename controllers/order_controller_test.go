package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront-service/controllers"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
)

func setupOrderRouter(session string, checkout services.CheckoutService, queries services.OrderQueryService) *gin.Engine {
	r := gin.New()
	r.Use(withSession(session))
	oc := controllers.NewOrderController(checkout, queries)
	r.POST("/orders", oc.Checkout)
	r.GET("/orders/:orderId", oc.GetOrder)
	r.POST("/users/:userId/orders", oc.Checkout)
	r.GET("/users/:userId/orders", oc.GetUserOrders)
	r.GET("/users/:userId/orders/:orderId", oc.GetOrder)
	r.GET("/admin/orders/:orderId", oc.GetOrderByID)
	r.GET("/admin/orders", oc.ListOrders)
	return r
}

var validCheckout = map[string]string{
	"address":    "221B Baker Street",
	"cardHolder": "Sherlock Holmes",
	"cardNumber": "4111111111111111",
}

func TestOrderController_Checkout_Created(t *testing.T) {
	userID, orderID := models.NewID(), models.NewID()
	checkout := &mockCheckoutService{
		createFn: func(_ context.Context, uid string, req *models.CheckoutRequest) (string, *services.ServiceError) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, "221B Baker Street", req.Address)
			return orderID, nil
		},
	}
	r := setupOrderRouter(userID, checkout, &mockOrderQueryService{})

	for _, path := range []string{"/orders", "/orders?userId=" + userID, "/users/" + userID + "/orders"} {
		w := doJSON(t, r, http.MethodPost, path, validCheckout)
		assert.Equal(t, http.StatusCreated, w.Code, path)
		assert.Equal(t, "/users/"+userID+"/orders/"+orderID, w.Header().Get("Location"))
		assert.JSONEq(t, `{"orderId":"`+orderID+`"}`, w.Body.String())
	}
}

func TestOrderController_Checkout_Rejections(t *testing.T) {
	userID := models.NewID()
	checkout := &mockCheckoutService{
		createFn: func(context.Context, string, *models.CheckoutRequest) (string, *services.ServiceError) {
			return "", services.EmptyCart()
		},
	}

	t.Run("missing field", func(t *testing.T) {
		r := setupOrderRouter(userID, checkout, &mockOrderQueryService{})
		w := doJSON(t, r, http.MethodPost, "/orders", map[string]string{"address": "x", "cardHolder": "y"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		code, msg := decodeError(t, w)
		assert.Equal(t, services.CodeInvalidData, code)
		assert.Equal(t, "cardNumber is required", msg)
	})

	t.Run("query names someone else", func(t *testing.T) {
		r := setupOrderRouter(userID, checkout, &mockOrderQueryService{})
		w := doJSON(t, r, http.MethodPost, "/orders?userId="+models.NewID(), validCheckout)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("malformed query id", func(t *testing.T) {
		r := setupOrderRouter(userID, checkout, &mockOrderQueryService{})
		w := doJSON(t, r, http.MethodPost, "/orders?userId=zzz", validCheckout)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no session", func(t *testing.T) {
		r := setupOrderRouter("", checkout, &mockOrderQueryService{})
		w := doJSON(t, r, http.MethodPost, "/orders", validCheckout)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty cart", func(t *testing.T) {
		r := setupOrderRouter(userID, checkout, &mockOrderQueryService{})
		w := doJSON(t, r, http.MethodPost, "/orders", validCheckout)
		assert.Equal(t, http.StatusNotFound, w.Code)
		code, _ := decodeError(t, w)
		assert.Equal(t, services.CodeNotFound, code)
	})
}

func TestOrderController_Checkout_PartialIsReported(t *testing.T) {
	userID, orderID := models.NewID(), models.NewID()
	checkout := &mockCheckoutService{
		createFn: func(context.Context, string, *models.CheckoutRequest) (string, *services.ServiceError) {
			return orderID, services.PartialCheckout(orderID, errors.New("store down"))
		},
	}
	r := setupOrderRouter(userID, checkout, &mockOrderQueryService{})

	w := doJSON(t, r, http.MethodPost, "/orders", validCheckout)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	code, msg := decodeError(t, w)
	assert.Equal(t, services.CodePartialCheckout, code)
	assert.Contains(t, msg, orderID)
}

func TestOrderController_GetOrder(t *testing.T) {
	userID, orderID := models.NewID(), models.NewID()
	queries := &mockOrderQueryService{
		getFn: func(_ context.Context, uid, oid string) (*models.OrderView, *services.ServiceError) {
			if uid != userID || oid != orderID {
				return nil, services.NotFound("order not found")
			}
			return &models.OrderView{ID: oid, UserID: uid, Total: decimal.RequireFromString("25")}, nil
		},
	}
	r := setupOrderRouter(userID, &mockCheckoutService{}, queries)

	w := doJSON(t, r, http.MethodGet, "/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":25`)

	w = doJSON(t, r, http.MethodGet, "/users/"+userID+"/orders/"+orderID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/orders/"+models.NewID(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/orders/not-hex", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_GetUserOrders(t *testing.T) {
	userID := models.NewID()
	queries := &mockOrderQueryService{
		userFn: func(_ context.Context, uid string) ([]models.OrderView, *services.ServiceError) {
			return []models.OrderView{{ID: models.NewID(), UserID: uid}}, nil
		},
	}
	r := setupOrderRouter(userID, &mockCheckoutService{}, queries)

	w := doJSON(t, r, http.MethodGet, "/users/"+userID+"/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"orders":[{`)
}

func TestOrderController_ListOrders_ClampsPagination(t *testing.T) {
	var gotPage, gotLimit int
	queries := &mockOrderQueryService{
		listFn: func(_ context.Context, page, limit int) (*services.OrderListResponse, *services.ServiceError) {
			gotPage, gotLimit = page, limit
			return &services.OrderListResponse{Orders: []models.OrderView{}, Meta: services.MetaData{Page: page, Limit: limit}}, nil
		},
		getByIDFn: func(_ context.Context, oid string) (*models.OrderView, *services.ServiceError) {
			return &models.OrderView{ID: oid}, nil
		},
	}
	r := setupOrderRouter(models.NewID(), &mockCheckoutService{}, queries)

	w := doJSON(t, r, http.MethodGet, "/admin/orders?page=-3&limit=1000", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 100, gotLimit)

	orderID := models.NewID()
	w = doJSON(t, r, http.MethodGet, "/admin/orders/"+orderID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), orderID)
}
