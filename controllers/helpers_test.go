package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront-service/controllers"
	"github.com/yashrajoria/storefront-service/middleware"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := controllers.RegisterValidators(); err != nil {
		panic(err)
	}
}

// --- Mocks ---

type mockCartService struct {
	getFn    func(ctx context.Context, userID string) (*models.CartView, *services.ServiceError)
	addFn    func(ctx context.Context, userID, productID string, qty int) (*services.CartMutation, *services.ServiceError)
	setFn    func(ctx context.Context, userID, productID string, qty int) (*services.CartMutation, *services.ServiceError)
	removeFn func(ctx context.Context, userID, productID string) (*models.CartView, *services.ServiceError)
}

func (m *mockCartService) GetCart(ctx context.Context, userID string) (*models.CartView, *services.ServiceError) {
	return m.getFn(ctx, userID)
}
func (m *mockCartService) AddItem(ctx context.Context, userID, productID string, qty int) (*services.CartMutation, *services.ServiceError) {
	return m.addFn(ctx, userID, productID, qty)
}
func (m *mockCartService) SetItemQuantity(ctx context.Context, userID, productID string, qty int) (*services.CartMutation, *services.ServiceError) {
	return m.setFn(ctx, userID, productID, qty)
}
func (m *mockCartService) RemoveItem(ctx context.Context, userID, productID string) (*models.CartView, *services.ServiceError) {
	return m.removeFn(ctx, userID, productID)
}

type mockCheckoutService struct {
	createFn   func(ctx context.Context, userID string, req *models.CheckoutRequest) (string, *services.ServiceError)
	finalizeFn func(ctx context.Context, userID, orderID string) *services.ServiceError
}

func (m *mockCheckoutService) CreateOrder(ctx context.Context, userID string, req *models.CheckoutRequest) (string, *services.ServiceError) {
	return m.createFn(ctx, userID, req)
}
func (m *mockCheckoutService) FinalizeCheckout(ctx context.Context, userID, orderID string) *services.ServiceError {
	return m.finalizeFn(ctx, userID, orderID)
}

type mockOrderQueryService struct {
	getFn     func(ctx context.Context, userID, orderID string) (*models.OrderView, *services.ServiceError)
	getByIDFn func(ctx context.Context, orderID string) (*models.OrderView, *services.ServiceError)
	userFn    func(ctx context.Context, userID string) ([]models.OrderView, *services.ServiceError)
	listFn    func(ctx context.Context, page, limit int) (*services.OrderListResponse, *services.ServiceError)
}

func (m *mockOrderQueryService) GetOrder(ctx context.Context, userID, orderID string) (*models.OrderView, *services.ServiceError) {
	return m.getFn(ctx, userID, orderID)
}
func (m *mockOrderQueryService) GetOrderByID(ctx context.Context, orderID string) (*models.OrderView, *services.ServiceError) {
	return m.getByIDFn(ctx, orderID)
}
func (m *mockOrderQueryService) GetUserOrders(ctx context.Context, userID string) ([]models.OrderView, *services.ServiceError) {
	return m.userFn(ctx, userID)
}
func (m *mockOrderQueryService) ListOrders(ctx context.Context, page, limit int) (*services.OrderListResponse, *services.ServiceError) {
	return m.listFn(ctx, page, limit)
}

// --- Helpers ---

// withSession injects the caller the way Authenticate would.
func withSession(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserContextKey, userID)
			c.Set(middleware.RoleContextKey, "user")
		}
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"], resp["message"]
}
