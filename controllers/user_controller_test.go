package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yashrajoria/storefront-service/controllers"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
)

type mockUserService struct {
	registerFn func(ctx context.Context, req *models.RegisterRequest) (string, *services.ServiceError)
	authFn     func(ctx context.Context, email, password string) (string, *services.ServiceError)
	profileFn  func(ctx context.Context, userID string) (*models.Profile, *services.ServiceError)
}

func (m *mockUserService) Register(ctx context.Context, req *models.RegisterRequest) (string, *services.ServiceError) {
	return m.registerFn(ctx, req)
}
func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (string, *services.ServiceError) {
	return m.authFn(ctx, email, password)
}
func (m *mockUserService) GetProfile(ctx context.Context, userID string) (*models.Profile, *services.ServiceError) {
	return m.profileFn(ctx, userID)
}

type mockProductService struct {
	listFn func(ctx context.Context) ([]models.Product, *services.ServiceError)
	getFn  func(ctx context.Context, productID string) (*models.Product, *services.ServiceError)
}

func (m *mockProductService) ListProducts(ctx context.Context) ([]models.Product, *services.ServiceError) {
	return m.listFn(ctx)
}
func (m *mockProductService) GetProduct(ctx context.Context, productID string) (*models.Product, *services.ServiceError) {
	return m.getFn(ctx, productID)
}

func setupUserRouter(svc services.UserService) *gin.Engine {
	r := gin.New()
	uc := controllers.NewUserController(svc)
	r.POST("/users", uc.Register)
	r.POST("/users/login", uc.Login)
	r.GET("/users/:userId", uc.GetProfile)
	return r
}

func TestUserController_Register(t *testing.T) {
	id := models.NewID()
	svc := &mockUserService{
		registerFn: func(_ context.Context, req *models.RegisterRequest) (string, *services.ServiceError) {
			if req.Email == "taken@example.com" {
				return "", &services.ServiceError{StatusCode: http.StatusBadRequest, Code: services.CodeUserExists, Message: "user already exists"}
			}
			return id, nil
		},
	}
	r := setupUserRouter(svc)
	body := map[string]string{
		"email": "new@example.com", "password": "secret1", "name": "Ada",
		"surname": "Lovelace", "address": "London", "birthdate": "1815-12-10",
	}

	w := doJSON(t, r, http.MethodPost, "/users", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"_id":"`+id+`"}`, w.Body.String())

	body["email"] = "taken@example.com"
	w = doJSON(t, r, http.MethodPost, "/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, services.CodeUserExists, code)

	body["email"] = "not-an-email"
	w = doJSON(t, r, http.MethodPost, "/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, msg := decodeError(t, w)
	assert.Equal(t, "email must be a valid email address", msg)
}

func TestUserController_LoginAndProfile(t *testing.T) {
	userID := models.NewID()
	svc := &mockUserService{
		authFn: func(_ context.Context, email, password string) (string, *services.ServiceError) {
			if password != "secret1" {
				return "", &services.ServiceError{StatusCode: http.StatusUnauthorized, Code: services.CodeUnauthorized, Message: "invalid email or password"}
			}
			return "signed.jwt.token", nil
		},
		profileFn: func(_ context.Context, uid string) (*models.Profile, *services.ServiceError) {
			return &models.Profile{Email: "ada@example.com"}, nil
		},
	}
	r := setupUserRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/users/login", map[string]string{"email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"signed.jwt.token"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/users/login", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/users/"+userID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
}

func TestProductController(t *testing.T) {
	productID := models.NewID()
	svc := &mockProductService{
		listFn: func(context.Context) ([]models.Product, *services.ServiceError) {
			return []models.Product{{ID: productID, Name: "Rolex"}}, nil
		},
		getFn: func(_ context.Context, id string) (*models.Product, *services.ServiceError) {
			if id != productID {
				return nil, services.NotFound("product not found")
			}
			return &models.Product{ID: id, Name: "Rolex"}, nil
		},
	}
	r := gin.New()
	pc := controllers.NewProductController(svc)
	r.GET("/products", pc.ListProducts)
	r.GET("/products/:productId", pc.GetProduct)

	w := doJSON(t, r, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rolex")

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/products/"+productID, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/products/"+models.NewID(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodGet, "/products/x", nil).Code)
}
