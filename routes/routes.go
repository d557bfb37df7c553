package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-service/controllers"
	"github.com/yashrajoria/storefront-service/middleware"
)

const ServiceName = "storefront-service"

type Controllers struct {
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Product *controllers.ProductController
	User    *controllers.UserController
}

// RegisterRoutes sets up every storefront route on r.
func RegisterRoutes(r *gin.Engine, c *Controllers, sessions middleware.SessionProvider) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": ServiceName})
	})

	authenticated := middleware.Authenticate(sessions)
	owner := middleware.OwnerOnly("userId")

	// Public catalog
	products := r.Group("/products")
	products.GET("", c.Product.ListProducts)
	products.GET("/:productId", c.Product.GetProduct)

	users := r.Group("/users")
	users.POST("", c.User.Register)
	users.POST("/login", c.User.Login)

	account := users.Group("/:userId", authenticated, owner)
	account.GET("", c.User.GetProfile)
	account.POST("/orders", c.Order.Checkout)
	account.GET("/orders", c.Order.GetUserOrders)
	account.GET("/orders/:orderId", c.Order.GetOrder)

	cart := r.Group("/cart/:userId", authenticated, owner)
	cart.GET("", c.Cart.GetCart)
	cart.POST("", c.Cart.AddItem)
	cart.PUT("/:productId", c.Cart.SetItemQuantity)
	cart.DELETE("/:productId", c.Cart.RemoveItem)

	orders := r.Group("/orders", authenticated)
	orders.POST("", c.Order.Checkout)
	orders.GET("/:orderId", c.Order.GetOrder)

	// Admin-only routes
	admin := r.Group("/admin", authenticated, middleware.AdminOnly())
	admin.GET("/orders", c.Order.ListOrders)
	admin.GET("/orders/:orderId", c.Order.GetOrderByID)
}
