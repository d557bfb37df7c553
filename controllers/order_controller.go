package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-service/middleware"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
)

type OrderController struct {
	checkoutService services.CheckoutService
	queryService    services.OrderQueryService
}

func NewOrderController(checkoutService services.CheckoutService, queryService services.OrderQueryService) *OrderController {
	return &OrderController{
		checkoutService: checkoutService,
		queryService:    queryService,
	}
}

// callerID resolves whose orders the request addresses: the userId path
// parameter when mounted under /users/:userId, otherwise the session, with
// an optional ?userId= that must name the caller.
func callerID(ctx *gin.Context) (string, bool) {
	if id := ctx.Param("userId"); id != "" {
		return id, true
	}
	sessionID, err := middleware.GetUserID(ctx)
	if err != nil {
		respondError(ctx, &services.ServiceError{StatusCode: http.StatusUnauthorized, Code: services.CodeUnauthorized, Message: "authentication required"})
		return "", false
	}
	if q, ok := ctx.GetQuery("userId"); ok {
		if !models.IsValidID(q) {
			respondError(ctx, services.InvalidInput("invalid userId"))
			return "", false
		}
		if q != sessionID {
			respondError(ctx, &services.ServiceError{StatusCode: http.StatusForbidden, Code: services.CodeForbidden, Message: "you may only access your own resources"})
			return "", false
		}
	}
	return sessionID, true
}

// Checkout handles POST /orders and POST /users/:userId/orders.
func (oc *OrderController) Checkout(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	orderID, svcErr := oc.checkoutService.CreateOrder(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}

	ctx.Header("Location", "/users/"+userID+"/orders/"+orderID)
	ctx.JSON(http.StatusCreated, gin.H{"orderId": orderID})
}

// GetOrder handles GET /orders/:orderId and GET /users/:userId/orders/:orderId.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	orderID, ok := pathID(ctx, "orderId")
	if !ok {
		return
	}

	order, svcErr := oc.queryService.GetOrder(ctx.Request.Context(), userID, orderID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// GetUserOrders handles GET /users/:userId/orders.
func (oc *OrderController) GetUserOrders(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	orders, svcErr := oc.queryService.GetUserOrders(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderByID handles GET /admin/orders/:orderId (admin only).
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderId")
	if !ok {
		return
	}

	order, svcErr := oc.queryService.GetOrderByID(ctx.Request.Context(), orderID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// ListOrders handles GET /admin/orders (admin only).
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	result, svcErr := oc.queryService.ListOrders(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
